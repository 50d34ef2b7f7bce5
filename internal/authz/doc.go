// Package authz holds the request principal and the authorization oracle.
//
//   - Principal: the single authenticated identity of a request, an email for users.
//     Set via NewUserContext, NewSystemContext or WithPrincipal (set-once).
//
//   - Oracle: decides whether a principal may change a record. Owners may change their
//     own records, administrators may change any record. Administrator lookups fail
//     closed: an infrastructure error means "not an administrator".
package authz
