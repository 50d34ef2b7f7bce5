// Package objects contains the records exchanged between the store, the biz services
// and the HTTP layer. The json names follow the column names of the publications table
// so exported sheets and API payloads stay compatible with existing clients.
package objects
