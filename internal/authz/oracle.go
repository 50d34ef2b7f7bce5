package authz

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/pkg/xcache"
)

// AdminLookup answers whether an email is on the administrator allow-list.
//
//go:generate mockgen -source=oracle.go -destination=mock_oracle_test.go -package=authz
type AdminLookup interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Oracle decides whether a principal may mutate a record.
type Oracle struct {
	lookup AdminLookup
	cache  xcache.Cache[bool]
	group  singleflight.Group
}

// NewOracle creates an oracle. A nil cache disables caching of administrator lookups.
func NewOracle(lookup AdminLookup, cache xcache.Cache[bool]) *Oracle {
	if cache == nil {
		cache = xcache.NewNoop[bool]()
	}

	return &Oracle{
		lookup: lookup,
		cache:  cache,
	}
}

// IsAdministrator reports whether email is an administrator. The comparison is case-insensitive.
// Lookup failures are logged and reported as false.
func (o *Oracle) IsAdministrator(ctx context.Context, email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return false
	}

	if admin, err := o.cache.Get(ctx, key); err == nil {
		return admin
	}

	v, err, _ := o.group.Do(key, func() (any, error) {
		admin, err := o.lookup.IsAdmin(ctx, key)
		if err != nil {
			return false, err
		}

		if err := o.cache.Set(ctx, key, admin); err != nil {
			log.Warn(ctx, "failed to cache administrator lookup", log.String("email", key), log.Cause(err))
		}

		return admin, nil
	})
	if err != nil {
		log.Error(ctx, "administrator lookup failed, denying", log.String("email", key), log.Cause(err))
		return false
	}

	admin, _ := v.(bool)

	return admin
}

// IsAuthorized reports whether principalEmail may change a record owned by ownerEmail.
// Ownership is an exact match against the stored owner.
func (o *Oracle) IsAuthorized(ctx context.Context, principalEmail, ownerEmail string) bool {
	if isOwner(principalEmail, ownerEmail) {
		return true
	}

	return o.IsAdministrator(ctx, principalEmail)
}

// Grant resolves the administrator lookup for principalEmail up front. The returned
// Grant answers IsAuthorized without touching the store, so it can be consulted inside
// a transaction that holds the only connection.
func (o *Oracle) Grant(ctx context.Context, principalEmail string) Grant {
	return Grant{principal: principalEmail, admin: o.IsAdministrator(ctx, principalEmail)}
}

// Grant is a principal with its administrator status already looked up.
type Grant struct {
	principal string
	admin     bool
}

func (g Grant) IsAuthorized(ownerEmail string) bool {
	return isOwner(g.principal, ownerEmail) || g.admin
}

func isOwner(principalEmail, ownerEmail string) bool {
	return principalEmail != "" && principalEmail == ownerEmail
}
