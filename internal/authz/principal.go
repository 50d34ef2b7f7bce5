package authz

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoPrincipal is returned when a user principal is required but the context has none.
var ErrNoPrincipal = errors.New("authz: no user principal in context")

// PrincipalType defines authorization principal types.
type PrincipalType int

const (
	// PrincipalTypeUnknown unknown principal type.
	PrincipalTypeUnknown PrincipalType = iota
	// PrincipalTypeSystem system principal (start-up seeding, operator commands).
	PrincipalTypeSystem
	// PrincipalTypeUser authenticated user principal.
	PrincipalTypeUser
)

// String returns string representation of PrincipalType.
func (p PrincipalType) String() string {
	switch p {
	case PrincipalTypeSystem:
		return "system"
	case PrincipalTypeUser:
		return "user"
	default:
		return "unknown"
	}
}

// Principal represents authorization principal.
// Each request can only have one Principal, guaranteed by WithPrincipal's set-once semantics.
type Principal struct {
	Type  PrincipalType
	Email string
}

// IsSystem checks if it is a system principal.
func (p Principal) IsSystem() bool {
	return p.Type == PrincipalTypeSystem
}

// IsUser checks if it is a user principal.
func (p Principal) IsUser() bool {
	return p.Type == PrincipalTypeUser
}

// String returns string representation of Principal (for audit logs).
func (p Principal) String() string {
	switch p.Type {
	case PrincipalTypeSystem:
		return "system"
	case PrincipalTypeUser:
		return "user:" + p.Email
	default:
		return "unknown"
	}
}

// principalKey is an unexported key type to prevent external forgery.
type principalKey struct{}

// WithPrincipal sets Principal, returns error if a different one already exists.
func WithPrincipal(ctx context.Context, p Principal) (context.Context, error) {
	if existing, ok := GetPrincipal(ctx); ok {
		if existing != p {
			return ctx, fmt.Errorf("authz: principal conflict: existing=%s, new=%s", existing, p)
		}

		return ctx, nil // Same principal, idempotent
	}

	return context.WithValue(ctx, principalKey{}, p), nil
}

// GetPrincipal reads Principal.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserEmail returns the email of the user principal.
func UserEmail(ctx context.Context) (string, error) {
	p, ok := GetPrincipal(ctx)
	if !ok || !p.IsUser() || p.Email == "" {
		return "", ErrNoPrincipal
	}

	return p.Email, nil
}

// NewUserContext creates context with User principal.
func NewUserContext(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, principalKey{}, Principal{
		Type:  PrincipalTypeUser,
		Email: email,
	})
}

// NewSystemContext creates context with System principal.
func NewSystemContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalKey{}, Principal{Type: PrincipalTypeSystem})
}
