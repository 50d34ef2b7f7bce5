package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/nriit/facultypubs/internal/server/db"
)

var (
	ErrInvalidJWT       = errors.New("invalid jwt token")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateTitle   = errors.New("duplicate entry: publication with this title already exists")
	ErrNotFound         = errors.New("publication not found")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("store unavailable, please try again later")
)

// ValidationError reports a malformed field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Kind is the machine-checkable error category.
type Kind string

const (
	KindNone             Kind = ""
	KindValidation       Kind = "ValidationError"
	KindDuplicateTitle   Kind = "DuplicateTitle"
	KindNotFound         Kind = "NotFound"
	KindForbidden        Kind = "Forbidden"
	KindStoreUnavailable Kind = "StoreUnavailable"
	KindUnauthenticated  Kind = "Unauthenticated"
	KindCanceled         Kind = "Canceled"
)

// KindOf classifies err. Unknown errors are reported as StoreUnavailable.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicateTitle):
		return KindDuplicateTitle
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidJWT):
		return KindUnauthenticated
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindStoreUnavailable
	}
}

// storeError translates a store failure into the service taxonomy.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrDuplicateTitle, err)
	case errors.Is(err, db.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}
