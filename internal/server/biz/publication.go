package biz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/authz"
	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/server/db"
)

// PublicationStore is the record store used by the mutation service.
type PublicationStore interface {
	GetByID(ctx context.Context, id int64) (*objects.Publication, error)
	GetByTitle(ctx context.Context, title string) (*objects.Publication, error)
	GetAll(ctx context.Context) ([]objects.Publication, error)
	Insert(ctx context.Context, p objects.Publication) (int64, error)
	Update(ctx context.Context, p objects.Publication) error
	UpdateFields(ctx context.Context, patch objects.PublicationPatch) error
	Delete(ctx context.Context, id int64) error
}

// Authorizer decides whether a principal may change a record.
type Authorizer interface {
	IsAdministrator(ctx context.Context, email string) bool
	Grant(ctx context.Context, principalEmail string) authz.Grant
}

// AuditRecorder receives one entry per successful mutation.
type AuditRecorder interface {
	Record(ctx context.Context, actorEmail string, action objects.AuditAction, details string)
}

type PublicationServiceParams struct {
	fx.In

	Config PublicationsConfig
	DB     *db.Client
	Store  *db.PublicationRepo
	Oracle *authz.Oracle
	Audit  *AuditService
}

func NewPublicationService(params PublicationServiceParams) *PublicationService {
	return &PublicationService{
		AbstractService: &AbstractService{db: params.DB},
		store:           params.Store,
		oracle:          params.Oracle,
		audit:           params.Audit,
		validator:       NewValidator(params.Config.AllowedEmailDomains),
		ownerPolicy:     params.Config.OwnerPolicy,
	}
}

// PublicationService implements the record mutations. Every mutation is authorized
// before the store is changed and audited after it succeeded.
type PublicationService struct {
	*AbstractService

	store       PublicationStore
	oracle      Authorizer
	audit       AuditRecorder
	validator   Validator
	ownerPolicy string
}

// Validator returns the field validator shared with the import pipeline.
func (s *PublicationService) Validator() Validator {
	return s.validator
}

// IsAdmin reports whether the principal is an administrator.
func (s *PublicationService) IsAdmin(ctx context.Context, principal string) bool {
	return s.oracle.IsAdministrator(ctx, principal)
}

// GetAll returns every record. It needs no authorization.
func (s *PublicationService) GetAll(ctx context.Context) ([]objects.Publication, error) {
	pubs, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	return pubs, nil
}

// Create inserts a new record. Titles are unique: the check runs inside the insert
// transaction and the store's unique constraint settles concurrent inserts.
func (s *PublicationService) Create(ctx context.Context, principal string, pub objects.Publication) (objects.Publication, error) {
	pub = normalize(pub)
	pub.ID = 0

	if s.ownerPolicy == OwnerPolicyPrincipal {
		pub.Email = principal
	}

	if err := s.validator.ValidateOwnerEmail(pub.Email); err != nil {
		return objects.Publication{}, err
	}

	if err := s.validator.ValidateRecord(pub); err != nil {
		return objects.Publication{}, err
	}

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.store.GetByTitle(ctx, pub.Title)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %q", ErrDuplicateTitle, pub.Title)
		case !errors.Is(err, db.ErrNotFound):
			return storeError(err)
		}

		id, err := s.store.Insert(ctx, pub)
		if err != nil {
			return storeError(err)
		}

		pub.ID = id

		return nil
	})
	if err != nil {
		return objects.Publication{}, err
	}

	log.Debug(ctx, "publication created", log.Int64("id", pub.ID), log.String("owner", pub.Email))
	s.audit.Record(ctx, principal, objects.AuditActionCreate, "Created publication: "+pub.Title)

	return pub, nil
}

// getForChange reads the record and checks the grant against its stored owner. Callers run it
// in the same transaction as the write so the owner cannot change in between.
func (s *PublicationService) getForChange(ctx context.Context, grant authz.Grant, id int64, verb string) (*objects.Publication, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}

		return nil, storeError(err)
	}

	if !grant.IsAuthorized(existing.Email) {
		return nil, fmt.Errorf("%w: you are not authorized to %s this entry", ErrForbidden, verb)
	}

	return existing, nil
}

// Update replaces every field of the record identified by pub.ID. Owners and
// administrators only.
func (s *PublicationService) Update(ctx context.Context, principal string, pub objects.Publication) (objects.Publication, error) {
	if pub.ID <= 0 {
		return objects.Publication{}, invalid("id", "id is required")
	}

	pub = normalize(pub)

	if err := s.validator.ValidateRecord(pub); err != nil {
		return objects.Publication{}, err
	}

	// The administrator lookup may need its own connection, so it runs before the transaction.
	grant := s.oracle.Grant(ctx, principal)

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.getForChange(ctx, grant, pub.ID, "edit"); err != nil {
			return err
		}

		if err := s.store.Update(ctx, pub); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: id %d", ErrNotFound, pub.ID)
			}

			return storeError(err)
		}

		return nil
	})
	if err != nil {
		return objects.Publication{}, err
	}

	s.audit.Record(ctx, principal, objects.AuditActionUpdate, fmt.Sprintf("Updated publication ID: %d", pub.ID))

	return pub, nil
}

// Delete removes the record. Owners and administrators only.
func (s *PublicationService) Delete(ctx context.Context, principal string, id int64) error {
	grant := s.oracle.Grant(ctx, principal)

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.getForChange(ctx, grant, id, "delete"); err != nil {
			return err
		}

		if err := s.store.Delete(ctx, id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: id %d", ErrNotFound, id)
			}

			return storeError(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, principal, objects.AuditActionDelete, fmt.Sprintf("Deleted publication ID: %d", id))

	return nil
}

// BatchUpdate applies partial updates in order inside one transaction. Fields missing
// from a patch keep their stored value. Any failing row rolls the whole batch back.
// Administrators only; the check happens before the store is touched.
func (s *PublicationService) BatchUpdate(ctx context.Context, principal string, patches []objects.PublicationPatch) (int, error) {
	if !s.oracle.IsAdministrator(ctx, principal) {
		return 0, fmt.Errorf("%w: only admins can perform batch updates", ErrForbidden)
	}

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		for i, patch := range patches {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := s.applyPatch(ctx, patch); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}

		return nil
	})
	if err != nil {
		log.Warn(ctx, "batch update rolled back", log.Int("rows", len(patches)), log.Cause(err))
		return 0, err
	}

	s.audit.Record(ctx, principal, objects.AuditActionBatchUpdate, fmt.Sprintf("Batch updated %d entries", len(patches)))

	return len(patches), nil
}

func (s *PublicationService) applyPatch(ctx context.Context, patch objects.PublicationPatch) error {
	if patch.ID <= 0 {
		return invalid("id", "id is required")
	}

	existing, err := s.store.GetByID(ctx, patch.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, patch.ID)
		}

		return storeError(err)
	}

	patch = normalizePatch(patch)

	if err := s.validator.ValidateRecord(patch.Apply(*existing)); err != nil {
		return err
	}

	return storeError(s.store.UpdateFields(ctx, patch))
}
