package biz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nriit/facultypubs/internal/authz"
	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/server/db"
	"github.com/nriit/facultypubs/internal/server/db/dbtest"
)

const (
	owner = "owner@nriit.edu.in"
	other = "other@nriit.edu.in"
	admin = "admin@nriit.edu.in"
)

type testEnv struct {
	client *db.Client
	store  *db.PublicationRepo
	audit  *memoryAuditStore
	svc    *PublicationService
}

func newTestEnv(t *testing.T, cfg PublicationsConfig) *testEnv {
	t.Helper()

	client := dbtest.Open(t)
	admins := db.NewAdminRepo(client)
	_, err := admins.Seed(context.Background(), []string{admin})
	require.NoError(t, err)

	auditStore := &memoryAuditStore{}
	store := db.NewPublicationRepo(client)

	svc := &PublicationService{
		AbstractService: &AbstractService{db: client},
		store:           store,
		oracle:          authz.NewOracle(admins, nil),
		audit:           newTestAudit(t, auditStore, 64),
		validator:       fixedValidator(cfg.AllowedEmailDomains...),
		ownerPolicy:     cfg.OwnerPolicy,
	}

	return &testEnv{client: client, store: store, audit: auditStore, svc: svc}
}

func (e *testEnv) auditDetails(t *testing.T, n int) []string {
	t.Helper()

	require.Eventually(t, func() bool { return len(e.audit.snapshot()) >= n }, time.Second, 10*time.Millisecond)

	return lo.Map(e.audit.snapshot(), func(entry objects.AuditEntry, _ int) string {
		return string(entry.Action) + " " + entry.ActorEmail + " " + entry.Details
	})
}

func newPublication(title string) objects.Publication {
	return objects.Publication{
		PublicationType: "journal paper",
		MainAuthor:      "K. Lakshmi",
		Title:           title,
		Email:           owner,
		Phone:           "9876543210",
		Dept:            "CSE",
		Journal:         "IEEE Access",
		Year:            lo.ToPtr(2023),
		Pages:           "100-112",
		UGCApproved:     "yes",
	}
}

func (e *testEnv) mustCreate(t *testing.T, title string) objects.Publication {
	t.Helper()

	pub, err := e.svc.Create(context.Background(), owner, newPublication(title))
	require.NoError(t, err)

	return pub
}

func TestPublicationService_Create(t *testing.T) {
	env := newTestEnv(t, PublicationsConfig{})
	ctx := context.Background()

	pub := env.mustCreate(t, "  Deep Learning for Crops ")
	assert.NotZero(t, pub.ID)
	assert.Equal(t, "Deep Learning for Crops", pub.Title)
	assert.Equal(t, objects.PublicationTypeJournal, pub.PublicationType)
	assert.Equal(t, objects.UGCApprovalYes, pub.UGCApproved)

	stored, err := env.store.GetByID(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, pub, *stored)

	assert.Equal(t, []string{"CREATE owner@nriit.edu.in Created publication: Deep Learning for Crops"}, env.auditDetails(t, 1))
}

func TestPublicationService_CreateDuplicateTitle(t *testing.T) {
	env := newTestEnv(t, PublicationsConfig{})
	env.mustCreate(t, "Same Title")

	dup := newPublication("Same Title")
	dup.Email = other

	_, err := env.svc.Create(context.Background(), other, dup)
	require.ErrorIs(t, err, ErrDuplicateTitle)
	assert.Equal(t, KindDuplicateTitle, KindOf(err))

	all, err := env.svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPublicationService_ConcurrentCreateSameTitle(t *testing.T) {
	env := newTestEnv(t, PublicationsConfig{})

	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		kinds     []Kind
	)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := env.svc.Create(context.Background(), owner, newPublication("Race"))

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				succeeded++
				return
			}

			kinds = append(kinds, KindOf(err))
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Len(t, kinds, workers-1)

	for _, k := range kinds {
		assert.Equal(t, KindDuplicateTitle, k)
	}

	all, err := env.svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPublicationService_CreateValidation(t *testing.T) {
	env := newTestEnv(t, PublicationsConfig{AllowedEmailDomains: []string{"nriit.edu.in"}})

	tests := map[string]func(p *objects.Publication){
		"phone": func(p *objects.Publication) { p.Phone = "1234567890" },
		"year":  func(p *objects.Publication) { p.Year = lo.ToPtr(1899) },
		"pages": func(p *objects.Publication) { p.Pages = "100,112" },
		"email": func(p *objects.Publication) { p.Email = "owner@gmail.com" },
		"title": func(p *objects.Publication) { p.Title = " " },
	}
	for field, mutate := range tests {
		t.Run(field, func(t *testing.T) {
			pub := newPublication("Validation " + field)
			mutate(&pub)

			_, err := env.svc.Create(context.Background(), owner, pub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	all, err := env.svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPublicationService_CreateOwnerPolicy(t *testing.T) {
	t.Run("client keeps the payload owner", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{OwnerPolicy: OwnerPolicyClient})

		pub, err := env.svc.Create(context.Background(), other, newPublication("Client Owner"))
		require.NoError(t, err)
		assert.Equal(t, owner, pub.Email)
	})

	t.Run("principal overrides the payload owner", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{OwnerPolicy: OwnerPolicyPrincipal})

		pub, err := env.svc.Create(context.Background(), other, newPublication("Principal Owner"))
		require.NoError(t, err)
		assert.Equal(t, other, pub.Email)
	})
}

func TestPublicationService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner replaces every field", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		pub := env.mustCreate(t, "Original")

		replacement := objects.Publication{ID: pub.ID, Title: "Renamed", Email: owner}
		_, err := env.svc.Update(ctx, owner, replacement)
		require.NoError(t, err)

		stored, err := env.store.GetByID(ctx, pub.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.Title)
		assert.Empty(t, stored.Journal)
		assert.Empty(t, stored.Phone)
		assert.Nil(t, stored.Year)

		assert.Contains(t, env.auditDetails(t, 2), "UPDATE owner@nriit.edu.in Updated publication ID: 1")
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		pub := env.mustCreate(t, "Owned")

		changed := pub
		changed.Journal = "Hijacked"

		_, err := env.svc.Update(ctx, other, changed)
		require.ErrorIs(t, err, ErrForbidden)

		stored, err := env.store.GetByID(ctx, pub.ID)
		require.NoError(t, err)
		assert.Equal(t, "IEEE Access", stored.Journal)
	})

	t.Run("owner match is case-sensitive", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		pub := env.mustCreate(t, "Case")

		_, err := env.svc.Update(ctx, "OWNER@nriit.edu.in", pub)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin may edit and reassign the owner", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		pub := env.mustCreate(t, "Admin Edit")

		pub.Email = other
		_, err := env.svc.Update(ctx, "ADMIN@nriit.edu.in", pub)
		require.NoError(t, err)

		stored, err := env.store.GetByID(ctx, pub.ID)
		require.NoError(t, err)
		assert.Equal(t, other, stored.Email)

		// The previous owner lost edit rights.
		_, err = env.svc.Update(ctx, owner, pub)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing record", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})

		pub := newPublication("Ghost")
		pub.ID = 999

		_, err := env.svc.Update(ctx, admin, pub)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("renaming onto an existing title", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		env.mustCreate(t, "Taken")
		pub := env.mustCreate(t, "Free")

		pub.Title = "Taken"
		_, err := env.svc.Update(ctx, owner, pub)
		require.ErrorIs(t, err, ErrDuplicateTitle)
	})

	t.Run("id is required", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})

		_, err := env.svc.Update(ctx, owner, newPublication("No ID"))
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestPublicationService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, PublicationsConfig{})

	mine := env.mustCreate(t, "Mine")
	theirs := env.mustCreate(t, "Theirs")

	require.ErrorIs(t, env.svc.Delete(ctx, other, mine.ID), ErrForbidden)
	require.NoError(t, env.svc.Delete(ctx, owner, mine.ID))
	require.ErrorIs(t, env.svc.Delete(ctx, owner, mine.ID), ErrNotFound)
	require.NoError(t, env.svc.Delete(ctx, admin, theirs.ID))

	all, err := env.svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	details := env.auditDetails(t, 4)
	assert.Contains(t, details, "DELETE owner@nriit.edu.in Deleted publication ID: 1")
	assert.Contains(t, details, "DELETE admin@nriit.edu.in Deleted publication ID: 2")
}

func TestPublicationService_BatchUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is forbidden and nothing changes", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		pub := env.mustCreate(t, "Batch Forbidden")

		_, err := env.svc.BatchUpdate(ctx, owner, []objects.PublicationPatch{{ID: pub.ID, Journal: lo.ToPtr("X")}})
		require.ErrorIs(t, err, ErrForbidden)

		stored, err := env.store.GetByID(ctx, pub.ID)
		require.NoError(t, err)
		assert.Equal(t, "IEEE Access", stored.Journal)
	})

	t.Run("merges provided fields only", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		first := env.mustCreate(t, "First")
		second := env.mustCreate(t, "Second")

		count, err := env.svc.BatchUpdate(ctx, admin, []objects.PublicationPatch{
			{ID: first.ID, Journal: lo.ToPtr("Springer")},
			{ID: second.ID, Year: lo.ToPtr(2020), UGCApproved: lo.ToPtr(objects.UGCApproval("no"))},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		got, err := env.store.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Springer", got.Journal)
		assert.Equal(t, 2023, *got.Year)
		assert.Equal(t, "First", got.Title)

		got, err = env.store.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, 2020, *got.Year)
		assert.Equal(t, objects.UGCApprovalNo, got.UGCApproved)
		assert.Equal(t, "IEEE Access", got.Journal)

		details := env.auditDetails(t, 3)
		assert.Equal(t, "BATCH_UPDATE admin@nriit.edu.in Batch updated 2 entries", details[2])
	})

	t.Run("missing id rolls back the whole batch", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		pub := env.mustCreate(t, "Atomic")

		_, err := env.svc.BatchUpdate(ctx, admin, []objects.PublicationPatch{
			{ID: pub.ID, Journal: lo.ToPtr("Changed")},
			{ID: 999, Journal: lo.ToPtr("Nope")},
		})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "row 2")

		stored, err := env.store.GetByID(ctx, pub.ID)
		require.NoError(t, err)
		assert.Equal(t, "IEEE Access", stored.Journal)
	})

	t.Run("invalid merged row rolls back", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		a := env.mustCreate(t, "A")
		b := env.mustCreate(t, "B")

		_, err := env.svc.BatchUpdate(ctx, admin, []objects.PublicationPatch{
			{ID: a.ID, Pages: lo.ToPtr("1-2")},
			{ID: b.ID, Title: lo.ToPtr("A")},
		})
		require.ErrorIs(t, err, ErrDuplicateTitle)

		stored, err := env.store.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "100-112", stored.Pages)
	})

	t.Run("empty batch succeeds", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})

		count, err := env.svc.BatchUpdate(ctx, admin, nil)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("cancellation mid batch rolls back", func(t *testing.T) {
		env := newTestEnv(t, PublicationsConfig{})
		a := env.mustCreate(t, "Cancel A")
		b := env.mustCreate(t, "Cancel B")

		cancelCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		env.svc.store = &cancelAfterUpdate{PublicationStore: env.store, cancel: cancel}

		_, err := env.svc.BatchUpdate(cancelCtx, admin, []objects.PublicationPatch{
			{ID: a.ID, Journal: lo.ToPtr("One")},
			{ID: b.ID, Journal: lo.ToPtr("Two")},
		})
		require.ErrorIs(t, err, context.Canceled)

		for _, id := range []int64{a.ID, b.ID} {
			stored, err := env.store.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "IEEE Access", stored.Journal)
		}
	})
}

// cancelAfterUpdate cancels the caller's context once the first row was written.
type cancelAfterUpdate struct {
	PublicationStore

	cancel context.CancelFunc
}

func (s *cancelAfterUpdate) UpdateFields(ctx context.Context, patch objects.PublicationPatch) error {
	err := s.PublicationStore.UpdateFields(ctx, patch)
	s.cancel()

	return err
}

func TestPublicationService_StoreUnavailable(t *testing.T) {
	env := newTestEnv(t, PublicationsConfig{})
	require.NoError(t, env.client.Close())

	_, err := env.svc.Create(context.Background(), owner, newPublication("Down"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.Equal(t, KindStoreUnavailable, KindOf(err))

	_, err = env.svc.GetAll(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	// Administrator checks fail closed.
	_, err = env.svc.BatchUpdate(context.Background(), admin, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

// vanishingStore deletes the record right after it is read, inside the caller's transaction.
type vanishingStore struct {
	*db.PublicationRepo
}

func (s vanishingStore) GetByID(ctx context.Context, id int64) (*objects.Publication, error) {
	p, err := s.PublicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.PublicationRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	return p, nil
}

func TestPublicationService_UpdateOfVanishedRecord(t *testing.T) {
	env := newTestEnv(t, PublicationsConfig{})
	created := env.mustCreate(t, "Short Lived")
	env.auditDetails(t, 1)

	env.svc.store = vanishingStore{PublicationRepo: env.store}

	updated := created
	updated.Journal = "Springer"

	_, err := env.svc.Update(context.Background(), owner, updated)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	assert.Never(t, func() bool {
		return lo.ContainsBy(env.audit.snapshot(), func(e objects.AuditEntry) bool {
			return e.Action == objects.AuditActionUpdate
		})
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestPublicationService_UpdateUsesCurrentOwner(t *testing.T) {
	env := newTestEnv(t, PublicationsConfig{})
	created := env.mustCreate(t, "Owned")

	ctx := context.Background()

	// Ownership moves away before the owner's edit lands.
	require.NoError(t, env.store.UpdateFields(ctx, objects.PublicationPatch{ID: created.ID, Email: lo.ToPtr(other)}))

	_, err := env.svc.Update(ctx, owner, created)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := env.store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, other, got.Email)
}
