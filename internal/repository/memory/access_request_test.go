package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/repository/memory"
)

func pendingRequest(id, email string) *domain.AccessRequest {
	return &domain.AccessRequest{
		ID:           id,
		Name:         "Amina",
		Organization: "PAD",
		Email:        email,
		Reason:       "audit",
		Status:       domain.RequestStatusPending,
	}
}

func TestAccessRequestRepository_CreateAndGet(t *testing.T) {
	repo := memory.NewAccessRequestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "a@x.com")))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccessRequestRepository_GetReturnsCopy(t *testing.T) {
	repo := memory.NewAccessRequestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "a@x.com")))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	got.Status = domain.RequestStatusAccepted

	stored, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, stored.Status)
}

func TestAccessRequestRepository_UpdateStatusIf(t *testing.T) {
	repo := memory.NewAccessRequestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "a@x.com")))

	now := time.Now()
	decided := pendingRequest("r1", "a@x.com")
	decided.Status = domain.RequestStatusAccepted
	decided.GrantToken = "tok"
	decided.DecidedAt = &now

	ok, err := repo.UpdateStatusIf(ctx, "r1", domain.RequestStatusPending, decided)
	require.NoError(t, err)
	assert.True(t, ok)

	// Guard now fails: the stored status moved on.
	ok, err = repo.UpdateStatusIf(ctx, "r1", domain.RequestStatusPending, decided)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAccepted, stored.Status)
	assert.Equal(t, "tok", stored.GrantToken)

	_, err = repo.UpdateStatusIf(ctx, "missing", domain.RequestStatusPending, decided)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccessRequestRepository_Lists(t *testing.T) {
	repo := memory.NewAccessRequestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "a@x.com")))
	require.NoError(t, repo.Create(ctx, pendingRequest("r2", "b@x.com")))
	require.NoError(t, repo.Create(ctx, pendingRequest("r3", "a@x.com")))

	now := time.Now()
	refused := pendingRequest("r2", "b@x.com")
	refused.Status = domain.RequestStatusRefused
	refused.DecidedAt = &now
	require.NoError(t, repo.Update(ctx, refused))

	pending, err := repo.ListByStatus(ctx, domain.RequestStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// Insertion order is preserved.
	assert.Equal(t, "r1", pending[0].ID)
	assert.Equal(t, "r3", pending[1].ID)

	byEmail, err := repo.ListByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	decided, err := repo.ListDecided(ctx)
	require.NoError(t, err)
	require.Len(t, decided, 1)
	assert.Equal(t, "r2", decided[0].ID)
}

func TestAccessRequestRepository_ExpiredExcludedFromDecided(t *testing.T) {
	repo := memory.NewAccessRequestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "a@x.com")))

	now := time.Now()
	expired := pendingRequest("r1", "a@x.com")
	expired.Status = domain.RequestStatusExpired
	expired.GrantToken = "tok"
	expired.DecidedAt = &now
	require.NoError(t, repo.Update(ctx, expired))

	decided, err := repo.ListDecided(ctx)
	require.NoError(t, err)
	assert.Empty(t, decided)
}
