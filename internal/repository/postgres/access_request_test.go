package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/repository/postgres"
)

func TestAccessRequestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccessRequestRepository(db)
	ctx := context.Background()

	t.Run("Pending", func(t *testing.T) {
		req := &domain.AccessRequest{
			ID:           "r1",
			Name:         "Amina",
			Organization: "PAD",
			Email:        "a@x.com",
			Reason:       "audit",
			Status:       domain.RequestStatusPending,
		}

		mock.ExpectExec("INSERT INTO demandes").
			WithArgs("r1", "Amina", "PAD", "a@x.com", "audit",
				domain.RequestStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, req)
		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRequestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccessRequestRepository(db)
	ctx := context.Background()

	columns := []string{"id", "nom", "structure", "email", "raison", "statut", "token", "timestamp"}

	t.Run("Found", func(t *testing.T) {
		epoch := float64(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix())
		mock.ExpectQuery("SELECT (.+) FROM demandes WHERE id").
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("r1", "Amina", "PAD", "a@x.com", "audit", "accepted", "tok", epoch))

		req, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusAccepted, req.Status)
		assert.Equal(t, "tok", req.GrantToken)
		require.NotNil(t, req.DecidedAt)
		assert.Equal(t, int64(epoch), req.DecidedAt.Unix())
	})

	t.Run("PendingHasNullDecisionColumns", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM demandes WHERE id").
			WithArgs("r2").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("r2", "Bemba", "Douane", "b@x.com", "stats", "pending", nil, nil))

		req, err := repo.GetByID(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, req.Status)
		assert.Empty(t, req.GrantToken)
		assert.Nil(t, req.DecidedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM demandes WHERE id").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRequestRepository_UpdateStatusIf(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccessRequestRepository(db)
	ctx := context.Background()

	now := time.Now()
	req := &domain.AccessRequest{
		ID:         "r1",
		Status:     domain.RequestStatusAccepted,
		GrantToken: "tok",
		DecidedAt:  &now,
	}

	t.Run("GuardHolds", func(t *testing.T) {
		mock.ExpectExec("UPDATE demandes SET").
			WithArgs(domain.RequestStatusAccepted, sqlmock.AnyArg(), sqlmock.AnyArg(),
				"r1", domain.RequestStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatusIf(ctx, "r1", domain.RequestStatusPending, req)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("GuardFails", func(t *testing.T) {
		mock.ExpectExec("UPDATE demandes SET").
			WithArgs(domain.RequestStatusAccepted, sqlmock.AnyArg(), sqlmock.AnyArg(),
				"r1", domain.RequestStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatusIf(ctx, "r1", domain.RequestStatusPending, req)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRequestRepository_Lists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccessRequestRepository(db)
	ctx := context.Background()

	columns := []string{"id", "nom", "structure", "email", "raison", "statut", "token", "timestamp"}

	t.Run("ListByEmail", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM demandes WHERE email").
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("r1", "Amina", "PAD", "a@x.com", "audit", "refused", nil, 1748779200.0).
				AddRow("r2", "Amina", "PAD", "a@x.com", "again", "pending", nil, nil))

		reqs, err := repo.ListByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, domain.RequestStatusRefused, reqs[0].Status)
		assert.Nil(t, reqs[1].DecidedAt)
	})

	t.Run("ListDecided", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM demandes").
			WithArgs(domain.RequestStatusAccepted, domain.RequestStatusRefused).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("r1", "Amina", "PAD", "a@x.com", "audit", "accepted", "tok", 1748779200.0))

		reqs, err := repo.ListDecided(ctx)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, "tok", reqs[0].GrantToken)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
