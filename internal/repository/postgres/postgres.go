package postgres

import (
	"context"
	"database/sql"

	"github.com/langouL/meteopad/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AccessRequestRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		AccessRequestRepository: NewAccessRequestRepository(db),
	}
}

// EnsureSchema creates the demandes table if it does not exist. The
// decision timestamp is stored as epoch seconds and stays null while
// the request is pending.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS demandes (
			id TEXT PRIMARY KEY,
			nom TEXT NOT NULL,
			structure TEXT NOT NULL,
			email TEXT NOT NULL,
			raison TEXT NOT NULL,
			statut TEXT NOT NULL,
			token TEXT,
			timestamp DOUBLE PRECISION
		)`)
	return err
}
