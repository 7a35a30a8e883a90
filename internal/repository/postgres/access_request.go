package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/repository"
)

type accessRequestRepository struct {
	db *sql.DB
}

func NewAccessRequestRepository(db *sql.DB) repository.AccessRequestRepository {
	return &accessRequestRepository{db: db}
}

const requestColumns = `id, nom, structure, email, raison, statut, token, timestamp`

func (r *accessRequestRepository) Create(ctx context.Context, req *domain.AccessRequest) error {
	query := `INSERT INTO demandes (` + requestColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.Name, req.Organization, req.Email, req.Reason,
		req.Status, nullString(req.GrantToken), nullEpoch(req.DecidedAt))
	return err
}

func (r *accessRequestRepository) GetByID(ctx context.Context, id string) (*domain.AccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM demandes WHERE id = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *accessRequestRepository) Update(ctx context.Context, req *domain.AccessRequest) error {
	query := `UPDATE demandes SET statut = $1, token = $2, timestamp = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query,
		req.Status, nullString(req.GrantToken), nullEpoch(req.DecidedAt), req.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accessRequestRepository) UpdateStatusIf(ctx context.Context, id string, from domain.RequestStatus, req *domain.AccessRequest) (bool, error) {
	query := `UPDATE demandes SET statut = $1, token = $2, timestamp = $3
	          WHERE id = $4 AND statut = $5`
	res, err := r.db.ExecContext(ctx, query,
		req.Status, nullString(req.GrantToken), nullEpoch(req.DecidedAt), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *accessRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.AccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM demandes WHERE statut = $1`
	return r.list(ctx, query, status)
}

func (r *accessRequestRepository) ListByEmail(ctx context.Context, email string) ([]domain.AccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM demandes WHERE email = $1`
	return r.list(ctx, query, email)
}

func (r *accessRequestRepository) ListDecided(ctx context.Context) ([]domain.AccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM demandes
	          WHERE statut IN ($1, $2) ORDER BY timestamp`
	return r.list(ctx, query, domain.RequestStatusAccepted, domain.RequestStatusRefused)
}

func (r *accessRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.AccessRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.AccessRequest, error) {
	var (
		req   domain.AccessRequest
		token sql.NullString
		epoch sql.NullFloat64
	)
	err := row.Scan(&req.ID, &req.Name, &req.Organization, &req.Email,
		&req.Reason, &req.Status, &token, &epoch)
	if err != nil {
		return nil, err
	}
	req.GrantToken = token.String
	if epoch.Valid {
		t := epochToTime(epoch.Float64)
		req.DecidedAt = &t
	}
	return &req, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullEpoch(t *time.Time) sql.NullFloat64 {
	if t == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(t.UnixNano()) / 1e9, Valid: true}
}

func epochToTime(epoch float64) time.Time {
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
