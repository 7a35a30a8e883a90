package repository

import (
	"context"

	"github.com/langouL/meteopad/internal/domain"
)

// AccessRequestRepository persists the download-access ledger. All
// implementations return domain.ErrNotFound for unknown ids and must
// make UpdateStatusIf atomic so two administrators cannot both decide
// the same request.
type AccessRequestRepository interface {
	Create(ctx context.Context, req *domain.AccessRequest) error
	GetByID(ctx context.Context, id string) (*domain.AccessRequest, error)
	Update(ctx context.Context, req *domain.AccessRequest) error

	// UpdateStatusIf writes req only if the stored record still has
	// status from. Returns false when the guard fails.
	UpdateStatusIf(ctx context.Context, id string, from domain.RequestStatus, req *domain.AccessRequest) (bool, error)

	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.AccessRequest, error)
	ListByEmail(ctx context.Context, email string) ([]domain.AccessRequest, error)

	// ListDecided returns accepted and refused requests, for the audit
	// export. Pending and expired rows are excluded.
	ListDecided(ctx context.Context) ([]domain.AccessRequest, error)
}
