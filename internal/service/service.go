package service

import (
	"context"
	"time"

	"github.com/langouL/meteopad/internal/domain"
)

// LedgerService is the download-access ledger: request intake,
// administrator decisions, time-boxed entitlement checks, and the
// decision-history export.
type LedgerService interface {
	Submit(ctx context.Context, name, organization, email, reason string) (*domain.AccessRequest, error)
	ListPending(ctx context.Context) ([]domain.AccessRequest, error)
	Decide(ctx context.Context, id string, decision domain.Decision) (*domain.AccessRequest, error)

	// CheckEntitlement is a query with a side effect: a stale grant is
	// marked expired during the call. There is no background sweep.
	CheckEntitlement(ctx context.Context, email string) (*domain.EntitlementResult, error)

	ExportAuditLog(ctx context.Context) ([]byte, error)
}

// ObservationService serves the dashboard's observation snapshot.
type ObservationService interface {
	Refresh(ctx context.Context) error
	Latest(n int) []domain.StationSummary
	Stations() []domain.StationStatus
	Series(station, param string, from, to time.Time) ([]domain.SeriesPoint, error)
	Parameters() []string
	ExportCSV(from, to time.Time) ([]byte, error)
}

// EmailService notifies requesters about administrator decisions.
type EmailService interface {
	SendDecisionNotification(ctx context.Context, email, name string, decision domain.Decision, windowSeconds int) error
}
