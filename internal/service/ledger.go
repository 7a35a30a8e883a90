package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/logger"
	"github.com/langouL/meteopad/internal/repository"
)

const auditTimeLayout = "2006-01-02 15:04:05"

type ledgerService struct {
	repo     repository.AccessRequestRepository
	emailSvc EmailService
	window   time.Duration
	now      func() time.Time
}

// NewLedgerService builds the ledger over the given repository. window
// is how long an accepted grant stays downloadable. emailSvc may be nil
// to disable decision notifications. clock may be nil; tests inject one.
func NewLedgerService(repo repository.AccessRequestRepository, emailSvc EmailService, window time.Duration, clock func() time.Time) LedgerService {
	if clock == nil {
		clock = time.Now
	}
	return &ledgerService{
		repo:     repo,
		emailSvc: emailSvc,
		window:   window,
		now:      clock,
	}
}

func (s *ledgerService) Submit(ctx context.Context, name, organization, email, reason string) (*domain.AccessRequest, error) {
	var missing []string
	for field, value := range map[string]string{
		"name":         name,
		"organization": organization,
		"email":        email,
		"reason":       reason,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	req := &domain.AccessRequest{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Organization: strings.TrimSpace(organization),
		Email:        strings.TrimSpace(email),
		Reason:       strings.TrimSpace(reason),
		Status:       domain.RequestStatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to record access request: %w", err)
	}
	logger.Info("Access request submitted", "id", req.ID, "email", req.Email)
	return req, nil
}

func (s *ledgerService) ListPending(ctx context.Context) ([]domain.AccessRequest, error) {
	return s.repo.ListByStatus(ctx, domain.RequestStatusPending)
}

func (s *ledgerService) Decide(ctx context.Context, id string, decision domain.Decision) (*domain.AccessRequest, error) {
	if decision != domain.DecisionAccept && decision != domain.DecisionRefuse {
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrInvalidTransition, id, req.Status)
	}

	now := s.now()
	req.DecidedAt = &now
	if decision == domain.DecisionAccept {
		req.Status = domain.RequestStatusAccepted
		req.GrantToken = uuid.NewString()
	} else {
		req.Status = domain.RequestStatusRefused
	}

	// Guarded on status=pending so a concurrent administrator cannot
	// decide the same request twice.
	ok, err := s.repo.UpdateStatusIf(ctx, id, domain.RequestStatusPending, req)
	if err != nil {
		return nil, fmt.Errorf("failed to persist decision: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s was decided concurrently", domain.ErrInvalidTransition, id)
	}

	logger.Info("Access request decided", "id", req.ID, "email", req.Email, "status", req.Status)

	if s.emailSvc != nil {
		windowSeconds := int(s.window / time.Second)
		if err := s.emailSvc.SendDecisionNotification(ctx, req.Email, req.Name, decision, windowSeconds); err != nil {
			logger.Warn("Failed to send decision notification", "id", req.ID, "email", req.Email, "error", err)
		}
	}
	return req, nil
}

func (s *ledgerService) CheckEntitlement(ctx context.Context, email string) (*domain.EntitlementResult, error) {
	reqs, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests for %s: %w", email, err)
	}

	var accepted, expired *domain.AccessRequest
	for i := range reqs {
		req := &reqs[i]
		switch req.Status {
		case domain.RequestStatusAccepted:
			if req.DecidedAt == nil {
				continue
			}
			if accepted == nil || req.DecidedAt.After(*accepted.DecidedAt) {
				accepted = req
			}
		case domain.RequestStatusExpired:
			if expired == nil || laterDecision(req, expired) {
				expired = req
			}
		}
	}

	if accepted == nil {
		if expired != nil {
			return &domain.EntitlementResult{State: domain.EntitlementExpired, Request: expired}, nil
		}
		return &domain.EntitlementResult{State: domain.EntitlementNone}, nil
	}

	elapsed := s.now().Sub(*accepted.DecidedAt)
	if elapsed <= s.window {
		return &domain.EntitlementResult{
			State:     domain.EntitlementGranted,
			Request:   accepted,
			Remaining: s.window - elapsed,
		}, nil
	}

	// Grant is stale: expire it now. DecidedAt stays at the decision
	// moment and the grant token is kept for the record.
	accepted.Status = domain.RequestStatusExpired
	ok, err := s.repo.UpdateStatusIf(ctx, accepted.ID, domain.RequestStatusAccepted, accepted)
	if err != nil {
		return nil, fmt.Errorf("failed to expire grant %s: %w", accepted.ID, err)
	}
	if ok {
		logger.Info("Grant expired", "id", accepted.ID, "email", email)
	}
	return &domain.EntitlementResult{State: domain.EntitlementExpired, Request: accepted}, nil
}

func (s *ledgerService) ExportAuditLog(ctx context.Context) ([]byte, error) {
	reqs, err := s.repo.ListDecided(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load decided requests: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"nom", "email", "structure", "raison", "statut", "Horodatage"}); err != nil {
		return nil, err
	}
	for i := range reqs {
		req := &reqs[i]
		stamp := ""
		if req.DecidedAt != nil {
			stamp = req.DecidedAt.Local().Format(auditTimeLayout)
		}
		if err := w.Write([]string{req.Name, req.Email, req.Organization, req.Reason, string(req.Status), stamp}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func laterDecision(a, b *domain.AccessRequest) bool {
	if a.DecidedAt == nil {
		return false
	}
	if b.DecidedAt == nil {
		return true
	}
	return a.DecidedAt.After(*b.DecidedAt)
}
