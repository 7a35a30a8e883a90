// Package memory holds the ledger in process memory. It mirrors the
// postgres repository's semantics for single-process deployments and
// doubles as the repository used by service tests. State is lost on
// restart and is not shared across processes.
package memory

import (
	"context"
	"sync"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/repository"
)

type accessRequestRepository struct {
	mu   sync.RWMutex
	reqs []domain.AccessRequest
	byID map[string]int
}

func NewAccessRequestRepository() repository.AccessRequestRepository {
	return &accessRequestRepository{byID: make(map[string]int)}
}

func (r *accessRequestRepository) Create(ctx context.Context, req *domain.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[req.ID] = len(r.reqs)
	r.reqs = append(r.reqs, copyRequest(req))
	return nil
}

func (r *accessRequestRepository) GetByID(ctx context.Context, id string) (*domain.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	req := copyRequest(&r.reqs[idx])
	return &req, nil
}

func (r *accessRequestRepository) Update(ctx context.Context, req *domain.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	r.reqs[idx] = copyRequest(req)
	return nil
}

func (r *accessRequestRepository) UpdateStatusIf(ctx context.Context, id string, from domain.RequestStatus, req *domain.AccessRequest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.reqs[idx].Status != from {
		return false, nil
	}
	r.reqs[idx] = copyRequest(req)
	return true, nil
}

func (r *accessRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.AccessRequest, error) {
	return r.filter(func(req *domain.AccessRequest) bool {
		return req.Status == status
	}), nil
}

func (r *accessRequestRepository) ListByEmail(ctx context.Context, email string) ([]domain.AccessRequest, error) {
	return r.filter(func(req *domain.AccessRequest) bool {
		return req.Email == email
	}), nil
}

func (r *accessRequestRepository) ListDecided(ctx context.Context) ([]domain.AccessRequest, error) {
	return r.filter(func(req *domain.AccessRequest) bool {
		return req.Status == domain.RequestStatusAccepted || req.Status == domain.RequestStatusRefused
	}), nil
}

// filter returns copies in insertion order.
func (r *accessRequestRepository) filter(keep func(*domain.AccessRequest) bool) []domain.AccessRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.AccessRequest
	for i := range r.reqs {
		if keep(&r.reqs[i]) {
			out = append(out, copyRequest(&r.reqs[i]))
		}
	}
	return out
}

func copyRequest(req *domain.AccessRequest) domain.AccessRequest {
	dup := *req
	if req.DecidedAt != nil {
		t := *req.DecidedAt
		dup.DecidedAt = &t
	}
	return dup
}
