package domain

import (
	"errors"
	"time"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRefused  RequestStatus = "refused"
	RequestStatusExpired  RequestStatus = "expired"
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionRefuse Decision = "refuse"
)

// Entitlement is the answer to "may this email download right now?".
type Entitlement string

const (
	EntitlementNone    Entitlement = "none"
	EntitlementGranted Entitlement = "granted"
	EntitlementExpired Entitlement = "expired"
)

var (
	ErrValidation        = errors.New("all request fields are required")
	ErrNotFound          = errors.New("access request not found")
	ErrInvalidTransition = errors.New("access request is not pending")
)

// AccessRequest is one download-access submission. Records are never
// deleted; the ledger keeps full history for the audit export.
type AccessRequest struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Organization string        `json:"organization"`
	Email        string        `json:"email"`
	Reason       string        `json:"reason"`
	Status       RequestStatus `json:"status"`
	GrantToken   string        `json:"grant_token,omitempty"`
	DecidedAt    *time.Time    `json:"decided_at,omitempty"`
}

func (r *AccessRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// Decided reports whether an administrator has acted on the request.
// Expired requests were accepted once, so they count as decided.
func (r *AccessRequest) Decided() bool {
	switch r.Status {
	case RequestStatusAccepted, RequestStatusRefused, RequestStatusExpired:
		return true
	}
	return false
}

// EntitlementResult carries the outcome of an entitlement check.
// Request is the winning accepted request when State is granted, or the
// most recent expired one when State is expired; nil otherwise.
type EntitlementResult struct {
	State     Entitlement    `json:"state"`
	Request   *AccessRequest `json:"request,omitempty"`
	Remaining time.Duration  `json:"-"`
}
