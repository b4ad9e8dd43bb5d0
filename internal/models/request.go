package models

import "time"

// Request status values derived from the nullable acceptance flag.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// Request is an application to become a moderator.
// Accepted is nil while pending, true once accepted and false once rejected.
type Request struct {
	ID           int64     `json:"id"`
	Introduction string    `json:"introduction"`
	About        string    `json:"about"`
	ApplicantID  int64     `json:"applicant_id"`
	Accepted     *bool     `json:"is_request_accepted"`
	CreatedAt    time.Time `json:"created_at"`
}

// Status returns pending, accepted or rejected.
func (r *Request) Status() string {
	switch {
	case r.Accepted == nil:
		return RequestPending
	case *r.Accepted:
		return RequestAccepted
	default:
		return RequestRejected
	}
}

// IsAccepted returns true if the request was accepted.
func (r *Request) IsAccepted() bool {
	return r.Accepted != nil && *r.Accepted
}

// IsPending returns true if no decision has been made.
func (r *Request) IsPending() bool {
	return r.Accepted == nil
}
