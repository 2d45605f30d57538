package state

import "time"

// ListingTTL is how long an approved posting stays publicly listed.
const ListingTTL = 30 * 24 * time.Hour

type JobStatus string

const (
	StatusPending  JobStatus = "pending"
	StatusApproved JobStatus = "approved"
	StatusRejected JobStatus = "rejected"
)

func (s JobStatus) String() string {
	return string(s)
}

func (s JobStatus) IsValid() bool {
	for _, status := range AllStatuses {
		if status == s {
			return true
		}
	}
	return false
}

var AllStatuses = []JobStatus{
	StatusPending,
	StatusApproved,
	StatusRejected,
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	for _, status := range AllPaymentStatuses {
		if status == s {
			return true
		}
	}
	return false
}

var AllPaymentStatuses = []PaymentStatus{
	PaymentPending,
	PaymentPaid,
	PaymentFailed,
}

type Transition struct {
	From JobStatus
	To   JobStatus
}

// ValidTransitions lists every status change a job may go through.
// Re-approving refreshes the listing window, re-rejecting is a no-op.
var ValidTransitions = []Transition{
	{From: StatusPending, To: StatusApproved},
	{From: StatusPending, To: StatusRejected},
	{From: StatusApproved, To: StatusApproved},
	{From: StatusRejected, To: StatusRejected},
}

func IsValidTransition(from, to JobStatus) bool {
	for _, t := range ValidTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// SourcesFor returns the statuses a job may be in when moving to 'to'.
func SourcesFor(to JobStatus) []JobStatus {
	var from []JobStatus
	for _, t := range ValidTransitions {
		if t.To == to {
			from = append(from, t.From)
		}
	}
	return from
}

// ExpiresAt returns the end of the listing window starting at now.
func ExpiresAt(now time.Time) time.Time {
	return now.Add(ListingTTL)
}

// IsListed reports whether a job with the given status and expiry is publicly visible at now.
// A nil expiry never expires.
func IsListed(status JobStatus, expiresAt *time.Time, now time.Time) bool {
	if status != StatusApproved {
		return false
	}
	return expiresAt == nil || expiresAt.After(now)
}
