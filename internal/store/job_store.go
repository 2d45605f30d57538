package store

import (
	"context"

	"github.com/RezaEskandarii/jobboard/internal/models"
	"github.com/RezaEskandarii/jobboard/internal/state"
)

// AllTeams is the team filter value that disables filtering.
const AllTeams = "all"

// JobStore defines the interface for managing job postings in DB.
type JobStore interface {
	// CreateJob validates a submission and stores it as a pending job. Returns the new job's ID.
	CreateJob(ctx context.Context, submission models.JobSubmission) (int64, error)

	// ListApprovedJobs returns the publicly visible jobs, optionally limited to one team.
	// An empty team or AllTeams lists every team.
	ListApprovedJobs(ctx context.Context, team string) ([]models.PublicJob, error)

	// GetJob returns the full row or an error wrapping custom_errors.ErrNotFound.
	GetJob(ctx context.Context, jobID int64) (*models.Job, error)

	// UpdateStatus moves a job to approved or rejected.
	UpdateStatus(ctx context.Context, jobID int64, status state.JobStatus) error

	// UpdatePayment records the outcome of an external payment.
	UpdatePayment(ctx context.Context, jobID int64, paymentStatus state.PaymentStatus, paymentIntentID string) error

	DeleteJob(ctx context.Context, jobID int64) error

	// ListAllJobs returns every job, newest first.
	ListAllJobs(ctx context.Context) ([]models.Job, error)

	// ListPendingJobs returns jobs awaiting moderation, newest first.
	ListPendingJobs(ctx context.Context) ([]models.Job, error)

	CountJobsGroupedByStatus(ctx context.Context) (map[state.JobStatus]int, error)
}
