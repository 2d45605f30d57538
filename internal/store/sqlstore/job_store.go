package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/RezaEskandarii/jobboard/custom_errors"
	"github.com/RezaEskandarii/jobboard/internal/db"
	"github.com/RezaEskandarii/jobboard/internal/logger"
	"github.com/RezaEskandarii/jobboard/internal/models"
	"github.com/RezaEskandarii/jobboard/internal/state"
	"github.com/RezaEskandarii/jobboard/internal/store"
)

const jobColumns = `id, company_name, company_website, company_logo, job_title, job_location,
	job_type, experience_level, remote_onsite, compensation, team,
	application_link, submitter_name, submitter_email, status, payment_status,
	payment_intent_id, created_at, expires_at, approved_at`

// Database is the part of the storage adapter the job store relies on.
type Database interface {
	Execute(ctx context.Context, query string, args ...any) (db.Result, error)
	QueryAll(ctx context.Context, query string, args []any, scan func(db.RowScanner) error) error
	QueryOne(ctx context.Context, query string, args []any, scan func(db.RowScanner) error) (bool, error)
}

type JobStore struct {
	db     Database
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

var _ store.JobStore = (*JobStore)(nil)

// NewJobStore creates a JobStore on top of the storage adapter.
func NewJobStore(database Database, clock clockwork.Clock, logger *zap.SugaredLogger) *JobStore {
	return &JobStore{db: database, clock: clock, logger: logger}
}

func (s *JobStore) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *JobStore) CreateJob(ctx context.Context, submission models.JobSubmission) (int64, error) {
	if err := submission.Validate(); err != nil {
		return 0, err
	}
	sub := submission.Normalize()
	now := s.now()

	res, err := s.db.Execute(ctx, `
		INSERT INTO jobs (
			company_name, company_website, company_logo, job_title, job_location,
			job_type, experience_level, remote_onsite, compensation, team,
			application_link, submitter_name, submitter_email,
			status, payment_status, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		sub.CompanyName,
		sub.CompanyWebsite,
		nullString(sub.Logo()),
		sub.JobTitle,
		sub.JobLocation,
		sub.JobType,
		sub.ExperienceLevel,
		sub.RemoteOnsite,
		sub.Compensation,
		sub.Team,
		sub.ApplicationLink,
		sub.SubmitterName,
		sub.SubmitterEmail,
		state.StatusPending.String(),
		state.PaymentPending.String(),
		now,
		state.ExpiresAt(now),
	)
	if err != nil {
		return 0, errors.Wrap(err, "create job")
	}
	if !res.HasInsertedID || res.InsertedID == 0 {
		return 0, custom_errors.NewStoreError("create job", errors.New("backend returned no id"))
	}

	s.logger.Infow("Job submitted", logger.FieldJobID, res.InsertedID, "team", sub.Team)
	return res.InsertedID, nil
}

func (s *JobStore) ListApprovedJobs(ctx context.Context, team string) ([]models.PublicJob, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status = $1`
	args := []any{state.StatusApproved.String()}

	if team = strings.TrimSpace(team); team != "" && !strings.EqualFold(team, store.AllTeams) {
		// teams are stored lower-cased by CreateJob; SQLite's LOWER only folds ASCII
		query += ` AND team = $2`
		args = append(args, strings.ToLower(team))
	}
	query += ` ORDER BY created_at DESC`

	// expiry is filtered in Go, not in SQL
	now := s.now()
	jobs := []models.PublicJob{}
	err := s.db.QueryAll(ctx, query, args, func(row db.RowScanner) error {
		job, err := scanJob(row)
		if err != nil {
			return err
		}
		if job.IsListed(now) {
			jobs = append(jobs, job.Public())
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list approved jobs")
	}
	return jobs, nil
}

func (s *JobStore) GetJob(ctx context.Context, jobID int64) (*models.Job, error) {
	var job models.Job
	found, err := s.db.QueryOne(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, []any{jobID},
		func(row db.RowScanner) error {
			var err error
			job, err = scanJob(row)
			return err
		})
	if err != nil {
		return nil, errors.Wrapf(err, "get job %d", jobID)
	}
	if !found {
		return nil, errors.Wrapf(custom_errors.ErrNotFound, "job %d", jobID)
	}
	return &job, nil
}

func (s *JobStore) UpdateStatus(ctx context.Context, jobID int64, status state.JobStatus) error {
	if !status.IsValid() {
		return custom_errors.NewValidationError(errors.Newf("unknown status %q", status))
	}
	sources := state.SourcesFor(status)
	if len(sources) == 0 {
		return errors.Wrapf(custom_errors.ErrInvalidTransition, "jobs cannot move to %s", status)
	}

	var query string
	var args []any
	now := s.now()

	switch status {
	case state.StatusApproved:
		query = `UPDATE jobs SET status = $1, approved_at = $2, expires_at = $3 WHERE id = $4`
		args = []any{status.String(), now, state.ExpiresAt(now), jobID}
	default:
		query = `UPDATE jobs SET status = $1 WHERE id = $2`
		args = []any{status.String(), jobID}
	}

	query += ` AND status IN (` + placeholders(len(args)+1, len(sources)) + `)`
	for _, from := range sources {
		args = append(args, from.String())
	}

	res, err := s.db.Execute(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "update job %d status", jobID)
	}

	if res.RowsAffected == 0 {
		job, err := s.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		if state.IsValidTransition(job.Status, status) {
			// the job moved between the update and the lookup
			return errors.Wrapf(custom_errors.ErrInvalidTransition, "job %d changed concurrently", jobID)
		}
		return errors.Wrapf(custom_errors.ErrInvalidTransition, "job %d is %s, cannot move to %s", jobID, job.Status, status)
	}

	s.logger.Infow("Job status changed", logger.FieldJobID, jobID, logger.FieldStatus, status.String())
	return nil
}

func (s *JobStore) UpdatePayment(ctx context.Context, jobID int64, paymentStatus state.PaymentStatus, paymentIntentID string) error {
	if !paymentStatus.IsValid() {
		return custom_errors.NewValidationError(errors.Newf("unknown payment status %q", paymentStatus))
	}

	intent := strings.TrimSpace(paymentIntentID)
	res, err := s.db.Execute(ctx,
		`UPDATE jobs SET payment_status = $1, payment_intent_id = $2 WHERE id = $3`,
		paymentStatus.String(), nullString(&intent), jobID,
	)
	if err != nil {
		return errors.Wrapf(err, "update job %d payment", jobID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(custom_errors.ErrNotFound, "job %d", jobID)
	}

	s.logger.Infow("Job payment updated", logger.FieldJobID, jobID, "payment_status", paymentStatus.String())
	return nil
}

func (s *JobStore) DeleteJob(ctx context.Context, jobID int64) error {
	res, err := s.db.Execute(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return errors.Wrapf(err, "delete job %d", jobID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(custom_errors.ErrNotFound, "job %d", jobID)
	}

	s.logger.Infow("Job deleted", logger.FieldJobID, jobID)
	return nil
}

func (s *JobStore) ListAllJobs(ctx context.Context) ([]models.Job, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`, nil)
}

func (s *JobStore) ListPendingJobs(ctx context.Context) ([]models.Job, error) {
	return s.listJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = $1 ORDER BY created_at DESC`,
		[]any{state.StatusPending.String()},
	)
}

func (s *JobStore) listJobs(ctx context.Context, query string, args []any) ([]models.Job, error) {
	jobs := []models.Job{}
	err := s.db.QueryAll(ctx, query, args, func(row db.RowScanner) error {
		job, err := scanJob(row)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}
	return jobs, nil
}

func (s *JobStore) CountJobsGroupedByStatus(ctx context.Context) (map[state.JobStatus]int, error) {
	result := make(map[state.JobStatus]int)
	err := s.db.QueryAll(ctx, `
		SELECT status, COUNT(*) AS count
		FROM jobs
		GROUP BY status
	`, nil, func(row db.RowScanner) error {
		var status string
		var count int
		if err := row.Scan(&status, &count); err != nil {
			return err
		}
		result[state.JobStatus(status)] = count
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "count jobs by status")
	}

	for _, status := range state.AllStatuses {
		if _, ok := result[status]; !ok {
			result[status] = 0
		}
	}

	return result, nil
}

func scanJob(row db.RowScanner) (models.Job, error) {
	var (
		job              models.Job
		logo, intent     sql.NullString
		status, payment  string
		expires, approve sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.CompanyName, &job.CompanyWebsite, &logo, &job.JobTitle, &job.JobLocation,
		&job.JobType, &job.ExperienceLevel, &job.RemoteOnsite, &job.Compensation, &job.Team,
		&job.ApplicationLink, &job.SubmitterName, &job.SubmitterEmail, &status, &payment,
		&intent, &job.CreatedAt, &expires, &approve,
	)
	if err != nil {
		return models.Job{}, errors.Wrap(err, "scan job")
	}

	job.Status = state.JobStatus(status)
	job.PaymentStatus = state.PaymentStatus(payment)
	job.CompanyLogo = stringPtr(logo)
	job.PaymentIntentID = stringPtr(intent)
	job.ExpiresAt = timePtr(expires)
	job.ApprovedAt = timePtr(approve)
	return job, nil
}

func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
