package models

import (
	"time"

	"github.com/RezaEskandarii/jobboard/internal/state"
)

// Job is a full row of the jobs table, as returned to admins.
type Job struct {
	ID              int64               `json:"id"`
	CompanyName     string              `json:"company_name"`
	CompanyWebsite  string              `json:"company_website"`
	CompanyLogo     *string             `json:"company_logo"`
	JobTitle        string              `json:"job_title"`
	JobLocation     string              `json:"job_location"`
	JobType         string              `json:"job_type"`
	ExperienceLevel string              `json:"experience_level"`
	RemoteOnsite    string              `json:"remote_onsite"`
	Compensation    string              `json:"compensation"`
	Team            string              `json:"team"`
	ApplicationLink string              `json:"application_link"`
	SubmitterName   string              `json:"submitter_name"`
	SubmitterEmail  string              `json:"submitter_email"`
	Status          state.JobStatus     `json:"status"`
	PaymentStatus   state.PaymentStatus `json:"payment_status"`
	PaymentIntentID *string             `json:"payment_intent_id"`
	CreatedAt       time.Time           `json:"created_at"`
	ExpiresAt       *time.Time          `json:"expires_at"`
	ApprovedAt      *time.Time          `json:"approved_at"`
}

// PublicJob is the shape visitors see. Contact, payment and moderation fields are left out.
type PublicJob struct {
	ID         int64   `json:"id"`
	Company    string  `json:"company"`
	Logo       *string `json:"logo"`
	Title      string  `json:"title"`
	Location   string  `json:"location"`
	Type       string  `json:"type"`
	Experience string  `json:"experience"`
	Salary     string  `json:"salary"`
	ApplyLink  string  `json:"applyLink"`
}

// Public projects the job onto its public shape, deriving a logo from the website when none is stored.
func (j Job) Public() PublicJob {
	logo := j.CompanyLogo
	if logo == nil || *logo == "" {
		logo = FaviconURL(j.CompanyWebsite)
	}
	return PublicJob{
		ID:         j.ID,
		Company:    j.CompanyName,
		Logo:       logo,
		Title:      j.JobTitle,
		Location:   j.JobLocation,
		Type:       j.JobType,
		Experience: j.ExperienceLevel,
		Salary:     j.Compensation,
		ApplyLink:  j.ApplicationLink,
	}
}

// IsListed reports whether the job is publicly visible at now.
func (j Job) IsListed(now time.Time) bool {
	return state.IsListed(j.Status, j.ExpiresAt, now)
}
