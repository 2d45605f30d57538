package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RezaEskandarii/jobboard/custom_errors"
)

const faviconService = "https://www.google.com/s2/favicons?domain=%s&sz=64"

// JobSubmission is the payload of the public posting form.
type JobSubmission struct {
	CompanyName     string `json:"companyName"`
	CompanyWebsite  string `json:"companyWebsite"`
	CompanyLogo     string `json:"companyLogo,omitempty"`
	JobTitle        string `json:"jobTitle"`
	JobLocation     string `json:"jobLocation"`
	JobType         string `json:"jobType"`
	ExperienceLevel string `json:"experienceLevel"`
	RemoteOnsite    string `json:"remoteOnsite"`
	Compensation    string `json:"compensation"`
	Team            string `json:"team"`
	ApplicationLink string `json:"applicationLink"`
	SubmitterName   string `json:"submitterName"`
	SubmitterEmail  string `json:"submitterEmail"`
}

// Normalize trims every field and lower-cases the team.
func (s JobSubmission) Normalize() JobSubmission {
	for _, f := range s.fields() {
		*f.value = strings.TrimSpace(*f.value)
	}
	s.CompanyLogo = strings.TrimSpace(s.CompanyLogo)
	s.Team = strings.ToLower(s.Team)
	return s
}

// Validate reports every required field that is empty.
func (s JobSubmission) Validate() error {
	validationErrs := &custom_errors.ValidationError{}
	for _, f := range s.fields() {
		if strings.TrimSpace(*f.value) == "" {
			validationErrs.Addf("%s is required", f.name)
		}
	}
	if validationErrs.HasError() {
		return validationErrs
	}
	return nil
}

// Logo returns the supplied logo or one derived from the company website.
func (s JobSubmission) Logo() *string {
	if logo := strings.TrimSpace(s.CompanyLogo); logo != "" {
		return &logo
	}
	return FaviconURL(s.CompanyWebsite)
}

type field struct {
	name  string
	value *string
}

func (s *JobSubmission) fields() []field {
	return []field{
		{"companyName", &s.CompanyName},
		{"companyWebsite", &s.CompanyWebsite},
		{"jobTitle", &s.JobTitle},
		{"jobLocation", &s.JobLocation},
		{"jobType", &s.JobType},
		{"experienceLevel", &s.ExperienceLevel},
		{"remoteOnsite", &s.RemoteOnsite},
		{"compensation", &s.Compensation},
		{"team", &s.Team},
		{"applicationLink", &s.ApplicationLink},
		{"submitterName", &s.SubmitterName},
		{"submitterEmail", &s.SubmitterEmail},
	}
}

// FaviconURL derives a logo URL from a company website. It returns nil when
// the website has no usable host.
func FaviconURL(website string) *string {
	website = strings.TrimSpace(website)
	if website == "" {
		return nil
	}
	if !strings.HasPrefix(strings.ToLower(website), "http") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	logo := fmt.Sprintf(faviconService, url.QueryEscape(u.Hostname()))
	return &logo
}
