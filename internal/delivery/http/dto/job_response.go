package dto

import (
	"time"

	"getjobs/internal/domain/job"
)

const dateLayout = time.DateOnly

type JobResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	LogoURL     string `json:"logo_url"`
	JobTitle    string `json:"job_title"`
	WorkLoc     string `json:"work_loc"`
	Commitment  string `json:"commitment"`
	Remote      bool   `json:"remote"`
	JobLink     string `json:"job_link"`
	Description string `json:"description"`
	Name        string `json:"name"`
	IsOK        bool   `json:"is_ok"`
	LastUpdate  string `json:"last_update"`
}

func NewJobResponse(p job.Posting) JobResponse {
	last := ""
	if !p.LastUpdate.IsZero() {
		last = p.LastUpdate.Format(dateLayout)
	}
	return JobResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		CompanyName: p.CompanyName,
		Website:     p.Website,
		LogoURL:     p.LogoURL,
		JobTitle:    p.JobTitle,
		WorkLoc:     p.WorkLoc,
		Commitment:  p.Commitment,
		Remote:      p.Remote,
		JobLink:     p.JobLink,
		Description: p.Description,
		Name:        p.Name,
		IsOK:        p.IsOK,
		LastUpdate:  last,
	}
}

func NewJobListResponse(ps []job.Posting) []JobResponse {
	out := make([]JobResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewJobResponse(p))
	}
	return out
}
