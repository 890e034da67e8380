package dto

import "getjobs/internal/domain/job"

type CreateJobRequest struct {
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
	Email       string `json:"email"`
}

func (r CreateJobRequest) Fields() job.Fields {
	return job.Fields{
		CompanyName: plain(r.CompanyName),
		Website:     r.Website,
		LogoURL:     r.LogoURL,
		JobTitle:    plain(r.JobTitle),
		WorkLoc:     plain(r.WorkLoc),
		Commitment:  plain(r.Commitment),
		Remote:      r.Remote,
		JobLink:     r.JobLink,
		Description: richText(r.Description),
	}
}

// PosterName is the display name stored with the poster's account.
func (r CreateJobRequest) PosterName() string {
	return plain(r.Name)
}

type UpdateJobRequest struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	JobTitle    string `json:"job_title"`
	WorkLoc     string `json:"work_loc"`
	Commitment  string `json:"commitment"`
	Remote      bool   `json:"remote"`
	JobLink     string `json:"job_link"`
	Description string `json:"description"`
}

func (r UpdateJobRequest) Fields() job.UpdateFields {
	return job.UpdateFields{
		CompanyName: plain(r.CompanyName),
		Website:     r.Website,
		JobTitle:    plain(r.JobTitle),
		WorkLoc:     plain(r.WorkLoc),
		Commitment:  plain(r.Commitment),
		Remote:      r.Remote,
		JobLink:     r.JobLink,
		Description: richText(r.Description),
	}
}

type RenewJobsRequest struct {
	IDs []int64 `json:"ids"`
}
