package dto

import (
	"time"

	"getjobs/internal/domain/job"
	"getjobs/internal/domain/user"
)

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type UserJobsResponse struct {
	Jobs       []JobResponse `json:"jobs"`
	StaleCount int           `json:"stale_count"`
}

func NewUserJobsResponse(v job.UserJobView) UserJobsResponse {
	return UserJobsResponse{Jobs: NewJobListResponse(v.Postings), StaleCount: v.StaleCount}
}

type RenewJobsResponse struct {
	Renewed int64 `json:"renewed"`
}
