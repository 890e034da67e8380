package job

import "time"

// Posting is a single job listing. IsOK marks it as eligible for public
// search; LastUpdate is the date it was last confirmed live.
type Posting struct {
	ID          int64
	UserID      int64
	CompanyName string
	Website     string
	LogoURL     string
	JobTitle    string
	WorkLoc     string
	Commitment  string
	Remote      bool
	JobLink     string
	Description string
	Name        string
	IsOK        bool
	LastUpdate  time.Time
}

// Fields are the values supplied when a posting is created.
type Fields struct {
	CompanyName string
	Website     string
	LogoURL     string
	JobTitle    string
	WorkLoc     string
	Commitment  string
	Remote      bool
	JobLink     string
	Description string
}

// UpdateFields are the only columns an edit may change.
type UpdateFields struct {
	CompanyName string
	Website     string
	JobTitle    string
	WorkLoc     string
	Commitment  string
	Remote      bool
	JobLink     string
	Description string
}

type SearchFilter struct {
	Offset     int
	Limit      int
	SearchTerm string
	Location   string
	RemoteOnly bool
}

// UserJobView is an owner's dashboard: every posting including stale ones,
// plus how many of them are stale.
type UserJobView struct {
	Postings   []Posting
	StaleCount int
}

// Today truncates t to a calendar date in t's location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
