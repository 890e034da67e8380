package seeder

import (
	"context"
	"fmt"
	"time"

	"getjobs/internal/database"
)

const demoEmail = "demo@getjobs.today"

// DemoJobsSeeder creates a demo poster with a handful of postings for local
// development. One posting is old enough for the next sweep to expire it.
type DemoJobsSeeder struct {
	Now func() time.Time
}

func (DemoJobsSeeder) Name() string { return "demo_jobs" }

func (s DemoJobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := RequireColumns(ctx, db, "jb_users", "id", "name", "email"); err != nil {
		return err
	}
	if err := RequireColumns(ctx, db, "jb_jobs",
		"id",
		"user_id",
		"company_name",
		"website",
		"logo_url",
		"job_title",
		"work_loc",
		"commitment",
		"remote",
		"job_link",
		"description",
		"name",
		"is_ok",
		"last_update",
	); err != nil {
		return err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now().UTC()

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	var userID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO jb_users (name, email) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		"Demo Poster", demoEmail,
	).Scan(&userID)
	if err != nil {
		return fmt.Errorf("demo user: %w", err)
	}

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM jb_jobs WHERE user_id = $1`, userID).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	items := []struct {
		Company    string
		Title      string
		Location   string
		Commitment string
		Remote     bool
		AgeDays    int
	}{
		{Company: "Acme", Title: "Backend Engineer", Location: "Berlin", Commitment: "Full-time", AgeDays: 1},
		{Company: "Globex", Title: "Product Designer", Location: "Lisbon", Commitment: "Contract", Remote: true, AgeDays: 5},
		{Company: "Initech", Title: "Site Reliability Engineer", Location: "Remote", Commitment: "Full-time", Remote: true, AgeDays: 12},
		{Company: "Umbrella", Title: "Data Analyst", Location: "Amsterdam", Commitment: "Part-time", AgeDays: 40},
	}

	for _, it := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO jb_jobs (user_id, company_name, website, logo_url, job_title, work_loc, commitment, remote, job_link, description, name, is_ok, last_update)
			 VALUES ($1, $2, $3, '', $4, $5, $6, $7, $8, $9, $10, TRUE, $11)`,
			userID,
			it.Company,
			"https://example.com",
			it.Title,
			it.Location,
			it.Commitment,
			it.Remote,
			"https://example.com/jobs",
			it.Title+" at "+it.Company,
			"Demo Poster",
			today.AddDate(0, 0, -it.AgeDays),
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
