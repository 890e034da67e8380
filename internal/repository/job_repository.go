package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"getjobs/internal/database"
	"getjobs/internal/domain/job"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	Insert(ctx context.Context, f job.Fields, posterName, posterEmail string, today time.Time) (job.Posting, error)
	Update(ctx context.Context, id int64, f job.UpdateFields) (job.Posting, error)
	Delete(ctx context.Context, id int64) (job.Posting, error)
	GetByID(ctx context.Context, id int64) (job.Posting, error)
	Search(ctx context.Context, f job.SearchFilter) ([]job.Posting, error)
	ListByUser(ctx context.Context, userID int64) ([]job.Posting, error)
	MarkOK(ctx context.Context, ownerID int64, ids []int64, today time.Time) (int64, error)
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

const jobColumns = `id, user_id, company_name, website, logo_url, job_title, work_loc, commitment, remote, job_link, description, name, is_ok, last_update`

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

// Insert resolves (or creates) the poster and attaches the posting to it in a
// single transaction.
func (r *PostgresJobRepository) Insert(ctx context.Context, f job.Fields, posterName, posterEmail string, today time.Time) (job.Posting, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return job.Posting{}, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	userID, err := resolveUserID(ctx, tx, posterName, posterEmail)
	if err != nil {
		return job.Posting{}, fmt.Errorf("resolve poster: %w", err)
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO jb_jobs (user_id, company_name, website, logo_url, job_title, work_loc, commitment, remote, job_link, description, name, is_ok, last_update)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12)
		 RETURNING `+jobColumns,
		userID,
		f.CompanyName,
		f.Website,
		f.LogoURL,
		f.JobTitle,
		f.WorkLoc,
		f.Commitment,
		f.Remote,
		f.JobLink,
		f.Description,
		posterName,
		job.Today(today),
	)
	p, err := scanPosting(row)
	if err != nil {
		return job.Posting{}, fmt.Errorf("insert job: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return job.Posting{}, err
	}
	return p, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, query string, args ...any) database.Row
}

func resolveUserID(ctx context.Context, q queryRower, name, email string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO jb_users (name, email) VALUES ($1, $2)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id`,
		name, email,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !database.IsNoRows(err) {
		return 0, err
	}
	if err := q.QueryRow(ctx, `SELECT id FROM jb_users WHERE email = $1`, email).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresJobRepository) Update(ctx context.Context, id int64, f job.UpdateFields) (job.Posting, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE jb_jobs
		 SET company_name = $1,
		     website = $2,
		     job_title = $3,
		     work_loc = $4,
		     commitment = $5,
		     remote = $6,
		     job_link = $7,
		     description = $8
		 WHERE id = $9
		 RETURNING `+jobColumns,
		f.CompanyName,
		f.Website,
		f.JobTitle,
		f.WorkLoc,
		f.Commitment,
		f.Remote,
		f.JobLink,
		f.Description,
		id,
	)
	return scanOne(row)
}

func (r *PostgresJobRepository) Delete(ctx context.Context, id int64) (job.Posting, error) {
	row := r.db.QueryRow(ctx, `DELETE FROM jb_jobs WHERE id = $1 RETURNING `+jobColumns, id)
	return scanOne(row)
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id int64) (job.Posting, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jb_jobs WHERE id = $1 AND is_ok = TRUE`, id)
	return scanOne(row)
}

func (r *PostgresJobRepository) Search(ctx context.Context, f job.SearchFilter) ([]job.Posting, error) {
	query, args := buildSearchQuery(f)
	return r.list(ctx, query, args...)
}

// buildSearchQuery applies the public listing filters. A remote-only search
// ignores the location filter.
func buildSearchQuery(f job.SearchFilter) (string, []any) {
	conds := []string{"is_ok = TRUE"}
	args := make([]any, 0, 4)

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		args = append(args, likePattern(term))
		conds = append(conds, fmt.Sprintf(`job_title ILIKE $%d`, len(args)))
	}

	if f.RemoteOnly {
		conds = append(conds, "remote = TRUE")
	} else if loc := strings.TrimSpace(f.Location); loc != "" {
		args = append(args, likePattern(loc))
		conds = append(conds, fmt.Sprintf(`work_loc ILIKE $%d`, len(args)))
	}

	args = append(args, f.Offset, f.Limit)
	query := `SELECT ` + jobColumns + ` FROM jb_jobs WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(` ORDER BY last_update DESC, id DESC OFFSET $%d LIMIT $%d`, len(args)-1, len(args))
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *PostgresJobRepository) ListByUser(ctx context.Context, userID int64) ([]job.Posting, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jb_jobs WHERE user_id = $1 ORDER BY id ASC`, userID)
}

// MarkOK confirms the given postings as live as of today. A zero ownerID
// renews regardless of owner.
func (r *PostgresJobRepository) MarkOK(ctx context.Context, ownerID int64, ids []int64, today time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if ownerID == 0 {
		return r.db.Exec(ctx,
			`UPDATE jb_jobs SET is_ok = TRUE, last_update = $1 WHERE id = ANY($2)`,
			job.Today(today), ids,
		)
	}
	return r.db.Exec(ctx,
		`UPDATE jb_jobs SET is_ok = TRUE, last_update = $1 WHERE id = ANY($2) AND user_id = $3`,
		job.Today(today), ids, ownerID,
	)
}

// ExpireStale demotes live postings last confirmed before cutoff.
func (r *PostgresJobRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE jb_jobs SET is_ok = FALSE WHERE is_ok = TRUE AND last_update < $1`,
		job.Today(cutoff),
	)
}

func (r *PostgresJobRepository) list(ctx context.Context, query string, args ...any) ([]job.Posting, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Posting, 0)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanOne(row database.Row) (job.Posting, error) {
	p, err := scanPosting(row)
	if err != nil {
		if database.IsNoRows(err) {
			return job.Posting{}, ErrJobNotFound
		}
		return job.Posting{}, err
	}
	return p, nil
}

func scanPosting(row database.Row) (job.Posting, error) {
	var p job.Posting
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CompanyName,
		&p.Website,
		&p.LogoURL,
		&p.JobTitle,
		&p.WorkLoc,
		&p.Commitment,
		&p.Remote,
		&p.JobLink,
		&p.Description,
		&p.Name,
		&p.IsOK,
		&p.LastUpdate,
	)
	return p, err
}
