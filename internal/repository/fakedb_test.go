package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"getjobs/internal/database"
	"getjobs/internal/domain/job"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan dest mismatch: want %d got %d", len(r.vals), len(dest))
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *int64:
			*d = r.vals[i].(int64)
		case *int:
			*d = r.vals[i].(int)
		case *string:
			*d = r.vals[i].(string)
		case *bool:
			*d = r.vals[i].(bool)
		case *time.Time:
			*d = r.vals[i].(time.Time)
		case *sql.NullString:
			if r.vals[i] == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: r.vals[i].(string), Valid: true}
			}
		case *sql.NullTime:
			if r.vals[i] == nil {
				*d = sql.NullTime{}
			} else {
				*d = sql.NullTime{Time: r.vals[i].(time.Time), Valid: true}
			}
		default:
			return fmt.Errorf("unsupported scan type %T", dest[i])
		}
	}
	return nil
}

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close() {}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return fakeRow{vals: r.rows[r.idx-1]}.Scan(dest...)
}

func (r *fakeRows) Err() error { return r.err }

type call struct {
	query string
	args  []any
}

// fakeDB records every statement and answers from the handlers below, keyed
// by the lower-cased statement prefix.
type fakeDB struct {
	mu    sync.Mutex
	calls []call

	queryRow func(q string, args []any) fakeRow
	query    func(q string, args []any) (*fakeRows, error)
	exec     func(q string, args []any) (int64, error)

	beginErr   error
	committed  bool
	rolledBack bool
}

func normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func (db *fakeDB) record(q string, args []any) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.calls = append(db.calls, call{query: q, args: args})
	return normalize(q)
}

func (db *fakeDB) Ping(ctx context.Context) error { return nil }
func (db *fakeDB) Close() error                   { return nil }
func (db *fakeDB) SQLDB() *sql.DB                 { return nil }

func (db *fakeDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	q := db.record(query, args)
	if db.exec == nil {
		return 0, nil
	}
	return db.exec(q, args)
}

func (db *fakeDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	q := db.record(query, args)
	if db.query == nil {
		return &fakeRows{}, nil
	}
	return db.query(q, args)
}

func (db *fakeDB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	q := db.record(query, args)
	if db.queryRow == nil {
		return fakeRow{err: fmt.Errorf("unexpected query row: %s", q)}
	}
	return db.queryRow(q, args)
}

func (db *fakeDB) Begin(ctx context.Context) (database.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return &fakeTx{db: db}, nil
}

func (db *fakeDB) lastCall() call {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.calls) == 0 {
		return call{}
	}
	return db.calls[len(db.calls)-1]
}

type fakeTx struct {
	db   *fakeDB
	done bool
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return t.db.Exec(ctx, query, args...)
}

func (t *fakeTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return t.db.Query(ctx, query, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.db.QueryRow(ctx, query, args...)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.done = true
	t.db.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.db.rolledBack = true
	return nil
}

func postingRow(p job.Posting) []any {
	return []any{
		p.ID, p.UserID, p.CompanyName, p.Website, p.LogoURL, p.JobTitle, p.WorkLoc,
		p.Commitment, p.Remote, p.JobLink, p.Description, p.Name, p.IsOK, p.LastUpdate,
	}
}
