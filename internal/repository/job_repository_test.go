package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"getjobs/internal/database"
	"getjobs/internal/domain/job"

	"github.com/jackc/pgx/v5"
)

func TestBuildSearchQuery_LiveOnlyAndStableOrder(t *testing.T) {
	q, args := buildSearchQuery(job.SearchFilter{Offset: 20, Limit: 10})

	if !strings.Contains(q, "WHERE is_ok = TRUE") {
		t.Fatalf("expected live-only filter, got %s", q)
	}
	if !strings.Contains(q, "ORDER BY last_update DESC, id DESC OFFSET $1 LIMIT $2") {
		t.Fatalf("expected deterministic ordering before pagination, got %s", q)
	}
	if len(args) != 2 || args[0] != 20 || args[1] != 10 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildSearchQuery_TermAndLocation(t *testing.T) {
	q, args := buildSearchQuery(job.SearchFilter{Limit: 10, SearchTerm: " Eng ", Location: "berlin"})

	if !strings.Contains(q, "job_title ILIKE $1") || !strings.Contains(q, "work_loc ILIKE $2") {
		t.Fatalf("expected title and location filters, got %s", q)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %v", args)
	}
	if args[0] != "%Eng%" || args[1] != "%berlin%" {
		t.Fatalf("unexpected patterns: %v", args)
	}
	if strings.Contains(q, "remote") {
		t.Fatalf("did not expect remote filter, got %s", q)
	}
}

func TestBuildSearchQuery_RemoteIgnoresLocation(t *testing.T) {
	q, args := buildSearchQuery(job.SearchFilter{Limit: 10, SearchTerm: "Eng", Location: "Berlin", RemoteOnly: true})

	if !strings.Contains(q, "remote = TRUE") {
		t.Fatalf("expected remote filter, got %s", q)
	}
	if strings.Contains(q, "work_loc") {
		t.Fatalf("location must be ignored for remote searches, got %s", q)
	}
	for _, a := range args {
		if s, ok := a.(string); ok && strings.Contains(s, "Berlin") {
			t.Fatalf("location leaked into args: %v", args)
		}
	}
	if len(args) != 3 {
		t.Fatalf("expected term, offset, limit; got %v", args)
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	got := likePattern(`100%_off\`)
	want := `%100\%\_off\\%`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestInsert_ReusesExistingUser(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)
	var jobArgs []any
	db := &fakeDB{
		queryRow: func(q string, args []any) fakeRow {
			switch {
			case strings.HasPrefix(q, "insert into jb_users"):
				return fakeRow{err: pgx.ErrNoRows}
			case strings.HasPrefix(q, "select id from jb_users"):
				return fakeRow{vals: []any{int64(7)}}
			case strings.HasPrefix(q, "insert into jb_jobs"):
				jobArgs = args
				return fakeRow{vals: postingRow(job.Posting{
					ID: 11, UserID: 7, CompanyName: "Acme", JobTitle: "Engineer", Name: "Ann",
					IsOK: true, LastUpdate: job.Today(today),
				})}
			}
			return fakeRow{err: errors.New("unexpected: " + q)}
		},
	}

	repo := NewPostgresJobRepository(db)
	p, err := repo.Insert(context.Background(), job.Fields{CompanyName: "Acme", JobTitle: "Engineer"}, "Ann", "a@x.com", today)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID != 11 || p.UserID != 7 || !p.IsOK {
		t.Fatalf("unexpected posting: %+v", p)
	}
	if jobArgs[0] != int64(7) {
		t.Fatalf("expected job to reference existing user 7, got %v", jobArgs[0])
	}
	if got := jobArgs[11].(time.Time); !got.Equal(job.Today(today)) {
		t.Fatalf("expected last_update truncated to date, got %v", got)
	}
	if !db.committed {
		t.Fatalf("expected commit")
	}
}

func TestInsert_RollsBackWhenJobInsertFails(t *testing.T) {
	storeErr := &database.StoreError{Op: "tx query", Err: errors.New("boom")}
	db := &fakeDB{
		queryRow: func(q string, args []any) fakeRow {
			if strings.HasPrefix(q, "insert into jb_users") {
				return fakeRow{vals: []any{int64(3)}}
			}
			return fakeRow{err: storeErr}
		},
	}

	repo := NewPostgresJobRepository(db)
	_, err := repo.Insert(context.Background(), job.Fields{CompanyName: "Acme", JobTitle: "Engineer"}, "", "new@x.com", time.Now())
	if err == nil {
		t.Fatalf("expected error")
	}
	var se *database.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected store error, got %v", err)
	}
	if db.committed {
		t.Fatalf("did not expect commit")
	}
	if !db.rolledBack {
		t.Fatalf("expected rollback so the new user is not orphaned")
	}
}

func TestInsert_BeginFailure(t *testing.T) {
	db := &fakeDB{beginErr: &database.StoreError{Op: "begin", Err: errors.New("down")}}
	_, err := NewPostgresJobRepository(db).Insert(context.Background(), job.Fields{}, "", "a@x.com", time.Now())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := &fakeDB{
		queryRow: func(q string, args []any) fakeRow { return fakeRow{err: pgx.ErrNoRows} },
	}
	_, err := NewPostgresJobRepository(db).GetByID(context.Background(), 5)
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if !strings.Contains(normalize(db.lastCall().query), "where id = $1 and is_ok = true") {
		t.Fatalf("expected live-only lookup, got %s", db.lastCall().query)
	}
}

func TestGetByID_StoreErrorIsNotNotFound(t *testing.T) {
	db := &fakeDB{
		queryRow: func(q string, args []any) fakeRow {
			return fakeRow{err: &database.StoreError{Op: "query row", Err: errors.New("conn refused")}}
		},
	}
	_, err := NewPostgresJobRepository(db).GetByID(context.Background(), 5)
	if errors.Is(err, ErrJobNotFound) {
		t.Fatalf("store failure must not look like not-found")
	}
	var se *database.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestDelete_SecondCallIsNotFound(t *testing.T) {
	deleted := false
	db := &fakeDB{
		queryRow: func(q string, args []any) fakeRow {
			if deleted {
				return fakeRow{err: pgx.ErrNoRows}
			}
			deleted = true
			return fakeRow{vals: postingRow(job.Posting{ID: 9, IsOK: true})}
		},
	}
	repo := NewPostgresJobRepository(db)

	p, err := repo.Delete(context.Background(), 9)
	if err != nil || p.ID != 9 {
		t.Fatalf("first delete: p=%+v err=%v", p, err)
	}
	if _, err := repo.Delete(context.Background(), 9); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("second delete: expected ErrJobNotFound, got %v", err)
	}
}

func TestUpdate_DoesNotTouchFreshness(t *testing.T) {
	db := &fakeDB{
		queryRow: func(q string, args []any) fakeRow {
			return fakeRow{vals: postingRow(job.Posting{ID: 2, JobTitle: "New"})}
		},
	}
	if _, err := NewPostgresJobRepository(db).Update(context.Background(), 2, job.UpdateFields{JobTitle: "New"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	q := normalize(db.lastCall().query)
	for _, col := range []string{"is_ok =", "last_update =", "user_id =", "logo_url ="} {
		if strings.Contains(q, col) {
			t.Fatalf("update must not set %s: %s", col, q)
		}
	}
	if args := db.lastCall().args; args[8] != int64(2) {
		t.Fatalf("expected id as last arg, got %v", args)
	}
}

func TestListByUser_IncludesStale(t *testing.T) {
	db := &fakeDB{
		query: func(q string, args []any) (*fakeRows, error) {
			return &fakeRows{rows: [][]any{
				postingRow(job.Posting{ID: 1, UserID: 4, IsOK: true}),
				postingRow(job.Posting{ID: 2, UserID: 4, IsOK: false}),
			}}, nil
		},
	}
	got, err := NewPostgresJobRepository(db).ListByUser(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(got))
	}
	if strings.Contains(normalize(db.lastCall().query), "is_ok") {
		t.Fatalf("owner listing must not filter on freshness")
	}
}

func TestSearch_EmptyIsNotAnError(t *testing.T) {
	db := &fakeDB{}
	got, err := NewPostgresJobRepository(db).Search(context.Background(), job.SearchFilter{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestMarkOK(t *testing.T) {
	today := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("empty ids is a no-op", func(t *testing.T) {
		db := &fakeDB{}
		n, err := NewPostgresJobRepository(db).MarkOK(context.Background(), 0, nil, today)
		if err != nil || n != 0 {
			t.Fatalf("n=%d err=%v", n, err)
		}
		if len(db.calls) != 0 {
			t.Fatalf("expected no statements")
		}
	})

	t.Run("owner scoped", func(t *testing.T) {
		db := &fakeDB{exec: func(q string, args []any) (int64, error) { return 2, nil }}
		n, err := NewPostgresJobRepository(db).MarkOK(context.Background(), 8, []int64{1, 2}, today)
		if err != nil || n != 2 {
			t.Fatalf("n=%d err=%v", n, err)
		}
		c := db.lastCall()
		if !strings.Contains(normalize(c.query), "set is_ok = true, last_update = $1") {
			t.Fatalf("unexpected query %s", c.query)
		}
		if len(c.args) != 3 || c.args[2] != int64(8) {
			t.Fatalf("expected owner arg, got %v", c.args)
		}
		if !c.args[0].(time.Time).Equal(job.Today(today)) {
			t.Fatalf("expected date arg, got %v", c.args[0])
		}
	})
}

func TestExpireStale_UsesCutoffDate(t *testing.T) {
	cutoff := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	db := &fakeDB{exec: func(q string, args []any) (int64, error) { return 3, nil }}

	n, err := NewPostgresJobRepository(db).ExpireStale(context.Background(), cutoff)
	if err != nil || n != 3 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	c := db.lastCall()
	if !strings.Contains(normalize(c.query), "set is_ok = false where is_ok = true and last_update < $1") {
		t.Fatalf("unexpected query %s", c.query)
	}
	if !c.args[0].(time.Time).Equal(job.Today(cutoff)) {
		t.Fatalf("expected truncated cutoff, got %v", c.args[0])
	}
}
