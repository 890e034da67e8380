package job

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"getjobs/internal/domain/job"
	"getjobs/internal/domain/user"
	"getjobs/internal/repository"
)

// memJobs is an in-memory JobRepository with the same visibility rules as
// the Postgres one.
type memJobs struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]int64
	rows   map[int64]job.Posting
	err    error

	searches int
}

func newMemJobs() *memJobs {
	return &memJobs{users: map[string]int64{}, rows: map[int64]job.Posting{}}
}

func (m *memJobs) Insert(_ context.Context, f job.Fields, name, email string, today time.Time) (job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return job.Posting{}, m.err
	}
	uid, ok := m.users[email]
	if !ok {
		uid = int64(len(m.users) + 1)
		m.users[email] = uid
	}
	m.nextID++
	p := job.Posting{
		ID: m.nextID, UserID: uid, CompanyName: f.CompanyName, Website: f.Website, LogoURL: f.LogoURL,
		JobTitle: f.JobTitle, WorkLoc: f.WorkLoc, Commitment: f.Commitment, Remote: f.Remote,
		JobLink: f.JobLink, Description: f.Description, Name: name, IsOK: true, LastUpdate: job.Today(today),
	}
	m.rows[p.ID] = p
	return p, nil
}

func (m *memJobs) Update(_ context.Context, id int64, f job.UpdateFields) (job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return job.Posting{}, m.err
	}
	p, ok := m.rows[id]
	if !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	p.CompanyName, p.Website, p.JobTitle, p.WorkLoc = f.CompanyName, f.Website, f.JobTitle, f.WorkLoc
	p.Commitment, p.Remote, p.JobLink, p.Description = f.Commitment, f.Remote, f.JobLink, f.Description
	m.rows[id] = p
	return p, nil
}

func (m *memJobs) Delete(_ context.Context, id int64) (job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return job.Posting{}, m.err
	}
	p, ok := m.rows[id]
	if !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	delete(m.rows, id)
	return p, nil
}

func (m *memJobs) GetByID(_ context.Context, id int64) (job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return job.Posting{}, m.err
	}
	p, ok := m.rows[id]
	if !ok || !p.IsOK {
		return job.Posting{}, repository.ErrJobNotFound
	}
	return p, nil
}

func (m *memJobs) Search(_ context.Context, f job.SearchFilter) ([]job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]job.Posting, 0)
	for _, p := range m.sorted() {
		if !p.IsOK {
			continue
		}
		if f.SearchTerm != "" && !strings.Contains(strings.ToLower(p.JobTitle), strings.ToLower(f.SearchTerm)) {
			continue
		}
		if f.RemoteOnly {
			if !p.Remote {
				continue
			}
		} else if f.Location != "" && !strings.Contains(strings.ToLower(p.WorkLoc), strings.ToLower(f.Location)) {
			continue
		}
		out = append(out, p)
	}
	if f.Offset >= len(out) {
		return []job.Posting{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memJobs) ListByUser(_ context.Context, userID int64) ([]job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]job.Posting, 0)
	for _, p := range m.sorted() {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memJobs) MarkOK(_ context.Context, ownerID int64, ids []int64, today time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, id := range ids {
		p, ok := m.rows[id]
		if !ok || (ownerID != 0 && p.UserID != ownerID) {
			continue
		}
		p.IsOK = true
		p.LastUpdate = job.Today(today)
		m.rows[id] = p
		n++
	}
	return n, nil
}

func (m *memJobs) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	cutoff = job.Today(cutoff)
	var n int64
	for id, p := range m.rows {
		if p.IsOK && p.LastUpdate.Before(cutoff) {
			p.IsOK = false
			m.rows[id] = p
			n++
		}
	}
	return n, nil
}

// set overrides a stored posting's freshness directly.
func (m *memJobs) set(id int64, isOK bool, lastUpdate time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.rows[id]
	p.IsOK = isOK
	p.LastUpdate = job.Today(lastUpdate)
	m.rows[id] = p
}

func (m *memJobs) sorted() []job.Posting {
	out := make([]job.Posting, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdate.Equal(out[j].LastUpdate) {
			return out[i].LastUpdate.After(out[j].LastUpdate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

type memUsers struct {
	jobs *memJobs
	err  error
}

func (u memUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	if u.err != nil {
		return user.User{}, u.err
	}
	u.jobs.mu.Lock()
	defer u.jobs.mu.Unlock()
	id, ok := u.jobs.users[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return user.User{ID: id, Email: email}, nil
}

type memCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	locks    map[string]bool
	counters map[string]int64
	patterns []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, locks: map[string]bool{}, counters: map[string]int64{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memCache) SetIfNotExists(_ context.Context, key string, _ string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[key] {
		return false, nil
	}
	c.locks[key] = true
	return true, nil
}

func (c *memCache) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *memCache) GetInt(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key], nil
}

// pausedSearch holds the first Search after its rows are read until release
// is closed.
type pausedSearch struct {
	*memJobs
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (p *pausedSearch) Search(ctx context.Context, f job.SearchFilter) ([]job.Posting, error) {
	out, err := p.memJobs.Search(ctx, f)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return out, err
}

// demoteAfterList flips a posting to stale right after ListByUser returns.
type demoteAfterList struct {
	*memJobs
	demote int64
}

func (d *demoteAfterList) ListByUser(ctx context.Context, userID int64) ([]job.Posting, error) {
	out, err := d.memJobs.ListByUser(ctx, userID)
	d.set(d.demote, false, fixedNow.AddDate(0, 0, -40))
	return out, err
}

type event struct {
	action string
	ids    []int64
}

type recordingEvents struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingEvents) PublishJobsUpdated(action string, ids []int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{action: action, ids: ids})
}

func (r *recordingEvents) last() event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return event{}
	}
	return r.events[len(r.events)-1]
}
