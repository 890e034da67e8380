package job

import (
	"context"
	"errors"
	"strings"
	"time"

	"getjobs/internal/domain/job"
	"getjobs/internal/domain/user"
	"getjobs/internal/pkg/logging"
	"getjobs/internal/repository"
)

var (
	ErrNotFound     = errors.New("job not found")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionRenewed = "renewed"
	ActionExpired = "expired"
)

const (
	defaultLimit = 20
	maxLimit     = 50
)

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

type EventPublisher interface {
	PublishJobsUpdated(action string, ids []int64)
}

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type InsertInput struct {
	job.Fields
	PosterName  string
	PosterEmail string
}

type SearchParams struct {
	Offset   int
	Limit    int
	Search   string
	Location string
	Remote   bool
}

type Service struct {
	jobs   repository.JobRepository
	users  UserFinder
	cache  Cache
	events EventPublisher
	logger *logging.Logger
	now    func() time.Time
	loc    *time.Location
}

func NewService(jobs repository.JobRepository, users UserFinder, cache Cache, events EventPublisher, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		jobs:   jobs,
		users:  users,
		cache:  cache,
		events: events,
		logger: logger.With("component", "job_service"),
		now:    time.Now,
		loc:    time.UTC,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithLocation sets the zone whose calendar date stamps inserts and renewals.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *Service) today() time.Time {
	return job.Today(s.now().In(s.loc))
}

func (s *Service) Insert(ctx context.Context, in InsertInput) (job.Posting, error) {
	f := normalizeFields(in.Fields)
	name := strings.TrimSpace(in.PosterName)
	email := normalizeEmail(in.PosterEmail)
	if f.CompanyName == "" || f.JobTitle == "" || !isEmail(email) {
		return job.Posting{}, ErrInvalidInput
	}

	p, err := s.jobs.Insert(ctx, f, name, email, s.today())
	if err != nil {
		s.logger.Error("insert job failed", "email", email, "err", err)
		return job.Posting{}, ErrInternal
	}

	s.changed(ctx, ActionCreated, p.ID)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, f job.UpdateFields) (job.Posting, error) {
	if id <= 0 {
		return job.Posting{}, ErrInvalidInput
	}
	f = normalizeUpdate(f)
	if f.CompanyName == "" || f.JobTitle == "" {
		return job.Posting{}, ErrInvalidInput
	}

	p, err := s.jobs.Update(ctx, id, f)
	if err != nil {
		return job.Posting{}, s.mapErr("update job", id, err)
	}

	s.changed(ctx, ActionUpdated, p.ID)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (job.Posting, error) {
	if id <= 0 {
		return job.Posting{}, ErrInvalidInput
	}
	p, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return job.Posting{}, s.mapErr("delete job", id, err)
	}

	s.changed(ctx, ActionDeleted, p.ID)
	return p, nil
}

// GetByID only returns live postings.
func (s *Service) GetByID(ctx context.Context, id int64) (job.Posting, error) {
	if id <= 0 {
		return job.Posting{}, ErrInvalidInput
	}
	p, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return job.Posting{}, s.mapErr("get job", id, err)
	}
	return p, nil
}

func (s *Service) Search(ctx context.Context, params SearchParams) ([]job.Posting, error) {
	limit := params.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 0 || limit > maxLimit || params.Offset < 0 {
		return nil, ErrInvalidInput
	}

	f := job.SearchFilter{
		Offset:     params.Offset,
		Limit:      limit,
		SearchTerm: strings.TrimSpace(params.Search),
		Location:   strings.TrimSpace(params.Location),
		RemoteOnly: params.Remote,
	}
	if f.RemoteOnly {
		f.Location = ""
	}

	useCache := s.cache != nil
	var key string
	if useCache {
		// The generation is read before the query so that rows fetched ahead
		// of a concurrent write land under a key nobody reads afterwards.
		gen, err := s.cache.GetInt(ctx, searchGenKey)
		if err != nil {
			s.logger.Debug("search cache generation unavailable", "err", err)
			useCache = false
		}
		key = SearchCacheKey(gen, f)
	}
	if useCache {
		var cached []job.Posting
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			s.logger.Debug("search cache hit", "key", key)
			return cached, nil
		}
	}

	out, err := s.jobs.Search(ctx, f)
	if err != nil {
		s.logger.Error("search jobs failed", "err", err)
		return nil, ErrInternal
	}

	if useCache {
		if err := s.cache.SetJSON(ctx, key, out, 0); err != nil {
			s.logger.Debug("search cache set failed", "key", key, "err", err)
		}
	}
	return out, nil
}

// GetUserJobView lists every posting owned by the user, stale ones included.
func (s *Service) GetUserJobView(ctx context.Context, email string) (job.UserJobView, error) {
	email = normalizeEmail(email)
	if email == "" {
		return job.UserJobView{}, ErrInvalidInput
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return job.UserJobView{}, ErrUserNotFound
		}
		s.logger.Error("lookup user failed", "email", email, "err", err)
		return job.UserJobView{}, ErrInternal
	}

	postings, err := s.jobs.ListByUser(ctx, u.ID)
	if err != nil {
		s.logger.Error("list user jobs failed", "user_id", u.ID, "err", err)
		return job.UserJobView{}, ErrInternal
	}
	stale := 0
	for _, p := range postings {
		if !p.IsOK {
			stale++
		}
	}

	return job.UserJobView{Postings: postings, StaleCount: stale}, nil
}

// MarkJobsOK renews the given postings as of today. An ownerID of zero
// renews regardless of owner.
func (s *Service) MarkJobsOK(ctx context.Context, ownerID int64, ids []int64) (int64, error) {
	if ownerID < 0 {
		return 0, ErrInvalidInput
	}
	ids, ok := dedupeIDs(ids)
	if !ok {
		return 0, ErrInvalidInput
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.jobs.MarkOK(ctx, ownerID, ids, s.today())
	if err != nil {
		s.logger.Error("mark jobs ok failed", "owner_id", ownerID, "ids", ids, "err", err)
		return 0, ErrInternal
	}
	if n > 0 {
		s.changed(ctx, ActionRenewed, ids...)
	}
	return n, nil
}

func (s *Service) RenewJob(ctx context.Context, ownerID, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	n, err := s.MarkJobsOK(ctx, ownerID, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) changed(ctx context.Context, action string, ids ...int64) {
	invalidateSearch(ctx, s.cache, s.logger)
	if s.events != nil {
		s.events.PublishJobsUpdated(action, ids)
	}
}

func (s *Service) mapErr(op string, id int64, err error) error {
	if errors.Is(err, repository.ErrJobNotFound) {
		return ErrNotFound
	}
	s.logger.Error(op+" failed", "job_id", id, "err", err)
	return ErrInternal
}

func invalidateSearch(ctx context.Context, c Cache, logger *logging.Logger) {
	if c == nil {
		return
	}
	if _, err := c.Incr(ctx, searchGenKey, 0); err != nil {
		logger.Warn("search cache generation bump failed", "err", err)
	}
	if err := c.DeleteByPattern(ctx, searchCachePrefix+"*"); err != nil {
		logger.Warn("search cache invalidation failed", "err", err)
	}
}

func dedupeIDs(ids []int64) ([]int64, bool) {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, false
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, true
}

func normalizeFields(f job.Fields) job.Fields {
	return job.Fields{
		CompanyName: strings.TrimSpace(f.CompanyName),
		Website:     strings.TrimSpace(f.Website),
		LogoURL:     strings.TrimSpace(f.LogoURL),
		JobTitle:    strings.TrimSpace(f.JobTitle),
		WorkLoc:     strings.TrimSpace(f.WorkLoc),
		Commitment:  strings.TrimSpace(f.Commitment),
		Remote:      f.Remote,
		JobLink:     strings.TrimSpace(f.JobLink),
		Description: strings.TrimSpace(f.Description),
	}
}

func normalizeUpdate(f job.UpdateFields) job.UpdateFields {
	return job.UpdateFields{
		CompanyName: strings.TrimSpace(f.CompanyName),
		Website:     strings.TrimSpace(f.Website),
		JobTitle:    strings.TrimSpace(f.JobTitle),
		WorkLoc:     strings.TrimSpace(f.WorkLoc),
		Commitment:  strings.TrimSpace(f.Commitment),
		Remote:      f.Remote,
		JobLink:     strings.TrimSpace(f.JobLink),
		Description: strings.TrimSpace(f.Description),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
