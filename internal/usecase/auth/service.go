package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"getjobs/internal/domain/user"
	"getjobs/internal/infrastructure/mail"
	"getjobs/internal/pkg/jwt"
	"getjobs/internal/pkg/logging"
	"getjobs/internal/pkg/otp"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidCode            = errors.New("invalid code")
	ErrCodeExpired            = errors.New("code expired")
	ErrTooManyRequests        = errors.New("too many requests")
	ErrMailDelivery           = errors.New("mail delivery failed")
	ErrInternal               = errors.New("internal error")
)

const (
	otpSubject       = "OTP from getjobs.today"
	otpResendLockKey = "auth:otp:resend:"
	otpAttemptsKey   = "auth:otp:attempts:"

	maxVerifyAttempts = 5
)

type Limiter interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Options struct {
	OTPTTL      time.Duration
	ResendAfter time.Duration
}

type Service struct {
	users   user.Repository
	tokens  jwt.Service
	mailer  mail.Mailer
	limiter Limiter
	logger  *logging.Logger

	otpTTL      time.Duration
	resendAfter time.Duration
	hashCost    int

	now      func() time.Time
	generate func() (string, error)
}

func NewService(users user.Repository, tokens jwt.Service, mailer mail.Mailer, limiter Limiter, logger *logging.Logger, opts Options) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 10 * time.Minute
	}
	if opts.ResendAfter <= 0 {
		opts.ResendAfter = time.Minute
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		limiter:     limiter,
		logger:      logger.With("component", "auth_service"),
		otpTTL:      opts.OTPTTL,
		resendAfter: opts.ResendAfter,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
		generate:    otp.Generate,
	}
}

// RequestOTP mails a fresh one-time code, creating the user on first contact.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !isEmail(email) {
		return ErrInvalidInput
	}

	if s.limiter != nil {
		ok, err := s.limiter.SetIfNotExists(ctx, otpResendLockKey+email, "1", s.resendAfter)
		if err == nil && !ok {
			return ErrTooManyRequests
		}
	}

	u, created, err := s.users.GetOrCreate(ctx, "", email)
	if err != nil {
		s.logger.Error("resolve user failed", "email", email, "err", err)
		return ErrInternal
	}
	if created {
		s.logger.Info("user created on otp request", "user_id", u.ID)
	}

	code, err := s.generate()
	if err != nil {
		s.logger.Error("generate otp failed", "err", err)
		return ErrInternal
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		s.logger.Error("hash otp failed", "err", err)
		return ErrInternal
	}
	if err := s.users.SetOTP(ctx, u.ID, string(hash), s.now().Add(s.otpTTL)); err != nil {
		s.logger.Error("store otp failed", "user_id", u.ID, "err", err)
		return ErrInternal
	}

	msg := mail.Message{
		To:      email,
		Subject: otpSubject,
		Body:    fmt.Sprintf("Your OTP is: %s", code),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("send otp failed", "user_id", u.ID, "err", err)
		return ErrMailDelivery
	}
	return nil
}

// VerifyOTP consumes the pending code and issues a session token.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (user.User, string, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || len(code) != otp.Digits {
		return user.User{}, "", ErrInvalidInput
	}

	st, err := s.users.GetOTP(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, "", ErrInvalidCode
		}
		s.logger.Error("load otp failed", "email", email, "err", err)
		return user.User{}, "", ErrInternal
	}
	if st.Hash == "" {
		return user.User{}, "", ErrInvalidCode
	}
	now := s.now()
	if !now.Before(st.ExpiresAt) {
		return user.User{}, "", ErrCodeExpired
	}
	if err := s.countAttempt(ctx, email, st, now); err != nil {
		return user.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.Hash), []byte(code)); err != nil {
		return user.User{}, "", ErrInvalidCode
	}

	if err := s.users.ClearOTP(ctx, st.UserID); err != nil {
		s.logger.Error("clear otp failed", "user_id", st.UserID, "err", err)
		return user.User{}, "", ErrInternal
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("load user failed", "user_id", st.UserID, "err", err)
		return user.User{}, "", ErrInternal
	}
	token, err := s.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		s.logger.Error("issue token failed", "user_id", u.ID, "err", err)
		return user.User{}, "", ErrInternal
	}
	return u, token, nil
}

// countAttempt allows maxVerifyAttempts guesses per issued code. The counter
// is keyed by the code's expiry so a fresh code starts from zero. Once the
// budget is spent the code is discarded.
func (s *Service) countAttempt(ctx context.Context, email string, st user.OTPState, now time.Time) error {
	if s.limiter == nil {
		return nil
	}
	key := fmt.Sprintf("%s%s:%d", otpAttemptsKey, email, st.ExpiresAt.UnixNano())
	n, err := s.limiter.Incr(ctx, key, st.ExpiresAt.Sub(now))
	if err != nil || n <= maxVerifyAttempts {
		return nil
	}

	s.logger.Warn("otp attempts exhausted", "user_id", st.UserID)
	if err := s.users.ClearOTP(ctx, st.UserID); err != nil {
		s.logger.Error("clear otp failed", "user_id", st.UserID, "err", err)
		return ErrInternal
	}
	return ErrTooManyRequests
}

func (s *Service) Signup(ctx context.Context, name, email string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || !isEmail(email) {
		return user.User{}, ErrInvalidInput
	}

	u, err := s.users.Create(ctx, name, email)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		s.logger.Error("create user failed", "email", email, "err", err)
		return user.User{}, ErrInternal
	}
	return u, nil
}

// Exists reports whether an account is registered under email.
func (s *Service) Exists(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if !isEmail(email) {
		return false, ErrInvalidInput
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, nil
		}
		s.logger.Error("lookup user failed", "email", email, "err", err)
		return false, ErrInternal
	}
	return true, nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
