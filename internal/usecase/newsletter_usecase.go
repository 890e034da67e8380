package usecase

import (
	"context"
	"errors"
	"strings"

	"getjobs/internal/pkg/logging"
	"getjobs/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrInternal          = errors.New("internal error")
)

type NewsletterUsecase interface {
	Subscribe(ctx context.Context, email string) error
}

type Newsletter struct {
	mails  repository.MailRepository
	logger *logging.Logger
}

func NewNewsletterUsecase(mails repository.MailRepository, logger *logging.Logger) *Newsletter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Newsletter{mails: mails, logger: logger}
}

func (u *Newsletter) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidInput
	}

	if _, err := u.mails.Subscribe(ctx, email); err != nil {
		if errors.Is(err, repository.ErrAlreadySubscribed) {
			return ErrAlreadySubscribed
		}
		u.logger.Error("newsletter subscribe failed", "email", email, "err", err)
		return ErrInternal
	}
	return nil
}
