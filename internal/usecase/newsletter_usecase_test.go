package usecase

import (
	"context"
	"errors"
	"testing"

	"getjobs/internal/repository"
)

type mockMailRepo struct {
	got []string
	err error
}

func (m *mockMailRepo) Subscribe(_ context.Context, email string) (repository.Subscriber, error) {
	m.got = append(m.got, email)
	if m.err != nil {
		return repository.Subscriber{}, m.err
	}
	return repository.Subscriber{ID: 1, Email: email}, nil
}

func TestNewsletter_Subscribe(t *testing.T) {
	repo := &mockMailRepo{}
	uc := NewNewsletterUsecase(repo, nil)

	if err := uc.Subscribe(context.Background(), " Reader@X.com "); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(repo.got) != 1 || repo.got[0] != "reader@x.com" {
		t.Fatalf("expected normalized email, got %v", repo.got)
	}
}

func TestNewsletter_InvalidEmail(t *testing.T) {
	uc := NewNewsletterUsecase(&mockMailRepo{}, nil)
	if err := uc.Subscribe(context.Background(), "nope"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewsletter_Duplicate(t *testing.T) {
	uc := NewNewsletterUsecase(&mockMailRepo{err: repository.ErrAlreadySubscribed}, nil)
	if err := uc.Subscribe(context.Background(), "a@x.com"); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestNewsletter_StoreFailure(t *testing.T) {
	uc := NewNewsletterUsecase(&mockMailRepo{err: errors.New("down")}, nil)
	if err := uc.Subscribe(context.Background(), "a@x.com"); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}
