package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"getjobs/internal/config"

	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSend_BuildsPlainTextMessage(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPMailer{from: "noreply@getjobs.today", dialer: d}

	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "OTP from getjobs.today", Body: "Your OTP is: 123456"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(d.sent))
	}
	m := d.sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "a@x.com" {
		t.Fatalf("unexpected To: %v", got)
	}
	if got := m.GetHeader("From"); len(got) != 1 || got[0] != "noreply@getjobs.today" {
		t.Fatalf("unexpected From: %v", got)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "Your OTP is: 123456") {
		t.Fatalf("body missing from message:\n%s", buf.String())
	}
}

func TestSend_WrapsDialError(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	s := &SMTPMailer{from: "x@y", dialer: &recordingDialer{err: boom}}
	if err := s.Send(context.Background(), Message{To: "a@x.com"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}
}

func TestSend_NotConfigured(t *testing.T) {
	s := NewSMTPMailer(config.SMTPConfig{})
	if err := s.Send(context.Background(), Message{To: "a@x.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSend_CancelledContext(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPMailer{from: "x@y", dialer: d}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, Message{To: "a@x.com"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(d.sent) != 0 {
		t.Fatalf("nothing should be sent")
	}
}
