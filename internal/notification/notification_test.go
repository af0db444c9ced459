package notification_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kasap-service/internal/notification"
)

type captureSender struct {
	got []notification.Email
	err error
}

func (c *captureSender) SendEmail(n notification.Email) error {
	c.got = append(c.got, n)
	return c.err
}

func TestHandle(t *testing.T) {
	s := &captureSender{}
	raw := []byte(`{"to":"a@b.co","subject":"Hi","template":"reset_password","data":{"code":"482913"}}`)
	if err := notification.Handle(raw, s); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(s.got) != 1 || s.got[0].To != "a@b.co" || s.got[0].Data["code"] != "482913" {
		t.Fatalf("unexpected email: %+v", s.got)
	}

	if err := notification.Handle([]byte("{not json"), s); !errors.Is(err, notification.ErrInvalidMessage) {
		t.Fatalf("expected invalid message, got %v", err)
	}
	if err := notification.Handle([]byte(`{"subject":"x","template":"t"}`), s); !errors.Is(err, notification.ErrInvalidMessage) {
		t.Fatalf("expected invalid message without recipient, got %v", err)
	}

	boom := errors.New("smtp down")
	if err := notification.Handle(raw, &captureSender{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected sender error, got %v", err)
	}
}

func TestCompose_ResetTemplate(t *testing.T) {
	sender := notification.NewEmailSender(notification.SMTPConfig{From: "noreply@kasap.app"}, filepath.Join("..", "..", "templates"))

	m, err := sender.Compose(notification.Email{
		To:       "user@example.com",
		Subject:  "KasapApp password reset",
		Template: "reset_password",
		Data:     map[string]any{"code": "482913", "redirect": "kasapapp://reset-password"},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "482913") {
		t.Fatalf("code missing from message")
	}
	if !strings.Contains(out, "To: user@example.com") {
		t.Fatalf("recipient header missing")
	}
}

func TestCompose_MissingTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "only_html.html"), []byte("<p>{{.x}}</p>"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	sender := notification.NewEmailSender(notification.SMTPConfig{From: "a@b.co"}, dir)

	if _, err := sender.Compose(notification.Email{To: "x@y.z", Template: "absent"}); err == nil {
		t.Fatalf("expected error for missing template")
	}
	if _, err := sender.Compose(notification.Email{To: "x@y.z", Template: "only_html"}); err == nil {
		t.Fatalf("expected error for missing plain text part")
	}
}
