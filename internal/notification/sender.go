package notification

import (
	"fmt"
	htmltemplate "html/template"
	"io"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	gopkgmail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

// Email is one outgoing message. Template is the base name of a
// <name>.txt and <name>.html pair in the sender's template directory.
type Email struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

type mailDialer interface {
	DialAndSend(m ...*gopkgmail.Message) error
}

type EmailSender struct {
	from   string
	dir    string
	dialer mailDialer
}

func NewEmailSender(cfg SMTPConfig, tmplDir string) *EmailSender {
	d := gopkgmail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &EmailSender{from: cfg.From, dir: tmplDir, dialer: d}
}

func (s *EmailSender) SendEmail(n Email) error {
	m, err := s.Compose(n)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", n.To, err)
	}
	return nil
}

// Compose builds a multipart/alternative message with the plain text part
// first. Both template files must exist.
func (s *EmailSender) Compose(n Email) (*gopkgmail.Message, error) {
	txtPath := filepath.Join(s.dir, n.Template+".txt")
	plain, err := render(txtPath, func(p string) (executor, error) { return texttemplate.ParseFiles(p) }, n.Data)
	if err != nil {
		return nil, err
	}
	htmlPath := filepath.Join(s.dir, n.Template+".html")
	html, err := render(htmlPath, func(p string) (executor, error) { return htmltemplate.ParseFiles(p) }, n.Data)
	if err != nil {
		return nil, err
	}

	m := gopkgmail.NewMessage()
	m.SetHeaders(map[string][]string{
		"From":    {s.from},
		"To":      {n.To},
		"Subject": {n.Subject},
	})
	m.SetBody("text/plain", plain)
	m.AddAlternative("text/html", html)
	return m, nil
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func render(path string, parse func(string) (executor, error), data map[string]any) (string, error) {
	t, err := parse(path)
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", filepath.Base(path), err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", filepath.Base(path), err)
	}
	return sb.String(), nil
}
