package invite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrz1836/postmark"
)

// EmailSender delivers invitation emails. Implemented by the Postmark
// client in production and by the dev sender locally.
type EmailSender interface {
	Send(ctx context.Context, to, subject, textBody string) error
}

// EmailConfig configures outbound email. With no server token configured
// the dev sender is used and emails land on disk instead.
type EmailConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"EMAIL_SENDER" envDefault:"noreply@primecut.example"`
	DevOutputDir         string `env:"EMAIL_DEV_DIR" envDefault:"./_emails"`
}

// NewSender picks the Postmark client when tokens are configured, the
// dev sender otherwise.
func NewSender(cfg EmailConfig) EmailSender {
	if cfg.PostmarkServerToken == "" {
		return &devSender{dir: cfg.DevOutputDir}
	}
	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:   cfg.SenderEmail,
	}
}

type postmarkSender struct {
	client *postmark.Client
	from   string
}

func (s *postmarkSender) Send(ctx context.Context, to, subject, textBody string) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       to,
		Subject:  subject,
		TextBody: textBody,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

// devSender writes each email as a file so invitation links can be
// followed during local development.
type devSender struct {
	dir string
}

func (s *devSender) Send(_ context.Context, to, subject, textBody string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}

	name := fmt.Sprintf("%d-%s.eml", time.Now().UnixNano(), to)
	content := fmt.Sprintf("To: %s\nSubject: %s\n\n%s\n", to, subject, textBody)
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	return nil
}
