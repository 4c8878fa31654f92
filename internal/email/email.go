// internal/email/email.go
package email

import "context"

//go:generate mockgen -typed -source=./email.go -destination=../mocks/mock_sender.go -package=mocks Sender

// Sender delivers transactional email. Delivery is best-effort and always
// happens outside the database transaction; notification rows, not email,
// are the source of truth.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NoopSender discards all mail. Used when no provider is configured and in
// tests.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, to, subject, body string) error { return nil }
