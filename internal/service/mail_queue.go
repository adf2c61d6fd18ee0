package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/meiduo/storefront-backend/internal/observability"
)

type VerificationMail struct {
	UserID    uint
	ToAddress string
	VerifyURL string
}

// Mailer delivers verification mail. Delivery mechanics live behind this
// interface; callers never learn whether a send succeeded.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, mail VerificationMail) error
}

// DevMailer logs the verification link instead of sending anything.
type DevMailer struct {
	logger *slog.Logger
}

func NewDevMailer(logger *slog.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

func (m *DevMailer) SendVerificationEmail(ctx context.Context, mail VerificationMail) error {
	m.logger.InfoContext(ctx, "verification email issued",
		"user_id", mail.UserID,
		"email", mail.ToAddress,
		"verify_url", mail.VerifyURL,
	)
	return nil
}

// MailQueue is the fire-and-forget boundary between email binding and the
// mailer: Enqueue never blocks the caller on delivery, and delivery failures
// are logged, not surfaced.
type MailQueue struct {
	mailer Mailer
	logger *slog.Logger
	jobs   chan VerificationMail
	done   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	closed bool
}

func NewMailQueue(mailer Mailer, logger *slog.Logger, size int) *MailQueue {
	if size <= 0 {
		size = 1
	}
	q := &MailQueue{
		mailer: mailer,
		logger: logger,
		jobs:   make(chan VerificationMail, size),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue hands the mail to the worker. A full or already-closed queue drops
// the mail rather than blocking or panicking the caller; the address stays
// bound either way and the user can request a fresh link.
func (q *MailQueue) Enqueue(mail VerificationMail) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		observability.RecordMailDispatch(context.Background(), "dropped")
		q.logger.Warn("mail queue closed, dropping verification mail", "user_id", mail.UserID, "email", mail.ToAddress)
		return
	}
	select {
	case q.jobs <- mail:
		observability.RecordMailDispatch(context.Background(), "enqueued")
	default:
		observability.RecordMailDispatch(context.Background(), "dropped")
		q.logger.Warn("mail queue full, dropping verification mail", "user_id", mail.UserID, "email", mail.ToAddress)
	}
}

// Close stops accepting mail and waits for the worker to drain the queue.
// The jobs channel is closed under the same mutex Enqueue sends under, so a
// racing Enqueue either lands before the close or takes the dropped path.
func (q *MailQueue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
		<-q.done
	})
}

func (q *MailQueue) run() {
	defer close(q.done)
	for mail := range q.jobs {
		if err := q.mailer.SendVerificationEmail(context.Background(), mail); err != nil {
			observability.RecordMailDispatch(context.Background(), "send_failed")
			q.logger.Warn("verification email send failed", "user_id", mail.UserID, "email", mail.ToAddress, "error", err)
			continue
		}
		observability.RecordMailDispatch(context.Background(), "sent")
	}
}
