package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/repository"
	"github.com/meiduo/storefront-backend/internal/security"
)

type capturingMailer struct {
	mu   sync.Mutex
	sent []VerificationMail
	err  error
}

func (m *capturingMailer) SendVerificationEmail(_ context.Context, mail VerificationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *capturingMailer) delivered() []VerificationMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]VerificationMail, len(m.sent))
	copy(out, m.sent)
	return out
}

type emailFixture struct {
	svc    *EmailService
	users  repository.UserRepository
	mailer *capturingMailer
	queue  *MailQueue
}

func newEmailFixture(t *testing.T) *emailFixture {
	t.Helper()
	cfg := testConfig()
	users := repository.NewUserRepository(openServiceTestDB(t))
	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)
	mailer := &capturingMailer{}
	queue := NewMailQueue(mailer, slog.Default(), cfg.MailQueueSize)
	t.Cleanup(queue.Close)
	svc := NewEmailService(cfg, users, jwtMgr, queue, slog.Default())
	return &emailFixture{svc: svc, users: users, mailer: mailer, queue: queue}
}

func (fx *emailFixture) seedUser(t *testing.T) *domain.User {
	t.Helper()
	user := &domain.User{Username: "johndoe99", Mobile: "13812345678", PasswordHash: "x"}
	if err := fx.users.Create(user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestBindEmailValidation(t *testing.T) {
	fx := newEmailFixture(t)
	user := fx.seedUser(t)

	for _, tc := range []struct {
		name  string
		email string
	}{
		{"empty", "   "},
		{"no at sign", "not-an-address"},
		{"missing domain", "john@"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.BindEmail(context.Background(), user.ID, tc.email)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != "email" {
				t.Fatalf("expected field email, got %q", ve.Field)
			}
		})
	}
}

func TestBindEmailUnknownUser(t *testing.T) {
	fx := newEmailFixture(t)

	_, err := fx.svc.BindEmail(context.Background(), 9999, "john@example.com")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Resource != "user" {
		t.Fatalf("expected user resource, got %q", nf.Resource)
	}
}

func TestBindEmailPersistsUnverifiedAndSendsLink(t *testing.T) {
	fx := newEmailFixture(t)
	user := fx.seedUser(t)

	bound, err := fx.svc.BindEmail(context.Background(), user.ID, "  John@Example.COM ")
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound.Email != "john@example.com" {
		t.Fatalf("expected normalized address, got %q", bound.Email)
	}
	if bound.EmailVerified {
		t.Fatal("binding must not pre-verify the address")
	}

	fx.queue.Close()
	sent := fx.mailer.delivered()
	if len(sent) != 1 {
		t.Fatalf("expected one verification mail, got %d", len(sent))
	}
	if sent[0].ToAddress != "john@example.com" {
		t.Fatalf("mail addressed to %q", sent[0].ToAddress)
	}

	u, err := url.Parse(sent[0].VerifyURL)
	if err != nil {
		t.Fatalf("parse verify url: %v", err)
	}
	token := u.Query().Get("token")
	if token == "" {
		t.Fatal("verify url carries no token")
	}

	if err := fx.svc.ConfirmEmail(context.Background(), token); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	reloaded, err := fx.users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !reloaded.EmailVerified {
		t.Fatal("expected address verified after confirmation")
	}
}

func TestBindEmailSurvivesMailerFailure(t *testing.T) {
	fx := newEmailFixture(t)
	fx.mailer.err = errors.New("smtp down")
	user := fx.seedUser(t)

	bound, err := fx.svc.BindEmail(context.Background(), user.ID, "john@example.com")
	if err != nil {
		t.Fatalf("bind must not surface delivery failure, got %v", err)
	}
	if bound.Email != "john@example.com" {
		t.Fatalf("expected bound address, got %q", bound.Email)
	}
}

func TestConfirmEmailRejectsBadTokens(t *testing.T) {
	fx := newEmailFixture(t)

	for _, tc := range []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := fx.svc.ConfirmEmail(context.Background(), tc.token); !errors.Is(err, ErrInvalidEmailToken) {
				t.Fatalf("expected ErrInvalidEmailToken, got %v", err)
			}
		})
	}
}

func TestConfirmEmailRejectsOverflowingSubject(t *testing.T) {
	fx := newEmailFixture(t)
	cfg := testConfig()

	// A well-signed token whose subject exceeds any uint width must read as
	// invalid, not wrap into some other user's id.
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":     cfg.JWTIssuer,
		"aud":     cfg.JWTAudience,
		"sub":     "99999999999999999999999999999999",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
		"email":   "john@example.com",
		"purpose": "email_verify",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if err := fx.svc.ConfirmEmail(context.Background(), token); !errors.Is(err, ErrInvalidEmailToken) {
		t.Fatalf("expected ErrInvalidEmailToken, got %v", err)
	}
}

func TestConfirmEmailRejectsStaleTokenAfterRebinding(t *testing.T) {
	fx := newEmailFixture(t)
	user := fx.seedUser(t)

	if _, err := fx.svc.BindEmail(context.Background(), user.ID, "old@example.com"); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if _, err := fx.svc.BindEmail(context.Background(), user.ID, "new@example.com"); err != nil {
		t.Fatalf("second bind: %v", err)
	}

	fx.queue.Close()
	sent := fx.mailer.delivered()
	if len(sent) != 2 {
		t.Fatalf("expected two verification mails, got %d", len(sent))
	}

	staleURL, _ := url.Parse(sent[0].VerifyURL)
	if err := fx.svc.ConfirmEmail(context.Background(), staleURL.Query().Get("token")); !errors.Is(err, ErrInvalidEmailToken) {
		t.Fatalf("expected stale token rejection, got %v", err)
	}

	freshURL, _ := url.Parse(sent[1].VerifyURL)
	if err := fx.svc.ConfirmEmail(context.Background(), freshURL.Query().Get("token")); err != nil {
		t.Fatalf("fresh token must confirm, got %v", err)
	}
	reloaded, err := fx.users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Email != "new@example.com" || !reloaded.EmailVerified {
		t.Fatalf("expected new@example.com verified, got %q verified=%v", reloaded.Email, reloaded.EmailVerified)
	}
}
