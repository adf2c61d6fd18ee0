package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/meiduo/storefront-backend/internal/config"
	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/observability"
	"github.com/meiduo/storefront-backend/internal/repository"
	"github.com/meiduo/storefront-backend/internal/security"
)

var ErrInvalidEmailToken = errors.New("invalid or expired email verification token")

// EmailService binds an address to an account and later confirms it through
// a signed, time-limited link.
type EmailService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	jwtMgr   *security.JWTManager
	queue    *MailQueue
	logger   *slog.Logger
}

func NewEmailService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	jwtMgr *security.JWTManager,
	queue *MailQueue,
	logger *slog.Logger,
) *EmailService {
	return &EmailService{cfg: cfg, userRepo: userRepo, jwtMgr: jwtMgr, queue: queue, logger: logger}
}

// BindEmail persists the address unverified, then enqueues the verification
// mail. The enqueue is best effort: once the update commits, nothing on the
// notification path can roll it back.
func (s *EmailService) BindEmail(ctx context.Context, userID uint, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		observability.RecordEmailBindingEvent(ctx, "bind", "bad_request")
		return nil, &ValidationError{Field: "email", Reason: "email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		observability.RecordEmailBindingEvent(ctx, "bind", "bad_request")
		return nil, &ValidationError{Field: "email", Reason: "invalid email address"}
	}

	if err := s.userRepo.UpdateEmail(userID, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordEmailBindingEvent(ctx, "bind", "not_found")
			return nil, &NotFoundError{Resource: "user", ID: userID}
		}
		observability.RecordEmailBindingEvent(ctx, "bind", "error")
		return nil, err
	}

	verifyURL, err := s.buildVerifyURL(userID, email)
	if err != nil {
		// The address is already bound; a bad verify link only costs the
		// notification.
		s.logger.WarnContext(ctx, "failed to build verification url", "user_id", userID, "error", err)
	} else {
		s.queue.Enqueue(VerificationMail{UserID: userID, ToAddress: email, VerifyURL: verifyURL})
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		observability.RecordEmailBindingEvent(ctx, "bind", "error")
		return nil, err
	}
	observability.RecordEmailBindingEvent(ctx, "bind", "success")
	return user, nil
}

// ConfirmEmail validates the signed link token and marks the bound address
// verified. A token minted for an address the user has since replaced is
// rejected.
func (s *EmailService) ConfirmEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		observability.RecordEmailBindingEvent(ctx, "confirm", "bad_request")
		return ErrInvalidEmailToken
	}
	claims, err := s.jwtMgr.ParseEmailVerifyToken(token)
	if err != nil {
		observability.RecordEmailBindingEvent(ctx, "confirm", "invalid_token")
		return ErrInvalidEmailToken
	}
	// Parse at the platform's uint width so an out-of-range subject fails
	// here instead of truncating in the conversion below.
	userID64, err := strconv.ParseUint(claims.Subject, 10, strconv.IntSize)
	if err != nil {
		observability.RecordEmailBindingEvent(ctx, "confirm", "invalid_token")
		return ErrInvalidEmailToken
	}
	if err := s.userRepo.MarkEmailVerified(uint(userID64), claims.Email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordEmailBindingEvent(ctx, "confirm", "stale_token")
			return ErrInvalidEmailToken
		}
		observability.RecordEmailBindingEvent(ctx, "confirm", "error")
		return err
	}
	observability.RecordEmailBindingEvent(ctx, "confirm", "success")
	return nil
}

func (s *EmailService) buildVerifyURL(userID uint, email string) (string, error) {
	token, err := s.jwtMgr.SignEmailVerifyToken(userID, email, s.cfg.EmailVerifyTokenTTL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(s.cfg.EmailVerifyBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid EMAIL_VERIFY_BASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
