package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/meiduo/storefront-backend/internal/config"
	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/observability"
	"github.com/meiduo/storefront-backend/internal/repository"
	"github.com/meiduo/storefront-backend/internal/security"
)

var mobileRe = regexp.MustCompile(`^1[3-9]\d{9}$`)

type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
	Mobile          string
	SMSCode         string
	Allow           string
}

type RegisterResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type RegistrationService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	codeStore VerificationCodeStore
	hasher    *security.PasswordHasher
	tokenSvc  *TokenService
	logger    *slog.Logger
}

func NewRegistrationService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	codeStore VerificationCodeStore,
	hasher *security.PasswordHasher,
	tokenSvc *TokenService,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		cfg:       cfg,
		userRepo:  userRepo,
		codeStore: codeStore,
		hasher:    hasher,
		tokenSvc:  tokenSvc,
		logger:    logger,
	}
}

// Register validates in a fixed order, consumes the SMS code, creates the
// account and mints a session token. The first violated check wins; only a
// fully valid request reaches the store. No account row exists after any
// failure.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordRegistrationAttempt(ctx, outcome, time.Since(start)) }()

	username := strings.TrimSpace(input.Username)
	mobile := strings.TrimSpace(input.Mobile)

	if input.Allow != "true" {
		outcome = "bad_request"
		return nil, &ValidationError{Field: "allow", Reason: "terms must be accepted"}
	}
	if !mobileRe.MatchString(mobile) {
		outcome = "bad_request"
		return nil, &ValidationError{Field: "mobile", Reason: "must match 1[3-9] followed by 9 digits"}
	}
	if n := len(username); n < s.cfg.UsernameMinLen || n > s.cfg.UsernameMaxLen {
		outcome = "bad_request"
		return nil, &ValidationError{
			Field:  "username",
			Reason: fmt.Sprintf("length must be %d-%d characters", s.cfg.UsernameMinLen, s.cfg.UsernameMaxLen),
		}
	}
	if n := len(input.Password); n < s.cfg.PasswordMinLen || n > s.cfg.PasswordMaxLen {
		outcome = "bad_request"
		return nil, &ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("length must be %d-%d characters", s.cfg.PasswordMinLen, s.cfg.PasswordMaxLen),
		}
	}
	if input.Password != input.PasswordConfirm {
		outcome = "bad_request"
		return nil, &ValidationError{Field: "password2", Reason: "passwords do not match"}
	}

	if err := s.checkSMSCode(ctx, mobile, input.SMSCode); err != nil {
		outcome = classifyOutcome(err)
		return nil, err
	}

	// Friendly pre-checks attribute the conflicting field; the unique index
	// at insert remains the authority under races.
	if err := s.checkAvailability(username, mobile); err != nil {
		outcome = classifyOutcome(err)
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	user := &domain.User{Username: username, Mobile: mobile, PasswordHash: hash}
	if err := s.userRepo.Create(user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			outcome = "conflict"
			return nil, &ConflictError{Field: "username"}
		case errors.Is(err, repository.ErrDuplicateMobile):
			outcome = "conflict"
			return nil, &ConflictError{Field: "mobile"}
		case errors.Is(err, repository.ErrDuplicateUser):
			outcome = "conflict"
			return nil, &ConflictError{Field: "account"}
		}
		outcome = "error"
		return nil, err
	}

	// Consume the code only once the account exists: a failed insert leaves
	// it valid for an immediate retry, while success closes the replay
	// window. A failed delete is logged and left to the TTL.
	if err := s.codeStore.Delete(ctx, mobile); err != nil {
		s.logger.WarnContext(ctx, "failed to consume sms code", "mobile", mobile, "error", err)
	}

	token, expiresAt, err := s.tokenSvc.Issue(user)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	s.logger.InfoContext(ctx, "account registered", "user_id", user.ID, "username", user.Username)
	return &RegisterResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *RegistrationService) checkSMSCode(ctx context.Context, mobile, smsCode string) error {
	code, ok, err := s.codeStore.Get(ctx, mobile)
	if err != nil {
		// A store failure is retryable and must not read as "code absent".
		observability.RecordSMSCodeCheck(ctx, "store_error")
		return err
	}
	if !ok {
		observability.RecordSMSCodeCheck(ctx, "missing_or_expired")
		return &VerificationError{Kind: VerificationMissingOrExpired}
	}
	if code != smsCode {
		observability.RecordSMSCodeCheck(ctx, "mismatch")
		return &VerificationError{Kind: VerificationMismatch}
	}
	observability.RecordSMSCodeCheck(ctx, "match")
	return nil
}

func (s *RegistrationService) checkAvailability(username, mobile string) error {
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return &ConflictError{Field: "username"}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if _, err := s.userRepo.FindByMobile(mobile); err == nil {
		return &ConflictError{Field: "mobile"}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	return nil
}

func classifyOutcome(err error) string {
	var (
		ve *ValidationError
		ce *ConflictError
		se *VerificationError
	)
	switch {
	case errors.As(err, &ve):
		return "bad_request"
	case errors.As(err, &se):
		return "verification_failed"
	case errors.As(err, &ce):
		return "conflict"
	case IsTransient(err):
		return "transient_error"
	default:
		return "error"
	}
}
