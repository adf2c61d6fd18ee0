package service

import (
	"time"

	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/security"
)

// TokenService mints the stateless session credential returned by
// registration. Nothing is persisted: the signature alone proves identity
// until the configured lifetime runs out.
type TokenService struct {
	jwtMgr     *security.JWTManager
	sessionTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, sessionTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, sessionTTL: sessionTTL}
}

func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	return s.jwtMgr.SignSessionToken(user.ID, user.Username, s.sessionTTL)
}

func (s *TokenService) Parse(token string) (*security.SessionClaims, error) {
	return s.jwtMgr.ParseSessionToken(token)
}
