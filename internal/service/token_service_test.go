package service

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/security"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	cfg := testConfig()
	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)
	svc := NewTokenService(jwtMgr, time.Hour)

	user := &domain.User{ID: 42, Username: "johndoe99"}
	token, expiresAt, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 55*time.Minute || remaining > time.Hour {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != strconv.FormatUint(uint64(user.ID), 10) {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
	if claims.Username != "johndoe99" {
		t.Fatalf("expected username claim, got %q", claims.Username)
	}

	if _, err := svc.Parse("not.a.token"); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
