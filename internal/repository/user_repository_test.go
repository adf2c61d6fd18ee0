package repository

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meiduo/storefront-backend/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.SKU{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, repo UserRepository, username, mobile string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Mobile: mobile, PasswordHash: "x"}
	if err := repo.Create(u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func TestUserRepositoryCreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := seedUser(t, repo, "johndoe99", "13812345678")

	byID, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Username != "johndoe99" {
		t.Fatalf("unexpected username %q", byID.Username)
	}

	byUsername, err := repo.FindByUsername("johndoe99")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if byUsername.ID != u.ID {
		t.Fatalf("expected id %d, got %d", u.ID, byUsername.ID)
	}

	byMobile, err := repo.FindByMobile("13812345678")
	if err != nil {
		t.Fatalf("find by mobile: %v", err)
	}
	if byMobile.ID != u.ID {
		t.Fatalf("expected id %d, got %d", u.ID, byMobile.ID)
	}

	if _, err := repo.FindByUsername("nosuchuser"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryDuplicateClassification(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	seedUser(t, repo, "johndoe99", "13812345678")

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(&domain.User{Username: "johndoe99", Mobile: "13912345678", PasswordHash: "x"})
		if !errors.Is(err, ErrDuplicateUsername) {
			t.Fatalf("expected ErrDuplicateUsername, got %v", err)
		}
	})

	t.Run("duplicate mobile", func(t *testing.T) {
		err := repo.Create(&domain.User{Username: "janedoe99", Mobile: "13812345678", PasswordHash: "x"})
		if !errors.Is(err, ErrDuplicateMobile) {
			t.Fatalf("expected ErrDuplicateMobile, got %v", err)
		}
	})

	t.Run("exactly one row per identity", func(t *testing.T) {
		if _, err := repo.FindByMobile("13812345678"); err != nil {
			t.Fatalf("original row should survive: %v", err)
		}
		if _, err := repo.FindByUsername("janedoe99"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("conflicting row should not exist, got %v", err)
		}
	})
}

func TestUserRepositoryEmailLifecycle(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := seedUser(t, repo, "johndoe99", "13812345678")

	if err := repo.UpdateEmail(u.ID, "john@example.com"); err != nil {
		t.Fatalf("update email: %v", err)
	}
	got, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Email != "john@example.com" || got.EmailVerified {
		t.Fatalf("expected unverified john@example.com, got %q verified=%v", got.Email, got.EmailVerified)
	}

	t.Run("verify with stale email fails", func(t *testing.T) {
		if err := repo.MarkEmailVerified(u.ID, "old@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("verify with current email succeeds", func(t *testing.T) {
		if err := repo.MarkEmailVerified(u.ID, "john@example.com"); err != nil {
			t.Fatalf("mark verified: %v", err)
		}
		got, err := repo.FindByID(u.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if !got.EmailVerified {
			t.Fatal("expected email_verified=true")
		}
	})

	t.Run("rebinding resets verification", func(t *testing.T) {
		if err := repo.UpdateEmail(u.ID, "john2@example.com"); err != nil {
			t.Fatalf("update email: %v", err)
		}
		got, err := repo.FindByID(u.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.EmailVerified {
			t.Fatal("expected rebinding to clear email_verified")
		}
	})

	t.Run("update email for unknown user", func(t *testing.T) {
		if err := repo.UpdateEmail(9999, "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
