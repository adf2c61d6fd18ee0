package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/observability"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUser     = errors.New("duplicate user")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateMobile   = errors.New("mobile already registered")
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id uint) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	FindByMobile(mobile string) (*domain.User, error)
	UpdateEmail(userID uint, email string) error
	MarkEmailVerified(userID uint, email string) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

// Create relies on the unique indexes on username and mobile; the insert is
// the serialization point for concurrent registrations of the same identity.
func (r *GormUserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "user", "create", "conflict")
			return classifyDuplicate(err)
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create", "success")
	return nil
}

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByUsername(username string) (*domain.User, error) {
	return r.findOne("find_by_username", "username = ?", username)
}

func (r *GormUserRepository) FindByMobile(mobile string) (*domain.User, error) {
	return r.findOne("find_by_mobile", "mobile = ?", mobile)
}

func (r *GormUserRepository) findOne(op, query string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.db.Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", op, "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", op, "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", op, "success")
	return &u, nil
}

func (r *GormUserRepository) UpdateEmail(userID uint, email string) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{"email": email, "email_verified": false})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "update_email", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "update_email", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "update_email", "success")
	return nil
}

// MarkEmailVerified flips the verified flag only while the stored email still
// matches, so a token minted for a previously bound address cannot verify a
// newer one.
func (r *GormUserRepository) MarkEmailVerified(userID uint, email string) error {
	res := r.db.Model(&domain.User{}).Where("id = ? AND email = ?", userID, email).
		Update("email_verified", true)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "mark_email_verified", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "mark_email_verified", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "mark_email_verified", "success")
	return nil
}

func classifyDuplicate(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "idx_users_username") || strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "idx_users_mobile") || strings.Contains(msg, "users.mobile"):
		return ErrDuplicateMobile
	default:
		return ErrDuplicateUser
	}
}
