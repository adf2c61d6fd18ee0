package service

import (
	"context"

	"github.com/meiduo/storefront-backend/internal/domain"
)

type RegistrationServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
}

type EmailServiceInterface interface {
	BindEmail(ctx context.Context, userID uint, email string) (*domain.User, error)
	ConfirmEmail(ctx context.Context, token string) error
}

type BrowsingHistoryServiceInterface interface {
	RecordView(ctx context.Context, userID, skuID uint) error
	Recent(ctx context.Context, userID uint, limit int) ([]uint, error)
	RecentSKUs(ctx context.Context, userID uint, limit int) ([]domain.SKU, error)
}
