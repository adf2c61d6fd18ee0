package database

import (
	"github.com/meiduo/storefront-backend/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.SKU{},
	)
}
