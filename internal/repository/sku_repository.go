package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/observability"
)

var ErrSKUNotFound = errors.New("sku not found")

type SKURepository interface {
	Create(sku *domain.SKU) error
	FindByID(id uint) (*domain.SKU, error)
	FindByIDs(ids []uint) ([]domain.SKU, error)
	Exists(id uint) (bool, error)
}

type GormSKURepository struct{ db *gorm.DB }

func NewSKURepository(db *gorm.DB) SKURepository { return &GormSKURepository{db: db} }

func (r *GormSKURepository) Create(sku *domain.SKU) error {
	if err := r.db.Create(sku).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "sku", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "sku", "create", "success")
	return nil
}

func (r *GormSKURepository) FindByID(id uint) (*domain.SKU, error) {
	var sku domain.SKU
	if err := r.db.First(&sku, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "sku", "find_by_id", "not_found")
			return nil, ErrSKUNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "sku", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "sku", "find_by_id", "success")
	return &sku, nil
}

// FindByIDs returns the found SKUs in the order of ids. Missing ids are
// skipped, not an error: history lists may reference since-deleted SKUs.
func (r *GormSKURepository) FindByIDs(ids []uint) ([]domain.SKU, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.SKU
	if err := r.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "sku", "find_by_ids", "error")
		return nil, err
	}
	byID := make(map[uint]domain.SKU, len(rows))
	for _, sku := range rows {
		byID[sku.ID] = sku
	}
	ordered := make([]domain.SKU, 0, len(ids))
	for _, id := range ids {
		if sku, ok := byID[id]; ok {
			ordered = append(ordered, sku)
		}
	}
	observability.RecordRepositoryOperation(context.Background(), "sku", "find_by_ids", "success")
	return ordered, nil
}

func (r *GormSKURepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&domain.SKU{}).Where("id = ?", id).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "sku", "exists", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(context.Background(), "sku", "exists", "success")
	return count > 0, nil
}
