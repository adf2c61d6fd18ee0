package service

import (
	"context"
	"time"

	"github.com/meiduo/storefront-backend/internal/config"
	"github.com/meiduo/storefront-backend/internal/domain"
	"github.com/meiduo/storefront-backend/internal/observability"
	"github.com/meiduo/storefront-backend/internal/repository"
)

// BrowsingHistoryService tracks which SKUs a user viewed most recently.
type BrowsingHistoryService struct {
	cfg     *config.Config
	skuRepo repository.SKURepository
	store   BrowsingHistoryStore
}

func NewBrowsingHistoryService(cfg *config.Config, skuRepo repository.SKURepository, store BrowsingHistoryStore) *BrowsingHistoryService {
	return &BrowsingHistoryService{cfg: cfg, skuRepo: skuRepo, store: store}
}

// RecordView verifies the SKU exists, then applies the dedup-insert-trim
// batch to the user's list.
func (s *BrowsingHistoryService) RecordView(ctx context.Context, userID, skuID uint) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordHistoryUpdate(ctx, outcome, time.Since(start)) }()

	ok, err := s.skuRepo.Exists(skuID)
	if err != nil {
		outcome = "error"
		return err
	}
	if !ok {
		outcome = "not_found"
		return &NotFoundError{Resource: "sku", ID: skuID}
	}
	if err := s.store.Push(ctx, userID, skuID, s.cfg.BrowsingHistoryLimit); err != nil {
		outcome = classifyOutcome(err)
		return err
	}
	return nil
}

// Recent returns at most min(limit, cap) recently viewed SKU ids,
// most-recent-first. limit <= 0 means the full capped list.
func (s *BrowsingHistoryService) Recent(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if limit <= 0 || limit > s.cfg.BrowsingHistoryLimit {
		limit = s.cfg.BrowsingHistoryLimit
	}
	return s.store.Recent(ctx, userID, limit)
}

// RecentSKUs resolves the recent ids to catalog rows, preserving order and
// skipping SKUs removed from the catalog since they were viewed.
func (s *BrowsingHistoryService) RecentSKUs(ctx context.Context, userID uint, limit int) ([]domain.SKU, error) {
	ids, err := s.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.skuRepo.FindByIDs(ids)
}
