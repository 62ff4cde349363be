package database

import (
	"context"

	"paidlinks-api/internal/models"
)

// CreatePurchase inserts a purchase row
func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	return s.conn(ctx).Create(purchase).Error
}

// GetPurchaseByToken finds the purchase an access token was minted for
func (s *Store) GetPurchaseByToken(ctx context.Context, token string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.conn(ctx).Where("access_token = ?", token).First(&purchase).Error; err != nil {
		return nil, notFound(err, "purchase")
	}
	return &purchase, nil
}

// GetPurchaseByIdempotencyKey finds an earlier purchase made with the same key
func (s *Store) GetPurchaseByIdempotencyKey(ctx context.Context, key string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.conn(ctx).Where("idempotency_key = ?", key).First(&purchase).Error; err != nil {
		return nil, notFound(err, "purchase")
	}
	return &purchase, nil
}

// ListPurchasesByLink returns a link's purchases, newest first
func (s *Store) ListPurchasesByLink(ctx context.Context, linkID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.conn(ctx).
		Where("link_id = ?", linkID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

// CountPurchasesByLink counts purchases referencing a link
func (s *Store) CountPurchasesByLink(ctx context.Context, linkID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Purchase{}).Where("link_id = ?", linkID).Count(&count).Error
	return count, err
}
