package database

import (
	"context"

	"paidlinks-api/internal/models"
)

// CreateMediaAsset stores a feed or vault asset
func (s *Store) CreateMediaAsset(ctx context.Context, asset *models.MediaAsset) error {
	return s.conn(ctx).Create(asset).Error
}

// GetMediaAsset loads an asset by id
func (s *Store) GetMediaAsset(ctx context.Context, id uint) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	if err := s.conn(ctx).First(&asset, id).Error; err != nil {
		return nil, notFound(err, "media asset")
	}
	return &asset, nil
}

// ListMediaAssets lists a creator's assets, optionally for one source
func (s *Store) ListMediaAssets(ctx context.Context, creatorID string, source models.MediaSource) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	q := s.conn(ctx).Where("creator_id = ?", creatorID)
	if source != "" {
		q = q.Where("source = ?", source)
	}
	err := q.Order("created_at DESC").Find(&assets).Error
	return assets, err
}
