package services

import (
	"context"
	"fmt"
	"strings"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
	"paidlinks-api/internal/validator"
)

// RegisterAssetRequest records media the creator has already uploaded
type RegisterAssetRequest struct {
	Source       models.MediaSource `json:"source" validate:"required,oneof=feed vault"`
	Title        string             `json:"title" validate:"max=200"`
	MediaURL     string             `json:"media_url" validate:"required,url,max=1000"`
	ThumbnailURL string             `json:"thumbnail_url" validate:"omitempty,url,max=1000"`
	MediaKind    models.MediaKind   `json:"media_type" validate:"required,media_kind"`
}

// VaultService keeps the creator's feed and vault media
type VaultService struct {
	store    *database.Store
	validate *validator.Validator
}

// NewVaultService creates a new vault service
func NewVaultService(store *database.Store, v *validator.Validator) *VaultService {
	return &VaultService{store: store, validate: v}
}

// Register stores an asset for later use as a link source
func (s *VaultService) Register(ctx context.Context, creatorID string, req RegisterAssetRequest) (*models.MediaAsset, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	asset := &models.MediaAsset{
		CreatorID:    creatorID,
		Source:       req.Source,
		Title:        strings.TrimSpace(req.Title),
		MediaURL:     req.MediaURL,
		ThumbnailURL: req.ThumbnailURL,
		MediaKind:    req.MediaKind,
	}
	if err := s.store.CreateMediaAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to store media asset: %w", err)
	}
	return asset, nil
}

// List returns the creator's assets; an empty source lists both kinds
func (s *VaultService) List(ctx context.Context, creatorID string, source models.MediaSource) ([]models.MediaAsset, error) {
	switch source {
	case "", models.SourceFeed, models.SourceVault:
	default:
		return nil, apperrors.Invalid("source", "must be one of: feed vault")
	}

	assets, err := s.store.ListMediaAssets(ctx, creatorID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list media assets: %w", err)
	}
	return assets, nil
}
