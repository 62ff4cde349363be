package database

import (
	"context"

	"paidlinks-api/internal/models"
)

// CreateSubscriptionPackage inserts a package. A second package for the same
// duration surfaces as gorm.ErrDuplicatedKey.
func (s *Store) CreateSubscriptionPackage(ctx context.Context, pkg *models.SubscriptionPackage) error {
	return s.conn(ctx).Create(pkg).Error
}

// GetSubscriptionPackage loads a package by id
func (s *Store) GetSubscriptionPackage(ctx context.Context, id uint) (*models.SubscriptionPackage, error) {
	var pkg models.SubscriptionPackage
	if err := s.conn(ctx).First(&pkg, id).Error; err != nil {
		return nil, notFound(err, "subscription package")
	}
	return &pkg, nil
}

// ListSubscriptionPackages returns a creator's packages by duration.
// activeOnly hides disabled packages for the public listing.
func (s *Store) ListSubscriptionPackages(ctx context.Context, creatorID string, activeOnly bool) ([]models.SubscriptionPackage, error) {
	var pkgs []models.SubscriptionPackage
	q := s.conn(ctx).Where("creator_id = ?", creatorID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("duration_months ASC").Find(&pkgs).Error
	return pkgs, err
}

// UpdateSubscriptionPackage writes the given columns
func (s *Store) UpdateSubscriptionPackage(ctx context.Context, id uint, updates map[string]interface{}) error {
	return s.conn(ctx).Model(&models.SubscriptionPackage{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteSubscriptionPackage removes a package for good so the duration can be reused
func (s *Store) DeleteSubscriptionPackage(ctx context.Context, id uint) error {
	return s.conn(ctx).Unscoped().Delete(&models.SubscriptionPackage{}, id).Error
}
