package database

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paidlinks-api/internal/models"
)

// CreatePaidLink inserts a link. A slug collision surfaces as gorm.ErrDuplicatedKey.
func (s *Store) CreatePaidLink(ctx context.Context, link *models.PaidLink) error {
	return s.conn(ctx).Create(link).Error
}

// GetPaidLinkBySlug loads a link by its public slug
func (s *Store) GetPaidLinkBySlug(ctx context.Context, slug string) (*models.PaidLink, error) {
	var link models.PaidLink
	if err := s.conn(ctx).Where("slug = ?", slug).First(&link).Error; err != nil {
		return nil, notFound(err, "paid link")
	}
	return &link, nil
}

// GetPaidLinkByID loads a link by primary key
func (s *Store) GetPaidLinkByID(ctx context.Context, id uint) (*models.PaidLink, error) {
	var link models.PaidLink
	if err := s.conn(ctx).First(&link, id).Error; err != nil {
		return nil, notFound(err, "paid link")
	}
	return &link, nil
}

// LockPaidLink loads a link with a row lock held until the transaction ends
func (s *Store) LockPaidLink(ctx context.Context, id uint) (*models.PaidLink, error) {
	var link models.PaidLink
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&link, id).Error
	if err != nil {
		return nil, notFound(err, "paid link")
	}
	return &link, nil
}

// ListPaidLinksByCreator returns a creator's links, newest first
func (s *Store) ListPaidLinksByCreator(ctx context.Context, creatorID string) ([]models.PaidLink, error) {
	var links []models.PaidLink
	err := s.conn(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&links).Error
	return links, err
}

// UpdatePaidLink writes the given columns
func (s *Store) UpdatePaidLink(ctx context.Context, id uint, updates map[string]interface{}) error {
	return s.conn(ctx).Model(&models.PaidLink{}).Where("id = ?", id).Updates(updates).Error
}

// IncrementViews bumps the view counter without touching updated_at
func (s *Store) IncrementViews(ctx context.Context, id uint) error {
	return s.conn(ctx).Model(&models.PaidLink{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

// RecordSale adds one purchase and its amount to the link counters.
// Call inside a transaction after LockPaidLink.
func (s *Store) RecordSale(ctx context.Context, link *models.PaidLink, amount decimal.Decimal) error {
	earnings := link.TotalEarnings.Add(amount)
	err := s.conn(ctx).Model(&models.PaidLink{}).
		Where("id = ?", link.ID).
		UpdateColumns(map[string]interface{}{
			"purchases_count": gorm.Expr("purchases_count + ?", 1),
			"total_earnings":  earnings,
		}).Error
	if err != nil {
		return err
	}

	link.PurchasesCount++
	link.TotalEarnings = earnings
	return nil
}

// DeletePaidLink soft deletes a link; the slug stays reserved
func (s *Store) DeletePaidLink(ctx context.Context, id uint) error {
	return s.conn(ctx).Delete(&models.PaidLink{}, id).Error
}

// PaidLinkStats sums a creator's counters
func (s *Store) PaidLinkStats(ctx context.Context, creatorID string) (*models.LinkStats, error) {
	var stats models.LinkStats
	err := s.conn(ctx).Model(&models.PaidLink{}).
		Select(`COUNT(*) AS total_links,
			COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active_links,
			COALESCE(SUM(views_count), 0) AS total_views,
			COALESCE(SUM(purchases_count), 0) AS total_purchases,
			COALESCE(SUM(total_earnings), 0) AS total_earnings`).
		Where("creator_id = ?", creatorID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
