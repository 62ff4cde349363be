package database

import (
	"context"

	"gorm.io/gorm/clause"

	"paidlinks-api/internal/models"
)

// GetCreator loads a creator by id
func (s *Store) GetCreator(ctx context.Context, id string) (*models.Creator, error) {
	var creator models.Creator
	if err := s.conn(ctx).Where("id = ?", id).First(&creator).Error; err != nil {
		return nil, notFound(err, "creator")
	}
	return &creator, nil
}

// GetCreatorByUsername loads a creator by public username
func (s *Store) GetCreatorByUsername(ctx context.Context, username string) (*models.Creator, error) {
	var creator models.Creator
	if err := s.conn(ctx).Where("username = ?", username).First(&creator).Error; err != nil {
		return nil, notFound(err, "creator")
	}
	return &creator, nil
}

// UpsertCreator creates the profile or overwrites its editable columns
func (s *Store) UpsertCreator(ctx context.Context, creator *models.Creator) error {
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "avatar_url", "subscription_price", "updated_at"}),
	}).Create(creator).Error
}
