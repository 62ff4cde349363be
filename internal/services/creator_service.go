package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
	"paidlinks-api/internal/validator"
	"paidlinks-api/pkg/logging"
)

// UpdateProfileRequest is the editable part of a creator profile
type UpdateProfileRequest struct {
	Username          string          `json:"username" validate:"required,slug_username"`
	DisplayName       string          `json:"display_name" validate:"max=120"`
	AvatarURL         string          `json:"avatar_url" validate:"omitempty,url,max=500"`
	SubscriptionPrice decimal.Decimal `json:"subscription_price"`
}

// PublicProfile is what anyone can see about a creator
type PublicProfile struct {
	models.CreatorSummary
	SubscriptionPrice string `json:"subscription_price"`
}

// CreatorService manages creator profiles
type CreatorService struct {
	store    *database.Store
	validate *validator.Validator
}

// NewCreatorService creates a new creator service
func NewCreatorService(store *database.Store, v *validator.Validator) *CreatorService {
	return &CreatorService{store: store, validate: v}
}

// UpsertProfile creates or replaces the caller's profile. Usernames are unique.
func (s *CreatorService) UpsertProfile(ctx context.Context, creatorID string, req UpdateProfileRequest) (*models.Creator, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	fields := map[string]string{}
	collectValidation(fields, s.validate.Validate(req))
	checkMoney(fields, "subscription_price", req.SubscriptionPrice)
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	existing, err := s.store.GetCreatorByUsername(ctx, req.Username)
	switch {
	case err == nil && existing.ID != creatorID:
		return nil, apperrors.Conflict("username is already taken")
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	creator := &models.Creator{
		ID:                creatorID,
		Username:          req.Username,
		DisplayName:       displayName,
		AvatarURL:         req.AvatarURL,
		SubscriptionPrice: req.SubscriptionPrice,
	}
	if err := s.store.UpsertCreator(ctx, creator); err != nil {
		if database.IsDuplicate(err) {
			return nil, apperrors.Conflict("username is already taken")
		}
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	logging.Infof("Creator profile saved - creator: %s, username: %s", creatorID, req.Username)
	return s.store.GetCreator(ctx, creatorID)
}

// GetProfile returns the caller's own profile
func (s *CreatorService) GetProfile(ctx context.Context, creatorID string) (*models.Creator, error) {
	return s.store.GetCreator(ctx, creatorID)
}

// GetPublicProfile looks a creator up by username
func (s *CreatorService) GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error) {
	creator, err := s.store.GetCreatorByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		CreatorSummary:    creator.Summary(),
		SubscriptionPrice: FormatMoney(creator.SubscriptionPrice),
	}, nil
}

// creatorSummary returns the public summary of a creator. A creator who has
// not set up a profile yet is shown by id only.
func creatorSummary(ctx context.Context, store *database.Store, creatorID string) (models.CreatorSummary, error) {
	creator, err := store.GetCreator(ctx, creatorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.CreatorSummary{ID: creatorID}, nil
		}
		return models.CreatorSummary{}, err
	}
	return creator.Summary(), nil
}

// collectValidation merges a validator result into fields. Errors that are
// not field failures are recorded under "_".
func collectValidation(fields map[string]string, err error) {
	if err == nil {
		return
	}
	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		for k, v := range vErr.Fields {
			fields[k] = v
		}
		return
	}
	fields["_"] = err.Error()
}

// checkMoney rejects negative amounts and fractions of a cent
func checkMoney(fields map[string]string, field string, amount decimal.Decimal) {
	switch {
	case amount.IsNegative():
		fields[field] = "must be at least 0"
	case !amount.Equal(amount.Truncate(2)):
		fields[field] = "must have at most 2 decimal places"
	}
}
