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

const maxSlugAttempts = 5

// CreateLinkRequest describes a new paid link
type CreateLinkRequest struct {
	Title        string             `json:"title" validate:"required,max=200"`
	Description  string             `json:"description" validate:"max=5000"`
	MediaURL     string             `json:"media_url" validate:"omitempty,url,max=1000"`
	ThumbnailURL string             `json:"thumbnail_url" validate:"omitempty,url,max=1000"`
	MediaKind    models.MediaKind   `json:"media_type" validate:"omitempty,media_kind"`
	Price        decimal.Decimal    `json:"price"`
	SourceType   models.MediaSource `json:"source_type" validate:"omitempty,oneof=upload feed vault"`
	SourceID     *uint              `json:"source_id"`
}

// UpdateLinkRequest patches a link. Nil fields are left alone; the slug and
// media cannot be changed.
type UpdateLinkRequest struct {
	Title        *string          `json:"title" validate:"omitempty,max=200"`
	Description  *string          `json:"description" validate:"omitempty,max=5000"`
	ThumbnailURL *string          `json:"thumbnail_url" validate:"omitempty,url,max=1000"`
	Price        *decimal.Decimal `json:"price"`
	IsActive     *bool            `json:"is_active"`
}

// LinkPreview is the public view of a link before purchase. It never carries
// the media URL.
type LinkPreview struct {
	Slug         string                `json:"slug"`
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Price        string                `json:"price"`
	MediaType    models.MediaKind      `json:"media_type"`
	ThumbnailURL string                `json:"thumbnail_url,omitempty"`
	Blurred      bool                  `json:"blurred"`
	Creator      models.CreatorSummary `json:"creator"`
}

// PaidLinkService owns the paid link registry
type PaidLinkService struct {
	store    *database.Store
	resolver *MediaResolver
	cache    LinkCache
	validate *validator.Validator
	newSlug  func() (string, error)
}

// NewPaidLinkService creates a new paid link service
func NewPaidLinkService(store *database.Store, resolver *MediaResolver, cache LinkCache, v *validator.Validator) *PaidLinkService {
	return &PaidLinkService{
		store:    store,
		resolver: resolver,
		cache:    cache,
		validate: v,
		newSlug:  GenerateSlug,
	}
}

// Create validates the request, resolves its media and stores the link under
// a fresh slug. Slug collisions are retried with a new slug.
func (s *PaidLinkService) Create(ctx context.Context, creatorID string, req CreateLinkRequest) (*models.PaidLink, error) {
	req.Title = strings.TrimSpace(req.Title)

	fields := map[string]string{}
	collectValidation(fields, s.validate.Validate(req))
	checkMoney(fields, "price", req.Price)
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	media, err := s.resolver.Resolve(ctx, creatorID, MediaInput{
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		MediaURL:     req.MediaURL,
		ThumbnailURL: req.ThumbnailURL,
		MediaKind:    req.MediaKind,
	})
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug, err := s.newSlug()
		if err != nil {
			return nil, err
		}

		link := &models.PaidLink{
			CreatorID:    creatorID,
			Slug:         slug,
			Title:        req.Title,
			Description:  req.Description,
			MediaURL:     media.MediaURL,
			ThumbnailURL: media.ThumbnailURL,
			MediaKind:    media.MediaKind,
			SourceType:   media.SourceType,
			SourceID:     media.SourceID,
			Price:        req.Price,
			IsActive:     true,
		}

		err = s.store.CreatePaidLink(ctx, link)
		if err == nil {
			logging.Infof("Paid link created - id: %d, slug: %s, creator: %s, price: %s",
				link.ID, link.Slug, creatorID, FormatMoney(link.Price))
			return link, nil
		}
		if !database.IsDuplicate(err) {
			return nil, fmt.Errorf("failed to create paid link: %w", err)
		}

		logging.Warnf("Slug collision, retrying - slug: %s, attempt: %d", slug, attempt)
	}

	return nil, fmt.Errorf("failed to allocate a unique slug after %d attempts", maxSlugAttempts)
}

// lookup reads a link by slug through the cache
func (s *PaidLinkService) lookup(ctx context.Context, slug string) (*models.PaidLink, error) {
	if link, ok := s.cache.Get(ctx, slug); ok {
		return link, nil
	}

	link, err := s.store.GetPaidLinkBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, link)
	return link, nil
}

// countView bumps the view counter. A failure is logged and otherwise ignored.
func (s *PaidLinkService) countView(ctx context.Context, link *models.PaidLink) {
	if err := s.store.IncrementViews(ctx, link.ID); err != nil {
		logging.Warnf("Failed to count view - slug: %s, error: %v", link.Slug, err)
	}
}

// GetBySlug is the public read of a link, active or not. Counts a view.
func (s *PaidLinkService) GetBySlug(ctx context.Context, slug string) (*models.PaidLink, error) {
	link, err := s.lookup(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.countView(ctx, link)
	return link, nil
}

// Preview returns what a buyer sees before paying. Inactive links are
// reported as missing.
func (s *PaidLinkService) Preview(ctx context.Context, slug string) (*LinkPreview, error) {
	link, err := s.lookup(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !link.IsActive {
		return nil, apperrors.NotFound("paid link")
	}

	s.countView(ctx, link)

	creator, err := creatorSummary(ctx, s.store, link.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	return &LinkPreview{
		Slug:         link.Slug,
		Title:        link.Title,
		Description:  link.Description,
		Price:        FormatMoney(link.Price),
		MediaType:    link.MediaKind,
		ThumbnailURL: link.ThumbnailURL,
		Blurred:      true,
		Creator:      creator,
	}, nil
}

// GetForOwner loads a link the caller must own
func (s *PaidLinkService) GetForOwner(ctx context.Context, id uint, ownerID string) (*models.PaidLink, error) {
	link, err := s.store.GetPaidLinkByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.CreatorID != ownerID {
		return nil, apperrors.Forbidden("you do not own this link")
	}
	return link, nil
}

// ListByCreator returns the caller's links, newest first
func (s *PaidLinkService) ListByCreator(ctx context.Context, ownerID string) ([]models.PaidLink, error) {
	links, err := s.store.ListPaidLinksByCreator(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid links: %w", err)
	}
	return links, nil
}

// Update applies a patch. A new price only affects later purchases.
func (s *PaidLinkService) Update(ctx context.Context, id uint, ownerID string, req UpdateLinkRequest) (*models.PaidLink, error) {
	fields := map[string]string{}
	collectValidation(fields, s.validate.Validate(req))
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
		if trimmed == "" {
			fields["title"] = "is required"
		}
	}
	if req.Price != nil {
		checkMoney(fields, "price", *req.Price)
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	link, err := s.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ThumbnailURL != nil {
		updates["thumbnail_url"] = *req.ThumbnailURL
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return link, nil
	}

	if err := s.store.UpdatePaidLink(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update paid link: %w", err)
	}
	s.cache.Invalidate(ctx, link.Slug)

	logging.Infof("Paid link updated - id: %d, slug: %s", id, link.Slug)
	return s.store.GetPaidLinkByID(ctx, id)
}

// ToggleActive flips is_active and returns the link in its new state.
// Existing purchases keep their access either way.
func (s *PaidLinkService) ToggleActive(ctx context.Context, id uint, ownerID string) (*models.PaidLink, error) {
	link, err := s.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	active := !link.IsActive
	if err := s.store.UpdatePaidLink(ctx, id, map[string]interface{}{"is_active": active}); err != nil {
		return nil, fmt.Errorf("failed to toggle paid link: %w", err)
	}
	s.cache.Invalidate(ctx, link.Slug)

	link.IsActive = active
	logging.Infof("Paid link toggled - id: %d, slug: %s, active: %t", id, link.Slug, active)
	return link, nil
}

// ErrLinkHasPurchases is returned when deleting a link someone has paid for
var ErrLinkHasPurchases = apperrors.Conflict("link has purchases and cannot be deleted, deactivate it instead")

// Delete soft deletes a link nobody has bought. The slug stays reserved.
func (s *PaidLinkService) Delete(ctx context.Context, id uint, ownerID string) error {
	link, err := s.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(tx *database.Store) error {
		if _, err := tx.LockPaidLink(ctx, id); err != nil {
			return err
		}
		count, err := tx.CountPurchasesByLink(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count purchases: %w", err)
		}
		if count > 0 {
			return ErrLinkHasPurchases
		}
		return tx.DeletePaidLink(ctx, id)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete paid link: %w", err)
	}
	s.cache.Invalidate(ctx, link.Slug)

	logging.Infof("Paid link deleted - id: %d, slug: %s", id, link.Slug)
	return nil
}

// ListPurchases returns the purchases of one of the caller's links
func (s *PaidLinkService) ListPurchases(ctx context.Context, id uint, ownerID string) ([]models.Purchase, error) {
	if _, err := s.GetForOwner(ctx, id, ownerID); err != nil {
		return nil, err
	}
	purchases, err := s.store.ListPurchasesByLink(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

// Stats totals the caller's links
func (s *PaidLinkService) Stats(ctx context.Context, ownerID string) (*models.LinkStats, error) {
	stats, err := s.store.PaidLinkStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load link stats: %w", err)
	}
	return stats, nil
}
