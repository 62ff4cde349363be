package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
	"paidlinks-api/pkg/logging"
)

// CreatePackageRequest offers a multi-month subscription at a discount
type CreatePackageRequest struct {
	DurationMonths  int `json:"duration_months"`
	DiscountPercent int `json:"discount_percent"`
}

// UpdatePackageRequest patches a package. The duration cannot change.
type UpdatePackageRequest struct {
	DiscountPercent *int  `json:"discount_percent"`
	IsActive        *bool `json:"is_active"`
}

// PackageView is a package with prices derived from the creator's current
// monthly price
type PackageView struct {
	models.SubscriptionPackage
	Quote Quote `json:"quote"`
}

// SubscriptionPackageService manages discount packages
type SubscriptionPackageService struct {
	store *database.Store
}

// NewSubscriptionPackageService creates a new subscription package service
func NewSubscriptionPackageService(store *database.Store) *SubscriptionPackageService {
	return &SubscriptionPackageService{store: store}
}

func validDuration(months int) bool {
	for _, d := range models.PackageDurations {
		if d == months {
			return true
		}
	}
	return false
}

func checkDiscount(fields map[string]string, pct int) {
	if pct < models.MinPackageDiscount || pct > models.MaxPackageDiscount {
		fields["discount_percent"] = fmt.Sprintf("must be between %d and %d", models.MinPackageDiscount, models.MaxPackageDiscount)
	}
}

// Create adds a package. Each duration can be offered once per creator.
func (s *SubscriptionPackageService) Create(ctx context.Context, ownerID string, req CreatePackageRequest) (*PackageView, error) {
	fields := map[string]string{}
	if !validDuration(req.DurationMonths) {
		fields["duration_months"] = "must be one of: 3 6 12"
	}
	checkDiscount(fields, req.DiscountPercent)
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	pkg := &models.SubscriptionPackage{
		CreatorID:       ownerID,
		DurationMonths:  req.DurationMonths,
		DiscountPercent: req.DiscountPercent,
		IsActive:        true,
	}
	if err := s.store.CreateSubscriptionPackage(ctx, pkg); err != nil {
		if database.IsDuplicate(err) {
			return nil, apperrors.Conflict(fmt.Sprintf("a %d month package already exists", req.DurationMonths))
		}
		return nil, fmt.Errorf("failed to create subscription package: %w", err)
	}

	logging.Infof("Subscription package created - creator: %s, months: %d, discount: %d%%",
		ownerID, pkg.DurationMonths, pkg.DiscountPercent)
	return s.view(ctx, pkg)
}

func (s *SubscriptionPackageService) getOwned(ctx context.Context, id uint, ownerID string) (*models.SubscriptionPackage, error) {
	pkg, err := s.store.GetSubscriptionPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.CreatorID != ownerID {
		return nil, apperrors.Forbidden("you do not own this package")
	}
	return pkg, nil
}

// Update changes the discount and/or active flag
func (s *SubscriptionPackageService) Update(ctx context.Context, id uint, ownerID string, req UpdatePackageRequest) (*PackageView, error) {
	if req.DiscountPercent != nil {
		fields := map[string]string{}
		checkDiscount(fields, *req.DiscountPercent)
		if len(fields) > 0 {
			return nil, &apperrors.ValidationError{Fields: fields}
		}
	}

	pkg, err := s.getOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
		pkg.DiscountPercent = *req.DiscountPercent
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
		pkg.IsActive = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.store.UpdateSubscriptionPackage(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update subscription package: %w", err)
		}
	}

	return s.view(ctx, pkg)
}

// ToggleActive flips is_active and returns the package in its new state
func (s *SubscriptionPackageService) ToggleActive(ctx context.Context, id uint, ownerID string) (*PackageView, error) {
	pkg, err := s.getOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	pkg.IsActive = !pkg.IsActive
	if err := s.store.UpdateSubscriptionPackage(ctx, id, map[string]interface{}{"is_active": pkg.IsActive}); err != nil {
		return nil, fmt.Errorf("failed to toggle subscription package: %w", err)
	}
	return s.view(ctx, pkg)
}

// Delete removes a package
func (s *SubscriptionPackageService) Delete(ctx context.Context, id uint, ownerID string) error {
	if _, err := s.getOwned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.store.DeleteSubscriptionPackage(ctx, id); err != nil {
		return fmt.Errorf("failed to delete subscription package: %w", err)
	}
	logging.Infof("Subscription package deleted - id: %d, creator: %s", id, ownerID)
	return nil
}

// ListByCreator returns all of the caller's packages
func (s *SubscriptionPackageService) ListByCreator(ctx context.Context, ownerID string) ([]PackageView, error) {
	pkgs, err := s.store.ListSubscriptionPackages(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription packages: %w", err)
	}
	base, err := s.basePrice(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return views(pkgs, base), nil
}

// ListPublic returns a creator's active packages by username
func (s *SubscriptionPackageService) ListPublic(ctx context.Context, username string) ([]PackageView, error) {
	creator, err := s.store.GetCreatorByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	pkgs, err := s.store.ListSubscriptionPackages(ctx, creator.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription packages: %w", err)
	}
	return views(pkgs, creator.SubscriptionPrice), nil
}

// basePrice is the creator's monthly price, zero until a profile exists
func (s *SubscriptionPackageService) basePrice(ctx context.Context, creatorID string) (decimal.Decimal, error) {
	creator, err := s.store.GetCreator(ctx, creatorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to load creator: %w", err)
	}
	return creator.SubscriptionPrice, nil
}

func (s *SubscriptionPackageService) view(ctx context.Context, pkg *models.SubscriptionPackage) (*PackageView, error) {
	base, err := s.basePrice(ctx, pkg.CreatorID)
	if err != nil {
		return nil, err
	}
	return &PackageView{
		SubscriptionPackage: *pkg,
		Quote:               PackageQuote(base, pkg.DiscountPercent, pkg.DurationMonths),
	}, nil
}

func views(pkgs []models.SubscriptionPackage, base decimal.Decimal) []PackageView {
	out := make([]PackageView, 0, len(pkgs))
	for _, pkg := range pkgs {
		out = append(out, PackageView{
			SubscriptionPackage: pkg,
			Quote:               PackageQuote(base, pkg.DiscountPercent, pkg.DurationMonths),
		})
	}
	return out
}
