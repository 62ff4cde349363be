package services

import (
	"context"
	"errors"
	"fmt"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
)

// AccessGrant is the unlocked content a valid token opens
type AccessGrant struct {
	Link       *models.PaidLink      `json:"link"`
	Purchase   *models.Purchase      `json:"purchase"`
	Creator    models.CreatorSummary `json:"creator"`
	AmountPaid string                `json:"amount_paid"`
}

// AccessService checks access tokens
type AccessService struct {
	store *database.Store
}

// NewAccessService creates a new access service
func NewAccessService(store *database.Store) *AccessService {
	return &AccessService{store: store}
}

// errDenied is the only error a caller sees for a bad slug/token pair
var errDenied = apperrors.New(apperrors.ErrDenied, "access denied")

// Verify returns the grant when token was minted for the link behind slug.
// Deactivated links still verify. Every mismatch is the same Denied error.
func (s *AccessService) Verify(ctx context.Context, slug, token string) (*AccessGrant, error) {
	if slug == "" || token == "" {
		return nil, errDenied
	}

	link, err := s.store.GetPaidLinkBySlug(ctx, slug)
	if err != nil {
		return nil, denyMissing(err)
	}

	purchase, err := s.store.GetPurchaseByToken(ctx, token)
	if err != nil {
		return nil, denyMissing(err)
	}
	if purchase.LinkID != link.ID {
		return nil, errDenied
	}

	creator, err := creatorSummary(ctx, s.store, link.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	return &AccessGrant{
		Link:       link,
		Purchase:   purchase,
		Creator:    creator,
		AmountPaid: FormatMoney(purchase.AmountPaid),
	}, nil
}

func denyMissing(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return errDenied
	}
	return fmt.Errorf("failed to verify access: %w", err)
}
