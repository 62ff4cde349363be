package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
	"paidlinks-api/internal/payment"
	"paidlinks-api/pkg/logging"
)

// PurchaseState is where a purchase attempt is in its lifecycle
type PurchaseState string

const (
	StatePreviewing PurchaseState = "previewing"
	StateCharging   PurchaseState = "charging"
	StatePurchased  PurchaseState = "purchased"
	StateFailed     PurchaseState = "failed"
)

// PurchaseRequest is a buyer's attempt to pay for a link
type PurchaseRequest struct {
	BuyerID        *string
	BuyerEmail     *string
	IdempotencyKey string
	PaymentToken   string
}

// PurchaseResult is returned once the purchase is committed
type PurchaseResult struct {
	Purchase    *models.Purchase `json:"purchase"`
	AccessToken string           `json:"access_token"`
	AccessURL   string           `json:"access_url"`
	// Replayed is set when an earlier purchase with the same idempotency key
	// was returned instead of charging again
	Replayed bool `json:"replayed"`
}

// PurchaseConfig holds the non-collaborator settings of PurchaseService
type PurchaseConfig struct {
	Currency      string
	PublicBaseURL string
}

// PurchaseService runs the buy flow: charge, then record the purchase and
// its access token in one transaction.
type PurchaseService struct {
	store     *database.Store
	gateway   payment.Gateway
	guard     PurchaseGuard
	cache     LinkCache
	notifiers []PurchaseNotifier
	cfg       PurchaseConfig
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(store *database.Store, gateway payment.Gateway, guard PurchaseGuard, cache LinkCache, cfg PurchaseConfig, notifiers ...PurchaseNotifier) *PurchaseService {
	return &PurchaseService{
		store:     store,
		gateway:   gateway,
		guard:     guard,
		cache:     cache,
		notifiers: notifiers,
		cfg:       cfg,
	}
}

// purchaseAttempt tracks one run through the state machine
type purchaseAttempt struct {
	slug  string
	state PurchaseState
}

func (a *purchaseAttempt) transition(to PurchaseState) {
	logging.Debugf("Purchase state change - slug: %s, %s -> %s", a.slug, a.state, to)
	a.state = to
}

func (a *purchaseAttempt) fail(err error) error {
	from := a.state
	a.transition(StateFailed)
	if from == StateCharging {
		logging.Warnf("Purchase failed - slug: %s, error: %v", a.slug, err)
	}
	return err
}

// Purchase charges the buyer for the link behind slug and mints an access
// token. With an idempotency key, a retry of a finished purchase returns the
// original result without charging, and a retry racing the first attempt
// gets a Conflict.
func (s *PurchaseService) Purchase(ctx context.Context, slug string, req PurchaseRequest) (*PurchaseResult, error) {
	attempt := &purchaseAttempt{slug: slug, state: StatePreviewing}

	link, err := s.store.GetPaidLinkBySlug(ctx, slug)
	if err != nil {
		return nil, attempt.fail(err)
	}

	// A finished purchase is returned even after the link was deactivated
	chargeKey := req.IdempotencyKey
	if chargeKey != "" {
		if res, found, err := s.replay(ctx, link, chargeKey); err != nil || found {
			if err != nil {
				return nil, attempt.fail(err)
			}
			return res, nil
		}
	}

	if !link.IsActive {
		return nil, attempt.fail(apperrors.New(apperrors.ErrLinkInactive, "this link is no longer available"))
	}

	if chargeKey != "" {
		release, ok, err := s.guard.Acquire(ctx, chargeKey)
		if err != nil {
			return nil, attempt.fail(err)
		}
		if !ok {
			return nil, attempt.fail(apperrors.Conflict("a purchase with this idempotency key is already in progress"))
		}
		defer release()

		// The holder before us may have finished between the first check and Acquire
		if res, found, err := s.replay(ctx, link, chargeKey); err != nil || found {
			if err != nil {
				return nil, attempt.fail(err)
			}
			return res, nil
		}
	} else {
		chargeKey = uuid.New().String()
	}

	attempt.transition(StateCharging)

	amount := link.Price
	var paymentID string
	if amount.IsPositive() {
		charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
			Amount:         amount,
			Currency:       s.cfg.Currency,
			Description:    link.Title,
			PaymentToken:   req.PaymentToken,
			IdempotencyKey: chargeKey,
			Metadata: map[string]string{
				"slug":    link.Slug,
				"link_id": strconv.FormatUint(uint64(link.ID), 10),
			},
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrPaymentDeclined) {
				return nil, attempt.fail(err)
			}
			return nil, attempt.fail(fmt.Errorf("payment failed: %w", err))
		}
		paymentID = charge.PaymentID
	}

	token, err := GenerateAccessToken()
	if err != nil {
		return nil, attempt.fail(err)
	}

	purchase := &models.Purchase{
		ID:          uuid.New().String(),
		LinkID:      link.ID,
		BuyerID:     req.BuyerID,
		BuyerEmail:  req.BuyerEmail,
		AmountPaid:  amount,
		AccessToken: token,
		PaymentID:   paymentID,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		purchase.IdempotencyKey = &key
	}

	err = s.store.WithinTx(ctx, func(tx *database.Store) error {
		locked, err := tx.LockPaidLink(ctx, link.ID)
		if err != nil {
			return err
		}
		if err := tx.CreatePurchase(ctx, purchase); err != nil {
			return fmt.Errorf("failed to insert purchase: %w", err)
		}
		if err := tx.RecordSale(ctx, locked, amount); err != nil {
			return fmt.Errorf("failed to update link counters: %w", err)
		}
		return nil
	})
	if err != nil {
		if paymentID != "" {
			logging.Errorf("Charged payment was not recorded, refund needed - payment: %s, slug: %s, amount: %s, error: %v",
				paymentID, slug, FormatMoney(amount), err)
			// The buyer was charged, so the cause must not surface as a 4xx
			return nil, attempt.fail(fmt.Errorf("payment %s was charged but the purchase was not recorded: %v", paymentID, err))
		}
		return nil, attempt.fail(fmt.Errorf("failed to record purchase: %w", err))
	}

	attempt.transition(StatePurchased)
	s.cache.Invalidate(ctx, link.Slug)

	logging.Infof("Paid link purchased - slug: %s, purchase: %s, amount: %s, payment: %s",
		link.Slug, purchase.ID, FormatMoney(amount), paymentID)

	s.notify(link, purchase)

	return s.result(link, purchase, false), nil
}

// replay looks for a finished purchase made with key
func (s *PurchaseService) replay(ctx context.Context, link *models.PaidLink, key string) (*PurchaseResult, bool, error) {
	existing, err := s.store.GetPurchaseByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	if existing.LinkID != link.ID {
		return nil, false, apperrors.Conflict("idempotency key was already used for another link")
	}

	logging.Infof("Purchase replayed - slug: %s, purchase: %s", link.Slug, existing.ID)
	return s.result(link, existing, true), true, nil
}

func (s *PurchaseService) result(link *models.PaidLink, purchase *models.Purchase, replayed bool) *PurchaseResult {
	return &PurchaseResult{
		Purchase:    purchase,
		AccessToken: purchase.AccessToken,
		AccessURL:   AccessURL(s.cfg.PublicBaseURL, link.Slug, purchase.AccessToken),
		Replayed:    replayed,
	}
}

// notify hands copies of the committed rows to every notifier in the background
func (s *PurchaseService) notify(link *models.PaidLink, purchase *models.Purchase) {
	for _, n := range s.notifiers {
		l, p := *link, *purchase
		go n.NotifyPurchase(&l, &p)
	}
}
