package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
	"paidlinks-api/internal/payment"
	"paidlinks-api/internal/payment/mocks"
)

const testBaseURL = "https://paid.example"

type purchaseFixture struct {
	store    *database.Store
	links    *PaidLinkService
	access   *AccessService
	guard    *MemoryPurchaseGuard
	notifier *recordingNotifier
}

func newPurchaseFixture(t *testing.T, gateway payment.Gateway) (*purchaseFixture, *PurchaseService) {
	t.Helper()

	store := newTestStore(t)
	seedCreator(t, store, "creator-1", "ana.lima")

	guard := NewMemoryPurchaseGuard(30 * time.Second)
	t.Cleanup(guard.Stop)

	f := &purchaseFixture{
		store:    store,
		links:    newTestLinkService(store, NopLinkCache{}),
		access:   NewAccessService(store),
		guard:    guard,
		notifier: newRecordingNotifier(),
	}
	svc := NewPurchaseService(store, gateway, guard, NopLinkCache{},
		PurchaseConfig{Currency: "BRL", PublicBaseURL: testBaseURL}, f.notifier)
	return f, svc
}

func (f *purchaseFixture) reload(t *testing.T, id uint) *models.PaidLink {
	t.Helper()
	link, err := f.store.GetPaidLinkByID(context.Background(), id)
	require.NoError(t, err)
	return link
}

func (f *purchaseFixture) purchaseCount(t *testing.T, id uint) int64 {
	t.Helper()
	n, err := f.store.CountPurchasesByLink(context.Background(), id)
	require.NoError(t, err)
	return n
}

func TestPurchaseService_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "9.90")

	preview, err := f.links.Preview(ctx, link.Slug)
	require.NoError(t, err)
	assert.Equal(t, "9.90", preview.Price)
	assert.True(t, preview.Blurred)

	gateway.EXPECT().
		Charge(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("9.90")))
			assert.Equal(t, "BRL", req.Currency)
			assert.NotEmpty(t, req.IdempotencyKey)
			assert.Equal(t, link.Slug, req.Metadata["slug"])
			return &payment.ChargeResult{PaymentID: "pay_1", Status: "succeeded"}, nil
		})

	buyer := "buyer-1"
	res, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{BuyerID: &buyer})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Len(t, res.AccessToken, 43)
	assert.Equal(t, testBaseURL+"/l/"+link.Slug+"/access/"+res.AccessToken, res.AccessURL)
	assert.Equal(t, "pay_1", res.Purchase.PaymentID)
	assert.Nil(t, res.Purchase.IdempotencyKey)

	grant, err := f.access.Verify(ctx, link.Slug, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/media/1.jpg", grant.Link.MediaURL)
	assert.True(t, grant.Purchase.AmountPaid.Equal(decimal.RequireFromString("9.90")))
	assert.Equal(t, "ana.lima", grant.Creator.Username)
	require.NotNil(t, grant.Purchase.BuyerID)
	assert.Equal(t, "buyer-1", *grant.Purchase.BuyerID)

	after := f.reload(t, link.ID)
	assert.Equal(t, int64(1), after.PurchasesCount)
	assert.True(t, after.TotalEarnings.Equal(decimal.RequireFromString("9.90")), "got %s", after.TotalEarnings)

	select {
	case p := <-f.notifier.purchases:
		assert.Equal(t, res.Purchase.ID, p.ID)
	case <-time.After(time.Second):
		t.Fatal("purchase notification not sent")
	}
}

func TestPurchaseService_FreezesPrice(t *testing.T) {
	f, svc := newPurchaseFixture(t, payment.SandboxGateway{})
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "10.00")

	res, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{})
	require.NoError(t, err)

	price := decimal.RequireFromString("20.00")
	_, err = f.links.Update(ctx, link.ID, "creator-1", UpdateLinkRequest{Price: &price})
	require.NoError(t, err)

	grant, err := f.access.Verify(ctx, link.Slug, res.AccessToken)
	require.NoError(t, err)
	assert.True(t, grant.Purchase.AmountPaid.Equal(decimal.NewFromInt(10)), "got %s", grant.Purchase.AmountPaid)
	assert.True(t, grant.Link.Price.Equal(decimal.NewFromInt(20)))

	res2, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{})
	require.NoError(t, err)
	assert.True(t, res2.Purchase.AmountPaid.Equal(decimal.NewFromInt(20)))

	after := f.reload(t, link.ID)
	assert.True(t, after.TotalEarnings.Equal(decimal.NewFromInt(30)), "got %s", after.TotalEarnings)
}

func TestPurchaseService_InactiveLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl) // no calls expected
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "5.00")
	_, err := f.links.ToggleActive(ctx, link.ID, "creator-1")
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "k-1"})
	assert.ErrorIs(t, err, apperrors.ErrLinkInactive)
	assert.Zero(t, f.purchaseCount(t, link.ID))
	assert.Zero(t, f.reload(t, link.ID).PurchasesCount)

	_, err = svc.Purchase(ctx, "missing", PurchaseRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPurchaseService_ReplayAfterDeactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "5.00")

	gateway.EXPECT().
		Charge(gomock.Any(), gomock.Any()).
		Return(&payment.ChargeResult{PaymentID: "pay_1", Status: "succeeded"}, nil).
		Times(1)

	first, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "k-lost"})
	require.NoError(t, err)

	_, err = f.links.ToggleActive(ctx, link.ID, "creator-1")
	require.NoError(t, err)

	again, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "k-lost"})
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.AccessToken, again.AccessToken)

	// A new key still cannot buy the inactive link
	_, err = svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "k-new"})
	assert.ErrorIs(t, err, apperrors.ErrLinkInactive)
	assert.Equal(t, int64(1), f.purchaseCount(t, link.ID))
}

func TestPurchaseService_LinkDeletedDuringCharge(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "5.00")

	gateway.EXPECT().
		Charge(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ payment.ChargeRequest) (*payment.ChargeResult, error) {
			require.NoError(t, f.store.DeletePaidLink(ctx, link.ID))
			return &payment.ChargeResult{PaymentID: "pay_gone", Status: "succeeded"}, nil
		})

	_, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	code, status := apperrors.Classify(err)
	assert.Equal(t, apperrors.CodeInternal, code)
	assert.Equal(t, 500, status)
	assert.Contains(t, err.Error(), "pay_gone")
}

func TestPurchaseService_DeclinedPersistsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "5.00")

	gateway.EXPECT().
		Charge(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.New(apperrors.ErrPaymentDeclined, "payment was declined"))

	_, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "k-1"})
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)

	assert.Zero(t, f.purchaseCount(t, link.ID))
	after := f.reload(t, link.ID)
	assert.Zero(t, after.PurchasesCount)
	assert.True(t, after.TotalEarnings.IsZero())

	// The key is free again so the buyer can retry with another card
	gateway.EXPECT().
		Charge(gomock.Any(), gomock.Any()).
		Return(&payment.ChargeResult{PaymentID: "pay_2", Status: "succeeded"}, nil)

	_, err = svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.purchaseCount(t, link.ID))
}

func TestPurchaseService_GatewayErrorIsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	f, svc := newPurchaseFixture(t, gateway)

	link := seedLink(t, f.links, "creator-1", "5.00")

	gateway.EXPECT().
		Charge(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset"))

	_, err := svc.Purchase(context.Background(), link.Slug, PurchaseRequest{})
	require.Error(t, err)
	code, status := apperrors.Classify(err)
	assert.Equal(t, apperrors.CodeInternal, code)
	assert.Equal(t, 500, status)
	assert.Zero(t, f.purchaseCount(t, link.ID))
}

func TestPurchaseService_IdempotentRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "5.00")
	other := seedLink(t, f.links, "creator-1", "6.00")

	gateway.EXPECT().
		Charge(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
			assert.Equal(t, "retry-key", req.IdempotencyKey)
			return &payment.ChargeResult{PaymentID: "pay_1", Status: "succeeded"}, nil
		}).
		Times(1)

	first, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "retry-key"})
	require.NoError(t, err)

	second, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "retry-key"})
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, first.Purchase.ID, second.Purchase.ID)

	assert.Equal(t, int64(1), f.purchaseCount(t, link.ID))
	assert.Equal(t, int64(1), f.reload(t, link.ID).PurchasesCount)

	_, err = svc.Purchase(ctx, other.Slug, PurchaseRequest{IdempotencyKey: "retry-key"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestPurchaseService_KeyInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl) // no calls expected
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "5.00")

	release, ok, err := f.guard.Acquire(ctx, "busy-key")
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	_, err = svc.Purchase(ctx, link.Slug, PurchaseRequest{IdempotencyKey: "busy-key"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Zero(t, f.purchaseCount(t, link.ID))
}

func TestPurchaseService_FreeLinkSkipsGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl) // no calls expected
	f, svc := newPurchaseFixture(t, gateway)
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "0")

	res, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Purchase.PaymentID)
	assert.True(t, res.Purchase.AmountPaid.IsZero())
	assert.Equal(t, int64(1), f.reload(t, link.ID).PurchasesCount)
}

func TestPurchaseService_ConcurrentPurchases(t *testing.T) {
	f, svc := newPurchaseFixture(t, payment.SandboxGateway{})
	ctx := context.Background()

	link := seedLink(t, f.links, "creator-1", "5.00")

	const buyers = 8
	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, link.Slug, PurchaseRequest{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	after := f.reload(t, link.ID)
	assert.Equal(t, int64(buyers), after.PurchasesCount)
	assert.True(t, after.TotalEarnings.Equal(decimal.NewFromInt(5*buyers)), "got %s", after.TotalEarnings)
	assert.Equal(t, int64(buyers), f.purchaseCount(t, link.ID))
}
