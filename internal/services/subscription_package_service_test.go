package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paidlinks-api/internal/apperrors"
)

func TestSubscriptionPackageService_CreateBounds(t *testing.T) {
	store := newTestStore(t)
	svc := NewSubscriptionPackageService(store)
	ctx := context.Background()

	tests := []struct {
		name      string
		months    int
		pct       int
		wantField string
	}{
		{"duration not offered", 4, 10, "duration_months"},
		{"zero duration", 0, 10, "duration_months"},
		{"discount below range", 3, 0, "discount_percent"},
		{"discount above range", 6, 51, "discount_percent"},
		{"lowest discount", 3, 1, ""},
		{"highest discount", 12, 50, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "creator-"+tt.name, CreatePackageRequest{DurationMonths: tt.months, DiscountPercent: tt.pct})
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.wantField)
		})
	}
}

func TestSubscriptionPackageService_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	seedCreator(t, store, "creator-1", "ana.lima")
	svc := NewSubscriptionPackageService(store)
	ctx := context.Background()

	pkg, err := svc.Create(ctx, "creator-1", CreatePackageRequest{DurationMonths: 3, DiscountPercent: 25})
	require.NoError(t, err)
	assert.True(t, pkg.IsActive)
	// 38.46 × 0.75 = 28.845
	assert.Equal(t, "28.85", pkg.Quote.MonthlyPrice)
	assert.Equal(t, "38.46", pkg.Quote.BasePrice)

	_, err = svc.Create(ctx, "creator-1", CreatePackageRequest{DurationMonths: 3, DiscountPercent: 10})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Create(ctx, "creator-1", CreatePackageRequest{DurationMonths: 12, DiscountPercent: 40})
	require.NoError(t, err)

	_, err = svc.Update(ctx, pkg.ID, "creator-2", UpdatePackageRequest{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, pkg.ID, "creator-2"), apperrors.ErrForbidden)

	bad := 60
	_, err = svc.Update(ctx, pkg.ID, "creator-1", UpdatePackageRequest{DiscountPercent: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	pct := 10
	updated, err := svc.Update(ctx, pkg.ID, "creator-1", UpdatePackageRequest{DiscountPercent: &pct})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.DiscountPercent)

	toggled, err := svc.ToggleActive(ctx, pkg.ID, "creator-1")
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	all, err := svc.ListByCreator(ctx, "creator-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 3, all[0].DurationMonths)
	assert.Equal(t, 12, all[1].DurationMonths)

	public, err := svc.ListPublic(ctx, "ana.lima")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, 12, public[0].DurationMonths)

	_, err = svc.ListPublic(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, pkg.ID, "creator-1"))
	_, err = svc.Create(ctx, "creator-1", CreatePackageRequest{DurationMonths: 3, DiscountPercent: 5})
	assert.NoError(t, err, "duration is free again after delete")
}

func TestSubscriptionPackageService_NoProfileQuotesZero(t *testing.T) {
	svc := NewSubscriptionPackageService(newTestStore(t))

	pkg, err := svc.Create(context.Background(), "creator-9", CreatePackageRequest{DurationMonths: 6, DiscountPercent: 20})
	require.NoError(t, err)
	assert.Equal(t, "0.00", pkg.Quote.MonthlyPrice)
	assert.Equal(t, "0.00", pkg.Quote.TotalSavings)
}
