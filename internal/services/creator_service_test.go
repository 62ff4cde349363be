package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/models"
	"paidlinks-api/internal/validator"
)

func TestCreatorService_UpsertProfile(t *testing.T) {
	store := newTestStore(t)
	svc := NewCreatorService(store, validator.New())
	ctx := context.Background()

	creator, err := svc.UpsertProfile(ctx, "creator-1", UpdateProfileRequest{
		Username:          "ana.lima",
		SubscriptionPrice: decimal.RequireFromString("19.90"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.lima", creator.Username)
	assert.Equal(t, "ana.lima", creator.DisplayName)

	creator, err = svc.UpsertProfile(ctx, "creator-1", UpdateProfileRequest{
		Username:    "ana_lima",
		DisplayName: "Ana Lima",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana_lima", creator.Username)
	assert.Equal(t, "Ana Lima", creator.DisplayName)

	_, err = svc.UpsertProfile(ctx, "creator-2", UpdateProfileRequest{Username: "ana_lima"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.UpsertProfile(ctx, "creator-2", UpdateProfileRequest{Username: "no spaces!"})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "username")

	_, err = svc.UpsertProfile(ctx, "creator-2", UpdateProfileRequest{Username: "bruno", SubscriptionPrice: decimal.NewFromInt(-5)})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "subscription_price")

	profile, err := svc.GetPublicProfile(ctx, "ana_lima")
	require.NoError(t, err)
	assert.Equal(t, "creator-1", profile.ID)
	assert.Equal(t, "0.00", profile.SubscriptionPrice)

	_, err = svc.GetProfile(ctx, "creator-2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVaultService(t *testing.T) {
	store := newTestStore(t)
	svc := NewVaultService(store, validator.New())
	ctx := context.Background()

	_, err := svc.Register(ctx, "creator-1", RegisterAssetRequest{
		Source:    models.SourceFeed,
		MediaURL:  "https://cdn.example/feed/1.jpg",
		MediaKind: models.MediaImage,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, "creator-1", RegisterAssetRequest{
		Source:    models.SourceVault,
		MediaURL:  "https://cdn.example/vault/1.mp3",
		MediaKind: models.MediaAudio,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, "creator-1", RegisterAssetRequest{
		Source:    models.SourceUpload,
		MediaURL:  "not a url",
		MediaKind: "gif",
	})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "source")
	assert.Contains(t, vErr.Fields, "media_url")
	assert.Contains(t, vErr.Fields, "media_type")

	all, err := svc.List(ctx, "creator-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	vault, err := svc.List(ctx, "creator-1", models.SourceVault)
	require.NoError(t, err)
	require.Len(t, vault, 1)
	assert.Equal(t, models.MediaAudio, vault[0].MediaKind)

	_, err = svc.List(ctx, "creator-1", "upload")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
