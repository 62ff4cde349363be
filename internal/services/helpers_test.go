package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
	"paidlinks-api/internal/validator"
)

// newTestStore returns a Store over a private in-memory SQLite database
func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return database.NewStore(db)
}

func newTestLinkService(store *database.Store, cache LinkCache) *PaidLinkService {
	return NewPaidLinkService(store, NewMediaResolver(store), cache, validator.New())
}

func seedCreator(t *testing.T, store *database.Store, id, username string) *models.Creator {
	t.Helper()

	creator := &models.Creator{
		ID:                id,
		Username:          username,
		DisplayName:       username,
		SubscriptionPrice: decimal.RequireFromString("38.46"),
	}
	require.NoError(t, store.UpsertCreator(context.Background(), creator))
	return creator
}

func seedLink(t *testing.T, svc *PaidLinkService, creatorID, price string) *models.PaidLink {
	t.Helper()

	link, err := svc.Create(context.Background(), creatorID, CreateLinkRequest{
		Title:     "Exclusive set",
		MediaURL:  "https://cdn.example/media/1.jpg",
		MediaKind: models.MediaImage,
		Price:     decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return link
}

// recordingNotifier captures purchase notifications
type recordingNotifier struct {
	purchases chan *models.Purchase
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{purchases: make(chan *models.Purchase, 16)}
}

func (n *recordingNotifier) NotifyPurchase(_ *models.PaidLink, purchase *models.Purchase) {
	n.purchases <- purchase
}
