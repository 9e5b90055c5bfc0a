package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbnsaiful/topup-rewards/internal/models"
)

func TestStorage_CreateOrder(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		price       int64
		wantErr     error
		wantBalance int64
	}{
		{
			name:        "successful purchase debits balance",
			balance:     500,
			price:       100,
			wantBalance: 400,
		},
		{
			name:        "exact balance is allowed",
			balance:     100,
			price:       100,
			wantBalance: 0,
		},
		{
			name:        "insufficient funds leaves balance untouched",
			balance:     50,
			price:       100,
			wantErr:     ErrInsufficientFunds,
			wantBalance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			ctx := context.Background()
			userUID := uuid.New().String()
			createTestUser(t, storage, userUID, tt.balance)

			order := models.Order{
				Reference:  "12345678",
				UserUID:    userUID,
				Identifier: "100200300",
				Offer:      models.OfferSnapshot{ID: "offer-1", Name: "100 Diamonds", Price: tt.price, Diamonds: 100},
				Price:      tt.price,
			}
			got, err := storage.CreateOrder(ctx, order)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))

				orders, listErr := storage.ListOrdersByUser(ctx, userUID)
				require.NoError(t, listErr)
				assert.Empty(t, orders)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, got.ID)
				assert.Equal(t, models.OrderPending, got.Status)

				txs, txErr := storage.ListTransactionsByUser(ctx, userUID)
				require.NoError(t, txErr)
				require.Len(t, txs, 1)
				assert.Equal(t, models.TxDebit, txs[0].Kind)
				assert.Equal(t, tt.price, txs[0].Amount)
			}

			user, err := storage.GetUser(ctx, userUID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBalance, user.Balance)
		})
	}
}

func TestStorage_SetReferredByIsOneShot(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := uuid.New().String()
	firstReferrer := uuid.New().String()
	secondReferrer := uuid.New().String()
	createTestUser(t, storage, userUID, 0)
	createTestUser(t, storage, firstReferrer, 0)
	createTestUser(t, storage, secondReferrer, 0)

	ok, err := storage.SetReferredBy(ctx, userUID, firstReferrer)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = storage.SetReferredBy(ctx, userUID, secondReferrer)
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	require.NotNil(t, user.ReferredBy)
	assert.Equal(t, firstReferrer, *user.ReferredBy)
}

func TestStorage_CreditBalance(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := uuid.New().String()
	createTestUser(t, storage, userUID, 100)

	newBalance, err := storage.CreditBalance(ctx, userUID, 10, "rewarded ad", true)
	require.NoError(t, err)
	assert.Equal(t, int64(110), newBalance)

	newBalance, err = storage.CreditBalance(ctx, userUID, 25, "bonus", false)
	require.NoError(t, err)
	assert.Equal(t, int64(135), newBalance)

	user, err := storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.TotalAdsWatched)
	assert.Equal(t, int64(35), user.TotalEarned)

	txs, err := storage.ListTransactionsByUser(ctx, userUID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestStorage_UpdateOrderStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := uuid.New().String()
	createTestUser(t, storage, userUID, 1000)

	order, err := storage.CreateOrder(ctx, models.Order{
		Reference:  "87654321",
		UserUID:    userUID,
		Identifier: "uid",
		Offer:      models.OfferSnapshot{ID: "offer-1", Name: "Weekly Pass", Price: 100},
		Price:      100,
	})
	require.NoError(t, err)

	ok, err := storage.UpdateOrderStatus(ctx, order.ID, models.OrderCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторный перевод из конечного статуса запрещён.
	ok, err = storage.UpdateOrderStatus(ctx, order.ID, models.OrderRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := storage.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, got.Status)
}

func TestStorage_SettingsDocument(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	// До первой записи возвращаются значения по умолчанию.
	doc, err := storage.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, doc.Visibility.Earn)

	doc.AppName = "TopUp"
	doc.MaintenanceMode = true
	require.NoError(t, storage.SaveSettings(ctx, doc))

	got, err := storage.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TopUp", got.AppName)
	assert.True(t, got.MaintenanceMode)

	// Повторная запись перезаписывает документ.
	got.MaintenanceMode = false
	require.NoError(t, storage.SaveSettings(ctx, got))
	again, err := storage.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, again.MaintenanceMode)
}

func TestStorage_OffersAndAdUnits(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	offer := models.Offer{
		ID:        uuid.New().String(),
		Category:  models.CategoryDiamond,
		Name:      "100 Diamonds",
		Price:     90,
		Diamonds:  100,
		InputType: models.InputUID,
	}
	require.NoError(t, storage.UpsertOffer(ctx, offer))

	offer.Price = 80
	require.NoError(t, storage.UpsertOffer(ctx, offer))

	offers, err := storage.ListOffers(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, int64(80), offers[0].Price)

	ok, err := storage.DeleteOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = storage.DeleteOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	first := models.AdUnit{ID: uuid.New().String(), Code: "<script>a</script>", Active: false}
	second := models.AdUnit{ID: uuid.New().String(), Code: "<script>b</script>", Active: true}
	require.NoError(t, storage.UpsertAdUnit(ctx, first))
	require.NoError(t, storage.UpsertAdUnit(ctx, second))

	units, err := storage.ListAdUnits(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
	active := models.FirstActiveAd(units)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
}
