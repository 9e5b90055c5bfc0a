package purchase_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/services/purchase"
	"github.com/rbnsaiful/topup-rewards/internal/storage/repository"
)

type OrderRepoMock struct {
	mock.Mock
}

func (m *OrderRepoMock) GetOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *OrderRepoMock) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *OrderRepoMock) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

type LockerMock struct {
	mock.Mock
}

func (m *LockerMock) AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *LockerMock) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, channel string, payload any) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Buy(t *testing.T) {
	offer := &models.Offer{
		ID:        "offer-1",
		Category:  models.CategoryDiamond,
		Name:      "100 Diamonds",
		Price:     90,
		Diamonds:  100,
		InputType: models.InputUID,
	}

	tests := []struct {
		name       string
		setupMocks func(r *OrderRepoMock, l *LockerMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name: "successful purchase",
			setupMocks: func(r *OrderRepoMock, l *LockerMock, p *PublisherMock) {
				l.On("AcquireOnce", mock.Anything, "purchase:inflight:uid-1", mock.Anything).
					Return(true, nil).Once()
				l.On("Release", mock.Anything, "purchase:inflight:uid-1").Return(nil).Once()
				r.On("GetOffer", mock.Anything, "offer-1").Return(offer, nil).Once()
				r.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o models.Order) bool {
					return o.UserUID == "uid-1" &&
						o.Price == offer.Price &&
						o.Offer.ID == offer.ID &&
						len(o.Reference) == 8
				})).Return(&models.Order{ID: 1, Reference: "12345678", Status: models.OrderPending}, nil).Once()
				r.On("GetUser", mock.Anything, "uid-1").
					Return(&models.User{UID: "uid-1", Balance: 10}, nil).Once()
				p.On("Publish", mock.Anything, "users/uid-1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "second confirm refused while first in flight",
			setupMocks: func(_ *OrderRepoMock, l *LockerMock, _ *PublisherMock) {
				l.On("AcquireOnce", mock.Anything, "purchase:inflight:uid-1", mock.Anything).
					Return(false, nil).Once()
			},
			wantErr: purchase.ErrPurchaseInFlight,
		},
		{
			name: "insufficient funds",
			setupMocks: func(r *OrderRepoMock, l *LockerMock, _ *PublisherMock) {
				l.On("AcquireOnce", mock.Anything, mock.Anything, mock.Anything).
					Return(true, nil).Once()
				l.On("Release", mock.Anything, mock.Anything).Return(nil).Once()
				r.On("GetOffer", mock.Anything, "offer-1").Return(offer, nil).Once()
				r.On("CreateOrder", mock.Anything, mock.Anything).
					Return(nil, repository.ErrInsufficientFunds).Once()
			},
			wantErr: purchase.ErrInsufficientFunds,
		},
		{
			name: "unknown offer",
			setupMocks: func(r *OrderRepoMock, l *LockerMock, _ *PublisherMock) {
				l.On("AcquireOnce", mock.Anything, mock.Anything, mock.Anything).
					Return(true, nil).Once()
				l.On("Release", mock.Anything, mock.Anything).Return(nil).Once()
				r.On("GetOffer", mock.Anything, "offer-1").Return(nil, sql.ErrNoRows).Once()
			},
			wantErr: purchase.ErrOfferNotFound,
		},
		{
			name: "store failure surfaces one generic error",
			setupMocks: func(r *OrderRepoMock, l *LockerMock, _ *PublisherMock) {
				l.On("AcquireOnce", mock.Anything, mock.Anything, mock.Anything).
					Return(true, nil).Once()
				l.On("Release", mock.Anything, mock.Anything).Return(nil).Once()
				r.On("GetOffer", mock.Anything, "offer-1").Return(offer, nil).Once()
				r.On("CreateOrder", mock.Anything, mock.Anything).
					Return(nil, errors.New("connection reset")).Once()
			},
			wantErr: purchase.ErrPurchaseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(OrderRepoMock)
			lock := new(LockerMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, lock, pub)

			svc := purchase.New(repo, lock, pub, discardLogger())
			order, err := svc.Buy(context.Background(), "uid-1",
				models.DummyPurchase{OfferID: "offer-1", Identifier: "100200300"})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.OrderPending, order.Status)
			}
			repo.AssertExpectations(t)
			lock.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}
