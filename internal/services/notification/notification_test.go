package notification_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/prefs"
	"github.com/rbnsaiful/topup-rewards/internal/services/notification"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateNotification(ctx context.Context, n models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *RepoMock) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, channel string, payload any) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

type BrokerMock struct {
	mock.Mock
}

func (m *BrokerMock) Publish(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPrefsStore(t *testing.T) *prefs.Store {
	t.Helper()
	store, err := prefs.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func sampleNotifications() []*models.Notification {
	return []*models.Notification{
		{ID: "n-old", Title: "Old", Type: models.NotificationInfo, Timestamp: 100},
		{ID: "n-new", Title: "New", Type: models.NotificationBonus, Timestamp: 300},
		{ID: "n-mid", Title: "Mid", Type: models.NotificationOffer, Timestamp: 200},
	}
}

func TestService_ListSortsAndComputesUnread(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Once()

	store := newPrefsStore(t)
	p := prefs.Defaults()
	p.LastReadTimestamp = 150
	require.NoError(t, store.Save("uid-1", p))

	svc := notification.New(repo, store, new(PublisherMock), nil, discardLogger())
	views, unread, err := svc.List(context.Background(), "uid-1")
	require.NoError(t, err)

	// Новые первыми, непрочитанными считаются только новее отметки.
	require.Len(t, views, 3)
	assert.Equal(t, []string{"n-new", "n-mid", "n-old"},
		[]string{views[0].ID, views[1].ID, views[2].ID})
	assert.True(t, views[0].Unread)
	assert.True(t, views[1].Unread)
	assert.False(t, views[2].Unread)
	assert.Equal(t, 2, unread)
}

func TestService_ListWithoutWatermarkEverythingUnread(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Once()

	svc := notification.New(repo, newPrefsStore(t), new(PublisherMock), nil, discardLogger())
	_, unread, err := svc.List(context.Background(), "uid-unknown")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)
}

func TestService_MarkReadSetsWatermarkToNewest(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Twice()

	store := newPrefsStore(t)
	svc := notification.New(repo, store, new(PublisherMock), nil, discardLogger())

	watermark, err := svc.MarkRead(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), watermark)

	// Повторная отметка не откатывает значение.
	watermark, err = svc.MarkRead(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), watermark)

	p, err := store.Load("uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), p.LastReadTimestamp)
}

func TestService_MarkReadWithEmptyListKeepsWatermark(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListNotifications", mock.Anything).Return(sampleNotifications(), nil).Once()

	store := newPrefsStore(t)
	svc := notification.New(repo, store, new(PublisherMock), nil, discardLogger())

	watermark, err := svc.MarkRead(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), watermark)

	// Ленту вычистили: отметка остаётся на месте, а не на текущем времени.
	repo.On("ListNotifications", mock.Anything).Return([]*models.Notification{}, nil).Once()

	watermark, err = svc.MarkRead(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), watermark)

	p, err := store.Load("uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), p.LastReadTimestamp)
}

func TestService_Broadcast(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	broker := new(BrokerMock)

	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.ID != "" && n.Title == "Bonus day" && n.Timestamp > 0
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, "notifications", mock.Anything).Return(nil).Once()
	broker.On("Publish", "notifications", "broadcast", mock.Anything).Return(nil).Once()

	svc := notification.New(repo, newPrefsStore(t), pub, broker, discardLogger())
	n, err := svc.Broadcast(context.Background(), models.DummyNotification{
		Title:   "Bonus day",
		Message: "Double rewards today",
		Type:    models.NotificationBonus,
	})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationBonus, n.Type)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
	broker.AssertExpectations(t)
}
