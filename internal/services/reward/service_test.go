package reward

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreditBalance(ctx context.Context, userUID string, amount int64, note string, adView bool) (int64, error) {
	args := m.Called(ctx, userUID, amount, note, adView)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type SettingsRepoMock struct {
	mock.Mock
}

func (m *SettingsRepoMock) GetSettings(ctx context.Context) (settings.AppSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.AppSettings), args.Error(1)
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

func enabledSettings() settings.AppSettings {
	cfg := settings.Default()
	cfg.EarnSettings.WebAds.VideoURL = "https://cdn.example.com/ad.mp4"
	cfg.EarnSettings.WebAds.RewardAmount = 10
	return cfg
}

func completeView(t *testing.T, svc *Service) string {
	t.Helper()
	session, err := svc.StartView(context.Background())
	require.NoError(t, err)

	_, err = svc.ApplyEvent(session.Token, EventContentReady)
	require.NoError(t, err)
	_, err = svc.ApplyEvent(session.Token, EventPlaybackStarted)
	require.NoError(t, err)
	_, err = svc.ApplyEvent(session.Token, EventPlaybackEnded)
	require.NoError(t, err)
	return session.Token
}

func TestService_StartView(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func() settings.AppSettings
		wantErr error
	}{
		{
			name: "earning enabled",
			cfg:  enabledSettings,
		},
		{
			name: "web ads disabled",
			cfg: func() settings.AppSettings {
				cfg := enabledSettings()
				cfg.EarnSettings.WebAds.Enabled = false
				return cfg
			},
			wantErr: ErrEarningDisabled,
		},
		{
			name: "earn tab hidden",
			cfg: func() settings.AppSettings {
				cfg := enabledSettings()
				cfg.Visibility.Earn = false
				return cfg
			},
			wantErr: ErrEarningDisabled,
		},
		{
			name: "no video url configured",
			cfg: func() settings.AppSettings {
				cfg := enabledSettings()
				cfg.EarnSettings.WebAds.VideoURL = ""
				return cfg
			},
			wantErr: ErrNoAdSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settingsRepo := new(SettingsRepoMock)
			settingsRepo.On("GetSettings", mock.Anything).Return(tt.cfg(), nil)

			svc := New(new(UserRepoMock), settingsRepo, new(LockerMock),
				new(PublisherMock), discardLogger(), 15*time.Second)
			session, err := svc.StartView(context.Background())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, session.Token)
				assert.Equal(t, SourceDirectFile, session.Source.Kind)
				assert.Equal(t, 15, session.Seconds)
			}
		})
	}
}

func TestService_ClaimRequiresCompletedView(t *testing.T) {
	settingsRepo := new(SettingsRepoMock)
	settingsRepo.On("GetSettings", mock.Anything).Return(enabledSettings(), nil)

	svc := New(new(UserRepoMock), settingsRepo, new(LockerMock),
		new(PublisherMock), discardLogger(), 15*time.Second)

	session, err := svc.StartView(context.Background())
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), "uid-1", session.Token)
	assert.ErrorIs(t, err, ErrViewNotCompleted)

	_, err = svc.Claim(context.Background(), "uid-1", "no-such-token")
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestService_ClaimCreditsOnce(t *testing.T) {
	users := new(UserRepoMock)
	settingsRepo := new(SettingsRepoMock)
	lock := new(LockerMock)
	pub := new(PublisherMock)
	settingsRepo.On("GetSettings", mock.Anything).Return(enabledSettings(), nil)

	svc := New(users, settingsRepo, lock, pub, discardLogger(), 15*time.Second)
	token := completeView(t, svc)

	lock.On("AcquireOnce", mock.Anything, "reward:claim:"+token, mock.Anything).
		Return(true, nil).Once()
	users.On("CreditBalance", mock.Anything, "uid-1", int64(10), "rewarded ad", true).
		Return(int64(110), nil).Once()
	users.On("GetUser", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", Balance: 110}, nil).Once()
	pub.On("Publish", mock.Anything, "users/uid-1", mock.Anything).Return(nil).Once()

	newBalance, err := svc.Claim(context.Background(), "uid-1", token)
	require.NoError(t, err)
	assert.Equal(t, int64(110), newBalance)

	// Сессия удалена: повторное предъявление токена отклоняется.
	_, err = svc.Claim(context.Background(), "uid-1", token)
	assert.ErrorIs(t, err, ErrViewNotFound)
	users.AssertExpectations(t)
	lock.AssertExpectations(t)
}

func TestService_ClaimRejectsDuplicateToken(t *testing.T) {
	users := new(UserRepoMock)
	settingsRepo := new(SettingsRepoMock)
	lock := new(LockerMock)
	settingsRepo.On("GetSettings", mock.Anything).Return(enabledSettings(), nil)

	svc := New(users, settingsRepo, lock, new(PublisherMock), discardLogger(), 15*time.Second)
	token := completeView(t, svc)

	// Токен уже занят другим экземпляром: начисления не происходит.
	lock.On("AcquireOnce", mock.Anything, "reward:claim:"+token, mock.Anything).
		Return(false, nil).Once()

	_, err := svc.Claim(context.Background(), "uid-1", token)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	users.AssertNotCalled(t, "CreditBalance",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ClaimRetriesAfterCreditFailure(t *testing.T) {
	users := new(UserRepoMock)
	settingsRepo := new(SettingsRepoMock)
	lock := new(LockerMock)
	pub := new(PublisherMock)
	settingsRepo.On("GetSettings", mock.Anything).Return(enabledSettings(), nil)

	svc := New(users, settingsRepo, lock, pub, discardLogger(), 15*time.Second)
	token := completeView(t, svc)

	// Начисление сорвалось: блокировка снимается, токен остаётся жив.
	lock.On("AcquireOnce", mock.Anything, "reward:claim:"+token, mock.Anything).
		Return(true, nil).Twice()
	lock.On("Release", mock.Anything, "reward:claim:"+token).
		Return(nil).Once()
	users.On("CreditBalance", mock.Anything, "uid-1", int64(10), "rewarded ad", true).
		Return(int64(0), errors.New("store is down")).Once()

	_, err := svc.Claim(context.Background(), "uid-1", token)
	require.Error(t, err)

	// Повтор после сбоя проходит и начисляет награду.
	users.On("CreditBalance", mock.Anything, "uid-1", int64(10), "rewarded ad", true).
		Return(int64(110), nil).Once()
	users.On("GetUser", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", Balance: 110}, nil).Once()
	pub.On("Publish", mock.Anything, "users/uid-1", mock.Anything).Return(nil).Once()

	newBalance, err := svc.Claim(context.Background(), "uid-1", token)
	require.NoError(t, err)
	assert.Equal(t, int64(110), newBalance)
	lock.AssertExpectations(t)
	users.AssertExpectations(t)
}
