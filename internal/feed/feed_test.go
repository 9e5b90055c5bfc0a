package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb)
}

func TestFeed_PublishDeliversToSubscriber(t *testing.T) {
	f := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := f.Subscribe(ctx, ChannelConfig)
	require.NoError(t, err)

	type payload struct {
		AppName string `json:"appName"`
	}
	require.NoError(t, f.Publish(ctx, ChannelConfig, payload{AppName: "TopUp"}))

	select {
	case ev := <-events:
		assert.Equal(t, ChannelConfig, ev.Channel)
		var got payload
		require.NoError(t, json.Unmarshal(ev.Payload, &got))
		assert.Equal(t, "TopUp", got.AppName)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestFeed_SubscriberReceivesOnlyItsChannels(t *testing.T) {
	f := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := f.Subscribe(ctx, ChannelUser("uid-1"))
	require.NoError(t, err)

	require.NoError(t, f.Publish(ctx, ChannelUser("uid-2"), "other"))
	require.NoError(t, f.Publish(ctx, ChannelUser("uid-1"), "mine"))

	select {
	case ev := <-events:
		assert.Equal(t, ChannelUser("uid-1"), ev.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestFeed_CancelClosesStream(t *testing.T) {
	f := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := f.Subscribe(ctx, ChannelNotifications)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after cancel")
	}
}
