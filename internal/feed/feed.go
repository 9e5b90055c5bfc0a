// Package feed канал изменений поверх Redis pub/sub.
//
// Мутации публикуют событие в канал соответствующего пути, подписчики
// получают свежий снимок данных и обновляют своё состояние. Подписка
// живёт до отмены контекста.
package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Каналы изменений. Канал пользователя строится через ChannelUser.
const (
	ChannelConfig        = "config"
	ChannelNotifications = "notifications"
)

// ChannelUser возвращает имя канала изменений профиля пользователя.
func ChannelUser(uid string) string {
	return "users/" + uid
}

// Event одно событие изменения: канал и JSON-снимок данных.
type Event struct {
	Channel string
	Payload []byte
}

// Feed издатель и подписчик событий изменений.
type Feed struct {
	rdb *redis.Client
}

// New создаёт Feed поверх существующего клиента Redis.
func New(rdb *redis.Client) *Feed {
	return &Feed{rdb: rdb}
}

// Publish сериализует payload в JSON и публикует его в канал.
func (f *Feed) Publish(ctx context.Context, channel string, payload any) error {
	const op = "feed.Publish"
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Subscribe подписывается на каналы и возвращает поток событий.
// Поток закрывается при отмене контекста, подписка снимается сама.
func (f *Feed) Subscribe(ctx context.Context, channels ...string) (<-chan Event, error) {
	const op = "feed.Subscribe"
	sub := f.rdb.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- Event{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
