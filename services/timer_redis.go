package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis key / channel layout for reviewer timer state. Keys are namespaced
// per reviewer; the events channel carries the cross-tab change notifications.
func timerActiveKey(reviewerID int) string {
	return fmt.Sprintf("timer:active:%d", reviewerID)
}

func timerCompletedKey(reviewerID int) string {
	return fmt.Sprintf("timer:completed:%d", reviewerID)
}

func timerEventsChannel(reviewerID int) string {
	return fmt.Sprintf("timer:events:%d", reviewerID)
}

// RedisTimerStore persists reviewer timer state in Redis as JSON values.
type RedisTimerStore struct {
	client *redis.Client
}

func NewRedisTimerStore(client *redis.Client) *RedisTimerStore {
	return &RedisTimerStore{client: client}
}

func (s *RedisTimerStore) GetActive(ctx context.Context, reviewerID int) (*ActiveTimer, error) {
	raw, err := s.client.Get(ctx, timerActiveKey(reviewerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var timer ActiveTimer
	if err := json.Unmarshal([]byte(raw), &timer); err != nil {
		return nil, fmt.Errorf("corrupt active timer state: %w", err)
	}
	return &timer, nil
}

func (s *RedisTimerStore) SetActive(ctx context.Context, reviewerID int, t *ActiveTimer) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, timerActiveKey(reviewerID), raw, 0).Err()
}

func (s *RedisTimerStore) ClearActive(ctx context.Context, reviewerID int) error {
	return s.client.Del(ctx, timerActiveKey(reviewerID)).Err()
}

func (s *RedisTimerStore) GetCompleted(ctx context.Context, reviewerID int) ([]CompletedTimerEntry, error) {
	raw, err := s.client.Get(ctx, timerCompletedKey(reviewerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []CompletedTimerEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("corrupt completed timer state: %w", err)
	}
	return entries, nil
}

func (s *RedisTimerStore) SetCompleted(ctx context.Context, reviewerID int, entries []CompletedTimerEntry) error {
	if len(entries) == 0 {
		return s.client.Del(ctx, timerCompletedKey(reviewerID)).Err()
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	// The key expires with the youngest possible entry; individual entries
	// are still pruned on read.
	return s.client.Set(ctx, timerCompletedKey(reviewerID), raw, CompletedEntryTTL).Err()
}

// RedisTimerNotifier propagates timer events over Redis pub/sub so every tab
// a reviewer has open converges without polling.
type RedisTimerNotifier struct {
	client *redis.Client
}

func NewRedisTimerNotifier(client *redis.Client) *RedisTimerNotifier {
	return &RedisTimerNotifier{client: client}
}

func (n *RedisTimerNotifier) Publish(ctx context.Context, reviewerID int, event TimerEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, timerEventsChannel(reviewerID), raw).Err()
}

func (n *RedisTimerNotifier) Subscribe(ctx context.Context, reviewerID int) (<-chan TimerEvent, func(), error) {
	pubsub := n.client.Subscribe(ctx, timerEventsChannel(reviewerID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	events := make(chan TimerEvent, 8)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event TimerEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cleanup := func() { _ = pubsub.Close() }
	return events, cleanup, nil
}
