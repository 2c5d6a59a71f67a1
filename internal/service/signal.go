package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/yamoridev/ideaboard"
	"github.com/yamoridev/ideaboard/internal/domain"
)

// SignalService fans idea change events out over redis pub/sub. Events are
// coarse "something changed" signals, not row deltas.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event ideaboard.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.ChangesChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards change events to output until ctx is done. The redis
// subscription is released on return.
func (s *SignalService) Realtime(ctx context.Context, output chan<- ideaboard.Event) {

	pubsub := s.rdb.Subscribe(ctx, domain.ChangesChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event ideaboard.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Error(
					"failed to decode change event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
