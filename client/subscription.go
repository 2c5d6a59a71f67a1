package client

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yamoridev/ideaboard"
)

const heartbeatInterval = 30 * time.Second

type heartbeat struct {
	Type string `json:"type"`
}

// Subscription is a standing change-feed channel. It must be released
// with Unsubscribe when the owner detaches.
type Subscription struct {
	conn *websocket.Conn
	done chan struct{}
}

// Unsubscribe closes the websocket and stops the delivery goroutines.
// Safe to call once per subscription.
func (s *Subscription) Unsubscribe() {
	close(s.done)
	s.conn.Close()
}

// Subscribe opens the realtime channel and invokes onChange for every
// change event, regardless of which client caused it. Events are coarse
// signals; callers are expected to re-fetch.
func (c *Client) Subscribe(ctx context.Context, onChange func()) (*Subscription, error) {

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.realtimeURL(), nil)
	if err != nil {
		return nil, ideaboard.ErrRemoteUnavailable
	}

	sub := &Subscription{
		conn: conn,
		done: make(chan struct{}),
	}

	go func() {
		for {
			var event ideaboard.Event
			err := conn.ReadJSON(&event)
			if err != nil {
				select {
				case <-sub.done:
				default:
					slog.Debug(
						"realtime channel closed",
						slog.String("error", err.Error()),
						slog.String("module", "client"),
					)
				}
				return
			}
			if event.Table == ideaboard.IdeasTable {
				onChange()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sub.done:
				return
			case <-ticker.C:
				if err := conn.WriteJSON(heartbeat{Type: "h"}); err != nil {
					return
				}
			}
		}
	}()

	return sub, nil
}

func (c *Client) realtimeURL() string {
	url := c.baseURL + "/realtime"
	if strings.HasPrefix(url, "https://") {
		return "wss://" + strings.TrimPrefix(url, "https://")
	}
	return "ws://" + strings.TrimPrefix(url, "http://")
}
