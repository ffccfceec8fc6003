package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"taskflow/domain"
)

// Broker wakes the live streams of a user whenever that user's board
// changes. It is a board.Publisher, so it can sit in the event fan-out.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan struct{}]struct{})}
}

func (b *Broker) subscribe(userID string) chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan struct{}]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(userID string, ch chan struct{}) {
	b.mu.Lock()
	delete(b.subs[userID], ch)
	if len(b.subs[userID]) == 0 {
		delete(b.subs, userID)
	}
	b.mu.Unlock()
}

// Notify wakes every stream of userID. A stream that has not consumed the
// previous wake-up is not signalled twice.
func (b *Broker) Notify(userID string) {
	b.mu.Lock()
	for ch := range b.subs[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

func (b *Broker) Publish(_ context.Context, ev domain.Event) error {
	b.Notify(ev.UserID)
	return nil
}

// Subscribers reports the number of open streams for userID.
func (b *Broker) Subscribers(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}

// streamBoard pushes the user's columns as a server-sent event now and after
// every change until the client disconnects.
func streamBoard(workspaces Workspaces, broker *Broker) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := userIDFrom(c)
		resp := c.Response()
		flusher, ok := resp.Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		resp.Header().Set(echo.HeaderContentType, "text/event-stream")
		resp.Header().Set(echo.HeaderCacheControl, "no-cache")
		resp.Header().Set(echo.HeaderConnection, "keep-alive")
		resp.Header().Set("X-Accel-Buffering", "no")
		resp.WriteHeader(http.StatusOK)

		ctx := c.Request().Context()
		ch := broker.subscribe(userID)
		defer broker.unsubscribe(userID, ch)
		for {
			data, err := sonic.ConfigStd.Marshal(domain.Partition(ws.Tasks.Tasks()))
			if err != nil {
				c.Logger().Error(err)
				return err
			}
			if _, err := resp.Write([]byte("data: ")); err != nil {
				return nil
			}
			if _, err := resp.Write(data); err != nil {
				return nil
			}
			if _, err := resp.Write([]byte("\n\n")); err != nil {
				return nil
			}
			flusher.Flush()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ch:
				}
				// The workspace may have been dropped after a remote change.
				next, err := workspaces.Workspace(ctx, userID)
				if err == nil {
					ws = next
					break
				}
				if ctx.Err() != nil {
					return nil
				}
				c.Logger().Warnf("stream reload for %s: %v", userID, err)
			}
		}
	}
}
