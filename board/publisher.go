package board

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskflow/domain"
)

// Publisher receives the events emitted by a task store.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// PublisherFunc adapts a function into a Publisher.
type PublisherFunc func(ctx context.Context, ev domain.Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev domain.Event) error {
	return f(ctx, ev)
}

// Fanout delivers each event to every publisher in order. A failing sink is
// logged and does not stop delivery to the rest.
type Fanout struct {
	sinks  []Publisher
	logger *log.Logger
}

func NewFanout(logger *log.Logger, sinks ...Publisher) *Fanout {
	if logger == nil {
		logger = log.StandardLogger()
	}
	out := make([]Publisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Fanout{sinks: out, logger: logger}
}

func (f *Fanout) Publish(ctx context.Context, ev domain.Event) error {
	for _, s := range f.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			f.logger.WithError(err).WithFields(log.Fields{
				"event":  ev.Type,
				"taskId": ev.TaskID,
			}).Warn("event sink failed")
		}
	}
	return nil
}
