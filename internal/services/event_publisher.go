package services

import (
	"context"
	"log/slog"

	"calorie/internal/amqp"
	"calorie/internal/session"
	"calorie/internal/tracker"
)

// Publisher sends tracker events to the broker. *amqp.Client implements it.
type Publisher interface {
	PublishTrackerEvent(ctx context.Context, msg *amqp.TrackerEventMessage) error
}

var (
	_ Publisher        = (*amqp.Client)(nil)
	_ tracker.Listener = (*EventPublisher)(nil)
)

// EventPublisher forwards one session's committed changes to the broker.
// Publishing is best-effort: failures are logged and never reach the caller.
type EventPublisher struct {
	session   string
	publisher Publisher
}

func NewEventPublisher(sessionID string, publisher Publisher) *EventPublisher {
	return &EventPublisher{session: sessionID, publisher: publisher}
}

func (p *EventPublisher) Notify(ctx context.Context, ev tracker.Event) {
	if p.publisher == nil || !ev.Kind.Mutates() {
		return
	}
	// The change is already persisted; a cancelled request must not drop it.
	ctx = context.WithoutCancel(ctx)
	if err := p.publisher.PublishTrackerEvent(ctx, amqp.NewTrackerEventMessage(p.session, ev)); err != nil {
		slog.WarnContext(ctx, "Failed to publish tracker event",
			"session_id", p.session,
			"event", ev.Kind.String(),
			"error", err)
	}
}

// PublisherListeners returns a session listener factory, or nil when
// publishing is disabled.
func PublisherListeners(publisher Publisher) session.ListenerFactory {
	if publisher == nil {
		return nil
	}
	return func(sessionID string) tracker.Listener {
		return NewEventPublisher(sessionID, publisher)
	}
}
