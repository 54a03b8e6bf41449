package notification

import (
	"context"

	"wheelhouse/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EventPublisher hands committed booking events to whatever delivers them.
type EventPublisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
}

// EventHandler consumes a single booking event.
type EventHandler interface {
	Handle(ctx context.Context, event models.BookingEvent) error
}

// InlinePublisher runs the handler on its own goroutine, detached from the caller's context.
// Used when no queue is configured.
type InlinePublisher struct {
	Handler EventHandler
	Logger  *zap.Logger
}

func NewInlinePublisher(handler EventHandler, logger *zap.Logger) *InlinePublisher {
	return &InlinePublisher{Handler: handler, Logger: logger}
}

func (p *InlinePublisher) Publish(ctx context.Context, event models.BookingEvent) error {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := p.Handler.Handle(detached, event); err != nil {
			p.Logger.Warn("Inline event handling failed",
				zap.String("event", string(event.Type)),
				zap.String("bookingId", event.BookingID),
				zap.Error(err))
		}
	}()
	return nil
}

// Handlers runs each handler in turn and combines their failures.
type Handlers []EventHandler

func (hs Handlers) Handle(ctx context.Context, event models.BookingEvent) error {
	var errs error
	for _, h := range hs {
		errs = multierr.Append(errs, h.Handle(ctx, event))
	}
	return errs
}
