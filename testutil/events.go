package testutil

import (
	"context"
	"sync"
	"time"

	"wheelhouse/models"
)

// RecordingPublisher keeps every published event. Err, when set, is returned after recording.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []models.BookingEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

func (p *RecordingPublisher) Events() []models.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.BookingEvent(nil), p.events...)
}

// OfType returns the recorded events of type t.
func (p *RecordingPublisher) OfType(t models.BookingEventType) []models.BookingEvent {
	var out []models.BookingEvent
	for _, e := range p.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
