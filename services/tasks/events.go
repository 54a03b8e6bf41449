package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"wheelhouse/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingEvent = "booking:event"
	TypeIssueRefund  = "booking:refund"
	QueueEvents      = "events"
)

// NewBookingEventTask wraps an event for the queue. The event id doubles as the task id so a
// redelivered publish is not processed twice.
func NewBookingEventTask(event models.BookingEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingEvent, b)
	opts := []asynq.Option{
		asynq.Queue(QueueEvents),
		asynq.TaskID(event.ID),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// NewRefundTask carries a canceled booking whose refund must be issued. One task per booking.
func NewRefundTask(event models.BookingEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeIssueRefund, b)
	opts := []asynq.Option{
		asynq.Queue(QueueEvents),
		asynq.TaskID("refund-" + event.BookingID),
		asynq.MaxRetry(10),
	}
	return task, opts, nil
}

// ParseBookingEvent decodes a task built by NewBookingEventTask or NewRefundTask.
func ParseBookingEvent(task *asynq.Task) (models.BookingEvent, error) {
	var event models.BookingEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return models.BookingEvent{}, fmt.Errorf("invalid booking event payload: %w", err)
	}
	return event, nil
}

// Enqueuer is the part of *asynq.Client the publisher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher puts booking events on the Redis-backed queue. Refunds travel as their own task
// so a retried refund does not resend notifications.
type AsynqPublisher struct {
	Client Enqueuer
}

func NewAsynqPublisher(client Enqueuer) *AsynqPublisher {
	return &AsynqPublisher{Client: client}
}

func (p *AsynqPublisher) Publish(ctx context.Context, event models.BookingEvent) error {
	task, opts, err := NewBookingEventTask(event)
	if err != nil {
		return err
	}
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s for booking %s: %w", event.Type, event.BookingID, err)
	}
	if !event.NeedsRefund() {
		return nil
	}

	task, opts, err = NewRefundTask(event)
	if err != nil {
		return err
	}
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue refund for booking %s: %w", event.BookingID, err)
	}
	return nil
}
