package tasks

import (
	"context"
	"errors"
	"testing"

	"wheelhouse/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeEnqueuer struct {
	calls  []enqueued
	failOn string
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if task.Type() == f.failOn {
		return nil, errors.New("redis: connection refused")
	}
	f.calls = append(f.calls, enqueued{task: task, opts: opts})
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func optionValue(opts []asynq.Option, t asynq.OptionType) interface{} {
	for _, o := range opts {
		if o.Type() == t {
			return o.Value()
		}
	}
	return nil
}

func paidCancellation() models.BookingEvent {
	return models.BookingEvent{
		ID:              "evt-9",
		Type:            models.EventBookingCanceled,
		BookingID:       "b1",
		RefundAmount:    1044,
		PaymentStatus:   models.PaymentPaid,
		PaymentIntentID: "pi_123",
	}
}

func TestNewBookingEventTask(t *testing.T) {
	task, opts, err := NewBookingEventTask(paidCancellation())
	require.NoError(t, err)

	assert.Equal(t, TypeBookingEvent, task.Type())
	assert.Equal(t, "evt-9", optionValue(opts, asynq.TaskIDOpt))
	assert.Equal(t, QueueEvents, optionValue(opts, asynq.QueueOpt))

	event, err := ParseBookingEvent(task)
	require.NoError(t, err)
	assert.Equal(t, paidCancellation(), event)
}

func TestParseBookingEvent_Malformed(t *testing.T) {
	_, err := ParseBookingEvent(asynq.NewTask(TypeBookingEvent, []byte("{")))
	assert.Error(t, err)
}

func TestAsynqPublisher_Notification(t *testing.T) {
	q := &fakeEnqueuer{}
	event := models.BookingEvent{ID: "evt-1", Type: models.EventBookingConfirmed, BookingID: "b1"}

	require.NoError(t, NewAsynqPublisher(q).Publish(context.Background(), event))

	require.Len(t, q.calls, 1)
	assert.Equal(t, TypeBookingEvent, q.calls[0].task.Type())
}

func TestAsynqPublisher_RefundGetsOwnTask(t *testing.T) {
	q := &fakeEnqueuer{}

	require.NoError(t, NewAsynqPublisher(q).Publish(context.Background(), paidCancellation()))

	require.Len(t, q.calls, 2)
	refund := q.calls[1]
	assert.Equal(t, TypeIssueRefund, refund.task.Type())
	assert.Equal(t, "refund-b1", optionValue(refund.opts, asynq.TaskIDOpt))
	assert.Equal(t, 10, optionValue(refund.opts, asynq.MaxRetryOpt))
}

func TestAsynqPublisher_EnqueueFailure(t *testing.T) {
	q := &fakeEnqueuer{failOn: TypeIssueRefund}

	err := NewAsynqPublisher(q).Publish(context.Background(), paidCancellation())

	assert.ErrorContains(t, err, "enqueue refund for booking b1")
	assert.Len(t, q.calls, 1)
}
