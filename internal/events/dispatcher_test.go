package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventAgencyVerified, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.SubjectID)
		return errors.New("boom")
	})
	d.Subscribe(EventAgencyVerified, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventAgencyRejected, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventAgencyVerified, SubjectID: "a1"})
	assert.EqualError(t, err, "agency_verified subscriber 0: boom")
	assert.Equal(t, []string{"first:a1", "second:a1"}, calls)
}

func TestDispatcherNoListeners(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventComplaintRouted}))
}

func TestDispatcherRecoversPanickingSubscriber(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventComplaintRouted, func(context.Context, Event) error { panic("nil map") })
	d.Subscribe(EventComplaintRouted, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventComplaintRouted})
	assert.EqualError(t, err, "complaint_routed subscriber 0: panic: nil map")
	assert.True(t, delivered)
}
