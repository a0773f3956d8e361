package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/contact-sync/internal/errors"
)

type fakeSuppressor struct {
	marked []string
	err    error
}

func (f *fakeSuppressor) MarkUnsubscribed(ctx context.Context, email string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, email)
	return nil
}

type fakeStatsInvalidator struct {
	calls int
}

func (f *fakeStatsInvalidator) Invalidate(ctx context.Context) {
	f.calls++
}

func suppressionEvent(eventType, email string) WebhookEvent {
	var event WebhookEvent
	event.Type = eventType
	event.Data.Email = email
	return event
}

func TestHandleEvent_UnsubscribeSuppressesContact(t *testing.T) {
	contacts := &fakeSuppressor{}
	stats := &fakeStatsInvalidator{}
	svc := NewSuppressionService(contacts, stats)

	err := svc.HandleEvent(context.Background(), suppressionEvent(EventUnsubscribed, "alice@example.com"))
	require.NoError(t, err)

	assert.Equal(t, []string{"alice@example.com"}, contacts.marked)
	assert.Equal(t, 1, stats.calls)
}

func TestHandleEvent_BounceSuppressesContact(t *testing.T) {
	contacts := &fakeSuppressor{}
	svc := NewSuppressionService(contacts, nil)

	err := svc.HandleEvent(context.Background(), suppressionEvent(EventBounced, "bob@example.com"))
	require.NoError(t, err)

	assert.Equal(t, []string{"bob@example.com"}, contacts.marked)
}

func TestHandleEvent_IgnoresOtherEventTypes(t *testing.T) {
	contacts := &fakeSuppressor{}
	stats := &fakeStatsInvalidator{}
	svc := NewSuppressionService(contacts, stats)

	err := svc.HandleEvent(context.Background(), suppressionEvent("email.delivered", "alice@example.com"))
	require.NoError(t, err)

	assert.Empty(t, contacts.marked)
	assert.Zero(t, stats.calls)
}

func TestHandleEvent_RequiresEmail(t *testing.T) {
	svc := NewSuppressionService(&fakeSuppressor{}, nil)

	err := svc.HandleEvent(context.Background(), suppressionEvent(EventUnsubscribed, ""))
	require.Error(t, err)

	catErr, ok := apperrors.AsCategorized(err)
	require.True(t, ok)
	assert.Equal(t, 400, catErr.StatusCode)
}
