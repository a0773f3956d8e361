package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contact-sync/internal/storage"
)

type fakeContactCounter struct {
	counts storage.Counts
	calls  int
}

func (f *fakeContactCounter) CountContacts(ctx context.Context) (*storage.Counts, error) {
	f.calls++
	counts := f.counts
	return &counts, nil
}

type fakeBroadcastCounter struct {
	count int64
	calls int
}

func (f *fakeBroadcastCounter) Count(ctx context.Context) (int64, error) {
	f.calls++
	return f.count, nil
}

func newTestCache(t *testing.T) *storage.RedisCache {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewRedisCacheFromClient(client)
}

func TestStatsGet_ComputesCounts(t *testing.T) {
	contacts := &fakeContactCounter{counts: storage.Counts{Total: 10, Subscribed: 7, Unsubscribed: 3}}
	broadcasts := &fakeBroadcastCounter{count: 4}
	svc := NewStatsService(contacts, broadcasts, nil, time.Minute)

	stats, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalContacts)
	assert.Equal(t, int64(7), stats.ActiveContacts)
	assert.Equal(t, int64(3), stats.UnsubscribedContacts)
	assert.Equal(t, int64(4), stats.TotalBroadcasts)
}

func TestStatsGet_ServesFromCache(t *testing.T) {
	contacts := &fakeContactCounter{counts: storage.Counts{Total: 5, Subscribed: 5}}
	broadcasts := &fakeBroadcastCounter{count: 1}
	svc := NewStatsService(contacts, broadcasts, newTestCache(t), time.Minute)

	first, err := svc.Get(context.Background())
	require.NoError(t, err)

	second, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, contacts.calls)
	assert.Equal(t, 1, broadcasts.calls)
}

func TestStatsInvalidate_ForcesRecount(t *testing.T) {
	contacts := &fakeContactCounter{counts: storage.Counts{Total: 5, Subscribed: 5}}
	broadcasts := &fakeBroadcastCounter{}
	svc := NewStatsService(contacts, broadcasts, newTestCache(t), time.Minute)

	_, err := svc.Get(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	contacts.counts = storage.Counts{Total: 6, Subscribed: 5, Unsubscribed: 1}
	stats, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(6), stats.TotalContacts)
	assert.Equal(t, 2, contacts.calls)
}
