package service

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/contact-sync/internal/errors"
	"github.com/contact-sync/internal/logging"
	"github.com/contact-sync/internal/storage"
)

const statsCacheKey = "contact-sync:stats"

// ContactCounter exposes aggregate contact counts
type ContactCounter interface {
	CountContacts(ctx context.Context) (*storage.Counts, error)
}

// BroadcastCounter exposes the number of sent broadcasts
type BroadcastCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Stats is the aggregate view served by the stats endpoint
type Stats struct {
	TotalContacts        int64 `json:"totalContacts"`
	ActiveContacts       int64 `json:"activeContacts"`
	UnsubscribedContacts int64 `json:"unsubscribedContacts"`
	TotalBroadcasts      int64 `json:"totalBroadcasts"`
}

// StatsService computes contact and broadcast statistics with a short
// Redis cache in front of the counting queries
type StatsService struct {
	contacts   ContactCounter
	broadcasts BroadcastCounter
	cache      *storage.RedisCache
	ttl        time.Duration
}

// NewStatsService creates a new stats service. cache may be nil, in which
// case every request hits the database.
func NewStatsService(contacts ContactCounter, broadcasts BroadcastCounter, cache *storage.RedisCache, ttl time.Duration) *StatsService {
	return &StatsService{contacts: contacts, broadcasts: broadcasts, cache: cache, ttl: ttl}
}

// Get returns the current statistics, serving from cache when possible
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	counts, err := s.contacts.CountContacts(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count contacts", err)
	}

	sent, err := s.broadcasts.Count(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count broadcasts", err)
	}

	stats := &Stats{
		TotalContacts:        counts.Total,
		ActiveContacts:       counts.Subscribed,
		UnsubscribedContacts: counts.Unsubscribed,
		TotalBroadcasts:      sent,
	}
	s.toCache(ctx, stats)
	return stats, nil
}

// Invalidate drops the cached statistics. Called after imports and
// suppression events so the next read reflects the change.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Failed to invalidate stats cache")
	}
}

func (s *StatsService) fromCache(ctx context.Context) *Stats {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		if !storage.IsCacheMiss(err) {
			logging.FromContext(ctx).WithError(err).Warn("Failed to read stats cache")
		}
		return nil
	}

	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Discarding malformed stats cache entry")
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, stats *Stats) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, s.ttl); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Failed to write stats cache")
	}
}
