package usgs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSource struct {
	calls  int
	result domain.FeatureCollection
	err    error
}

func (m *countingSource) Query(_ context.Context, _ domain.DateRange) (domain.FeatureCollection, error) {
	m.calls++
	return m.result, m.err
}

func oneFeature(id string) domain.FeatureCollection {
	ms := int64(0)
	return domain.FeatureCollection{Features: []domain.Feature{{
		ID:         id,
		Properties: &domain.Properties{Time: &ms},
		Geometry:   &domain.Geometry{Coordinates: []float64{1, 2}},
	}}}
}

// The day after testRange ends, past the settle grace, so testRange is cached.
var afterRange = time.Date(2024, time.April, 27, 9, 0, 0, 0, time.UTC)

const testTTL = time.Hour

func newCached(t *testing.T, inner domain.EventSource, size int, clock clockwork.Clock) (*CachedSource, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	cached, err := NewCachedSource(inner, size, testTTL, clock, m)
	require.NoError(t, err)
	return cached, m
}

func TestNewCachedSource_InvalidSettings(t *testing.T) {
	clock := clockwork.NewFakeClockAt(afterRange)
	m := observability.NewMetricsForTesting()

	_, err := NewCachedSource(&countingSource{}, 0, testTTL, clock, m)
	require.Error(t, err)

	_, err = NewCachedSource(&countingSource{}, 10, 0, clock, m)
	require.Error(t, err)
}

func TestCachedSource_ClosedRangeHit(t *testing.T) {
	inner := &countingSource{result: oneFeature("us1")}
	cached, m := newCached(t, inner, 10, clockwork.NewFakeClockAt(afterRange))

	fc1, err := cached.Query(context.Background(), testRange)
	require.NoError(t, err)
	fc2, err := cached.Query(context.Background(), testRange)
	require.NoError(t, err)

	assert.Equal(t, fc1, fc2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCache.WithLabelValues("hit")))
}

func TestCachedSource_OpenRangeBypasses(t *testing.T) {
	inner := &countingSource{result: oneFeature("us1")}
	// "Today" is the range's last day, so more events may still arrive.
	cached, m := newCached(t, inner, 10, clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)))

	_, _ = cached.Query(context.Background(), testRange)
	_, _ = cached.Query(context.Background(), testRange)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamCache.WithLabelValues("bypass")))
	assert.Equal(t, 0, cached.cache.Len())
}

func TestCachedSource_JustClosedRangeBypasses(t *testing.T) {
	inner := &countingSource{result: oneFeature("us1")}
	// Thirty seconds after midnight: closed, but still within the settle grace.
	cached, m := newCached(t, inner, 10, clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 0, 0, 30, 0, time.UTC)))

	_, _ = cached.Query(context.Background(), testRange)
	_, _ = cached.Query(context.Background(), testRange)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamCache.WithLabelValues("bypass")))
}

func TestCachedSource_RangeSettlesAsTimePasses(t *testing.T) {
	inner := &countingSource{result: oneFeature("us1")}
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 23, 0, 0, 0, time.UTC))
	cached, _ := newCached(t, inner, 10, clock)

	_, _ = cached.Query(context.Background(), testRange)
	clock.Advance(2 * time.Hour)
	_, _ = cached.Query(context.Background(), testRange)
	_, _ = cached.Query(context.Background(), testRange)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_EntriesExpire(t *testing.T) {
	inner := &countingSource{result: oneFeature("us1")}
	clock := clockwork.NewFakeClockAt(afterRange)
	cached, m := newCached(t, inner, 10, clock)

	fc, err := cached.Query(context.Background(), testRange)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	// The catalog picks up a late event.
	inner.result.Features = append(inner.result.Features, oneFeature("us2").Features...)

	clock.Advance(testTTL - time.Minute)
	fc, err = cached.Query(context.Background(), testRange)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1, "still fresh")

	clock.Advance(30 * 24 * time.Hour)
	fc, err = cached.Query(context.Background(), testRange)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2, "expired entry is refetched")
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCache.WithLabelValues("expired")))

	// The refreshed entry is cached again.
	_, _ = cached.Query(context.Background(), testRange)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	inner := &countingSource{err: &domain.UpstreamError{StatusCode: 503}}
	cached, _ := newCached(t, inner, 10, clockwork.NewFakeClockAt(afterRange))

	_, err := cached.Query(context.Background(), testRange)
	var upErr *domain.UpstreamError
	require.True(t, errors.As(err, &upErr))

	_, _ = cached.Query(context.Background(), testRange)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_DifferentRangesMiss(t *testing.T) {
	inner := &countingSource{result: oneFeature("us1")}
	cached, _ := newCached(t, inner, 10, clockwork.NewFakeClockAt(afterRange))

	other := domain.NewDateRange(testRange.Start, testRange.Start)
	_, _ = cached.Query(context.Background(), testRange)
	_, _ = cached.Query(context.Background(), other)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.cache.Len())
}

func TestCachedSource_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingSource{result: oneFeature("us1")}
	cached, _ := newCached(t, inner, 2, clockwork.NewFakeClockAt(afterRange))

	day := func(d int) domain.DateRange {
		start := time.Date(2024, time.April, d, 0, 0, 0, 0, time.UTC)
		return domain.NewDateRange(start, start)
	}

	_, _ = cached.Query(context.Background(), day(20))
	_, _ = cached.Query(context.Background(), day(21))
	_, _ = cached.Query(context.Background(), day(20)) // hit, promotes day 20
	_, _ = cached.Query(context.Background(), day(22)) // evicts day 21
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 2, cached.cache.Len())

	_, _ = cached.Query(context.Background(), day(20))
	assert.Equal(t, 3, inner.calls, "day 20 was used recently and stays cached")

	_, _ = cached.Query(context.Background(), day(21))
	assert.Equal(t, 4, inner.calls, "day 21 was evicted")
}
