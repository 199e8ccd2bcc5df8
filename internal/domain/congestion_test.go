package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCongestionThresholds_Level(t *testing.T) {
	th := DefaultCongestionThresholds()

	tests := []struct {
		recent int
		want   CongestionLevel
	}{
		{0, CongestionLow},
		{49, CongestionLow},
		{50, CongestionMedium},
		{149, CongestionMedium},
		{150, CongestionHigh},
		{1000, CongestionHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Level(tt.recent), "recent=%d", tt.recent)
	}
}

func TestCongestionThresholds_CustomPolicy(t *testing.T) {
	th := CongestionThresholds{Medium: 10, High: 20}

	assert.Equal(t, CongestionLow, th.Level(9))
	assert.Equal(t, CongestionMedium, th.Level(10))
	assert.Equal(t, CongestionHigh, th.Level(20))
}

// --- SummarizeCongestion ---

type stubQuerier struct {
	count        int
	countErr     error
	buckets      []HourlyBucket
	bucketsErr   error
	gotThreshold int64
	gotLimit     int
}

func (s *stubQuerier) CountSince(_ context.Context, threshold int64) (int, error) {
	s.gotThreshold = threshold
	return s.count, s.countErr
}

func (s *stubQuerier) HourlyBuckets(_ context.Context, limit int) ([]HourlyBucket, error) {
	s.gotLimit = limit
	return s.buckets, s.bucketsErr
}

func TestSummarizeCongestion(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	q := &stubQuerier{
		count: 72,
		buckets: []HourlyBucket{
			{Hour: now.Unix() / 3600, Count: 72},
			{Hour: now.Unix()/3600 - 1, Count: 15},
		},
	}

	snap, err := SummarizeCongestion(context.Background(), q, now, DefaultCongestionThresholds())
	require.NoError(t, err)

	assert.Equal(t, 72, snap.RecentCount)
	assert.Equal(t, CongestionMedium, snap.Level)
	assert.Len(t, snap.HourlyBuckets, 2)

	assert.Equal(t, now.Add(-10*time.Minute).Unix(), q.gotThreshold, "10 minute lookback")
	assert.Equal(t, HourlyBucketLimit, q.gotLimit)
}

func TestSummarizeCongestion_CountError(t *testing.T) {
	q := &stubQuerier{countErr: errors.New("db closed")}

	_, err := SummarizeCongestion(context.Background(), q, time.Now(), DefaultCongestionThresholds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count recent snapshots")
}

func TestSummarizeCongestion_BucketsError(t *testing.T) {
	q := &stubQuerier{bucketsErr: errors.New("db closed")}

	_, err := SummarizeCongestion(context.Background(), q, time.Now(), DefaultCongestionThresholds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly buckets")
}
