package domain

import (
	"context"
	"fmt"
	"time"
)

// CongestionLevel is a coarse classification of recent observation volume.
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "LOW"
	CongestionMedium CongestionLevel = "MEDIUM"
	CongestionHigh   CongestionLevel = "HIGH"
)

// Windowing constants for congestion queries.
const (
	// RecentWindow is the lookback for the recent observation count.
	RecentWindow = 600 * time.Second

	// HourlyBucketLimit caps the number of hourly buckets returned.
	HourlyBucketLimit = 24
)

// CongestionThresholds are the tunable level boundaries: a recent count at
// or above Medium maps to MEDIUM, at or above High maps to HIGH. Policy
// configuration, not derived truth.
type CongestionThresholds struct {
	Medium int
	High   int
}

// DefaultCongestionThresholds returns the stock 50/150 policy.
func DefaultCongestionThresholds() CongestionThresholds {
	return CongestionThresholds{Medium: 50, High: 150}
}

// Level maps a recent observation count to a congestion level.
func (t CongestionThresholds) Level(recent int) CongestionLevel {
	switch {
	case recent < t.Medium:
		return CongestionLow
	case recent < t.High:
		return CongestionMedium
	default:
		return CongestionHigh
	}
}

// HourlyBucket is a per-hour observation count. Hour is the bucket value
// floor(timestamp / 3600).
type HourlyBucket struct {
	Hour  int64 `json:"hour"`
	Count int   `json:"count"`
}

// CongestionSnapshot is a derived, ephemeral summary of recent traffic.
// Recomputed on every query; never persisted.
type CongestionSnapshot struct {
	RecentCount   int             `json:"recent_snapshot_count"`
	Level         CongestionLevel `json:"congestion_level"`
	HourlyBuckets []HourlyBucket  `json:"flights_per_hour"`
}

// SnapshotQuerier is the query surface the congestion analyzer needs from
// the snapshot store.
type SnapshotQuerier interface {
	// CountSince counts entries with timestamp >= threshold.
	CountSince(ctx context.Context, threshold int64) (int, error)

	// HourlyBuckets groups entries by hour, ordered by bucket descending,
	// truncated to limit.
	HourlyBuckets(ctx context.Context, limit int) ([]HourlyBucket, error)
}

// SummarizeCongestion computes the congestion snapshot at the given instant:
// the count of observations in the recent window, its level under the
// thresholds, and the hourly history.
func SummarizeCongestion(ctx context.Context, q SnapshotQuerier, now time.Time, thresholds CongestionThresholds) (CongestionSnapshot, error) {
	since := now.Add(-RecentWindow).Unix()

	recent, err := q.CountSince(ctx, since)
	if err != nil {
		return CongestionSnapshot{}, fmt.Errorf("count recent snapshots: %w", err)
	}

	buckets, err := q.HourlyBuckets(ctx, HourlyBucketLimit)
	if err != nil {
		return CongestionSnapshot{}, fmt.Errorf("hourly buckets: %w", err)
	}

	return CongestionSnapshot{
		RecentCount:   recent,
		Level:         thresholds.Level(recent),
		HourlyBuckets: buckets,
	}, nil
}
