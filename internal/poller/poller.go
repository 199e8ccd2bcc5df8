// Package poller runs the feed ingestion loop: fetch a state-vector
// snapshot, parse and region-filter it, retain a capped batch in the
// snapshot store, and keep the latest regional live set in memory for
// query handlers.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
	"github.com/aerowatch/air-traffic-monitor/internal/observability"
)

// FeedFetcher obtains one raw state-vector snapshot. The fetcher owns its
// network timeout; the poller never retries a fetch within a cycle.
type FeedFetcher interface {
	FetchStates(ctx context.Context) (domain.StateFeed, error)
}

// SnapshotAppender persists a batch of flight observations.
type SnapshotAppender interface {
	Append(ctx context.Context, entries []domain.SnapshotEntry) error
}

// SnapshotPublisher fans accepted snapshots out to downstream consumers.
type SnapshotPublisher interface {
	PublishBatch(ctx context.Context, entries []domain.SnapshotEntry) error
}

// Config carries the poller's ingestion policy.
type Config struct {
	Bounds      domain.RegionBounds
	MinAltitude float64
	MaxAltitude float64

	Interval time.Duration

	// SnapshotCap bounds entries appended per cycle to keep write volume
	// under control against the unbounded global feed.
	SnapshotCap int
}

// Poller drives the fetch-parse-filter-append cycle.
type Poller struct {
	fetcher   FeedFetcher
	store     SnapshotAppender
	publisher SnapshotPublisher // nil when fan-out is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
	cfg       Config

	ready atomic.Bool
	live  atomic.Pointer[liveSet]
}

// liveSet is the latest regional flight set, swapped wholesale per cycle.
type liveSet struct {
	records   []domain.FlightRecord
	fetchedAt time.Time
}

// New creates a Poller. publisher may be nil.
func New(fetcher FeedFetcher, store SnapshotAppender, publisher SnapshotPublisher, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *Poller {
	return &Poller{
		fetcher:   fetcher,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Live returns the most recent regional flight set. Callers must not
// mutate the returned slice; it is shared with concurrent readers.
func (p *Poller) Live() []domain.FlightRecord {
	if ls := p.live.Load(); ls != nil {
		return ls.records
	}
	return nil
}

// CheckReadiness returns nil once at least one poll cycle has completed,
// or an error describing why the service is not yet ready.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("poller has not completed a feed cycle yet")
	}
	return nil
}

// Run executes the poll loop until the context is cancelled. Failed cycles
// back off exponentially (200ms doubling to 5s) instead of waiting the
// full interval, so recovery after a feed outage is prompt without tight
// looping during one.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"snapshot_cap", p.cfg.SnapshotCap,
	)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		default:
		}

		wait := p.cfg.Interval
		if err := p.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("poll cycle failed", "error", err)
			wait = backoff
			backoff = nextBackoff(backoff, maxBackoff)
		} else {
			backoff = 200 * time.Millisecond
		}

		if !sleepWithContext(ctx, wait) {
			return nil
		}
	}
}

// pollOnce runs one fetch-parse-filter-append cycle.
func (p *Poller) pollOnce(ctx context.Context) error {
	start := time.Now()
	p.metrics.FeedPolls.Inc()

	feed, err := p.fetcher.FetchStates(ctx)
	if err != nil {
		p.metrics.FeedPollErrors.Inc()
		return err
	}

	parsed, dropped := domain.ParseStateFeed(feed)
	if dropped > 0 {
		p.metrics.RecordsDropped.Add(float64(dropped))
	}

	regional := domain.FilterRegion(parsed, domain.FilterParams{
		Bounds:      p.cfg.Bounds,
		MinAltitude: p.cfg.MinAltitude,
		MaxAltitude: p.cfg.MaxAltitude,
	})

	p.live.Store(&liveSet{records: regional, fetchedAt: time.Now()})
	p.metrics.LiveFlights.Set(float64(len(regional)))

	entries := snapshotBatch(regional, p.cfg.SnapshotCap)
	if len(entries) > 0 {
		if err := p.store.Append(ctx, entries); err != nil {
			return err
		}
		p.metrics.SnapshotsAppended.Add(float64(len(entries)))
		p.metrics.SnapshotBatchSize.Observe(float64(len(entries)))

		if p.publisher != nil {
			// Fan-out is best effort: the store is the system of record,
			// so a publish failure must not fail the cycle.
			if err := p.publisher.PublishBatch(ctx, entries); err != nil {
				p.logger.Warn("snapshot fan-out failed", "error", err, "batch_size", len(entries))
			}
		}
	}

	p.metrics.PollDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	p.logger.Debug("poll cycle complete",
		"total", len(parsed),
		"dropped", dropped,
		"regional", len(regional),
		"appended", len(entries),
	)
	return nil
}

// snapshotBatch projects at most cap records onto their persisted form.
func snapshotBatch(records []domain.FlightRecord, cap int) []domain.SnapshotEntry {
	n := len(records)
	if n > cap {
		n = cap
	}
	entries := make([]domain.SnapshotEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = records[i].Snapshot()
	}
	return entries
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
