// Package store persists flight snapshots and airport reference data in
// SQLite. Appends and reads run against a single pooled connection, so a
// reader observes either all or none of a concurrent append's rows.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS flight_snapshots (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	icao24    TEXT,
	callsign  TEXT,
	lat       REAL,
	lon       REAL,
	altitude  REAL,
	velocity  REAL,
	timestamp INTEGER
);
CREATE INDEX IF NOT EXISTS idx_flight_snapshots_timestamp ON flight_snapshots (timestamp);

CREATE TABLE IF NOT EXISTS airports (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	code    TEXT UNIQUE NOT NULL,
	name    TEXT NOT NULL,
	city    TEXT,
	country TEXT,
	lat     REAL,
	lon     REAL
);
`

// Store is the SQLite-backed snapshot sink and airport reference repository.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the database at path and applies the
// schema. The pool is limited to one connection: SQLite allows a single
// writer, and serializing all access through one connection gives appends
// and reads transaction-level linearizability without core-level locking.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts a batch of snapshot entries in one transaction. The caller
// is responsible for capping the batch size; the store appends whatever it
// is given.
func (s *Store) Append(ctx context.Context, entries []domain.SnapshotEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO flight_snapshots (icao24, callsign, lat, lon, altitude, velocity, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ICAO24, e.Callsign, e.Lat, e.Lon, e.Altitude, e.Velocity, e.Timestamp); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", e.ICAO24, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// CountSince counts entries with timestamp >= threshold.
func (s *Store) CountSince(ctx context.Context, threshold int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flight_snapshots WHERE timestamp >= ?`, threshold,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}

// HourlyBuckets groups all entries by floor(timestamp/3600), counts per
// bucket, orders descending by bucket value, and truncates to the limit
// most recent buckets.
func (s *Store) HourlyBuckets(ctx context.Context, limit int) ([]domain.HourlyBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp / 3600 AS hour_bucket, COUNT(*) AS c
		FROM flight_snapshots
		GROUP BY hour_bucket
		ORDER BY hour_bucket DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query hourly buckets: %w", err)
	}
	defer rows.Close()

	buckets := []domain.HourlyBucket{}
	for rows.Next() {
		var b domain.HourlyBucket
		if err := rows.Scan(&b.Hour, &b.Count); err != nil {
			return nil, fmt.Errorf("scan hourly bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hourly buckets: %w", err)
	}
	return buckets, nil
}

// PruneBefore deletes entries older than the cutoff timestamp and returns
// the number removed. Retention is an explicit policy; with TTL disabled
// this is never called and the store grows unbounded, matching the
// original deployment's behavior.
func (s *Store) PruneBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM flight_snapshots WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return n, nil
}

// Airport looks up one airport by code. Returns domain.ErrAirportNotFound
// for an unknown code.
func (s *Store) Airport(ctx context.Context, code string) (domain.Airport, error) {
	var a domain.Airport
	err := s.db.QueryRowContext(ctx,
		`SELECT code, name, city, country, lat, lon FROM airports WHERE code = ?`, code,
	).Scan(&a.Code, &a.Name, &a.City, &a.Country, &a.Lat, &a.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Airport{}, domain.ErrAirportNotFound
	}
	if err != nil {
		return domain.Airport{}, fmt.Errorf("lookup airport %s: %w", code, err)
	}
	return a, nil
}

// Airports lists all reference airports ordered by city.
func (s *Store) Airports(ctx context.Context) ([]domain.Airport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, city, country, lat, lon FROM airports ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}
	defer rows.Close()

	airports := []domain.Airport{}
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.City, &a.Country, &a.Lat, &a.Lon); err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate airports: %w", err)
	}
	return airports, nil
}
