package store

import (
	"context"
	"fmt"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

// seedAirports are the reference rows loaded into an empty database.
// A fuller set (e.g. the OpenFlights dump) can replace these later.
var seedAirports = []domain.Airport{
	{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj Intl", City: "Mumbai", Country: "India", Lat: 19.0896, Lon: 72.8656},
	{Code: "DEL", Name: "Indira Gandhi Intl", City: "Delhi", Country: "India", Lat: 28.5562, Lon: 77.1000},
	{Code: "BLR", Name: "Kempegowda Intl", City: "Bengaluru", Country: "India", Lat: 13.1989, Lon: 77.7063},
	{Code: "HYD", Name: "Rajiv Gandhi Intl", City: "Hyderabad", Country: "India", Lat: 17.2403, Lon: 78.4294},
}

// SeedAirports inserts the sample airports when the table is empty.
// Idempotent: a populated table is left untouched.
func (s *Store) SeedAirports(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM airports`).Scan(&count); err != nil {
		return fmt.Errorf("count airports: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, a := range seedAirports {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO airports (code, name, city, country, lat, lon)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.Code, a.Name, a.City, a.Country, a.Lat, a.Lon); err != nil {
			return fmt.Errorf("seed airport %s: %w", a.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.logger.Info("seeded reference airports", "count", len(seedAirports))
	return nil
}
