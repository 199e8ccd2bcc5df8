package domain

import "strings"

// FilterParams are the predicates applied to a batch of flight records.
// Callsign, when non-empty, must appear as a case-insensitive substring of
// the record's callsign.
type FilterParams struct {
	Bounds      RegionBounds
	MinAltitude float64
	MaxAltitude float64
	Callsign    string
}

// FilterRegion returns the records satisfying every predicate, in input
// order. Pure: identical input and parameters yield identical output.
func FilterRegion(records []FlightRecord, params FilterParams) []FlightRecord {
	needle := strings.ToUpper(strings.TrimSpace(params.Callsign))

	out := make([]FlightRecord, 0, len(records))
	for _, rec := range records {
		if !InBounds(rec.Lat, rec.Lon, params.Bounds) {
			continue
		}
		if rec.Altitude < params.MinAltitude || rec.Altitude > params.MaxAltitude {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToUpper(rec.Callsign), needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
