package domain

import "errors"

// Sentinel conditions surfaced by query operations. The HTTP adapter maps
// them to response codes; the core never retries or logs on their behalf.
var (
	// ErrAirportNotFound reports an unknown airport code on a
	// classification or weather query.
	ErrAirportNotFound = errors.New("airport not found")

	// ErrWeatherUnconfigured reports that no external weather provider is
	// configured. Distinct from ErrAirportNotFound so callers can decide
	// presentation separately.
	ErrWeatherUnconfigured = errors.New("weather provider not configured")
)

// RegionBounds is the configured geographic region of interest.
// Read-only after startup; constructor-injected so tests can supply
// alternate regions without process-level mutation.
type RegionBounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// FlightRecord is one aircraft's normalized state vector. Immutable once
// constructed; a record missing latitude or longitude is never constructed
// (the source datum is dropped by ParseStateVector).
type FlightRecord struct {
	ICAO24        string  `json:"icao24"`
	Callsign      string  `json:"callsign"`
	OriginCountry string  `json:"origin_country"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Altitude      float64 `json:"altitude"`
	Velocity      float64 `json:"velocity"`
	Heading       float64 `json:"heading"`
	Timestamp     int64   `json:"timestamp"`
}

// SnapshotEntry is the persisted form of a flight observation, owned
// exclusively by the snapshot store once appended.
type SnapshotEntry struct {
	ICAO24    string  `json:"icao24"`
	Callsign  string  `json:"callsign"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Altitude  float64 `json:"altitude"`
	Velocity  float64 `json:"velocity"`
	Timestamp int64   `json:"timestamp"`
}

// Snapshot projects the record onto its persisted subset.
func (r FlightRecord) Snapshot() SnapshotEntry {
	return SnapshotEntry{
		ICAO24:    r.ICAO24,
		Callsign:  r.Callsign,
		Lat:       r.Lat,
		Lon:       r.Lon,
		Altitude:  r.Altitude,
		Velocity:  r.Velocity,
		Timestamp: r.Timestamp,
	}
}

// Airport is static reference data, read-only at query time.
type Airport struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// StateFeed is the raw state-vector feed response: a feed-reported time and
// a sequence of fixed-position heterogeneous tuples. See ParseStateVector
// for the index layout.
type StateFeed struct {
	Time   int64   `json:"time"`
	States [][]any `json:"states"`
}
