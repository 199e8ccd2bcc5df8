package domain

import "strings"

// OpenSky state-vector tuple layout. Positional indexing into the raw feed
// exists only here; everything downstream works with FlightRecord.
const (
	idxICAO24        = 0
	idxCallsign      = 1
	idxOriginCountry = 2
	idxLongitude     = 5
	idxLatitude      = 6
	idxBaroAltitude  = 7
	idxVelocity      = 9
	idxHeading       = 10
)

// minStateLen is the smallest tuple that can carry every field we read.
const minStateLen = idxHeading + 1

// ParseStateVector converts one raw feed tuple into a FlightRecord.
// The second return value is false when the record is unusable: a tuple
// that is too short or missing latitude/longitude. That is a filtering
// outcome, not an error: ground-stationary and malformed entries are common
// in the feed. Missing altitude, velocity, or heading default to 0; the
// callsign is trimmed of padding whitespace. feedTime is the feed's own
// reported time, stamped onto every record of the snapshot.
func ParseStateVector(state []any, feedTime int64) (FlightRecord, bool) {
	if len(state) < minStateLen {
		return FlightRecord{}, false
	}

	lat, latOK := floatAt(state, idxLatitude)
	lon, lonOK := floatAt(state, idxLongitude)
	if !latOK || !lonOK {
		return FlightRecord{}, false
	}

	altitude, _ := floatAt(state, idxBaroAltitude)
	velocity, _ := floatAt(state, idxVelocity)
	heading, _ := floatAt(state, idxHeading)

	return FlightRecord{
		ICAO24:        stringAt(state, idxICAO24),
		Callsign:      strings.TrimSpace(stringAt(state, idxCallsign)),
		OriginCountry: stringAt(state, idxOriginCountry),
		Lat:           lat,
		Lon:           lon,
		Altitude:      altitude,
		Velocity:      velocity,
		Heading:       heading,
		Timestamp:     feedTime,
	}, true
}

// ParseStateFeed parses every usable tuple in a feed snapshot, preserving
// feed order. Returns the parsed records and the number of tuples dropped.
func ParseStateFeed(feed StateFeed) ([]FlightRecord, int) {
	records := make([]FlightRecord, 0, len(feed.States))
	dropped := 0
	for _, state := range feed.States {
		rec, ok := ParseStateVector(state, feed.Time)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped
}

// stringAt returns the string at index i, or "" when absent or non-string
// (the feed uses JSON null for missing fields).
func stringAt(state []any, i int) string {
	if s, ok := state[i].(string); ok {
		return s
	}
	return ""
}

// floatAt returns the number at index i and whether one was present.
func floatAt(state []any, i int) (float64, bool) {
	if v, ok := state[i].(float64); ok {
		return v, true
	}
	return 0, false
}
