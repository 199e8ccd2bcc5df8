// Package domain models live air-traffic observations over a configured
// geographic region.
//
// # Data Source
//
// Flight state originates from the OpenSky Network /states/all endpoint,
// which returns a feed-reported time plus one fixed-position tuple per
// aircraft. The tuple layout (index → field) is:
//
//	0=icao24, 1=callsign, 2=origin_country, 5=longitude, 6=latitude,
//	7=baro_altitude, 9=velocity, 10=true_track (heading)
//
// Positional indexing into the tuple lives only in [ParseStateVector]; the
// rest of the system works with the typed [FlightRecord]. Tuples missing
// latitude or longitude are dropped at parse time: the live feed
// continuously carries ground-stationary and partial entries, so a missing
// coordinate is a filtering outcome, never an error.
//
// # Derived Signals
//
// Congestion: the count of stored observations in the last 10 minutes,
// mapped to LOW/MEDIUM/HIGH under [CongestionThresholds] (default 50/150,
// tunable per deployment), plus per-hour counts bucketed by
// floor(timestamp/3600).
//
// Airport traffic: flights within a fixed 100 km catchment of an airport
// are split into arrivals, departures, and others by great-circle distance
// and reported heading. This is a known-coarse proxy, not flight-phase
// detection: no flight-plan or trajectory data is available. The boundary
// at exactly 30 km (with a heading set) classifying as "others" is
// intentional, observable behavior.
//
// Weather risk: a condition text and wind speed map to LOW/MODERATE/HIGH
// with fixed rule precedence; see [RiskFor].
package domain
