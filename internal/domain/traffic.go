package domain

import "math"

// Traffic classification radii in kilometers.
const (
	// TrafficRadiusKm is the catchment distance around an airport; records
	// farther than this are excluded from classification entirely.
	TrafficRadiusKm = 100.0

	// departureRadiusKm splits close-in traffic from approach traffic.
	departureRadiusKm = 30.0
)

// TrafficEntry is one classified flight near an airport.
type TrafficEntry struct {
	Callsign   string  `json:"callsign"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Heading    float64 `json:"heading"`
	DistanceKm float64 `json:"distance_km"`
}

// TrafficClassification partitions live flights near an airport into
// arrival, departure, and other buckets. Derived and ephemeral.
type TrafficClassification struct {
	AirportCode string         `json:"airport"`
	Arrivals    []TrafficEntry `json:"arrivals"`
	Departures  []TrafficEntry `json:"departures"`
	Others      []TrafficEntry `json:"others"`
}

// ClassifyAirportTraffic buckets live records by great-circle distance from
// the airport. The split is a coarse proxy: no flight-plan or trajectory
// data is available, so "heading set and still out past 30 km" stands in
// for an approach and "inside 30 km" for a departure. A record at exactly
// 30 km with a reported heading falls to Others by elimination.
func ClassifyAirportTraffic(airport Airport, live []FlightRecord) TrafficClassification {
	c := TrafficClassification{
		AirportCode: airport.Code,
		Arrivals:    []TrafficEntry{},
		Departures:  []TrafficEntry{},
		Others:      []TrafficEntry{},
	}

	for _, rec := range live {
		dist := HaversineKm(airport.Lat, airport.Lon, rec.Lat, rec.Lon)
		if dist > TrafficRadiusKm {
			continue
		}

		entry := TrafficEntry{
			Callsign:   rec.Callsign,
			Lat:        rec.Lat,
			Lon:        rec.Lon,
			Heading:    rec.Heading,
			DistanceKm: math.Round(dist*10) / 10,
		}

		switch classifyTraffic(dist, rec.Heading) {
		case trafficArrival:
			c.Arrivals = append(c.Arrivals, entry)
		case trafficDeparture:
			c.Departures = append(c.Departures, entry)
		default:
			c.Others = append(c.Others, entry)
		}
	}

	return c
}

type trafficBucket int

const (
	trafficOther trafficBucket = iota
	trafficArrival
	trafficDeparture
)

func classifyTraffic(dist, heading float64) trafficBucket {
	switch {
	case dist > departureRadiusKm && heading != 0 && heading != 360:
		return trafficArrival
	case dist < departureRadiusKm:
		return trafficDeparture
	default:
		return trafficOther
	}
}
