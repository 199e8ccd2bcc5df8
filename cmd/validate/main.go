// Command validate performs integrity checks across the mock data
// fixtures: the raw feed JSON and the expected regional flights JSON. It
// verifies parser behavior, region filtering, and the derived traffic
// classification invariants.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -feed-json data/mock/opensky_states.json \
//	  -flights-json data/mock/regional_flights.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

var region = domain.RegionBounds{MinLat: 5, MaxLat: 35, MinLon: 68, MaxLon: 97}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	feedJSON := flag.String("feed-json", "", "path to the raw feed JSON fixture")
	flightsJSON := flag.String("flights-json", "", "path to the expected regional flights JSON")
	flag.Parse()

	if *feedJSON == "" || *flightsJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*feedJSON, *flightsJSON); code != 0 {
		os.Exit(code)
	}
}

func run(feedPath, flightsPath string) int {
	fmt.Println("=== Flight Fixture Integrity Validation ===")
	fmt.Println()

	feed, err := loadFeed(feedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load feed fixture: %v\n", err)
		return 1
	}

	expected, err := loadFlights(flightsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load flights fixture: %v\n", err)
		return 1
	}

	parsed, dropped := domain.ParseStateFeed(feed)
	regional := domain.FilterRegion(parsed, domain.FilterParams{
		Bounds:      region,
		MinAltitude: 0,
		MaxAltitude: 50000,
	})

	phases := []*phase{
		validateFeedShape(feed),
		validateParse(feed, parsed, dropped),
		validateRegionalSet(regional, expected),
		validateTrafficInvariants(regional),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw vectors, %d parsed, %d dropped, %d regional, %d expected\n",
		len(feed.States), len(parsed), dropped, len(regional), len(expected))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadFeed(path string) (domain.StateFeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.StateFeed{}, err
	}
	var feed domain.StateFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		return domain.StateFeed{}, err
	}
	return feed, nil
}

func loadFlights(path string) ([]domain.FlightRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var flights []domain.FlightRecord
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

// ── Phase 1: Feed Shape ──
// Checks the raw fixture looks like a real OpenSky response.

func validateFeedShape(feed domain.StateFeed) *phase {
	p := &phase{name: "Phase 1: Feed Shape (raw fixture)"}

	if feed.Time <= 0 {
		p.errorf("feed time is %d (expected a positive Unix timestamp)", feed.Time)
	}
	if len(feed.States) == 0 {
		p.errorf("feed has no state vectors")
	}
	for i, s := range feed.States {
		if len(s) == 0 {
			p.errorf("vector %d is empty", i)
			continue
		}
		if _, ok := s[0].(string); !ok {
			p.errorf("vector %d: icao24 is %T (expected string)", i, s[0])
		}
	}
	return p
}

// ── Phase 2: Parse Integrity ──
// Re-derives drop counts from the raw vectors and compares.

func validateParse(feed domain.StateFeed, parsed []domain.FlightRecord, dropped int) *phase {
	p := &phase{name: "Phase 2: Parse Integrity (drop accounting)"}

	if len(parsed)+dropped != len(feed.States) {
		p.errorf("parsed %d + dropped %d != raw %d", len(parsed), dropped, len(feed.States))
	}

	for i, f := range parsed {
		if f.ICAO24 == "" {
			p.errorf("parsed record %d: empty icao24", i)
		}
		if f.Timestamp != feed.Time {
			p.errorf("parsed record %d: timestamp %d != feed time %d", i, f.Timestamp, feed.Time)
		}
	}
	return p
}

// ── Phase 3: Regional Set ──
// The expected fixture must exactly match a re-run of parse + filter.

func validateRegionalSet(regional, expected []domain.FlightRecord) *phase {
	p := &phase{name: "Phase 3: Regional Set (filter re-run)"}

	if len(regional) != len(expected) {
		p.errorf("regional count: re-run produced %d, fixture has %d", len(regional), len(expected))
		return p
	}

	for i := range regional {
		if regional[i] != expected[i] {
			p.errorf("record %d: re-run %+v != fixture %+v", i, regional[i], expected[i])
		}
	}

	for i, f := range expected {
		if !domain.InBounds(f.Lat, f.Lon, region) {
			p.errorf("record %d (%s): outside region bounds", i, f.ICAO24)
		}
	}
	return p
}

// ── Phase 4: Traffic Invariants ──
// Classification buckets must partition the catchment set.

func validateTrafficInvariants(regional []domain.FlightRecord) *phase {
	p := &phase{name: "Phase 4: Traffic Invariants (classification)"}

	airports := []domain.Airport{
		{Code: "BOM", Lat: 19.0896, Lon: 72.8656},
		{Code: "DEL", Lat: 28.5562, Lon: 77.1000},
		{Code: "BLR", Lat: 13.1986, Lon: 77.7066},
		{Code: "HYD", Lat: 17.2403, Lon: 78.4294},
	}

	for _, ap := range airports {
		c := domain.ClassifyAirportTraffic(ap, regional)

		within := 0
		for _, f := range regional {
			if domain.HaversineKm(ap.Lat, ap.Lon, f.Lat, f.Lon) <= domain.TrafficRadiusKm {
				within++
			}
		}

		total := len(c.Arrivals) + len(c.Departures) + len(c.Others)
		if total != within {
			p.errorf("%s: buckets hold %d entries, %d records inside radius", ap.Code, total, within)
		}

		checkEntries(p, ap, "arrival", c.Arrivals)
		checkEntries(p, ap, "departure", c.Departures)
		checkEntries(p, ap, "other", c.Others)
	}
	return p
}

func checkEntries(p *phase, ap domain.Airport, bucket string, entries []domain.TrafficEntry) {
	for _, e := range entries {
		if e.DistanceKm > domain.TrafficRadiusKm {
			p.errorf("%s %s %q: distance %.1f beyond catchment radius", ap.Code, bucket, e.Callsign, e.DistanceKm)
		}
		if rounded := math.Round(e.DistanceKm*10) / 10; rounded != e.DistanceKm {
			p.errorf("%s %s %q: distance %v not rounded to 0.1", ap.Code, bucket, e.Callsign, e.DistanceKm)
		}
	}
}
