// Command genmock generates a mock OpenSky state-vector fixture plus the
// regional flight set the monitor derives from it. It uses the actual
// domain package so the expected output matches real ingestion behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -count 200 \
//	  -feed-out data/mock/opensky_states.json \
//	  -flights-out data/mock/regional_flights.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

// feedTime is the fixed feed timestamp stamped on every fixture record,
// 2024-04-26 14:10:00 UTC.
const feedTime = int64(1714140600)

var region = domain.RegionBounds{MinLat: 5, MaxLat: 35, MinLon: 68, MaxLon: 97}

// airlines provides callsign prefixes for generated flights.
var airlines = []string{"AIC", "IGO", "VTI", "UAE", "QTR", "SIA"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 200, "number of state vectors to generate")
	seed := flag.Int64("seed", 42, "random seed for reproducible fixtures")
	feedOut := flag.String("feed-out", "", "output path for the raw feed JSON fixture")
	flightsOut := flag.String("flights-out", "", "output path for the expected regional flights JSON")
	flag.Parse()

	if *feedOut == "" || *flightsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -feed-out, -flights-out")
	}

	rng := rand.New(rand.NewSource(*seed))
	feed := generateFeed(rng, *count)

	flights, dropped := domain.ParseStateFeed(feed)
	regional := domain.FilterRegion(flights, domain.FilterParams{
		Bounds:      region,
		MinAltitude: 0,
		MaxAltitude: 50000,
	})

	if err := writeJSON(*feedOut, feed); err != nil {
		return fmt.Errorf("writing feed fixture: %w", err)
	}
	log.Printf("wrote feed fixture: %s", *feedOut)

	if err := writeJSON(*flightsOut, regional); err != nil {
		return fmt.Errorf("writing flights fixture: %w", err)
	}
	log.Printf("wrote flights fixture: %s", *flightsOut)

	printStats(feed, flights, regional, dropped)
	return nil
}

// generateFeed produces a feed mixing in-region flights, out-of-region
// flights, and malformed vectors the parser must drop.
func generateFeed(rng *rand.Rand, count int) domain.StateFeed {
	states := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		switch {
		case i%10 == 7:
			// Missing position: parser drops these.
			states = append(states, stateVector(rng, i, nil, nil))
		case i%10 == 8:
			// Truncated vector, shorter than the heading index.
			states = append(states, []any{icao(i), callsign(rng, i), "India"})
		case i%4 == 0:
			// Out of region: northern Europe.
			lat, lon := 50.0+rng.Float64()*10, -5.0+rng.Float64()*20
			states = append(states, stateVector(rng, i, &lat, &lon))
		default:
			lat := region.MinLat + rng.Float64()*(region.MaxLat-region.MinLat)
			lon := region.MinLon + rng.Float64()*(region.MaxLon-region.MinLon)
			states = append(states, stateVector(rng, i, &lat, &lon))
		}
	}
	return domain.StateFeed{Time: feedTime, States: states}
}

func stateVector(rng *rand.Rand, i int, lat, lon *float64) []any {
	var latVal, lonVal any
	if lat != nil {
		latVal = *lat
	}
	if lon != nil {
		lonVal = *lon
	}
	return []any{
		icao(i),
		callsign(rng, i),
		"India",
		float64(feedTime - 10),
		float64(feedTime - 5),
		lonVal,
		latVal,
		1000.0 + rng.Float64()*11000, // baro altitude
		false,
		150.0 + rng.Float64()*150, // velocity
		rng.Float64() * 360,       // heading
		0.0,
		nil,
		nil,
		squawk(rng),
		false,
		0.0,
	}
}

func icao(i int) string {
	return fmt.Sprintf("ab%04x", i)
}

func callsign(rng *rand.Rand, i int) string {
	// Trailing spaces mimic the raw feed's fixed-width callsign field.
	return fmt.Sprintf("%s%03d  ", airlines[rng.Intn(len(airlines))], i%1000)
}

func squawk(rng *rand.Rand) string {
	return fmt.Sprintf("%04d", rng.Intn(7778))
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(feed domain.StateFeed, parsed, regional []domain.FlightRecord, dropped int) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Raw vectors: %d\n", len(feed.States))
	fmt.Printf("Parsed: %d, dropped: %d\n", len(parsed), dropped)
	fmt.Printf("Regional: %d\n", len(regional))

	altBands := map[string]int{}
	for _, f := range regional {
		switch {
		case f.Altitude < 3000:
			altBands["<3000"]++
		case f.Altitude < 9000:
			altBands["3000-9000"]++
		default:
			altBands[">=9000"]++
		}
	}
	fmt.Printf("Altitude bands: <3000=%d, 3000-9000=%d, >=9000=%d\n",
		altBands["<3000"], altBands["3000-9000"], altBands[">=9000"])

	printTrafficStats(regional)
}

func printTrafficStats(regional []domain.FlightRecord) {
	// Classification counts for the seeded reference airports.
	airports := []domain.Airport{
		{Code: "BOM", Lat: 19.0896, Lon: 72.8656},
		{Code: "DEL", Lat: 28.5562, Lon: 77.1000},
		{Code: "BLR", Lat: 13.1986, Lon: 77.7066},
		{Code: "HYD", Lat: 17.2403, Lon: 78.4294},
	}
	fmt.Println("\nTraffic classification per airport:")
	for _, ap := range airports {
		c := domain.ClassifyAirportTraffic(ap, regional)
		fmt.Printf("  %s: arrivals=%d, departures=%d, others=%d\n",
			ap.Code, len(c.Arrivals), len(c.Departures), len(c.Others))
	}
}
