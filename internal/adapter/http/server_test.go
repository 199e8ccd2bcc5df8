package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/aerowatch/air-traffic-monitor/internal/adapter/http"
	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

// --- mocks ---

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockLive struct {
	records []domain.FlightRecord
}

func (m *mockLive) Live() []domain.FlightRecord { return m.records }

type mockSnapshots struct {
	recent     int
	buckets    []domain.HourlyBucket
	countErr   error
	bucketsErr error
}

func (m *mockSnapshots) CountSince(_ context.Context, _ int64) (int, error) {
	return m.recent, m.countErr
}

func (m *mockSnapshots) HourlyBuckets(_ context.Context, _ int) ([]domain.HourlyBucket, error) {
	if m.bucketsErr != nil {
		return nil, m.bucketsErr
	}
	if m.buckets == nil {
		return []domain.HourlyBucket{}, nil
	}
	return m.buckets, nil
}

type mockAirports struct {
	byCode map[string]domain.Airport
	list   []domain.Airport
	err    error
}

func (m *mockAirports) Airport(_ context.Context, code string) (domain.Airport, error) {
	if m.err != nil {
		return domain.Airport{}, m.err
	}
	a, ok := m.byCode[code]
	if !ok {
		return domain.Airport{}, domain.ErrAirportNotFound
	}
	return a, nil
}

func (m *mockAirports) Airports(_ context.Context) ([]domain.Airport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

type mockWeather struct {
	obs domain.WeatherObservation
	err error
}

func (m *mockWeather) Current(_ context.Context, _, _ float64) (domain.WeatherObservation, error) {
	return m.obs, m.err
}

// --- fixtures ---

var testBounds = domain.RegionBounds{MinLat: 5, MaxLat: 35, MinLon: 68, MaxLon: 97}

var bombayAirport = domain.Airport{
	Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International Airport",
	City: "Mumbai", Country: "India", Lat: 19.0896, Lon: 72.8656,
}

func flight(callsign string, lat, lon, alt float64) domain.FlightRecord {
	return domain.FlightRecord{
		ICAO24:        "aa1234",
		Callsign:      callsign,
		OriginCountry: "India",
		Lat:           lat,
		Lon:           lon,
		Altitude:      alt,
		Velocity:      240,
		Heading:       90,
		Timestamp:     1714140600,
	}
}

type serverDeps struct {
	live      *mockLive
	snapshots *mockSnapshots
	airports  *mockAirports
	weather   domain.WeatherSource
	ready     *mockReadiness
}

func defaultDeps() serverDeps {
	return serverDeps{
		live:      &mockLive{},
		snapshots: &mockSnapshots{},
		airports: &mockAirports{
			byCode: map[string]domain.Airport{"BOM": bombayAirport},
			list:   []domain.Airport{bombayAirport},
		},
		weather: &mockWeather{obs: domain.WeatherObservation{
			Condition: "Clear", Description: "clear sky", TempC: 30.5, WindSpeedMs: 4.2,
		}},
		ready: &mockReadiness{},
	}
}

func newTestServer(deps serverDeps) *httpadapter.Server {
	opts := httpadapter.Options{
		Addr:        ":0",
		Bounds:      testBounds,
		MinAltitude: 0,
		MaxAltitude: 50000,
		Congestion:  domain.DefaultCongestionThresholds(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(opts, deps.live, deps.snapshots, deps.airports, deps.weather, deps.ready, logger)
}

func doGET(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// --- health, readiness, metrics ---

func TestHealthzReturns200(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	deps := defaultDeps()
	deps.ready.err = fmt.Errorf("no feed cycle yet")
	rec := doGET(t, newTestServer(deps), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no feed cycle yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- live flights ---

func TestLiveFlights_ReturnsCachedSet(t *testing.T) {
	deps := defaultDeps()
	deps.live.records = []domain.FlightRecord{
		flight("AIC101", 19.1, 72.9, 11000),
		flight("IGO404", 28.5, 77.1, 9000),
	}
	rec := doGET(t, newTestServer(deps), "/api/flights/live")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int                   `json:"count"`
		Flights []domain.FlightRecord `json:"flights"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Flights, 2)
	assert.Equal(t, "AIC101", body.Flights[0].Callsign)
}

func TestLiveFlights_AltitudeBand(t *testing.T) {
	deps := defaultDeps()
	deps.live.records = []domain.FlightRecord{
		flight("AIC101", 19.1, 72.9, 11000),
		flight("IGO404", 28.5, 77.1, 2000),
	}
	rec := doGET(t, newTestServer(deps), "/api/flights/live?min_alt=5000&max_alt=12000")

	var body struct {
		Count   int                   `json:"count"`
		Flights []domain.FlightRecord `json:"flights"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "AIC101", body.Flights[0].Callsign)
}

func TestLiveFlights_CallsignFilter(t *testing.T) {
	deps := defaultDeps()
	deps.live.records = []domain.FlightRecord{
		flight("AIC101", 19.1, 72.9, 11000),
		flight("IGO404", 28.5, 77.1, 9000),
	}
	rec := doGET(t, newTestServer(deps), "/api/flights/live?callsign=igo")

	var body struct {
		Count   int                   `json:"count"`
		Flights []domain.FlightRecord `json:"flights"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "IGO404", body.Flights[0].Callsign)
}

func TestLiveFlights_EmptySetIsNotNull(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/flights/live")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"flights":[]`)
}

func TestLiveFlights_InvalidAltitudeParam(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/flights/live?min_alt=bogus")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "invalid min_alt", body["error"])
}

// --- stats summary ---

func TestStatsSummary(t *testing.T) {
	deps := defaultDeps()
	deps.snapshots.recent = 75
	deps.snapshots.buckets = []domain.HourlyBucket{{Hour: 476150, Count: 40}}
	rec := doGET(t, newTestServer(deps), "/api/stats/summary")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RecentSnapshotCount int                   `json:"recent_snapshot_count"`
		CongestionLevel     string                `json:"congestion_level"`
		FlightsPerHour      []domain.HourlyBucket `json:"flights_per_hour"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 75, body.RecentSnapshotCount)
	assert.Equal(t, "MEDIUM", body.CongestionLevel)
	require.Len(t, body.FlightsPerHour, 1)
	assert.Equal(t, int64(476150), body.FlightsPerHour[0].Hour)
}

func TestStatsSummary_StoreError(t *testing.T) {
	deps := defaultDeps()
	deps.snapshots.countErr = errors.New("db locked")
	rec := doGET(t, newTestServer(deps), "/api/stats/summary")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- airports ---

func TestAirports_ReturnsList(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/airports")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body []domain.Airport
	decodeBody(t, rec, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "BOM", body[0].Code)
}

func TestAirports_StoreError(t *testing.T) {
	deps := defaultDeps()
	deps.airports.err = errors.New("db locked")
	rec := doGET(t, newTestServer(deps), "/api/airports")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- airport weather ---

func TestAirportWeather(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/airports/BOM/weather")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "BOM", body["airport"])
	assert.Equal(t, bombayAirport.Name, body["name"])
	assert.Equal(t, "Mumbai", body["city"])
	assert.Equal(t, "clear sky", body["condition"])
	assert.Equal(t, 30.5, body["temp"])
	assert.Equal(t, 4.2, body["wind_speed"])
	assert.Equal(t, "LOW", body["risk"])
}

func TestAirportWeather_CodeCaseInsensitive(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/airports/bom/weather")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAirportWeather_HighRisk(t *testing.T) {
	deps := defaultDeps()
	deps.weather = &mockWeather{obs: domain.WeatherObservation{
		Condition: "Thunderstorm", Description: "thunderstorm with rain", TempC: 26, WindSpeedMs: 11,
	}}
	rec := doGET(t, newTestServer(deps), "/api/airports/BOM/weather")

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "HIGH", body["risk"])
}

func TestAirportWeather_UnknownAirport(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/airports/XXX/weather")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "unknown airport", body["error"])
}

func TestAirportWeather_ProviderNotConfigured(t *testing.T) {
	deps := defaultDeps()
	deps.weather = nil
	rec := doGET(t, newTestServer(deps), "/api/airports/BOM/weather")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "weather provider not configured", body["error"])
}

func TestAirportWeather_UpstreamError(t *testing.T) {
	deps := defaultDeps()
	deps.weather = &mockWeather{err: errors.New("upstream timeout")}
	rec := doGET(t, newTestServer(deps), "/api/airports/BOM/weather")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// --- airport traffic ---

func TestAirportTraffic(t *testing.T) {
	deps := defaultDeps()
	deps.live.records = []domain.FlightRecord{
		// ~38 km east of BOM with a heading: approach traffic.
		flight("AIC101", 19.0896, 73.2256, 11000),
		// ~10 km east: close-in departure traffic.
		flight("IGO404", 19.0896, 72.9606, 2000),
		// Delhi, far outside the catchment radius.
		flight("UAE203", 28.5562, 77.1000, 9000),
	}
	rec := doGET(t, newTestServer(deps), "/api/airports/BOM/traffic")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Airport    string                `json:"airport"`
		Name       string                `json:"name"`
		Arrivals   []domain.TrafficEntry `json:"arrivals"`
		Departures []domain.TrafficEntry `json:"departures"`
		Others     []domain.TrafficEntry `json:"others"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "BOM", body.Airport)
	assert.Equal(t, bombayAirport.Name, body.Name)
	require.Len(t, body.Arrivals, 1)
	assert.Equal(t, "AIC101", body.Arrivals[0].Callsign)
	require.Len(t, body.Departures, 1)
	assert.Equal(t, "IGO404", body.Departures[0].Callsign)
	assert.Empty(t, body.Others)
}

func TestAirportTraffic_EmptyBucketsNotNull(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/airports/BOM/traffic")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"arrivals":[]`)
	assert.Contains(t, rec.Body.String(), `"departures":[]`)
	assert.Contains(t, rec.Body.String(), `"others":[]`)
}

func TestAirportTraffic_UnknownAirport(t *testing.T) {
	rec := doGET(t, newTestServer(defaultDeps()), "/api/airports/XYZ/traffic")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
