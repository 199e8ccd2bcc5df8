package domain

import (
	"context"
	"strings"
)

// RiskLevel is a coarse weather-based operational risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// highWindThresholdMs is the wind speed above which conditions are rated
// HIGH regardless of the condition text.
const highWindThresholdMs = 15.0

// WeatherObservation is one raw weather reading for a coordinate, supplied
// by an external provider.
type WeatherObservation struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	TempC       float64 `json:"temp"`
	WindSpeedMs float64 `json:"wind_speed"`
}

// WeatherSource supplies current conditions for a coordinate.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (WeatherObservation, error)
}

// RiskFor maps a condition text and wind speed to a risk level. Rules are
// checked in fixed precedence and the first match wins: storm/thunder text
// or high wind is HIGH, rain/fog is MODERATE, anything else LOW. The
// condition match is case-insensitive.
func RiskFor(condition string, windSpeedMs float64) RiskLevel {
	cond := strings.ToLower(condition)

	switch {
	case strings.Contains(cond, "storm"), strings.Contains(cond, "thunder"), windSpeedMs > highWindThresholdMs:
		return RiskHigh
	case strings.Contains(cond, "rain"), strings.Contains(cond, "fog"):
		return RiskModerate
	default:
		return RiskLow
	}
}
