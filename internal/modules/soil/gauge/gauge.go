// Package gauge computes the render-time values for the pH scale and the
// soil moisture gauge. Everything here is a pure function of its input.
package gauge

import "math"

const (
	MaxMoisture = 15.0

	Radius      = 50.0
	StrokeWidth = 10.0
	Center      = Radius + StrokeWidth

	PHBarCount = 14

	ColorRed    = "#ff0000"
	ColorGreen  = "#4caf50"
	ColorAmber  = "#ffcc00"
	ColorYellow = "#ffff00"
	ColorLime   = "#00ff00"
	ColorTrack  = "#d3d3d3"
)

type MoistureStatus string

const (
	StatusWet         MoistureStatus = "Wet"
	StatusNormal      MoistureStatus = "Normal"
	StatusDry         MoistureStatus = "Dry"
	StatusUnavailable MoistureStatus = "N/A"
)

// NormalizeMoisture clamps v to [0, MaxMoisture].
func NormalizeMoisture(v float64) float64 {
	return math.Min(math.Max(v, 0), MaxMoisture)
}

// Percentage of the gauge filled by a normalized moisture value.
func Percentage(normalized float64) float64 {
	return normalized / MaxMoisture * 100
}

// Status classifies a moisture value: below 3 is wet, 3 to 5 inclusive is
// normal, above 5 is dry.
func Status(v float64) MoistureStatus {
	switch {
	case v < 3:
		return StatusWet
	case v <= 5:
		return StatusNormal
	default:
		return StatusDry
	}
}

// MoistureColor is the gauge stroke colour for a moisture value.
func MoistureColor(v float64) string {
	switch Status(v) {
	case StatusWet:
		return ColorRed
	case StatusNormal:
		return ColorGreen
	default:
		return ColorAmber
	}
}

// PHColor is the bar colour for a pH value: red when acidic, yellow when
// neutral, green when basic.
func PHColor(v float64) string {
	switch {
	case v < 7:
		return ColorRed
	case v > 7:
		return ColorLime
	default:
		return ColorYellow
	}
}

// Moisture is the view model of the circular moisture gauge.
type Moisture struct {
	Available        bool           `json:"available"`
	Value            float64        `json:"value"`
	Percentage       float64        `json:"percentage"`
	Status           MoistureStatus `json:"status"`
	Color            string         `json:"color"`
	Circumference    float64        `json:"circumference"`
	StrokeDashOffset float64        `json:"strokeDashOffset"`
}

// MoistureGauge derives the gauge from a possibly unavailable reading.
// An unavailable reading gives an empty gauge.
func MoistureGauge(reading *float64) Moisture {
	circumference := 2 * math.Pi * Radius
	if reading == nil {
		return Moisture{
			Status:           StatusUnavailable,
			Color:            ColorTrack,
			Circumference:    circumference,
			StrokeDashOffset: circumference,
		}
	}
	normalized := NormalizeMoisture(*reading)
	pct := Percentage(normalized)
	return Moisture{
		Available:        true,
		Value:            normalized,
		Percentage:       pct,
		Status:           Status(normalized),
		Color:            MoistureColor(normalized),
		Circumference:    circumference,
		StrokeDashOffset: circumference - circumference*pct/100,
	}
}

// PHBar is one bar of the pH scale.
type PHBar struct {
	Index  int     `json:"index"`
	Filled bool    `json:"filled"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// PHBars lays out the 14-bar pH scale. Bar i (1-based) is filled iff
// i <= value; an unavailable reading leaves every bar empty.
func PHBars(reading *float64) []PHBar {
	bars := make([]PHBar, PHBarCount)
	for i := range bars {
		idx := i + 1
		bar := PHBar{Index: idx, Color: ColorTrack}
		if reading != nil && float64(idx) <= *reading {
			bar.Filled = true
			bar.Height = float64(idx) * 5
			bar.Color = PHColor(float64(idx))
		}
		bars[i] = bar
	}
	return bars
}
