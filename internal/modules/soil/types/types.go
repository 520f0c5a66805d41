package types

import (
	"fmt"
	"strings"
	"time"
)

// HoursPerDay is the number of slots in an HourlySeries.
const HoursPerDay = 24

// Snapshot is the latest single-point reading of the four monitored
// quantities. A nil field means the reading is unavailable.
type Snapshot struct {
	Temperature *float64 `json:"temp"`
	Humidity    *float64 `json:"humidity"`
	PH          *float64 `json:"ph"`
	Moisture    *float64 `json:"moisture"`
}

// LogContext holds the measurements recorded with one log entry.
type LogContext struct {
	Timestamp   string   `json:"timestamp"`
	Temperature *float64 `json:"temp"`
	Humidity    *float64 `json:"humidity"`
	PH          *float64 `json:"ph"`
	Moisture    *float64 `json:"moisture"`
}

// LogEntry is one historical sample tagged with a weekday name.
type LogEntry struct {
	Day     string     `json:"day"`
	Context LogContext `json:"context"`
}

// HourlySeries is a per-hour aggregation of one quantity, index = hour.
type HourlySeries [HoursPerDay]float64

// Quantity names one of the four monitored values.
type Quantity string

const (
	Temperature Quantity = "temperature"
	Humidity    Quantity = "humidity"
	PH          Quantity = "ph"
	Moisture    Quantity = "moisture"
)

// Quantities lists every monitored quantity in display order.
var Quantities = []Quantity{Temperature, Humidity, PH, Moisture}

// ParseQuantity resolves a quantity name (case-insensitive).
func ParseQuantity(s string) (Quantity, error) {
	q := Quantity(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Quantities {
		if q == known {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown quantity %q (allowed: temperature, humidity, ph, moisture)", s)
}

// Unit returns the display suffix for the quantity.
func (q Quantity) Unit() string {
	switch q {
	case Temperature:
		return "°C"
	case Humidity:
		return "%"
	case Moisture:
		return " CB"
	default:
		return ""
	}
}

// Label returns the capitalised display name.
func (q Quantity) Label() string {
	switch q {
	case Temperature:
		return "Temperature"
	case Humidity:
		return "Humidity"
	case PH:
		return "pH"
	case Moisture:
		return "Moisture"
	default:
		return string(q)
	}
}

// Hourly holds the four per-hour series for the selected day.
type Hourly struct {
	Temperature HourlySeries `json:"temperature"`
	Humidity    HourlySeries `json:"humidity"`
	PH          HourlySeries `json:"ph"`
	Moisture    HourlySeries `json:"moisture"`
}

// Series returns the series for q, or false when q is unknown.
func (h Hourly) Series(q Quantity) (HourlySeries, bool) {
	switch q {
	case Temperature:
		return h.Temperature, true
	case Humidity:
		return h.Humidity, true
	case PH:
		return h.PH, true
	case Moisture:
		return h.Moisture, true
	default:
		return HourlySeries{}, false
	}
}

// LogLists are the raw pH, moisture and timestamp values of every log entry
// for the selected day, in log order. All three slices have equal length.
type LogLists struct {
	PH         []*float64 `json:"ph"`
	Moisture   []*float64 `json:"moisture"`
	Timestamps []string   `json:"timestamps"`
}

// Len returns the number of entries in the lists.
func (l LogLists) Len() int {
	return len(l.Timestamps)
}

// DayView is everything derived from the log for one weekday.
type DayView struct {
	Day    time.Weekday `json:"-"`
	Hourly Hourly       `json:"hourly"`
	Logs   LogLists     `json:"logs"`
	// SkippedEntries counts matching entries whose hour could not be used.
	SkippedEntries int `json:"skippedEntries"`
}

// ParseWeekday resolves an English weekday name, ignoring case and
// surrounding whitespace.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid day %q (expected a weekday name such as Monday)", s)
}

// Weekdays lists the days in selector order, Sunday first.
func Weekdays() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}
