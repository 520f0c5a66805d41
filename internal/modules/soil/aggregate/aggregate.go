// Package aggregate turns the raw log into the per-day view shown on the
// dashboard.
package aggregate

import (
	"strconv"
	"strings"
	"time"

	"ehub-dashboard/internal/modules/soil/types"
)

// BuildDayView filters entries by day tag and derives the hourly series and
// the raw log lists. Entries are visited in order, so for a repeated hour
// the last entry wins in the series while the lists keep every entry.
// An entry whose hour is unusable is left out of the series only.
func BuildDayView(entries []types.LogEntry, day time.Weekday) types.DayView {
	view := types.DayView{
		Day: day,
		Logs: types.LogLists{
			PH:         []*float64{},
			Moisture:   []*float64{},
			Timestamps: []string{},
		},
	}
	tag := day.String()

	for _, e := range entries {
		if e.Day != tag {
			continue
		}
		ctx := e.Context

		view.Logs.PH = append(view.Logs.PH, ctx.PH)
		view.Logs.Moisture = append(view.Logs.Moisture, ctx.Moisture)
		view.Logs.Timestamps = append(view.Logs.Timestamps, ctx.Timestamp)

		hour, ok := ParseHour(ctx.Timestamp)
		if !ok {
			view.SkippedEntries++
			continue
		}
		view.Hourly.Temperature[hour] = valueOrZero(ctx.Temperature)
		view.Hourly.Humidity[hour] = valueOrZero(ctx.Humidity)
		view.Hourly.PH[hour] = valueOrZero(ctx.PH)
		view.Hourly.Moisture[hour] = valueOrZero(ctx.Moisture)
	}
	return view
}

// ParseHour reads the hour from an "HH:MM:SS" timestamp. Only the leading
// token is used; it must be an integer in 0..23.
func ParseHour(timestamp string) (int, bool) {
	token, _, _ := strings.Cut(timestamp, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || hour < 0 || hour >= types.HoursPerDay {
		return 0, false
	}
	return hour, true
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
