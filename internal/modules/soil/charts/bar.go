// Package charts renders hourly series as bar charts.
package charts

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ehub-dashboard/internal/modules/soil/types"
)

const (
	Width      = 1024
	Height     = 360
	barWidth   = 28
	barSpacing = 10
)

var barColors = map[types.Quantity]string{
	types.Temperature: "ff7043",
	types.Humidity:    "42a5f5",
	types.PH:          "ab47bc",
	types.Moisture:    "4caf50",
}

// RenderHourlySVG writes a 24-bar SVG chart of series to w.
func RenderHourlySVG(w io.Writer, q types.Quantity, day time.Weekday, series types.HourlySeries) error {
	return newHourlyChart(q, day, series).Render(chart.SVG, w)
}

func newHourlyChart(q types.Quantity, day time.Weekday, series types.HourlySeries) chart.BarChart {
	fill := drawing.ColorFromHex(barColors[q])

	bars := make([]chart.Value, 0, types.HoursPerDay)
	minVal, maxVal := 0.0, 0.0
	for hour, v := range series {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
		bars = append(bars, chart.Value{
			Label: strconv.Itoa(hour),
			Value: v,
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: fill,
				StrokeWidth: 1,
			},
		})
	}

	// go-chart rejects a zero-height range; an all-zero day still gets axes.
	if maxVal <= minVal {
		maxVal = minVal + 1
	}

	return chart.BarChart{
		Title:      title(q, day),
		Width:      Width,
		Height:     Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: minVal, Max: maxVal},
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
}

func title(q types.Quantity, day time.Weekday) string {
	unit := strings.TrimSpace(q.Unit())
	if unit == "" {
		return fmt.Sprintf("%s by hour, %s", q.Label(), day)
	}
	return fmt.Sprintf("%s (%s) by hour, %s", q.Label(), unit, day)
}
