package views

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"ehub-dashboard/internal/modules/soil/gauge"
	"ehub-dashboard/internal/modules/soil/store"
	"ehub-dashboard/internal/modules/soil/types"
)

const unavailable = "N/A"

var funcs = template.FuncMap{
	"fixed": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}

// GraphOption is one entry of the Temperature/Humidity toggle.
type GraphOption struct {
	Quantity types.Quantity
	Label    string
	Selected bool
}

// DayOption is one button of the weekday selector.
type DayOption struct {
	Name     string
	Selected bool
}

// LogLine is one "timestamp: value" row of a log list.
type LogLine struct {
	Timestamp string
	Value     string
}

// PHBarView positions one pH bar inside the scale's SVG.
type PHBarView struct {
	gauge.PHBar
	X      float64
	Y      float64
	LabelX float64
}

// MoistureView is the moisture gauge plus its display strings.
type MoistureView struct {
	gauge.Moisture
	Display string
	Center  float64
	Radius  float64
	Stroke  float64
	Size    float64
	Track   string
}

// OverviewData is the view model for the overview partial.
type OverviewData struct {
	Day        string
	Graph      types.Quantity
	GraphLabel string
	GraphValue string
	ChartURL   string
	Graphs     []GraphOption
	Days       []DayOption

	Temperature string
	Humidity    string

	PHValue  string
	PHBars   []PHBarView
	Moisture MoistureView

	PHLogs       []LogLine
	MoistureLogs []LogLine

	UpdatedAt string
	LastError string
}

// DashboardData is the view model for the full page.
type DashboardData struct {
	Title    string
	Overview OverviewData
}

// GraphQuantities are the quantities selectable in the hourly chart toggle.
var GraphQuantities = []types.Quantity{types.Temperature, types.Humidity}

const (
	phBarWidth  = 16
	phBarGap    = 6
	phScaleBase = 80
)

// NewOverviewData builds the overview view model from the dashboard state.
// graph must be one of GraphQuantities.
func NewOverviewData(st store.State, graph types.Quantity) OverviewData {
	graphs := make([]GraphOption, 0, len(GraphQuantities))
	for _, q := range GraphQuantities {
		graphs = append(graphs, GraphOption{Quantity: q, Label: q.Label(), Selected: q == graph})
	}

	days := make([]DayOption, 0, 7)
	for _, d := range types.Weekdays() {
		days = append(days, DayOption{Name: d.String(), Selected: d == st.Day})
	}

	graphValue := st.Snapshot.Temperature
	if graph == types.Humidity {
		graphValue = st.Snapshot.Humidity
	}

	return OverviewData{
		Day:         st.DayName,
		Graph:       graph,
		GraphLabel:  graph.Label(),
		GraphValue:  withUnit(graphValue, graph),
		ChartURL:    chartURL(graph, st.LogAt),
		Graphs:      graphs,
		Days:        days,
		Temperature: withUnit(st.Snapshot.Temperature, types.Temperature),
		Humidity:    withUnit(st.Snapshot.Humidity, types.Humidity),

		PHValue:  FormatReading(st.Snapshot.PH),
		PHBars:   layoutPHBars(gauge.PHBars(st.Snapshot.PH)),
		Moisture: newMoistureView(st.Snapshot.Moisture),

		PHLogs:       logLines(st.View.Logs.Timestamps, st.View.Logs.PH),
		MoistureLogs: logLines(st.View.Logs.Timestamps, st.View.Logs.Moisture),

		UpdatedAt: formatTime(st.SnapshotAt),
		LastError: st.LastError,
	}
}

// FormatReading renders a reading in its shortest exact form, or N/A.
func FormatReading(v *float64) string {
	if v == nil {
		return unavailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func withUnit(v *float64, q types.Quantity) string {
	if v == nil {
		return unavailable
	}
	return FormatReading(v) + q.Unit()
}

func chartURL(q types.Quantity, logAt time.Time) string {
	u := url.URL{Path: fmt.Sprintf("/charts/%s.svg", q)}
	if !logAt.IsZero() {
		u.RawQuery = url.Values{"v": {strconv.FormatInt(logAt.UnixMilli(), 10)}}.Encode()
	}
	return u.String()
}

func layoutPHBars(bars []gauge.PHBar) []PHBarView {
	out := make([]PHBarView, 0, len(bars))
	for i, b := range bars {
		x := float64(i * (phBarWidth + phBarGap))
		out = append(out, PHBarView{
			PHBar:  b,
			X:      x,
			Y:      phScaleBase - b.Height,
			LabelX: x + phBarWidth/2,
		})
	}
	return out
}

func newMoistureView(reading *float64) MoistureView {
	m := gauge.MoistureGauge(reading)
	display := unavailable
	if m.Available {
		display = strconv.FormatFloat(m.Value, 'f', -1, 64) + types.Moisture.Unit()
	}
	return MoistureView{
		Moisture: m,
		Display:  display,
		Center:   gauge.Center,
		Radius:   gauge.Radius,
		Stroke:   gauge.StrokeWidth,
		Size:     gauge.Center * 2,
		Track:    gauge.ColorTrack,
	}
}

func logLines(timestamps []string, values []*float64) []LogLine {
	lines := make([]LogLine, 0, len(values))
	for i, v := range values {
		var ts string
		if i < len(timestamps) {
			ts = timestamps[i]
		}
		lines = append(lines, LogLine{Timestamp: ts, Value: FormatReading(v)})
	}
	return lines
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}
