package controller

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ehub-dashboard/internal/modules/soil/charts"
	"ehub-dashboard/internal/modules/soil/gauge"
	"ehub-dashboard/internal/modules/soil/types"
	"ehub-dashboard/internal/modules/soil/views"
	"ehub-dashboard/internal/utils"
)

type snapshotResponse struct {
	Snapshot   types.Snapshot `json:"snapshot"`
	ReceivedAt *time.Time     `json:"receivedAt"`
}

// Day in the log-derived responses is the day the values were built for. It
// lags the selected day until the log for a newly selected day arrives.
type hourlyResponse struct {
	Day    string       `json:"day"`
	Hourly types.Hourly `json:"hourly"`
}

type seriesResponse struct {
	Day      string             `json:"day"`
	Quantity types.Quantity     `json:"quantity"`
	Unit     string             `json:"unit"`
	Series   types.HourlySeries `json:"series"`
}

type logsResponse struct {
	Day            string         `json:"day"`
	Logs           types.LogLists `json:"logs"`
	SkippedEntries int            `json:"skippedEntries"`
}

type phGauge struct {
	Value *float64      `json:"value"`
	Bars  []gauge.PHBar `json:"bars"`
}

type gaugeResponse struct {
	Moisture gauge.Moisture `json:"moisture"`
	PH       phGauge        `json:"ph"`
}

type dayRequest struct {
	Day string `json:"day"`
}

type dayResponse struct {
	Day     string `json:"day"`
	Changed bool   `json:"changed"`
}

func (c *soilControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	graph, err := parseGraphQuery(r)
	if err != nil {
		slog.Warn("dashboard: invalid graph", "graph", r.URL.Query().Get("graph"), "error", err)
	}

	data := &views.DashboardData{
		Title:    c.title,
		Overview: views.NewOverviewData(c.service.State(), graph),
	}
	err = utils.WriteHTML(w, func(out io.Writer) error { return views.RenderDashboard(out, data) })
	if err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func (c *soilControllerImpl) handleOverviewPartial(w http.ResponseWriter, r *http.Request) {
	graph, err := parseGraphQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := views.NewOverviewData(c.service.State(), graph)
	err = utils.WriteHTML(w, func(out io.Writer) error { return views.RenderOverviewPartial(out, &data) })
	if err != nil {
		slog.Error("overview partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
	}
}

func (c *soilControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	q, err := parseChartFile(r.PathValue("file"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	st := c.service.State()
	series, _ := st.View.Hourly.Series(q)

	var buf bytes.Buffer
	if err := charts.RenderHourlySVG(&buf, q, st.Day, series); err != nil {
		slog.Error("chart render failed", "quantity", q, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("chart: write response failed", "error", err)
	}
}

func (c *soilControllerImpl) handleDayForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}
	day, err := parseDay(r.PostForm.Get("day"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	graph, err := parseGraph(r.PostForm.Get("graph"))
	if err != nil {
		slog.Warn("day form: invalid graph", "graph", r.PostForm.Get("graph"))
	}

	c.service.SelectDay(day)
	http.Redirect(w, r, dashboardURL(graph), http.StatusSeeOther)
}

func (c *soilControllerImpl) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	st := c.service.State()
	resp := snapshotResponse{Snapshot: st.Snapshot}
	if !st.SnapshotAt.IsZero() {
		at := st.SnapshotAt
		resp.ReceivedAt = &at
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (c *soilControllerImpl) handleHourly(w http.ResponseWriter, r *http.Request) {
	st := c.service.State()
	utils.WriteJSON(w, http.StatusOK, hourlyResponse{Day: st.View.Day.String(), Hourly: st.View.Hourly})
}

func (c *soilControllerImpl) handleHourlySeries(w http.ResponseWriter, r *http.Request) {
	q, err := types.ParseQuantity(r.PathValue("quantity"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	st := c.service.State()
	series, _ := st.View.Hourly.Series(q)
	utils.WriteJSON(w, http.StatusOK, seriesResponse{
		Day:      st.View.Day.String(),
		Quantity: q,
		Unit:     q.Unit(),
		Series:   series,
	})
}

func (c *soilControllerImpl) handleLogs(w http.ResponseWriter, r *http.Request) {
	st := c.service.State()
	utils.WriteJSON(w, http.StatusOK, logsResponse{
		Day:            st.View.Day.String(),
		Logs:           st.View.Logs,
		SkippedEntries: st.View.SkippedEntries,
	})
}

func (c *soilControllerImpl) handleGauge(w http.ResponseWriter, r *http.Request) {
	snap := c.service.State().Snapshot
	utils.WriteJSON(w, http.StatusOK, gaugeResponse{
		Moisture: gauge.MoistureGauge(snap.Moisture),
		PH:       phGauge{Value: snap.PH, Bars: gauge.PHBars(snap.PH)},
	})
}

func (c *soilControllerImpl) handleGetDay(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, dayResponse{Day: c.service.State().DayName})
}

func (c *soilControllerImpl) handlePutDay(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	day, err := parseDay(req.Day)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	changed := c.service.SelectDay(day)
	utils.WriteJSON(w, http.StatusOK, dayResponse{Day: day.String(), Changed: changed})
}
