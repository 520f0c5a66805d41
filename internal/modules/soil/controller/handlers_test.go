package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"ehub-dashboard/internal/modules/soil/store"
	"ehub-dashboard/internal/modules/soil/types"
	"ehub-dashboard/internal/modules/soil/views"
)

var monday = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

// fakeService selects days on a real store without any polling.
type fakeService struct {
	store *store.Store

	mu       sync.Mutex
	selected []time.Weekday
}

func newFakeService() *fakeService {
	return &fakeService{store: store.New(func() time.Time { return monday })}
}

func (f *fakeService) State() store.State { return f.store.State() }

func (f *fakeService) Subscribe() (<-chan store.Change, func()) { return f.store.Subscribe() }

func (f *fakeService) SelectDay(day time.Weekday) bool {
	f.mu.Lock()
	f.selected = append(f.selected, day)
	f.mu.Unlock()
	return f.store.Apply(store.DayChanged{Day: day})
}

func (f *fakeService) selections() []time.Weekday {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Weekday(nil), f.selected...)
}

func (f *fakeService) seed(t *testing.T) {
	t.Helper()
	gen := f.store.BeginSnapshot()
	f.store.Apply(store.SnapshotReceived{
		Gen:      gen,
		Snapshot: types.Snapshot{Temperature: ptr(24), Humidity: ptr(55), PH: ptr(6.5), Moisture: ptr(4)},
		At:       monday,
	})

	view := types.DayView{
		Day: time.Monday,
		Logs: types.LogLists{
			PH:         []*float64{ptr(6.5)},
			Moisture:   []*float64{ptr(4)},
			Timestamps: []string{"09:00"},
		},
	}
	view.Hourly.Temperature[9] = 24
	lgen, day := f.store.BeginLog()
	f.store.Apply(store.LogReceived{Gen: lgen, Day: day, View: view, At: monday})
}

func newTestServer(t *testing.T, svc DashboardService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewSoilController(svc, "ehub soil monitor").RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode json: %v (%q)", err, rec.Body.String())
	}
	return out
}

func newController(svc DashboardService) *soilControllerImpl {
	return NewSoilController(svc, "ehub soil monitor").(*soilControllerImpl)
}

func Test_handleDashboard(t *testing.T) {
	ctrl := newController(newFakeService())

	t.Run("returns 500 and error body when templates are not loaded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		ctrl.handleDashboard(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Skipf("templates already loaded by another test; status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "failed to render page") {
			t.Errorf("body = %q; expected 'failed to render page'", rec.Body.String())
		}
	})

	t.Run("returns HTML when templates loaded", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates(): %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/?graph=humidity", nil)
		rec := httptest.NewRecorder()

		ctrl.handleDashboard(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q; want text/html; charset=utf-8", ct)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "<!DOCTYPE html>") || !strings.Contains(body, "/charts/humidity.svg") {
			t.Errorf("body should be the dashboard with the humidity chart; got %q", body)
		}
	})

	t.Run("falls back to temperature on unknown graph", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates(): %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/?graph=ph", nil)
		rec := httptest.NewRecorder()

		ctrl.handleDashboard(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if !strings.Contains(rec.Body.String(), "/charts/temperature.svg") {
			t.Error("dashboard did not fall back to the temperature chart")
		}
	})
}

func Test_handleOverviewPartial(t *testing.T) {
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}
	svc := newFakeService()
	svc.seed(t)
	ctrl := newController(svc)

	t.Run("renders fragment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/partials/overview", nil)
		rec := httptest.NewRecorder()

		ctrl.handleOverviewPartial(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		body := rec.Body.String()
		if strings.Contains(body, "<!DOCTYPE html>") {
			t.Error("fragment contains page layout")
		}
		if !strings.Contains(body, "09:00: 6.5 pH") || !strings.Contains(body, "24°C") {
			t.Errorf("fragment missing data; got %q", body)
		}
	})

	t.Run("rejects invalid graph", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/partials/overview?graph=wind", nil)
		rec := httptest.NewRecorder()

		ctrl.handleOverviewPartial(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func Test_handleChart(t *testing.T) {
	svc := newFakeService()
	svc.seed(t)
	ts := newTestServer(t, svc)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "temperature", path: "/charts/temperature.svg", status: http.StatusOK},
		{name: "moisture", path: "/charts/moisture.svg", status: http.StatusOK},
		{name: "unknown quantity", path: "/charts/wind.svg", status: http.StatusNotFound},
		{name: "missing extension", path: "/charts/temperature", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ts.Client().Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d; want %d", resp.StatusCode, tt.status)
			}
			if tt.status == http.StatusOK {
				if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
					t.Errorf("Content-Type = %q; want image/svg+xml", ct)
				}
			}
		})
	}
}

func Test_handleSnapshot(t *testing.T) {
	t.Run("before first fetch", func(t *testing.T) {
		ctrl := newController(newFakeService())
		rec := httptest.NewRecorder()

		ctrl.handleSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))

		body := decodeBody[map[string]any](t, rec)
		if body["receivedAt"] != nil {
			t.Errorf("receivedAt = %v; want null", body["receivedAt"])
		}
		snap, ok := body["snapshot"].(map[string]any)
		if !ok || snap["temp"] != nil || snap["moisture"] != nil {
			t.Errorf("snapshot = %v; want all readings null", body["snapshot"])
		}
	})

	t.Run("after fetch", func(t *testing.T) {
		svc := newFakeService()
		svc.seed(t)
		ctrl := newController(svc)
		rec := httptest.NewRecorder()

		ctrl.handleSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))

		body := decodeBody[snapshotResponse](t, rec)
		if body.ReceivedAt == nil || !body.ReceivedAt.Equal(monday) {
			t.Errorf("receivedAt = %v; want %v", body.ReceivedAt, monday)
		}
		if body.Snapshot.Temperature == nil || *body.Snapshot.Temperature != 24 {
			t.Errorf("temp = %v; want 24", body.Snapshot.Temperature)
		}
	})
}

func Test_handleHourly(t *testing.T) {
	svc := newFakeService()
	svc.seed(t)
	ts := newTestServer(t, svc)

	t.Run("all series", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/v1/hourly")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		var body hourlyResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Day != "Monday" || body.Hourly.Temperature[9] != 24 {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("single series", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/v1/hourly/Temperature")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		var body seriesResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Quantity != types.Temperature || body.Unit != "°C" || body.Series[9] != 24 {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("unknown quantity", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/v1/hourly/wind")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d; want %d", resp.StatusCode, http.StatusNotFound)
		}
	})
}

func Test_handleLogs(t *testing.T) {
	t.Run("empty lists encode as arrays", func(t *testing.T) {
		ctrl := newController(newFakeService())
		rec := httptest.NewRecorder()

		ctrl.handleLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))

		if !strings.Contains(rec.Body.String(), `"ph":[]`) {
			t.Errorf("body = %q; want empty ph array", rec.Body.String())
		}
	})

	t.Run("with entries", func(t *testing.T) {
		svc := newFakeService()
		svc.seed(t)
		ctrl := newController(svc)
		rec := httptest.NewRecorder()

		ctrl.handleLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))

		body := decodeBody[logsResponse](t, rec)
		if body.Logs.Len() != 1 || body.Logs.Timestamps[0] != "09:00" || *body.Logs.PH[0] != 6.5 {
			t.Errorf("logs = %+v", body.Logs)
		}
	})
}

func Test_handleGauge(t *testing.T) {
	svc := newFakeService()
	svc.seed(t)
	ctrl := newController(svc)
	rec := httptest.NewRecorder()

	ctrl.handleGauge(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gauge", nil))

	body := decodeBody[gaugeResponse](t, rec)
	if body.Moisture.Status != "Normal" || body.Moisture.Color != "#4caf50" {
		t.Errorf("moisture = %+v; want Normal #4caf50", body.Moisture)
	}
	if len(body.PH.Bars) != 14 || !body.PH.Bars[5].Filled || body.PH.Bars[6].Filled {
		t.Errorf("ph bars = %+v; want 6 filled of 14", body.PH.Bars)
	}
}

func Test_handleDay(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantDay     string
		wantChanged bool
	}{
		{name: "change", body: `{"day":"friday"}`, wantStatus: http.StatusOK, wantDay: "Friday", wantChanged: true},
		{name: "same day", body: `{"day":"Monday"}`, wantStatus: http.StatusOK, wantDay: "Monday", wantChanged: false},
		{name: "unknown day", body: `{"day":"Funday"}`, wantStatus: http.StatusBadRequest},
		{name: "missing day", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			ctrl := newController(svc)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/v1/day", strings.NewReader(tt.body))

			ctrl.handlePutDay(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if len(svc.selections()) != 0 {
					t.Errorf("SelectDay called on invalid request")
				}
				return
			}
			body := decodeBody[dayResponse](t, rec)
			if body.Day != tt.wantDay || body.Changed != tt.wantChanged {
				t.Errorf("body = %+v; want day %s changed %v", body, tt.wantDay, tt.wantChanged)
			}
			if got := svc.State().DayName; got != tt.wantDay {
				t.Errorf("state day = %q; want %q", got, tt.wantDay)
			}
		})
	}

	t.Run("get", func(t *testing.T) {
		ctrl := newController(newFakeService())
		rec := httptest.NewRecorder()

		ctrl.handleGetDay(rec, httptest.NewRequest(http.MethodGet, "/api/v1/day", nil))

		if body := decodeBody[dayResponse](t, rec); body.Day != "Monday" {
			t.Errorf("day = %q; want Monday", body.Day)
		}
	})
}

func Test_handleDayForm(t *testing.T) {
	t.Run("selects day and redirects", func(t *testing.T) {
		svc := newFakeService()
		ctrl := newController(svc)
		form := url.Values{"day": {"Wednesday"}, "graph": {"humidity"}}
		req := httptest.NewRequest(http.MethodPost, "/day", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		ctrl.handleDayForm(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/?graph=humidity" {
			t.Errorf("Location = %q; want /?graph=humidity", loc)
		}
		if got := svc.State().Day; got != time.Wednesday {
			t.Errorf("day = %v; want Wednesday", got)
		}
	})

	t.Run("rejects unknown day", func(t *testing.T) {
		svc := newFakeService()
		ctrl := newController(svc)
		req := httptest.NewRequest(http.MethodPost, "/day", strings.NewReader("day=someday"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		ctrl.handleDayForm(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
		}
		if len(svc.selections()) != 0 {
			t.Error("SelectDay called for unknown day")
		}
	})
}

func TestRouting_WrongMethod(t *testing.T) {
	ts := newTestServer(t, newFakeService())

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/day", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestRouting_UnknownPathNotFound(t *testing.T) {
	ts := newTestServer(t, newFakeService())

	resp, err := ts.Client().Get(ts.URL + "/dashboard")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusNotFound)
	}
}
