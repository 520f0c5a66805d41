package httpapi

import (
	"net/http"
	"time"

	"ehub-dashboard/internal/modules/soil/store"
	"ehub-dashboard/internal/utils"
)

// StatusSource exposes the dashboard state for health reporting.
type StatusSource interface {
	State() store.State
}

// BrokerStatus reports the MQTT relay connection. Nil when the relay is off.
type BrokerStatus interface {
	IsConnected() bool
}

type healthResponse struct {
	Status         string     `json:"status"`
	Day            string     `json:"day"`
	LastSnapshotAt *time.Time `json:"lastSnapshotAt"`
	LastLogAt      *time.Time `json:"lastLogAt"`
	LastError      string     `json:"lastError,omitempty"`
	MQTT           string     `json:"mqtt"`
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	status StatusSource
	broker BrokerStatus
}

func NewHealthchecker(status StatusSource, broker BrokerStatus) healthchecker {
	return &healthcheckerImpl{status: status, broker: broker}
}

// handleHealthz always reports ok while the process serves requests; fetch
// failures are retried by the pollers and only surface as diagnostics.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	st := h.status.State()
	resp := healthResponse{
		Status:         "ok",
		Day:            st.DayName,
		LastSnapshotAt: timeOrNil(st.SnapshotAt),
		LastLogAt:      timeOrNil(st.LogAt),
		LastError:      st.LastError,
		MQTT:           "disabled",
	}
	if h.broker != nil {
		resp.MQTT = "disconnected"
		if h.broker.IsConnected() {
			resp.MQTT = "connected"
		}
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func registerHealthcheck(mux *http.ServeMux, status StatusSource, broker BrokerStatus) {
	healthchecker := NewHealthchecker(status, broker)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
