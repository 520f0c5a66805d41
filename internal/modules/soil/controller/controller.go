package controller

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ehub-dashboard/internal/modules/soil/store"
)

// DashboardService is what the HTTP layer needs from the soil module.
type DashboardService interface {
	State() store.State
	SelectDay(day time.Weekday) bool
	Subscribe() (<-chan store.Change, func())
}

type SoilController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type soilControllerImpl struct {
	service  DashboardService
	title    string
	upgrader websocket.Upgrader
}

func NewSoilController(service DashboardService, title string) SoilController {
	return &soilControllerImpl{
		service: service,
		title:   title,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

func (c *soilControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /partials/overview", c.handleOverviewPartial)
	mux.HandleFunc("GET /charts/{file}", c.handleChart)
	mux.HandleFunc("POST /day", c.handleDayForm)

	mux.HandleFunc("GET /api/v1/snapshot", c.handleSnapshot)
	mux.HandleFunc("GET /api/v1/hourly", c.handleHourly)
	mux.HandleFunc("GET /api/v1/hourly/{quantity}", c.handleHourlySeries)
	mux.HandleFunc("GET /api/v1/logs", c.handleLogs)
	mux.HandleFunc("GET /api/v1/gauge", c.handleGauge)
	mux.HandleFunc("GET /api/v1/day", c.handleGetDay)
	mux.HandleFunc("PUT /api/v1/day", c.handlePutDay)

	mux.HandleFunc("GET /ws", c.handleWS)
}
