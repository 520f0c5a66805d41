package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ehub-dashboard/internal/modules/soil/types"
	"ehub-dashboard/internal/modules/soil/views"
)

const defaultGraph = types.Temperature

// parseGraphQuery returns the chart toggle from ?graph=. Only the quantities
// the dashboard can toggle between are accepted.
func parseGraphQuery(r *http.Request) (types.Quantity, error) {
	return parseGraph(r.URL.Query().Get("graph"))
}

func parseGraph(s string) (types.Quantity, error) {
	if strings.TrimSpace(s) == "" {
		return defaultGraph, nil
	}
	q, err := types.ParseQuantity(s)
	if err != nil {
		return defaultGraph, err
	}
	for _, allowed := range views.GraphQuantities {
		if q == allowed {
			return q, nil
		}
	}
	return defaultGraph, fmt.Errorf("invalid 'graph' %q (expected temperature or humidity)", s)
}

// parseChartFile resolves "<quantity>.svg".
func parseChartFile(name string) (types.Quantity, error) {
	base, ok := strings.CutSuffix(name, ".svg")
	if !ok || base == "" {
		return "", errors.New("chart must be requested as <quantity>.svg")
	}
	return types.ParseQuantity(base)
}

func parseDay(s string) (time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return time.Sunday, errors.New("missing 'day'")
	}
	return types.ParseWeekday(s)
}

func dashboardURL(graph types.Quantity) string {
	if graph == defaultGraph {
		return "/"
	}
	return "/?graph=" + string(graph)
}
