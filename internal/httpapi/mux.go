package httpapi

import (
	"net/http"
)

func NewMux(status StatusSource, broker BrokerStatus) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, status, broker)
	return mux
}
