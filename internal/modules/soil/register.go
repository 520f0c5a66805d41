package soil

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ehub-dashboard/internal/config"
	"ehub-dashboard/internal/modules/soil/controller"
	"ehub-dashboard/internal/modules/soil/poller"
	"ehub-dashboard/internal/modules/soil/service"
	"ehub-dashboard/internal/modules/soil/source"
	"ehub-dashboard/internal/modules/soil/store"
)

const dashboardTitle = "ehub soil monitor"

// Feature wires the soil dashboard: remote source, pollers, state and the
// optional MQTT relay.
type Feature struct {
	Store   *store.Store
	Service *service.Service

	poller *poller.Poller
	relay  *service.Relay
	logger *slog.Logger
}

func NewFeature(cfg config.Config, fetcher poller.Fetcher, logger *slog.Logger) *Feature {
	st := store.New(time.Now)
	p := poller.New(fetcher, st, poller.Options{
		SnapshotInterval: cfg.SnapshotPollInterval,
		LogInterval:      cfg.LogPollInterval,
	}, logger)

	return &Feature{
		Store:   st,
		Service: service.NewService(st, p, logger),
		poller:  p,
		logger:  logger,
	}
}

// NewSource builds the HTTP client for the configured endpoints.
func NewSource(cfg config.Config) *source.Client {
	return source.NewClient(cfg.SnapshotURL, cfg.LogURL, cfg.FetchTimeout)
}

// EnableRelay publishes every accepted snapshot to topic.
func (f *Feature) EnableRelay(pub service.Publisher, topic string) {
	f.relay = service.NewRelay(f.Store, pub, topic, f.logger)
}

// Run polls until ctx is done and returns once every in-flight fetch and the
// relay have stopped.
func (f *Feature) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	if f.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.relay.Run(ctx)
		}()
	}
	err := f.poller.Run(ctx)
	wg.Wait()
	return err
}

func RegisterFeature(mux *http.ServeMux, f *Feature) {
	soilController := controller.NewSoilController(f.Service, dashboardTitle)
	soilController.RegisterRoutes(mux)
}
