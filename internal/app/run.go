package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ehub-dashboard/internal/config"
	httpapi "ehub-dashboard/internal/httpapi"
	soil "ehub-dashboard/internal/modules/soil"
	soilviews "ehub-dashboard/internal/modules/soil/views"
	"ehub-dashboard/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"snapshotURL", cfg.SnapshotURL,
		"logURL", cfg.LogURL,
		"snapshotPollInterval", cfg.SnapshotPollInterval,
		"logPollInterval", cfg.LogPollInterval,
		"fetchTimeout", cfg.FetchTimeout,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	if err := soilviews.LoadTemplates(); err != nil {
		return err
	}

	feature := soil.NewFeature(cfg, soil.NewSource(cfg), logger)

	// Declared as the interface so a disabled relay stays a true nil.
	var broker httpapi.BrokerStatus
	var publisher *mqtt.Publisher
	if cfg.RelayEnabled() {
		publisher = mqtt.NewPublisher(cfg, logger)
		broker = publisher

		// Short timeout so a missing broker does not block startup; the client
		// keeps reconnecting in the background.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing, relay will reconnect)", "error", err)
		}
		feature.EnableRelay(publisher, cfg.MQTTTopic)
	}

	mux := httpapi.NewMux(feature.Store, broker)
	soil.RegisterFeature(mux, feature)

	srv := httpapi.NewServer(ctx, cfg, mux, logger)

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	pollDone := make(chan error, 1)
	go func() {
		pollDone <- feature.Run(pollCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	slog.Info("pollers stopping")
	stopPolling()
	<-pollDone

	if publisher != nil {
		slog.Info("mqtt disconnecting")
		publisher.Disconnect()
	}

	if serveErr != nil {
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
