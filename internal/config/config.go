package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSnapshotURL = "https://api.ehub.ph/data.json"
	defaultLogURL      = "https://api.ehub.ph/log.json"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// SnapshotURL and LogURL are the polled endpoints. A timestamp query
	// parameter is added to every request.
	SnapshotURL string
	LogURL      string

	SnapshotPollInterval time.Duration
	LogPollInterval      time.Duration
	FetchTimeout         time.Duration

	// MQTTBroker empty disables the snapshot relay.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// RelayEnabled reports whether snapshots are republished over MQTT.
func (c Config) RelayEnabled() bool {
	return c.MQTTBroker != ""
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	snapshotURL, err := parseEndpoint("SNAPSHOT_URL", defaultSnapshotURL)
	if err != nil {
		return Config{}, err
	}
	logURL, err := parseEndpoint("LOG_URL", defaultLogURL)
	if err != nil {
		return Config{}, err
	}

	snapshotPollInterval, err := parsePositiveDuration("SNAPSHOT_POLL_INTERVAL", "1s")
	if err != nil {
		return Config{}, err
	}
	logPollInterval, err := parsePositiveDuration("LOG_POLL_INTERVAL", "100s")
	if err != nil {
		return Config{}, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT out of range: %d", mqttPort)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "ehub-dashboard"
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "ehub/snapshot"
	}

	return Config{
		AppEnv:               appEnv,
		LogLevel:             level,
		HTTPAddr:             httpAddr,
		SnapshotURL:          snapshotURL,
		LogURL:               logURL,
		SnapshotPollInterval: snapshotPollInterval,
		LogPollInterval:      logPollInterval,
		FetchTimeout:         fetchTimeout,
		MQTTBroker:           mqttBroker,
		MQTTPort:             mqttPort,
		MQTTClientID:         mqttClientID,
		MQTTTopic:            mqttTopic,
	}, nil
}

func parseEndpoint(key, def string) (string, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = def
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid %s %q: scheme must be http or https", key, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid %s %q: missing host", key, raw)
	}
	return raw, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
