// Package source fetches the snapshot and log documents from the remote
// ehub endpoints.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ehub-dashboard/internal/modules/soil/types"
)

// Failure kinds. Every error returned by Client wraps exactly one of them.
var (
	ErrTransport = errors.New("transport error")
	ErrDecode    = errors.New("malformed body")
	ErrShape     = errors.New("unexpected payload shape")
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// Kind returns a short label for the failure kind of err, for logging.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrShape):
		return "shape"
	default:
		return "unknown"
	}
}

type Client struct {
	http        *http.Client
	snapshotURL string
	logURL      string
	now         func() time.Time
}

func NewClient(snapshotURL, logURL string, timeout time.Duration) *Client {
	return &Client{
		http:        &http.Client{Timeout: timeout},
		snapshotURL: snapshotURL,
		logURL:      logURL,
		now:         time.Now,
	}
}

type snapshotPayload struct {
	Data json.RawMessage `json:"data"`
}

type wireReadings struct {
	Temp     json.RawMessage `json:"temp"`
	Humidity json.RawMessage `json:"humidity"`
	PH       json.RawMessage `json:"ph"`
	Moisture json.RawMessage `json:"moisture"`
}

type wireEntry struct {
	Day     json.RawMessage `json:"day"`
	Context json.RawMessage `json:"context"`
}

type wireContext struct {
	wireReadings
	Timestamp json.RawMessage `json:"timestamp"`
}

// FetchSnapshot fetches the current readings. Fields missing from the
// payload are returned as unavailable (nil).
func (c *Client) FetchSnapshot(ctx context.Context) (types.Snapshot, error) {
	body, err := c.get(ctx, c.snapshotURL)
	if err != nil {
		return types.Snapshot{}, err
	}

	var payload snapshotPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return types.Snapshot{}, fmt.Errorf("snapshot: %w: %v", ErrShape, err)
	}
	if isNull(payload.Data) {
		return types.Snapshot{}, fmt.Errorf("snapshot: %w: missing data field", ErrShape)
	}

	var r wireReadings
	if err := json.Unmarshal(payload.Data, &r); err != nil {
		return types.Snapshot{}, fmt.Errorf("snapshot: %w: data is not an object", ErrShape)
	}

	return types.Snapshot{
		Temperature: parseReading(r.Temp),
		Humidity:    parseReading(r.Humidity),
		PH:          parseReading(r.PH),
		Moisture:    parseReading(r.Moisture),
	}, nil
}

// FetchLog fetches the full historical log. Array elements that are not
// objects are dropped.
func (c *Client) FetchLog(ctx context.Context) ([]types.LogEntry, error) {
	body, err := c.get(ctx, c.logURL)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if isNull(body) {
		return nil, fmt.Errorf("log: %w: payload is null", ErrShape)
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("log: %w: payload is not an array", ErrShape)
	}

	entries := make([]types.LogEntry, 0, len(raw))
	for _, item := range raw {
		var we wireEntry
		if err := json.Unmarshal(item, &we); err != nil {
			continue
		}
		entry := types.LogEntry{Day: parseString(we.Day)}
		var wc wireContext
		if !isNull(we.Context) && json.Unmarshal(we.Context, &wc) == nil {
			entry.Context = types.LogContext{
				Timestamp:   parseString(wc.Timestamp),
				Temperature: parseReading(wc.Temp),
				Humidity:    parseReading(wc.Humidity),
				PH:          parseReading(wc.PH),
				Moisture:    parseReading(wc.Moisture),
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	u, err := cacheBusted(endpoint, c.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrTransport, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: GET %s: body is not JSON", ErrDecode, endpoint)
	}
	return body, nil
}

// cacheBusted appends timestamp=<epoch millis> to endpoint, keeping any
// query parameters it already has.
func cacheBusted(endpoint string, now time.Time) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("timestamp", strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseReading accepts a JSON number or a numeric string. Anything else,
// including non-finite values, is unavailable.
func parseReading(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
