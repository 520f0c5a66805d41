package service

import (
	"context"
	"log/slog"
	"time"

	"ehub-dashboard/internal/modules/soil/store"
	"ehub-dashboard/internal/modules/soil/types"
)

// Publisher sends a JSON document to a broker topic.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// SnapshotMessage is the payload relayed for every accepted snapshot.
type SnapshotMessage struct {
	ReceivedAt time.Time      `json:"receivedAt"`
	Day        string         `json:"day"`
	Snapshot   types.Snapshot `json:"snapshot"`
}

// Relay forwards accepted snapshots to MQTT. While a publish is in flight,
// newer snapshots replace older pending ones.
type Relay struct {
	publisher Publisher
	topic     string
	logger    *slog.Logger

	changes     <-chan store.Change
	unsubscribe func()
	lastGen     uint64
}

// NewRelay subscribes to st right away so snapshots accepted before Run are
// not missed.
func NewRelay(st *store.Store, publisher Publisher, topic string, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	changes, unsubscribe := st.Subscribe()
	return &Relay{
		publisher:   publisher,
		topic:       topic,
		logger:      logger,
		changes:     changes,
		unsubscribe: unsubscribe,
	}
}

// Run publishes until ctx is done. Publish failures are logged and skipped.
func (r *Relay) Run(ctx context.Context) error {
	defer r.unsubscribe()

	r.logger.Info("snapshot relay started", "topic", r.topic)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("snapshot relay stopped")
			return ctx.Err()
		case c, ok := <-r.changes:
			if !ok {
				return nil
			}
			// Any change carries the current snapshot, so a snapshot
			// change replaced by a later log or day change is still sent.
			if c.State.SnapshotGen <= r.lastGen {
				continue
			}
			r.lastGen = c.State.SnapshotGen
			r.publish(c.State)
		}
	}
}

func (r *Relay) publish(st store.State) {
	msg := SnapshotMessage{
		ReceivedAt: st.SnapshotAt,
		Day:        st.DayName,
		Snapshot:   st.Snapshot,
	}
	if err := r.publisher.PublishJSON(r.topic, msg); err != nil {
		r.logger.Warn("snapshot relay publish failed",
			"topic", r.topic,
			"error", err,
		)
		return
	}
	r.logger.Debug("snapshot relayed", "topic", r.topic)
}
