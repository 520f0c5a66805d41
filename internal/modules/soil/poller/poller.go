// Package poller runs the snapshot and log polling loops.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ehub-dashboard/internal/modules/soil/aggregate"
	"ehub-dashboard/internal/modules/soil/source"
	"ehub-dashboard/internal/modules/soil/store"
	"ehub-dashboard/internal/modules/soil/types"
)

// Fetcher is the remote data source.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (types.Snapshot, error)
	FetchLog(ctx context.Context) ([]types.LogEntry, error)
}

type Options struct {
	SnapshotInterval time.Duration
	LogInterval      time.Duration
}

type Poller struct {
	fetcher Fetcher
	store   *store.Store
	opts    Options
	logger  *slog.Logger
	now     func() time.Time

	refresh  chan struct{}
	inflight sync.WaitGroup
}

func New(fetcher Fetcher, st *store.Store, opts Options, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher: fetcher,
		store:   st,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		refresh: make(chan struct{}, 16),
	}
}

// Run fetches both documents once, then keeps polling until ctx is done.
// Ticks never wait for earlier requests. Run returns after every in-flight
// request has finished; results that arrive after ctx is done are dropped.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("pollers started",
		"snapshot_interval", p.opts.SnapshotInterval,
		"log_interval", p.opts.LogInterval,
	)

	var loops sync.WaitGroup
	loops.Add(2)
	go func() {
		defer loops.Done()
		p.snapshotLoop(ctx)
	}()
	go func() {
		defer loops.Done()
		p.logLoop(ctx)
	}()
	loops.Wait()

	p.inflight.Wait()
	p.logger.Info("pollers stopped")
	return ctx.Err()
}

// RefreshLog requests an immediate log fetch and restarts the log interval.
func (p *Poller) RefreshLog() {
	select {
	case p.refresh <- struct{}{}:
	default:
		p.logger.Warn("log refresh dropped: too many pending refreshes")
	}
}

func (p *Poller) snapshotLoop(ctx context.Context) {
	p.spawn(ctx, p.pollSnapshot)

	ticker := time.NewTicker(p.opts.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(ctx, p.pollSnapshot)
		}
	}
}

func (p *Poller) logLoop(ctx context.Context) {
	p.spawn(ctx, p.pollLog)

	ticker := time.NewTicker(p.opts.LogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(ctx, p.pollLog)
		case <-p.refresh:
			ticker.Reset(p.opts.LogInterval)
			p.spawn(ctx, p.pollLog)
		}
	}
}

func (p *Poller) spawn(ctx context.Context, fn func(context.Context)) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		fn(ctx)
	}()
}

func (p *Poller) pollSnapshot(ctx context.Context) {
	gen := p.store.BeginSnapshot()

	snap, err := p.fetcher.FetchSnapshot(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.fail(ctx, "snapshot", err)
		return
	}

	if !p.store.Apply(store.SnapshotReceived{Gen: gen, Snapshot: snap, At: p.now()}) {
		p.logger.Debug("stale snapshot discarded", "gen", gen)
		return
	}
	p.logger.Debug("snapshot updated", "gen", gen)
}

func (p *Poller) pollLog(ctx context.Context) {
	gen, day := p.store.BeginLog()

	entries, err := p.fetcher.FetchLog(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.fail(ctx, "log", err)
		return
	}

	view := aggregate.BuildDayView(entries, day)
	if view.SkippedEntries > 0 {
		p.logger.Warn("log entries with unusable hour left out of hourly series",
			"day", day.String(),
			"skipped", view.SkippedEntries,
		)
	}

	if !p.store.Apply(store.LogReceived{Gen: gen, Day: day, View: view, At: p.now()}) {
		p.logger.Debug("stale log discarded", "gen", gen, "day", day.String())
		return
	}
	p.logger.Debug("log updated",
		"gen", gen,
		"day", day.String(),
		"entries", len(entries),
		"matching", view.Logs.Len(),
	)
}

func (p *Poller) fail(ctx context.Context, src string, err error) {
	p.logger.WarnContext(ctx, "fetch failed",
		"source", src,
		"kind", source.Kind(err),
		"error", err,
	)
	p.store.Apply(store.FetchFailed{Source: src, Err: err, At: p.now()})
}
