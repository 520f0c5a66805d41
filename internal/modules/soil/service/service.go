package service

import (
	"log/slog"
	"time"

	"ehub-dashboard/internal/modules/soil/store"
)

// LogRefresher triggers an out-of-band log fetch.
type LogRefresher interface {
	RefreshLog()
}

type Service struct {
	store     *store.Store
	refresher LogRefresher
	logger    *slog.Logger
}

func NewService(st *store.Store, refresher LogRefresher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, refresher: refresher, logger: logger}
}

func (s *Service) State() store.State {
	return s.store.State()
}

func (s *Service) Subscribe() (<-chan store.Change, func()) {
	return s.store.Subscribe()
}

// SelectDay switches the dashboard to day. Selecting the day already shown is
// a no-op; otherwise a log fetch for the new day is started and the current
// view stays on screen until it arrives.
func (s *Service) SelectDay(day time.Weekday) bool {
	if !s.store.Apply(store.DayChanged{Day: day}) {
		s.logger.Debug("day unchanged", "day", day.String())
		return false
	}
	s.logger.Info("day selected", "day", day.String())
	if s.refresher != nil {
		s.refresher.RefreshLog()
	}
	return true
}
