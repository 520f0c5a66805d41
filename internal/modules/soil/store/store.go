// Package store holds the dashboard state and the transitions that change it.
//
// Every mutation goes through Apply with one of the event types below. Fetch
// results carry a generation token issued by BeginSnapshot or BeginLog; a
// result older than the last applied one of its kind is discarded, so a slow
// response can never overwrite newer data.
package store

import (
	"sync"
	"time"

	"ehub-dashboard/internal/modules/soil/types"
)

// State is a read-only copy of the dashboard state. Slices inside are shared
// with the store and must not be modified.
type State struct {
	Day         time.Weekday   `json:"-"`
	DayName     string         `json:"day"`
	Snapshot    types.Snapshot `json:"snapshot"`
	SnapshotAt  time.Time      `json:"snapshotAt"`
	SnapshotGen uint64         `json:"-"` // 0 until the first snapshot
	View        types.DayView  `json:"view"`
	LogAt       time.Time      `json:"logAt"`

	LastError   string    `json:"lastError,omitempty"`
	LastErrorAt time.Time `json:"lastErrorAt"`
}

// ChangeKind names the part of the state a Change touched.
type ChangeKind string

const (
	SnapshotChanged ChangeKind = "snapshot"
	LogChanged      ChangeKind = "log"
	DayChangedKind  ChangeKind = "day"
)

// Change is delivered to subscribers after a transition that changed state.
type Change struct {
	Kind  ChangeKind
	State State
}

// Event is a state transition. The set of events is closed.
type Event interface {
	apply(s *Store) (ChangeKind, bool)
}

// SnapshotReceived replaces the snapshot wholesale.
type SnapshotReceived struct {
	Gen      uint64
	Snapshot types.Snapshot
	At       time.Time
}

// LogReceived replaces the hourly series and log lists for Day.
type LogReceived struct {
	Gen  uint64
	Day  time.Weekday
	View types.DayView
	At   time.Time
}

// DayChanged selects another weekday. Log results requested for the previous
// day are discarded when they arrive.
type DayChanged struct {
	Day time.Weekday
}

// FetchFailed records a failed fetch for diagnostics. It never changes the
// dashboard data.
type FetchFailed struct {
	Source string
	Err    error
	At     time.Time
}

// Store is the single owner of the dashboard state.
type Store struct {
	mu    sync.Mutex
	state State

	snapshotIssued  uint64
	snapshotApplied uint64
	logIssued       uint64
	logApplied      uint64

	subs    map[int]chan Change
	nextSub int
}

// New creates a store whose selected day is the current weekday.
func New(now func() time.Time) *Store {
	day := now().Weekday()
	return &Store{
		state: State{
			Day:     day,
			DayName: day.String(),
			View:    emptyView(day),
		},
		subs: make(map[int]chan Change),
	}
}

func emptyView(day time.Weekday) types.DayView {
	return types.DayView{
		Day: day,
		Logs: types.LogLists{
			PH:         []*float64{},
			Moisture:   []*float64{},
			Timestamps: []string{},
		},
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Day returns the selected weekday.
func (s *Store) Day() time.Weekday {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Day
}

// BeginSnapshot issues the generation token for a new snapshot request.
func (s *Store) BeginSnapshot() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotIssued++
	return s.snapshotIssued
}

// BeginLog issues the generation token for a new log request together with
// the day the result must be filtered by.
func (s *Store) BeginLog() (uint64, time.Weekday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logIssued++
	return s.logIssued, s.state.Day
}

// Apply runs ev and reports whether the dashboard state changed.
func (s *Store) Apply(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, changed := ev.apply(s)
	if changed {
		s.notify(Change{Kind: kind, State: s.state})
	}
	return changed
}

func (e SnapshotReceived) apply(s *Store) (ChangeKind, bool) {
	if e.Gen <= s.snapshotApplied {
		return SnapshotChanged, false
	}
	s.snapshotApplied = e.Gen
	s.state.Snapshot = e.Snapshot
	s.state.SnapshotAt = e.At
	s.state.SnapshotGen = e.Gen
	return SnapshotChanged, true
}

func (e LogReceived) apply(s *Store) (ChangeKind, bool) {
	if e.Day != s.state.Day || e.Gen <= s.logApplied {
		return LogChanged, false
	}
	s.logApplied = e.Gen
	s.state.View = e.View
	s.state.LogAt = e.At
	return LogChanged, true
}

func (e DayChanged) apply(s *Store) (ChangeKind, bool) {
	if e.Day == s.state.Day {
		return DayChangedKind, false
	}
	s.state.Day = e.Day
	s.state.DayName = e.Day.String()
	// Everything issued so far was for the old day.
	s.logApplied = s.logIssued
	return DayChangedKind, true
}

func (e FetchFailed) apply(s *Store) (ChangeKind, bool) {
	if e.Err != nil {
		s.state.LastError = e.Source + ": " + e.Err.Error()
		s.state.LastErrorAt = e.At
	}
	return "", false
}

// Subscribe registers for change notifications. Delivery never blocks the
// store: a slow subscriber only sees the most recent change. The returned
// func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) notify(c Change) {
	for _, ch := range s.subs {
		select {
		case ch <- c:
			continue
		default:
		}
		// Drop the stale pending change and deliver the latest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c:
		default:
		}
	}
}
