// Package state holds the aggregated dashboard state: the latest sample per
// host and metric kind, the ordered host list, and the presentation cursors.
// Everything is guarded by a single RWMutex so a render always sees cursors
// that agree with the data.
package state

import (
	"math"
	"sync"
	"time"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/event"
	"github.com/rileyhilliard/hostwatch/internal/metrics"
)

// maxErrorLog bounds the in-memory error history.
const maxErrorLog = 100

// Entry is a stored sample and the time it was taken.
type Entry struct {
	Sample metrics.Sample
	At     time.Time
}

// ErrorRecord is a surfaced sampling error. Records never touch stored samples.
type ErrorRecord struct {
	Host    string
	Kind    metrics.Kind
	HasKind bool
	Message string
	At      time.Time
}

// Store is the shared aggregated state.
type Store struct {
	mu sync.RWMutex

	hosts []string
	known map[string]struct{}
	data  map[string]map[metrics.Kind]Entry

	lastErr map[string]ErrorRecord
	errLog  []ErrorRecord

	hostIdx int
	kind    metrics.Kind
}

// NewStore creates a store pre-populated with hosts in the given order.
// Duplicate names are ignored.
func NewStore(hosts ...string) *Store {
	s := &Store{
		known:   make(map[string]struct{}),
		data:    make(map[string]map[metrics.Kind]Entry),
		lastErr: make(map[string]ErrorRecord),
	}
	for _, h := range hosts {
		s.addHostLocked(h)
	}
	return s
}

func (s *Store) addHostLocked(host string) {
	if _, ok := s.known[host]; ok {
		return
	}
	s.known[host] = struct{}{}
	s.hosts = append(s.hosts, host)
}

// Apply folds one event into the state. Sample events upsert the (host, kind)
// entry; error events are recorded in the error log and never modify samples.
// It reports whether a sample was stored.
func (s *Store) Apply(ev event.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addHostLocked(ev.Host)

	if ev.IsError() {
		rec := ErrorRecord{Host: ev.Host, Kind: ev.Kind, HasKind: ev.HasKind, Message: errors.Brief(ev.Err), At: ev.At}
		s.lastErr[ev.Host] = rec
		s.errLog = append(s.errLog, rec)
		if len(s.errLog) > maxErrorLog {
			s.errLog = s.errLog[len(s.errLog)-maxErrorLog:]
		}
		return false
	}
	if ev.Sample == nil {
		return false
	}

	byKind, ok := s.data[ev.Host]
	if !ok {
		byKind = make(map[metrics.Kind]Entry)
		s.data[ev.Host] = byKind
	}
	kind := ev.Sample.Kind()
	byKind[kind] = Entry{Sample: ev.Sample, At: ev.At}
	// a sample resolves a connection error or an earlier error for the same kind
	if rec, ok := s.lastErr[ev.Host]; ok && (!rec.HasKind || rec.Kind == kind) {
		delete(s.lastErr, ev.Host)
	}
	return true
}

// Get returns the latest sample for (host, kind). ok is false when nothing
// has been sampled yet.
func (s *Store) Get(host string, kind metrics.Kind) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[host][kind]
	return e, ok
}

// Hosts returns a copy of the known host names in discovery order.
func (s *Store) Hosts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.hosts))
	copy(out, s.hosts)
	return out
}

// Errors returns a copy of the recent error history, oldest first.
func (s *Store) Errors() []ErrorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ErrorRecord, len(s.errLog))
	copy(out, s.errLog)
	return out
}

// NextHost advances the host cursor, wrapping to the first host.
// It is a no-op when no hosts are known.
func (s *Store) NextHost() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.hosts) == 0 {
		return
	}
	s.hostIdx = (s.hostIdx + 1) % len(s.hosts)
}

// PrevHost moves the host cursor back, wrapping to the last host.
// It is a no-op when no hosts are known.
func (s *Store) PrevHost() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.hosts) == 0 {
		return
	}
	s.hostIdx = (s.hostIdx - 1 + len(s.hosts)) % len(s.hosts)
}

// SelectKind sets the metric cursor to display index i, clamped to the
// valid kinds.
func (s *Store) SelectKind(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = metrics.KindAt(i)
}

// Snapshot is a consistent read of the cursors and the data they point at.
type Snapshot struct {
	// Host is empty when HostCount is 0.
	Host      string
	HostIndex int
	HostCount int
	Kind      metrics.Kind
	Entry     Entry
	HasData   bool
	// Fleet holds the gauge reading of Kind for every host in host order,
	// NaN where a host has no reading. Nil for kinds without a gauge.
	Fleet     []float64
	LastError *ErrorRecord
}

// Snapshot reads the current cursor position and its data under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{HostCount: len(s.hosts), Kind: s.kind}
	if len(s.hosts) == 0 {
		return snap
	}
	idx := s.hostIdx
	if idx >= len(s.hosts) {
		idx = 0
	}
	snap.Host = s.hosts[idx]
	snap.HostIndex = idx
	snap.Entry, snap.HasData = s.data[snap.Host][s.kind]
	snap.Fleet = s.fleetLocked(s.kind)
	if rec, ok := s.lastErr[snap.Host]; ok {
		snap.LastError = &rec
	}
	return snap
}

// fleetLocked collects the gauge value of kind across hosts. It returns nil
// unless at least one host has a gauge reading.
func (s *Store) fleetLocked(kind metrics.Kind) []float64 {
	out := make([]float64, len(s.hosts))
	found := false
	for i, h := range s.hosts {
		out[i] = math.NaN()
		e, ok := s.data[h][kind]
		if !ok {
			continue
		}
		if pct, ok := metrics.Percent(e.Sample); ok {
			out[i] = pct
			found = true
		}
	}
	if !found {
		return nil
	}
	return out
}

// All returns every stored entry grouped by host, in host order. Used by
// plain output mode.
func (s *Store) All() []HostEntries {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]HostEntries, 0, len(s.hosts))
	for _, h := range s.hosts {
		he := HostEntries{Host: h}
		for _, k := range metrics.Kinds() {
			if e, ok := s.data[h][k]; ok {
				he.Entries = append(he.Entries, KindEntry{Kind: k, Entry: e})
			}
		}
		if rec, ok := s.lastErr[h]; ok {
			he.LastError = &rec
		}
		out = append(out, he)
	}
	return out
}

// HostEntries is the stored data of one host.
type HostEntries struct {
	Host      string
	Entries   []KindEntry
	LastError *ErrorRecord
}

// KindEntry pairs a kind with its entry.
type KindEntry struct {
	Kind  metrics.Kind
	Entry Entry
}
