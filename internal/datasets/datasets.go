// Package datasets caches imported record sets between tool calls. Each
// import holds a capacity slot until it is closed or idles past its TTL.
package datasets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/buzzlens/config"
	"github.com/vinodismyname/buzzlens/internal/ingest"
	"github.com/vinodismyname/buzzlens/internal/model"
)

// ErrDatasetNotFound indicates an unknown, closed or expired dataset ID.
var ErrDatasetNotFound = errors.New("datasets: dataset not found")

// ErrBusy means no dataset slot freed up in time.
var ErrBusy = errors.New("datasets: open dataset limit reached")

// Dataset is one immutable import. Callers must not modify Records.
type Dataset struct {
	ID       string
	Source   string
	Sheet    string
	Records  []model.Record
	Warnings []string
	Skipped  int
	LoadedAt time.Time

	mu        sync.Mutex
	expiresAt time.Time
}

// ExpiresAt returns the current idle deadline.
func (d *Dataset) ExpiresAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expiresAt
}

func (d *Dataset) touch(at time.Time) {
	d.mu.Lock()
	d.expiresAt = at
	d.mu.Unlock()
}

// Gate bounds how many datasets may be held at once (runtime.Controller).
type Gate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// PathValidator returns the canonical path for an allowed import, or an error.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// Manager owns the dataset cache.
type Manager struct {
	mu           sync.RWMutex
	datasets     map[string]*Dataset
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         Gate
	validator    PathValidator
	parser       *ingest.Parser
	maxRows      int
	acquireWait  time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
	cleanupWG    sync.WaitGroup
}

// Option customizes a Manager.
type Option func(*Manager)

// WithPathValidator checks import paths before reading.
func WithPathValidator(v PathValidator) Option { return func(m *Manager) { m.validator = v } }

// WithParser replaces the default parser.
func WithParser(p *ingest.Parser) Option { return func(m *Manager) { m.parser = p } }

// WithMaxRows caps data rows read per import.
func WithMaxRows(n int) Option { return func(m *Manager) { m.maxRows = n } }

// WithAcquireTimeout bounds how long an import waits for a free slot.
func WithAcquireTimeout(d time.Duration) Option { return func(m *Manager) { m.acquireWait = d } }

// NewManager constructs a Manager. ttl or cleanupEvery <= 0 use config
// defaults; gate may be nil in tests and clock defaults to time.Now.
func NewManager(ttl, cleanupEvery time.Duration, gate Gate, clock func() time.Time, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultDatasetIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultDatasetCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	m := &Manager{
		datasets:     make(map[string]*Dataset),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		maxRows:      config.DefaultMaxImportRows,
		stopCh:       make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	if m.parser == nil {
		m.parser = ingest.NewParser(nil, nil)
	}
	return m
}

// Start launches periodic eviction of idle datasets.
func (m *Manager) Start(ctx context.Context) {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				if n := m.EvictExpired(); n > 0 {
					zerolog.Ctx(ctx).Info().Int("evicted", n).Msg("idle datasets evicted")
				}
			}
		}
	}()
}

// Close stops the cleanup loop and drops every dataset.
func (m *Manager) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	n := len(m.datasets)
	m.datasets = make(map[string]*Dataset)
	m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.release()
	}
	return nil
}

// Import validates path, parses the sheet and registers the result. The
// gate slot is taken before reading and returned on any failure.
func (m *Manager) Import(ctx context.Context, path, sheet string) (*Dataset, error) {
	if m.validator != nil {
		canonical, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			return nil, err
		}
		path = canonical
	}
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	res, sh, err := m.parser.ParseFile(ctx, path, sheet, m.maxRows)
	if err != nil {
		m.release()
		return nil, err
	}
	ds := m.register(path, sh.Name, res)
	zerolog.Ctx(ctx).Info().Str("dataset_id", ds.ID).Int("records", len(ds.Records)).Msg("dataset imported")
	return ds, nil
}

// Adopt registers already-parsed records, e.g. from tests or other sources.
func (m *Manager) Adopt(ctx context.Context, source string, records []model.Record) (*Dataset, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	return m.register(source, "", ingest.Result{Records: records}), nil
}

func (m *Manager) register(source, sheet string, res ingest.Result) *Dataset {
	now := m.clock()
	ds := &Dataset{
		ID:        uuid.NewString(),
		Source:    source,
		Sheet:     sheet,
		Records:   res.Records,
		Warnings:  res.Warnings,
		Skipped:   res.Skipped,
		LoadedAt:  now,
		expiresAt: now.Add(m.ttl),
	}
	m.mu.Lock()
	m.datasets[ds.ID] = ds
	m.mu.Unlock()
	return ds
}

// Get returns the dataset and refreshes its idle deadline.
func (m *Manager) Get(id string) (*Dataset, error) {
	m.mu.RLock()
	ds, ok := m.datasets[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	ds.touch(m.clock().Add(m.ttl))
	return ds, nil
}

// Remove drops a dataset and frees its slot.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	_, ok := m.datasets[id]
	delete(m.datasets, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	m.release()
	return nil
}

// EvictExpired drops datasets idle past their deadline and reports how many.
func (m *Manager) EvictExpired() int {
	now := m.clock()
	m.mu.Lock()
	var n int
	for id, ds := range m.datasets {
		if now.After(ds.ExpiresAt()) {
			delete(m.datasets, id)
			n++
		}
	}
	m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.release()
	}
	return n
}

// Count returns the number of cached datasets.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.datasets)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	if m.acquireWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.acquireWait)
		defer cancel()
	}
	if err := m.gate.AcquireDataset(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return nil
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseDataset()
}
