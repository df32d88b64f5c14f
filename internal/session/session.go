// Package session keeps one hydrated tracker per client session. Trackers
// live in an LRU cache; an evicted session is rebuilt from the store on its
// next request.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"calorie/internal/cache"
	"calorie/internal/core"
	"calorie/internal/store"
	"calorie/internal/tracker"
)

var (
	ErrInvalidID        = errors.New("invalid session id")
	ErrListNotSupported = errors.New("backend cannot list sessions")

	validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Session serialises access to one tracker.
type Session struct {
	ID string

	mu      sync.Mutex
	tracker *tracker.Tracker
	unsubs  []func()
}

// Do runs fn with exclusive access to the session's tracker.
func (s *Session) Do(fn func(*tracker.Tracker) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tracker)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}

// ListenerFactory builds a listener bound to one session, e.g. an event
// publisher that needs the session id.
type ListenerFactory func(sessionID string) tracker.Listener

// Config sizes the session cache. Zero values pick the defaults; a zero
// DefaultLimit means core.DefaultCalorieLimit.
type Config struct {
	CacheSize    int
	TTL          time.Duration
	DefaultLimit int64
}

type Manager struct {
	backend   store.Backend
	cfg       Config
	logger    *slog.Logger
	listeners []ListenerFactory

	sessions *cache.LRUCache[*Session]
	group    singleflight.Group
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithListeners subscribes a listener built by each factory to every
// session's tracker.
func WithListeners(factories ...ListenerFactory) Option {
	return func(m *Manager) {
		m.listeners = append(m.listeners, factories...)
	}
}

func NewManager(backend store.Backend, cfg Config, opts ...Option) *Manager {
	if cfg.CacheSize < 1 {
		cfg.CacheSize = 1000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.DefaultLimit == 0 {
		cfg.DefaultLimit = core.DefaultCalorieLimit
	}
	m := &Manager{backend: backend, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	m.sessions = cache.NewLRUCache[*Session](cfg.CacheSize, cfg.TTL,
		cache.WithEvictionCallback(func(id string, s *Session) {
			s.close()
			m.logger.Debug("Session evicted", "session_id", id)
		}))
	return m
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id may be used as a key namespace.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Get returns the session for id, hydrating its tracker on first use.
// Concurrent first requests for the same id share one hydration.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	if s, ok := m.sessions.Get(id); ok {
		return s, nil
	}

	v, err, _ := m.group.Do(id, func() (any, error) {
		if s, ok := m.sessions.Get(id); ok {
			return s, nil
		}
		s, err := m.hydrate(ctx, id)
		if err != nil {
			return nil, err
		}
		m.sessions.Set(id, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Store returns the namespaced store backing session id.
func (m *Manager) Store(id string) *store.Store {
	return store.New(m.backend,
		store.WithNamespace(id),
		store.WithDefaultLimit(m.cfg.DefaultLimit))
}

// Sessions returns the ids of every session with stored data, sorted.
func (m *Manager) Sessions(ctx context.Context) ([]string, error) {
	lister, ok := m.backend.(store.Lister)
	if !ok {
		return nil, ErrListNotSupported
	}
	keys, err := lister.Keys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var ids []string
	for _, key := range keys {
		id, _, ok := strings.Cut(key, ":")
		if !ok || !ValidID(id) {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// CleanExpired implements cache.Cleaner.
func (m *Manager) CleanExpired() int {
	return m.sessions.CleanExpired()
}

// Active returns the number of sessions held in memory.
func (m *Manager) Active() int {
	return m.sessions.Size()
}

func (m *Manager) hydrate(ctx context.Context, id string) (*Session, error) {
	logger := m.logger.With("session_id", id)
	tr, err := tracker.New(ctx, m.Store(id), tracker.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("hydrate session %s: %w", id, err)
	}
	s := &Session{ID: id, tracker: tr}
	for _, factory := range m.listeners {
		if factory == nil {
			continue
		}
		if l := factory(id); l != nil {
			s.unsubs = append(s.unsubs, tr.Subscribe(l))
		}
	}
	logger.Debug("Session hydrated",
		"meals", len(tr.Meals()),
		"workouts", len(tr.Workouts()),
		"total", tr.Total())
	return s, nil
}
