package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/auth"
	"github.com/AgustinBertolini/e-commerce-daw/cart"
	"github.com/AgustinBertolini/e-commerce-daw/clients"
	"github.com/AgustinBertolini/e-commerce-daw/monitoring"
)

// Entry bundles the state owned by one storefront session: its cart,
// its credential and the backend client bound to them. Nothing here is
// process-global.
type Entry struct {
	ID   string
	Cart *cart.Store
	Auth *auth.Session
	API  *clients.BackendClient

	lastSeen time.Time
}

// Manager hands out session entries keyed by the session_id cookie and
// evicts idle ones.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*Entry

	markers   auth.MarkerStore
	clientCfg clients.Config
	ttl       time.Duration
	log       *zap.Logger
	stop      chan struct{}
}

func NewManager(clientCfg clients.Config, markers auth.MarkerStore, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		entries:   make(map[string]*Entry),
		markers:   markers,
		clientCfg: clientCfg,
		ttl:       ttl,
		log:       log,
		stop:      make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// Close stops the background eviction loop. Live entries stay usable.
func (m *Manager) Close() {
	close(m.stop)
}

// GetOrCreate returns the entry for id, building one when the id is
// unknown (including after a restart, in which case persisted session
// markers are restored). An empty id gets a fresh session.
func (m *Manager) GetOrCreate(ctx context.Context, id string) *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if entry, ok := m.entries[id]; ok {
			entry.lastSeen = time.Now()
			return entry
		}
	} else {
		id = uuid.NewString()
	}

	entry := m.build(ctx, id)
	m.entries[id] = entry
	monitoring.ActiveSessions.Set(float64(len(m.entries)))
	m.log.Debug("Session created", zap.String("session_id", id))
	return entry
}

func (m *Manager) build(ctx context.Context, id string) *Entry {
	markers := auth.NewPrefixedMarkerStore("session:"+id, m.markers)
	authSess := auth.NewSession(markers, m.ttl, m.log)
	authSess.Restore(ctx)

	entry := &Entry{
		ID:       id,
		Cart:     cart.NewStore(),
		Auth:     authSess,
		API:      clients.NewBackendClient(m.clientCfg, authSess, m.log),
		lastSeen: time.Now(),
	}

	entry.Cart.Subscribe(func() {
		m.log.Debug("Cart updated",
			zap.String("session_id", id),
			zap.Int("lines", entry.Cart.Len()),
			zap.Float64("total", entry.Cart.Total()),
		)
	})
	return entry
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) evictLoop() {
	interval := m.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for id, entry := range m.entries {
				if now.Sub(entry.lastSeen) > m.ttl {
					delete(m.entries, id)
					m.log.Debug("Session evicted", zap.String("session_id", id))
				}
			}
			monitoring.ActiveSessions.Set(float64(len(m.entries)))
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}
