package auth

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/monitoring"
)

// Throttle tracks consecutive failed login attempts per key (email)
// and imposes a timed lockout once the threshold is crossed. Lockout
// deadlines are mirrored to the MarkerStore so a restart does not
// lift an active lock.
type Throttle struct {
	mu        sync.Mutex
	entries   map[string]*throttleEntry
	threshold int
	duration  time.Duration
	clock     Clock
	markers   MarkerStore
	log       *zap.Logger
	stop      chan struct{}
}

type throttleEntry struct {
	failures    int
	lockedUntil time.Time
	lastSeen    time.Time
}

func NewThrottle(threshold int, duration time.Duration, clock Clock, markers MarkerStore, log *zap.Logger) *Throttle {
	if clock == nil {
		clock = NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	t := &Throttle{
		entries:   make(map[string]*throttleEntry),
		threshold: threshold,
		duration:  duration,
		clock:     clock,
		markers:   markers,
		log:       log,
		stop:      make(chan struct{}),
	}
	go t.sweepLoop()
	return t
}

// Close stops the background sweep.
func (t *Throttle) Close() {
	close(t.stop)
}

func (t *Throttle) sweepLoop() {
	interval := t.duration
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.sweep()
		case <-t.stop:
			return
		}
	}
}

// sweep drops entries that are not locked and have been idle for a
// full lockout window, so keys that never cross the threshold cannot
// grow the map without bound.
func (t *Throttle) sweep() {
	now := t.clock.Now()

	t.mu.Lock()
	for key, entry := range t.entries {
		if !entry.lockedUntil.IsZero() && now.Before(entry.lockedUntil) {
			continue
		}
		if now.Sub(entry.lastSeen) > t.duration {
			delete(t.entries, key)
		}
	}
	t.mu.Unlock()
}

func lockoutMarkerKey(key string) string {
	return MarkerLockoutUntil + ":" + key
}

// RecordFailure increments the failure counter for the key. Crossing
// the threshold sets the lockout deadline and resets the counter.
// Returns true when this failure triggered a lockout.
func (t *Throttle) RecordFailure(ctx context.Context, key string) bool {
	t.mu.Lock()
	entry := t.entries[key]
	if entry == nil {
		entry = &throttleEntry{}
		t.entries[key] = entry
	}
	entry.failures++
	entry.lastSeen = t.clock.Now()
	locked := entry.failures >= t.threshold
	if locked {
		entry.failures = 0
		entry.lockedUntil = t.clock.Now().Add(t.duration)
	}
	until := entry.lockedUntil
	t.mu.Unlock()

	if !locked {
		return false
	}

	monitoring.LoginLockoutsTotal.Inc()
	if t.markers != nil {
		millis := strconv.FormatInt(until.UnixMilli(), 10)
		if err := t.markers.Set(ctx, lockoutMarkerKey(key), millis, t.duration); err != nil {
			t.log.Warn("Failed to persist lockout marker", zap.String("key", key), zap.Error(err))
		}
	}
	return true
}

// IsLocked reports whether the key is inside an active lockout window,
// lazily clearing stale state.
func (t *Throttle) IsLocked(ctx context.Context, key string) bool {
	return t.remaining(ctx, key) > 0
}

// RemainingSeconds returns the seconds left in the lockout window,
// rounded up, or 0 when unlocked.
func (t *Throttle) RemainingSeconds(ctx context.Context, key string) int {
	left := t.remaining(ctx, key)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func (t *Throttle) remaining(ctx context.Context, key string) time.Duration {
	now := t.clock.Now()

	t.mu.Lock()
	entry := t.entries[key]
	if entry != nil && !entry.lockedUntil.IsZero() {
		if now.Before(entry.lockedUntil) {
			left := entry.lockedUntil.Sub(now)
			t.mu.Unlock()
			return left
		}
		// Stale lock: window elapsed
		entry.lockedUntil = time.Time{}
		entry.failures = 0
		t.mu.Unlock()
		t.clearMarker(ctx, key)
		return 0
	}
	t.mu.Unlock()

	// No in-memory lock; a persisted marker may survive from a
	// previous process.
	if t.markers == nil {
		return 0
	}
	value, err := t.markers.Get(ctx, lockoutMarkerKey(key))
	if err != nil || value == "" {
		return 0
	}
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	until := time.UnixMilli(millis)
	if !now.Before(until) {
		t.clearMarker(ctx, key)
		return 0
	}

	t.mu.Lock()
	if t.entries[key] == nil {
		t.entries[key] = &throttleEntry{}
	}
	t.entries[key].lockedUntil = until
	t.entries[key].lastSeen = now
	t.mu.Unlock()

	return until.Sub(now)
}

func (t *Throttle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// RecordSuccess resets the counter and clears any residual lock marker.
func (t *Throttle) RecordSuccess(ctx context.Context, key string) {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
	t.clearMarker(ctx, key)
}

func (t *Throttle) clearMarker(ctx context.Context, key string) {
	if t.markers == nil {
		return
	}
	if err := t.markers.Del(ctx, lockoutMarkerKey(key)); err != nil {
		t.log.Warn("Failed to clear lockout marker", zap.String("key", key), zap.Error(err))
	}
}
