package scanner

import (
	"sync"
	"time"

	"github.com/Serdar715/sinkprobe/internal/config"
)

// SurfaceHealth is a circuit breaker over consecutive payload failures.
// When the surface keeps failing (crashed renderer, target down) the driver
// pauses before the next payload instead of burning through the list.
type SurfaceHealth struct {
	mu            sync.RWMutex
	failures      int
	maxFailures   int
	recovery      int
	cooldown      time.Duration
	lastFailure   time.Time
	consecutiveOK int

	now func() time.Time
}

// SurfaceHealthConfig holds configuration for the health checker.
type SurfaceHealthConfig struct {
	MaxFailures       int           // consecutive failures before opening the circuit
	Cooldown          time.Duration // pause before a half-open attempt
	RecoveryThreshold int           // consecutive successes needed to close the circuit
}

// DefaultSurfaceHealthConfig returns the driver defaults. The cooldown never
// exceeds the inter-payload throttle cap.
func DefaultSurfaceHealthConfig() SurfaceHealthConfig {
	return SurfaceHealthConfig{
		MaxFailures:       3,
		Cooldown:          config.MaxThrottle,
		RecoveryThreshold: 1,
	}
}

// NewSurfaceHealth creates a health checker with the given config
func NewSurfaceHealth(cfg SurfaceHealthConfig) *SurfaceHealth {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}
	if cfg.RecoveryThreshold <= 0 {
		cfg.RecoveryThreshold = 1
	}
	return &SurfaceHealth{
		maxFailures: cfg.MaxFailures,
		recovery:    cfg.RecoveryThreshold,
		cooldown:    cfg.Cooldown,
		now:         time.Now,
	}
}

// CircuitState is the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed means payloads run back to back
	CircuitClosed CircuitState = iota
	// CircuitOpen means the next payload waits for the cooldown
	CircuitOpen
	// CircuitHalfOpen means the cooldown elapsed and the next payload tests recovery
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// State returns the current circuit state
func (h *SurfaceHealth) State() CircuitState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stateLocked()
}

func (h *SurfaceHealth) stateLocked() CircuitState {
	if h.failures < h.maxFailures {
		return CircuitClosed
	}
	if h.now().Sub(h.lastFailure) >= h.cooldown {
		return CircuitHalfOpen
	}
	return CircuitOpen
}

// RecordFailure counts a failed payload and may open the circuit
func (h *SurfaceHealth) RecordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.failures++
	h.lastFailure = h.now()
	h.consecutiveOK = 0
}

// RecordSuccess counts a completed payload. Enough of them close the circuit.
func (h *SurfaceHealth) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.consecutiveOK++
	if h.failures < h.maxFailures || h.consecutiveOK >= h.recovery {
		h.failures = 0
		h.consecutiveOK = 0
	}
}

// FailureCount returns the consecutive failure count
func (h *SurfaceHealth) FailureCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.failures
}

// Wait returns how long to pause before the next payload. Zero unless the circuit is open.
func (h *SurfaceHealth) Wait() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.stateLocked() != CircuitOpen {
		return 0
	}
	return h.cooldown - h.now().Sub(h.lastFailure)
}
