package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCooldownWithinThrottleCap(t *testing.T) {
	cfg := DefaultSurfaceHealthConfig()
	assert.LessOrEqual(t, cfg.Cooldown, config.MaxThrottle)
	assert.Equal(t, 3, cfg.MaxFailures)

	h := NewSurfaceHealth(cfg)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return clock }
	for i := 0; i < cfg.MaxFailures; i++ {
		h.RecordFailure()
	}
	assert.Equal(t, CircuitOpen, h.State())
	assert.Equal(t, config.MaxThrottle, h.Wait())
}

func TestSurfaceHealthCircuit(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := NewSurfaceHealth(SurfaceHealthConfig{MaxFailures: 2, Cooldown: time.Second, RecoveryThreshold: 1})
	h.now = func() time.Time { return clock }

	assert.Equal(t, CircuitClosed, h.State())
	h.RecordFailure()
	assert.Equal(t, CircuitClosed, h.State())
	assert.Zero(t, h.Wait())

	h.RecordFailure()
	assert.Equal(t, CircuitOpen, h.State())
	assert.Equal(t, time.Second, h.Wait())

	clock = clock.Add(400 * time.Millisecond)
	assert.Equal(t, 600*time.Millisecond, h.Wait())

	clock = clock.Add(time.Second)
	assert.Equal(t, CircuitHalfOpen, h.State())
	assert.Zero(t, h.Wait())

	h.RecordSuccess()
	assert.Equal(t, CircuitClosed, h.State())
	assert.Zero(t, h.FailureCount())
}

func TestSurfaceHealthSuccessResetsCount(t *testing.T) {
	h := NewSurfaceHealth(DefaultSurfaceHealthConfig())
	h.RecordFailure()
	h.RecordFailure()
	h.RecordSuccess()
	assert.Zero(t, h.FailureCount(), "failures must be consecutive")
}

func TestCircuitStateNames(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestDriverPausesWhileCircuitOpen(t *testing.T) {
	surface := newFakeSurface()
	surface.navErr = errors.New("net::ERR_CONNECTION_REFUSED")

	health := NewSurfaceHealth(SurfaceHealthConfig{MaxFailures: 2, Cooldown: 80 * time.Millisecond})

	start := time.Now()
	records, err := NewDriver(testConfig(config.ModeInjection, "http://t/"), surface, nil).
		WithHealth(health).
		Run(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	require.Len(t, records, 3, "an open circuit delays payloads, it never drops them")
	for _, rec := range records {
		assert.Equal(t, report.VerdictError, rec.Verdict())
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestDriverCancelDuringCooldown(t *testing.T) {
	surface := newFakeSurface()
	surface.navErr = errors.New("target closed")

	ctx, cancel := context.WithCancel(context.Background())
	surface.afterNav = func() {
		if surface.navigations == 1 {
			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()
		}
	}

	health := NewSurfaceHealth(SurfaceHealthConfig{MaxFailures: 1, Cooldown: time.Hour})
	records, err := NewDriver(testConfig(config.ModeInjection, "http://t/"), surface, nil).
		WithHealth(health).
		Run(ctx, []string{"a", "b"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, records, 1)
}
