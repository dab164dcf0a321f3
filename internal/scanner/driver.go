package scanner

import (
	"context"
	"fmt"

	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// Driver runs every payload through one strategy, strictly in input order,
// and collects exactly one record per payload.
type Driver struct {
	cfg      *config.ScanConfig
	surface  Surface
	progress ProgressReporter
	strategy Strategy
	health   *SurfaceHealth
}

// NewDriver creates a driver. A nil progress reporter is treated as silent.
func NewDriver(cfg *config.ScanConfig, surface Surface, progress ProgressReporter) *Driver {
	if progress == nil {
		progress = NewSilentProgress()
	}
	return &Driver{
		cfg:      cfg,
		surface:  surface,
		progress: progress,
		health:   NewSurfaceHealth(DefaultSurfaceHealthConfig()),
	}
}

// WithStrategy replaces the strategy selected from the configured mode
func (d *Driver) WithStrategy(s Strategy) *Driver {
	d.strategy = s
	return d
}

// WithHealth replaces the default circuit breaker
func (d *Driver) WithHealth(h *SurfaceHealth) *Driver {
	d.health = h
	return d
}

// Run probes payloads sequentially. When ctx is cancelled the loop stops before
// the next payload and the records collected so far are returned with ctx's error.
func (d *Driver) Run(ctx context.Context, payloads []string) ([]report.Record, error) {
	strategy := d.strategy
	if strategy == nil {
		var err error
		strategy, err = NewStrategy(d.cfg)
		if err != nil {
			return nil, err
		}
	}

	mode := strategy.Mode()
	agg := report.NewAggregator(len(payloads))
	throttle := d.cfg.Throttle()

	d.progress.Start(mode, d.cfg.TargetURL, len(payloads))

	var runErr error
	for i, payload := range payloads {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if wait := d.health.Wait(); wait > 0 {
			log.Warn().Int("failures", d.health.FailureCount()).Dur("cooldown", wait).
				Msg("Surface keeps failing, pausing before the next payload")
			if err := sleepCtx(ctx, wait); err != nil {
				runErr = err
				break
			}
		}

		rec := d.probe(ctx, strategy, i, payload)
		if rec.Verdict() == report.VerdictError {
			d.health.RecordFailure()
		} else {
			d.health.RecordSuccess()
		}
		agg.Add(rec)
		d.progress.Payload(i+1, len(payloads), rec)

		if i < len(payloads)-1 {
			if err := sleepCtx(ctx, throttle); err != nil {
				runErr = err
				break
			}
		}
	}

	d.progress.Finish(agg.Summary(), runErr != nil)
	return agg.Records(), runErr
}

// probe runs one payload, converting a panic into an ErrorRecord
func (d *Driver) probe(ctx context.Context, strategy Strategy, index int, payload string) report.Record {
	logger := log.With().
		Str("mode", strategy.Mode().String()).
		Int("index", index).
		Str("payload", truncateString(payload, MaxPayloadDisplay)).
		Logger()
	ctx = logger.WithContext(ctx)

	var rec report.Record
	var catcher panics.Catcher
	catcher.Try(func() {
		rec = strategy.Probe(ctx, d.surface, payload)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		logger.Error().Str("stack", string(recovered.Stack)).Msgf("Recovered from panic: %v", recovered.Value)
		return &report.ErrorRecord{
			Mode:    strategy.Mode(),
			Payload: payload,
			Error:   fmt.Sprintf("panic: %v", recovered.Value),
		}
	}

	if rec == nil {
		return &report.ErrorRecord{
			Mode:    strategy.Mode(),
			Payload: payload,
			Error:   "strategy returned no record",
		}
	}

	if errRec, ok := rec.(*report.ErrorRecord); ok {
		logger.Warn().Str("state", errRec.State).Msg(errRec.Error)
	} else {
		logger.Debug().Str("verdict", rec.Verdict()).Msg("Payload probed")
	}
	return rec
}
