package scanner

import (
	"context"
	"time"

	"github.com/Serdar715/sinkprobe/internal/analysis"
	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/report"
	"github.com/rs/zerolog"
)

// InjectionState is a step of the per-payload injection run
type InjectionState int

const (
	StateStart InjectionState = iota
	StateNavigatedFresh
	StateSandboxReady
	StateRawInjected
	StateRawObserved
	StateCleanInjected
	StateCleanObserved
	StateRecorded
	StateFailed
)

func (s InjectionState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateNavigatedFresh:
		return "navigated-fresh"
	case StateSandboxReady:
		return "sandbox-ready"
	case StateRawInjected:
		return "raw-injected"
	case StateRawObserved:
		return "raw-observed"
	case StateCleanInjected:
		return "clean-injected"
	case StateCleanObserved:
		return "clean-observed"
	case StateRecorded:
		return "recorded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InjectionStrategy reloads the target for every payload, assigns the payload
// raw and then sanitized to an off-screen sandbox, and asks the signal whether
// either assignment executed script.
type InjectionStrategy struct {
	target    string
	sanitizer *SanitizerSource
	signal    ExecutionSignal
	assignJS  string
	settle    time.Duration
	snippet   int
}

// InjectionOptions configures an InjectionStrategy
type InjectionOptions struct {
	Target    string
	Sanitizer *SanitizerSource
	Signal    ExecutionSignal
	Sink      config.Sink
	Settle    time.Duration
	Snippet   int
}

// NewInjectionStrategy creates the DOM injection strategy
func NewInjectionStrategy(opts InjectionOptions) *InjectionStrategy {
	assignJS := jsAssignInnerHTML
	if opts.Sink == config.SinkFragment {
		assignJS = jsAssignFragment
	}
	if opts.Signal == nil {
		opts.Signal = NewHookSignal()
	}
	if opts.Snippet <= 0 {
		opts.Snippet = DefaultSnippet
	}

	return &InjectionStrategy{
		target:    opts.Target,
		sanitizer: opts.Sanitizer,
		signal:    opts.Signal,
		assignJS:  assignJS,
		settle:    opts.Settle,
		snippet:   opts.Snippet,
	}
}

func (i *InjectionStrategy) Mode() config.ScanMode { return config.ModeInjection }

// Probe drives one payload through the injection states. The first failing
// step ends the run with an ErrorRecord naming the state being entered.
func (i *InjectionStrategy) Probe(ctx context.Context, s Surface, payload string) report.Record {
	run := &injectionRun{
		strategy: i,
		surface:  s,
		payload:  payload,
		state:    StateStart,
		record: &report.InjectionRecord{
			Mode:    config.ModeInjection,
			Payload: payload,
		},
	}
	return run.execute(ctx)
}

type injectionStep struct {
	next InjectionState
	op   string
	fn   func(ctx context.Context) error
}

// injectionRun holds the state of one payload
type injectionRun struct {
	strategy *InjectionStrategy
	surface  Surface
	payload  string
	state    InjectionState

	rawHTML   string
	clean     *string
	cleanHTML string

	record *report.InjectionRecord
}

func (r *injectionRun) execute(ctx context.Context) report.Record {
	steps := []injectionStep{
		{StateNavigatedFresh, "navigate", r.navigate},
		{StateSandboxReady, "prepare-sandbox", r.prepare},
		{StateRawInjected, "inject-raw", r.injectRaw},
		{StateRawObserved, "observe-raw", r.observeRaw},
		{StateCleanInjected, "inject-clean", r.injectClean},
		{StateCleanObserved, "observe-clean", r.observeClean},
		{StateRecorded, "record", r.finish},
	}

	for _, step := range steps {
		err := ctx.Err()
		if err == nil {
			err = step.fn(ctx)
		}
		if err != nil {
			r.state = StateFailed
			pe := &ProbeError{
				Mode:      config.ModeInjection,
				Payload:   r.payload,
				State:     step.next.String(),
				Operation: step.op,
				Cause:     err,
			}
			return pe.Record()
		}
		r.state = step.next
	}
	return r.record
}

func (r *injectionRun) navigate(ctx context.Context) error {
	status, err := r.surface.Navigate(ctx, r.strategy.target)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Int("status", status).Msg("Target reloaded")
	return nil
}

func (r *injectionRun) prepare(ctx context.Context) error {
	// a load failure surfaces in the clean phase as sanitizer-not-loaded
	_ = r.strategy.sanitizer.Load(ctx, r.surface)

	if err := r.strategy.signal.Install(ctx, r.surface); err != nil {
		return err
	}

	res, err := r.surface.Eval(ctx, jsRebuildSandbox, SandboxID)
	if err != nil {
		return err
	}
	if !res.Bool() {
		return ErrSandboxMissing
	}
	return nil
}

func (r *injectionRun) injectRaw(ctx context.Context) error {
	if err := r.strategy.signal.Reset(ctx, r.surface); err != nil {
		return err
	}
	tag, err := r.assign(ctx, r.payload)
	if err != nil {
		return err
	}
	r.record.RawResult.Error = tag
	return nil
}

func (r *injectionRun) observeRaw(ctx context.Context) error {
	alerted, html, tag, err := r.observe(ctx)
	if err != nil {
		return err
	}
	r.rawHTML = html
	r.record.RawResult.Alerted = alerted
	if r.record.RawResult.Error == "" {
		r.record.RawResult.Error = tag
	}
	r.record.RawResult.HTML = analysis.Prefix(html, r.strategy.snippet)
	return nil
}

func (r *injectionRun) injectClean(ctx context.Context) error {
	// the raw payload may have removed or rewritten the sandbox
	res, err := r.surface.Eval(ctx, jsRebuildSandbox, SandboxID)
	if err != nil {
		return err
	}
	if !res.Bool() {
		return ErrSandboxMissing
	}
	if err := r.strategy.signal.Reset(ctx, r.surface); err != nil {
		return err
	}

	clean, err := r.strategy.sanitizer.Sanitize(ctx, r.surface, r.payload)
	if err != nil {
		tag, ok := SanitizeTag(err)
		if !ok {
			return err
		}
		r.record.CleanResult.Error = tag
		// clear the raw markup so the clean phase never observes it
		_, err = r.assign(ctx, "")
		return err
	}

	r.clean = &clean
	r.record.CleanResult.Clean = &clean
	tag, err := r.assign(ctx, clean)
	if err != nil {
		return err
	}
	r.record.CleanResult.Error = tag
	return nil
}

func (r *injectionRun) observeClean(ctx context.Context) error {
	alerted, html, tag, err := r.observe(ctx)
	if err != nil {
		return err
	}
	r.cleanHTML = html
	r.record.CleanResult.Alerted = alerted
	if r.record.CleanResult.Error == "" {
		r.record.CleanResult.Error = tag
	}
	r.record.CleanResult.HTML = analysis.Prefix(html, r.strategy.snippet)
	return nil
}

func (r *injectionRun) finish(ctx context.Context) error {
	r.record.RawResult.Residual = analysis.Residual(r.rawHTML)
	if r.clean != nil {
		r.record.CleanResult.Residual = analysis.Residual(r.cleanHTML)
		r.record.CleanResult.Stripped = analysis.Stripped(r.payload, *r.clean)
	}
	r.record.ReferenceClean = analysis.ReferenceSanitize(r.payload)
	return nil
}

// assign writes html through the configured sink. A sink exception is a phase
// outcome returned as a tag; a missing sandbox or surface failure is an error.
func (r *injectionRun) assign(ctx context.Context, html string) (string, error) {
	res, err := r.surface.Eval(ctx, r.strategy.assignJS, SandboxID, html)
	if err != nil {
		return "", err
	}
	if res.Get("missing").Bool() {
		return "", ErrSandboxMissing
	}
	if msg := res.Get("error"); !msg.Nil() {
		return TagAssignError + msg.Str(), nil
	}
	return "", nil
}

// observe waits for the signal and captures the sandbox markup. A sandbox
// removed by the assigned markup is a phase outcome reported as a tag.
func (r *injectionRun) observe(ctx context.Context) (bool, string, string, error) {
	alerted, err := r.strategy.signal.Observe(ctx, r.surface, r.strategy.settle)
	if err != nil {
		return false, "", "", err
	}

	res, err := r.surface.Eval(ctx, jsReadSandbox, SandboxID)
	if err != nil {
		return alerted, "", "", err
	}
	if res.Get("missing").Bool() {
		return alerted, "", TagSandboxRemoved, nil
	}
	return alerted, res.Get("html").Str(), "", nil
}
