package scanner

import (
	"context"
	"strings"

	"github.com/Serdar715/sinkprobe/internal/analysis"
	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/payloads"
	"github.com/Serdar715/sinkprobe/internal/report"
	"github.com/rs/zerolog"
)

// ReflectedStrategy substitutes each payload into the target URL, loads the
// page and reports whether the payload came back verbatim and what the
// sanitizer makes of it.
type ReflectedStrategy struct {
	template  string
	sanitizer *SanitizerSource
	detector  ReflectionDetector
}

// NewReflectedStrategy creates the strategy for a URL template containing config.PayloadMarker
func NewReflectedStrategy(template string, sanitizer *SanitizerSource) *ReflectedStrategy {
	return &ReflectedStrategy{
		template:  template,
		sanitizer: sanitizer,
		detector:  NewReflectionDetector(),
	}
}

func (r *ReflectedStrategy) Mode() config.ScanMode { return config.ModeReflected }

// BuildURL replaces every marker occurrence with the URI-component encoded payload
func (r *ReflectedStrategy) BuildURL(payload string) string {
	return strings.ReplaceAll(r.template, config.PayloadMarker, payloads.EncodeURIComponent(payload))
}

// Probe runs one payload. Navigation and evaluation failures become an ErrorRecord.
func (r *ReflectedStrategy) Probe(ctx context.Context, s Surface, payload string) report.Record {
	target := r.BuildURL(payload)
	fail := func(op string, err error) report.Record {
		pe := &ProbeError{Mode: config.ModeReflected, Payload: payload, Target: target, Operation: op, Cause: err}
		return pe.Record()
	}

	status, err := s.Navigate(ctx, target)
	if err != nil {
		return fail("navigate", err)
	}
	if status == 0 {
		zerolog.Ctx(ctx).Debug().Str("target", target).Msg("No main document response observed")
	}

	// a load failure surfaces below as sanitizer-not-loaded
	_ = r.sanitizer.Load(ctx, s)

	result := report.SanitizeResult{}
	clean, err := r.sanitizer.Sanitize(ctx, s, payload)
	if err != nil {
		tag, ok := SanitizeTag(err)
		if !ok {
			return fail("sanitize", err)
		}
		result.Error = tag
	} else {
		result.Clean = &clean
		result.Residual = analysis.Residual(clean)
		result.Stripped = analysis.Stripped(payload, clean)
	}

	doc, err := s.Eval(ctx, jsOuterHTML)
	if err != nil {
		return fail("read-document", err)
	}
	body := doc.Str()
	result.BodyContains = strings.Contains(body, payload)
	if found, format := r.detector.Detect(body, payload); found {
		result.Reflection = format
	}
	result.ReferenceClean = analysis.ReferenceSanitize(payload)

	return &report.ReflectedRecord{
		Mode:           config.ModeReflected,
		Payload:        payload,
		Target:         target,
		Status:         report.HTTPStatus(status),
		SanitizeResult: result,
	}
}
