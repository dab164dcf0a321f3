package report

import (
	"encoding/json"

	"github.com/Serdar715/sinkprobe/internal/config"
)

// Record is one outcome unit of a run. Exactly one record exists per payload.
type Record interface {
	RecordMode() config.ScanMode
	RecordPayload() string
	// Verdict is a one-word classification for the summary table
	Verdict() string
}

// Verdicts
const (
	VerdictError       = "error"
	VerdictBypass      = "bypass"
	VerdictNeutralized = "neutralized"
	VerdictInert       = "inert"
	VerdictReflected   = "reflected"
	VerdictResidual    = "residual"
	VerdictClean       = "not-reflected"
)

// NoResponse is written in place of a status when no main document response was seen
const NoResponse = "no-response"

// HTTPStatus is the main document status; zero means no response was observed
type HTTPStatus int

// MarshalJSON writes "no-response" for a zero status
func (s HTTPStatus) MarshalJSON() ([]byte, error) {
	if s == 0 {
		return json.Marshal(NoResponse)
	}
	return json.Marshal(int(s))
}

// MarshalYAML mirrors MarshalJSON
func (s HTTPStatus) MarshalYAML() (interface{}, error) {
	if s == 0 {
		return NoResponse, nil
	}
	return int(s), nil
}

// SanitizeResult is the reflected-mode sanitizer report
type SanitizeResult struct {
	Clean          *string  `json:"clean,omitempty" yaml:"clean,omitempty"`
	BodyContains   bool     `json:"bodyContains" yaml:"bodyContains"`
	Reflection     string   `json:"reflection,omitempty" yaml:"reflection,omitempty"`
	Residual       []string `json:"residual,omitempty" yaml:"residual,omitempty"`
	Stripped       []string `json:"stripped,omitempty" yaml:"stripped,omitempty"`
	ReferenceClean string   `json:"referenceClean,omitempty" yaml:"referenceClean,omitempty"`
	Error          string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// ReflectedRecord is produced by the reflected-parameter strategy
type ReflectedRecord struct {
	Mode           config.ScanMode `json:"mode" yaml:"mode"`
	Payload        string          `json:"payload" yaml:"payload"`
	Target         string          `json:"target" yaml:"target"`
	Status         HTTPStatus      `json:"status" yaml:"status"`
	SanitizeResult SanitizeResult  `json:"sanitizeResult" yaml:"sanitizeResult"`
}

func (r *ReflectedRecord) RecordMode() config.ScanMode { return r.Mode }
func (r *ReflectedRecord) RecordPayload() string       { return r.Payload }

func (r *ReflectedRecord) Verdict() string {
	switch {
	case len(r.SanitizeResult.Residual) > 0:
		return VerdictResidual
	case r.SanitizeResult.BodyContains:
		return VerdictReflected
	default:
		return VerdictClean
	}
}

// PhaseReport is the outcome of one injection phase (raw or sanitized)
type PhaseReport struct {
	Alerted  bool     `json:"alerted" yaml:"alerted"`
	HTML     string   `json:"html" yaml:"html"`
	Clean    *string  `json:"clean,omitempty" yaml:"clean,omitempty"`
	Residual []string `json:"residual,omitempty" yaml:"residual,omitempty"`
	Stripped []string `json:"stripped,omitempty" yaml:"stripped,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// InjectionRecord is produced by the DOM-injection strategy
type InjectionRecord struct {
	Mode           config.ScanMode `json:"mode" yaml:"mode"`
	Payload        string          `json:"payload" yaml:"payload"`
	RawResult      PhaseReport     `json:"rawResult" yaml:"rawResult"`
	CleanResult    PhaseReport     `json:"cleanResult" yaml:"cleanResult"`
	ReferenceClean string          `json:"referenceClean,omitempty" yaml:"referenceClean,omitempty"`
}

func (r *InjectionRecord) RecordMode() config.ScanMode { return r.Mode }
func (r *InjectionRecord) RecordPayload() string       { return r.Payload }

func (r *InjectionRecord) Verdict() string {
	switch {
	case r.CleanResult.Alerted:
		return VerdictBypass
	case r.RawResult.Alerted:
		return VerdictNeutralized
	case len(r.CleanResult.Residual) > 0:
		return VerdictResidual
	default:
		return VerdictInert
	}
}

// ErrorRecord replaces the mode-specific record when processing a payload failed
type ErrorRecord struct {
	Mode    config.ScanMode `json:"mode" yaml:"mode"`
	Payload string          `json:"payload" yaml:"payload"`
	Target  string          `json:"target,omitempty" yaml:"target,omitempty"`
	State   string          `json:"state,omitempty" yaml:"state,omitempty"`
	Error   string          `json:"error" yaml:"error"`
}

func (r *ErrorRecord) RecordMode() config.ScanMode { return r.Mode }
func (r *ErrorRecord) RecordPayload() string       { return r.Payload }
func (r *ErrorRecord) Verdict() string             { return VerdictError }
