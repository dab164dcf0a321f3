package config

import (
	"fmt"
	"strings"
)

// ScanMode selects the attack surface for the whole run
type ScanMode int

const (
	ModeUnknown ScanMode = iota
	// ModeReflected substitutes the payload into the target URL
	ModeReflected
	// ModeInjection assigns the payload to an in-page sandbox sink
	ModeInjection
)

// ParseMode maps a --mode value to a ScanMode. The short report names
// (param, inject) are accepted alongside the long ones.
func ParseMode(s string) (ScanMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reflected", "param":
		return ModeReflected, nil
	case "dom", "inject", "injection":
		return ModeInjection, nil
	default:
		return ModeUnknown, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the spelling used in reports.
func (m ScanMode) String() string {
	switch m {
	case ModeReflected:
		return "param"
	case ModeInjection:
		return "inject"
	default:
		return "unknown"
	}
}

// MarshalText keeps reports and yaml output on the short names.
func (m ScanMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Sink is the markup-rendering property under test in injection mode
type Sink string

const (
	// SinkInnerHTML assigns element.innerHTML; <script> elements stay inert
	SinkInnerHTML Sink = "innerHTML"
	// SinkFragment parses through Range.createContextualFragment, which runs scripts
	SinkFragment Sink = "fragment"
)

// ParseSink validates a --sink value
func ParseSink(s string) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "innerhtml", "":
		return SinkInnerHTML, nil
	case "fragment":
		return SinkFragment, nil
	default:
		return "", fmt.Errorf("invalid sink %q (expected innerHTML or fragment)", s)
	}
}

// SignalKind names an execution oracle implementation
type SignalKind string

const (
	SignalHook    SignalKind = "hook"
	SignalBinding SignalKind = "binding"
	SignalDialog  SignalKind = "dialog"
)

// ParseSignal validates a --signal value
func ParseSignal(s string) (SignalKind, error) {
	switch SignalKind(strings.ToLower(strings.TrimSpace(s))) {
	case SignalHook, "":
		return SignalHook, nil
	case SignalBinding:
		return SignalBinding, nil
	case SignalDialog:
		return SignalDialog, nil
	default:
		return "", fmt.Errorf("invalid signal %q (expected hook, binding or dialog)", s)
	}
}
