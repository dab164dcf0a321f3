// Package scanner - Interface definitions for the probing components
package scanner

import (
	"context"
	"time"

	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/report"
	"github.com/ysmood/gson"
)

// Surface is the rendering page a scan drives. browser.Session implements it.
type Surface interface {
	// Navigate loads url and returns the main document status (0 if none)
	Navigate(ctx context.Context, url string) (int, error)

	// AddScriptTag loads a script by url, or inline content when url is empty
	AddScriptTag(ctx context.Context, url, content string) error

	// Eval calls a JS function expression with args
	Eval(ctx context.Context, js string, args ...interface{}) (gson.JSON, error)

	// Expose binds a Go callback to window[name] for the page lifetime
	Expose(ctx context.Context, name string, fn func(gson.JSON)) error

	// OnDialog subscribes to native alert/confirm/prompt dialogs
	OnDialog(fn func(message string))

	Close() error
}

// Strategy probes one payload against the surface and always returns exactly one record
type Strategy interface {
	Mode() config.ScanMode
	Probe(ctx context.Context, s Surface, payload string) report.Record
}

// ExecutionSignal detects whether injected script ran. Install is called after
// every navigation, Reset before every injection.
type ExecutionSignal interface {
	Name() string
	Install(ctx context.Context, s Surface) error
	Reset(ctx context.Context, s Surface) error
	// Observe waits settle and reports whether execution was seen since Reset
	Observe(ctx context.Context, s Surface, settle time.Duration) (bool, error)
}

// ReflectionDetector detects if and how a probe is reflected in response
type ReflectionDetector interface {
	// Detect checks if probe is reflected in body
	// Returns: isReflected, format (raw/url-encoded/html-encoded)
	Detect(body, probe string) (bool, string)
}
