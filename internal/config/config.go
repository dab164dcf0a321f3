package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel configuration errors
var (
	// ErrUnknownMode indicates the --mode value is not a known scan mode
	ErrUnknownMode = errors.New("unknown scan mode")

	// ErrMissingMarker indicates a reflected-mode URL without the PAYLOAD token
	ErrMissingMarker = errors.New("target URL must contain the PAYLOAD marker")
)

const (
	// PayloadMarker is replaced by the encoded payload in reflected mode
	PayloadMarker = "PAYLOAD"

	// DefaultSanitizerURL is the DOMPurify build loaded into the target page
	DefaultSanitizerURL    = "https://unpkg.com/dompurify@2.4.0/dist/purify.min.js"
	DefaultSanitizerGlobal = "DOMPurify"

	DefaultOutputFile = "results.json"
)

// ScanConfig holds all configuration for one sinkprobe run
type ScanConfig struct {
	Mode        ScanMode
	TargetURL   string
	PayloadFile string

	// Wait is the requested inter-payload delay; the effective throttle is capped at MaxThrottle
	Wait       time.Duration
	Settle     time.Duration
	NavTimeout time.Duration

	Sink   Sink
	Signal SignalKind

	SanitizerURL    string
	SanitizerFile   string
	SanitizerGlobal string

	// SnippetLimit bounds the markup prefix captured per phase
	SnippetLimit int

	BrowserBin  string
	VisibleMode bool

	OutputFile   string
	OutputFormat string
	NoTable      bool
	Verbose      bool
	Silent       bool
}

// MaxThrottle bounds the delay between two payloads
const MaxThrottle = 500 * time.Millisecond

// Throttle returns the delay applied between payloads.
func (c *ScanConfig) Throttle() time.Duration {
	if c.Wait <= 0 {
		return 0
	}
	if c.Wait > MaxThrottle {
		return MaxThrottle
	}
	return c.Wait
}

// DefaultConfig returns a default scan configuration
func DefaultConfig() *ScanConfig {
	return &ScanConfig{
		Mode:            ModeUnknown,
		Wait:            1000 * time.Millisecond,
		Settle:          50 * time.Millisecond,
		NavTimeout:      30 * time.Second,
		Sink:            SinkInnerHTML,
		Signal:          SignalHook,
		SanitizerURL:    DefaultSanitizerURL,
		SanitizerGlobal: DefaultSanitizerGlobal,
		SnippetLimit:    200,
		OutputFile:      DefaultOutputFile,
		OutputFormat:    "json",
	}
}

var validFormats = []string{"json", "yaml", "markdown", "md", "html"}

// Validate checks the fields that cannot be expressed by flag types alone.
// Mode is checked by ParseMode before the config is built.
func (c *ScanConfig) Validate() error {
	if c.TargetURL == "" {
		return errors.New("target URL is required")
	}
	if !strings.HasPrefix(c.TargetURL, "http://") && !strings.HasPrefix(c.TargetURL, "https://") &&
		!strings.HasPrefix(c.TargetURL, "file://") {
		return fmt.Errorf("invalid target URL %q: use an http://, https:// or file:// URL", c.TargetURL)
	}
	if c.Mode == ModeReflected && !strings.Contains(c.TargetURL, PayloadMarker) {
		return ErrMissingMarker
	}
	if c.Settle < 0 || c.Wait < 0 {
		return errors.New("wait and settle must not be negative")
	}
	if c.NavTimeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.SnippetLimit <= 0 {
		return errors.New("snippet limit must be positive")
	}
	if c.SanitizerGlobal == "" {
		return errors.New("sanitizer global name must not be empty")
	}

	found := false
	for _, f := range validFormats {
		if strings.EqualFold(c.OutputFormat, f) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid output format: %s. Valid formats: %s", c.OutputFormat, strings.Join(validFormats, ", "))
	}
	return nil
}
