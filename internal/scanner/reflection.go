// Package scanner - Reflection detection implementation
package scanner

import (
	"html"
	"net/url"
	"strings"

	"github.com/Serdar715/sinkprobe/internal/payloads"
)

// DefaultReflectionDetector classifies how a payload came back in a rendered document
type DefaultReflectionDetector struct {
	fuzzy *FuzzyMatcher
}

// NewReflectionDetector creates a new DefaultReflectionDetector
func NewReflectionDetector() *DefaultReflectionDetector {
	return &DefaultReflectionDetector{fuzzy: NewFuzzyMatcher()}
}

// Detect checks if probe is reflected in body verbatim or in one of the
// common encodings, falling back to a near-copy of the probe
func (d *DefaultReflectionDetector) Detect(body, probe string) (bool, string) {
	if probe == "" {
		return false, ""
	}

	if strings.Contains(body, probe) {
		return true, FormatRaw
	}

	decoded, err := url.QueryUnescape(probe)
	if err == nil && decoded != probe && strings.Contains(body, decoded) {
		return true, FormatDecoded
	}

	// Both the form encoding and the encoding the probe was sent with
	for _, encoded := range []string{url.QueryEscape(probe), payloads.EncodeURIComponent(probe)} {
		if strings.Contains(body, encoded) {
			return true, FormatURLEncoded
		}
	}

	if strings.Contains(body, html.EscapeString(probe)) {
		return true, FormatHTMLEncoded
	}

	if strings.Contains(body, url.QueryEscape(url.QueryEscape(probe))) {
		return true, FormatDoubleEncoded
	}

	if d.fuzzy != nil {
		if _, idx := d.fuzzy.FindFuzzyReflection(body, probe); idx >= 0 {
			return true, FormatFuzzy
		}
	}

	return false, ""
}
