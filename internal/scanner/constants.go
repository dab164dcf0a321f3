package scanner

import (
	"time"

	"github.com/Serdar715/sinkprobe/internal/report"
)

const (
	// Default configuration values
	DefaultSettle  = 50 * time.Millisecond
	DefaultSnippet = 200

	// SandboxID is the id of the off-screen element payloads are injected into
	SandboxID = "__dompurify_scan_sandbox"

	// Page-global names, suffixed with a per-run uuid
	AlertFlagPrefix = "__sp_alerted_"
	BindingPrefix   = "__sp_alert_"

	// Phase error tags written to reports
	TagSanitizerNotLoaded = report.SanitizerNotLoaded
	TagSanitizeError      = "sanitize-error:"
	TagAssignError        = "innerHTML-assign-error:"
	TagSandboxRemoved     = "sandbox-removed"

	// Reflection formats
	FormatRaw           = "raw"
	FormatDecoded       = "decoded"
	FormatURLEncoded    = "url-encoded"
	FormatHTMLEncoded   = "html-encoded"
	FormatDoubleEncoded = "double-encoded"
	FormatFuzzy         = "fuzzy"

	// Console display
	MaxPayloadDisplay = 60
)
