// Package scanner - Progress reporting abstraction
package scanner

import (
	"fmt"
	"sync"

	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/report"
	"github.com/fatih/color"
)

// ProgressReporter receives per-payload outcomes while a scan runs
type ProgressReporter interface {
	// Start announces the run
	Start(mode config.ScanMode, target string, total int)
	// Payload reports the record of payload number index (1-based)
	Payload(index, total int, rec report.Record)
	// Finish outputs the end-of-run tally
	Finish(summary report.Summary, interrupted bool)
}

// ConsoleProgress implements ProgressReporter for terminal output.
// Thread-safe for concurrent reporting.
type ConsoleProgress struct {
	mu      sync.Mutex
	verbose bool
}

// NewConsoleProgress creates a console progress reporter
func NewConsoleProgress(verbose bool) *ConsoleProgress {
	return &ConsoleProgress{verbose: verbose}
}

func (p *ConsoleProgress) Start(mode config.ScanMode, target string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	color.Cyan("[*] Mode: %s", mode)
	color.Cyan("[*] Target: %s", target)
	color.Cyan("[*] Loaded %d payloads", total)
	fmt.Println()
}

func (p *ConsoleProgress) Payload(index, total int, rec report.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("  -> [%d/%d] %s", index, total, truncateString(rec.RecordPayload(), MaxPayloadDisplay))
	verdict := rec.Verdict()

	switch verdict {
	case report.VerdictBypass, report.VerdictResidual:
		color.Red("%s  %s", line, verdict)
	case report.VerdictNeutralized, report.VerdictReflected:
		color.Yellow("%s  %s", line, verdict)
	case report.VerdictError:
		color.White("%s  %s", line, verdict)
	default:
		if p.verbose {
			color.White("%s  %s", line, verdict)
		}
	}

	if errRec, ok := rec.(*report.ErrorRecord); ok {
		color.Yellow("  ! %s", errRec.Error)
	}
}

func (p *ConsoleProgress) Finish(s report.Summary, interrupted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Println()
	if interrupted {
		color.Yellow("[!] Scan interrupted after %d payloads", s.Total)
	}
	color.Cyan("═══════════════════════════════════════════════════════════")
	color.Cyan("                    SCAN SUMMARY")
	color.Cyan("═══════════════════════════════════════════════════════════")
	color.White("  Payloads tested:        %d", s.Total)
	if s.RawExecuted > 0 || s.CleanExecuted > 0 {
		color.Yellow("  Executed unsanitized:   %d", s.RawExecuted)
		color.Green("  Neutralized:            %d", s.Neutralized)
	}
	if s.CleanExecuted > 0 {
		color.Red("  Sanitizer bypasses:     %d", s.CleanExecuted)
	}
	if s.Reflected > 0 {
		color.Yellow("  Reflected verbatim:     %d", s.Reflected)
	}
	if s.Residual > 0 {
		color.Red("  Executable residue:     %d", s.Residual)
	}
	if s.SanitizerMissing > 0 {
		color.Yellow("  Sanitizer not loaded:   %d", s.SanitizerMissing)
	}
	if s.Errors > 0 {
		color.Yellow("  Errors:                 %d", s.Errors)
	}
	color.Cyan("═══════════════════════════════════════════════════════════")
	fmt.Println()
}

// SilentProgress implements ProgressReporter that produces no output.
// Useful for batch processing or testing.
type SilentProgress struct {
	mu    sync.Mutex
	count int
}

// NewSilentProgress creates a silent progress reporter
func NewSilentProgress() *SilentProgress {
	return &SilentProgress{}
}

func (p *SilentProgress) Start(mode config.ScanMode, target string, total int) {}

func (p *SilentProgress) Payload(index, total int, rec report.Record) {
	p.mu.Lock()
	p.count++
	p.mu.Unlock()
}

func (p *SilentProgress) Finish(summary report.Summary, interrupted bool) {}

// Count returns the number of payloads reported
func (p *SilentProgress) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
