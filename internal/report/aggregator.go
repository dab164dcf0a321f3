package report

import "sync"

// Aggregator collects records in the order they are added.
// Safe for concurrent use, although the scan driver adds from one goroutine.
type Aggregator struct {
	mu      sync.Mutex
	records []Record
}

// NewAggregator creates an aggregator sized for n payloads
func NewAggregator(n int) *Aggregator {
	return &Aggregator{
		records: make([]Record, 0, n),
	}
}

// Add appends a record. Nil records are ignored.
func (a *Aggregator) Add(r Record) {
	if r == nil {
		return
	}
	a.mu.Lock()
	a.records = append(a.records, r)
	a.mu.Unlock()
}

// Records returns a copy of the collected records
func (a *Aggregator) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := make([]Record, len(a.records))
	copy(result, a.records)
	return result
}

// Len returns the number of collected records
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Summary counts verdicts over the collected records
func (a *Aggregator) Summary() Summary {
	return Summarize(a.Records())
}

// Summary is the end-of-run tally
type Summary struct {
	Total            int `json:"total"`
	Errors           int `json:"errors"`
	RawExecuted      int `json:"rawExecuted"`
	CleanExecuted    int `json:"cleanExecuted"`
	Neutralized      int `json:"neutralized"`
	Reflected        int `json:"reflected"`
	Residual         int `json:"residual"`
	SanitizerMissing int `json:"sanitizerMissing"`
}

// SanitizerNotLoaded is the error tag for a sanitizer global that never appeared
const SanitizerNotLoaded = "sanitizer-not-loaded"

// Summarize tallies records
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch rec := r.(type) {
		case *ErrorRecord:
			s.Errors++
		case *InjectionRecord:
			if rec.RawResult.Alerted {
				s.RawExecuted++
			}
			if rec.CleanResult.Alerted {
				s.CleanExecuted++
			} else if rec.RawResult.Alerted {
				s.Neutralized++
			}
			if len(rec.CleanResult.Residual) > 0 {
				s.Residual++
			}
			if rec.CleanResult.Error == SanitizerNotLoaded {
				s.SanitizerMissing++
			}
		case *ReflectedRecord:
			if rec.SanitizeResult.BodyContains {
				s.Reflected++
			}
			if len(rec.SanitizeResult.Residual) > 0 {
				s.Residual++
			}
			if rec.SanitizeResult.Error == SanitizerNotLoaded {
				s.SanitizerMissing++
			}
		}
	}
	return s
}
