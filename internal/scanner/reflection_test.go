package scanner

import (
	"errors"
	"testing"

	"github.com/Serdar715/sinkprobe/internal/config"
)

func TestReflectionDetector_Detect(t *testing.T) {
	detector := NewReflectionDetector()

	tests := []struct {
		name           string
		body           string
		probe          string
		wantFound      bool
		wantFormatType string
	}{
		{
			name:           "Raw reflection",
			body:           "Hello <svg onload=alert(1)> World",
			probe:          "<svg onload=alert(1)>",
			wantFound:      true,
			wantFormatType: FormatRaw,
		},
		{
			name:           "Form encoded reflection",
			body:           "Hello %3Cscript%3E World",
			probe:          "<script>",
			wantFound:      true,
			wantFormatType: FormatURLEncoded,
		},
		{
			name:           "URI component reflection",
			body:           `<a href="/next?q=a%20b">`,
			probe:          "a b",
			wantFound:      true,
			wantFormatType: FormatURLEncoded,
		},
		{
			name:           "HTML encoded reflection",
			body:           "Hello &lt;script&gt; World",
			probe:          "<script>",
			wantFound:      true,
			wantFormatType: FormatHTMLEncoded,
		},
		{
			name:           "Not found",
			body:           "Hello World",
			probe:          "xss_probe",
			wantFound:      false,
			wantFormatType: "",
		},
		{
			name:           "Empty probe",
			body:           "Hello World",
			probe:          "",
			wantFound:      false,
			wantFormatType: "",
		},
		{
			name:           "Double encoded",
			body:           "Hello %253Cscript%253E World",
			probe:          "<script>",
			wantFound:      true,
			wantFormatType: FormatDoubleEncoded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFound, gotFormat := detector.Detect(tt.body, tt.probe)

			if gotFound != tt.wantFound {
				t.Errorf("Detect() found = %v, want %v", gotFound, tt.wantFound)
			}

			if gotFormat != tt.wantFormatType {
				t.Errorf("Detect() format = %v, want %v", gotFormat, tt.wantFormatType)
			}
		})
	}
}

func TestProbeError(t *testing.T) {
	baseErr := ErrSandboxMissing

	probeErr := &ProbeError{
		Mode:      config.ModeInjection,
		Payload:   "<img src=x onerror=alert(1)>",
		State:     StateSandboxReady.String(),
		Operation: "prepare-sandbox",
		Cause:     baseErr,
	}

	if probeErr.Error() != "prepare-sandbox failed entering sandbox-ready: sandbox element missing" {
		t.Errorf("Error() = %q", probeErr.Error())
	}

	if !errors.Is(probeErr, ErrSandboxMissing) {
		t.Error("errors.Is should reach the cause")
	}

	rec := probeErr.Record()
	if rec.State != "sandbox-ready" || rec.Payload != probeErr.Payload || rec.Error != probeErr.Error() {
		t.Errorf("Record() = %+v", rec)
	}
}

func TestSanitizeTag(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   string
		wantOK bool
	}{
		{name: "Nil", err: nil, want: "", wantOK: false},
		{name: "Not loaded", err: ErrSanitizerNotLoaded, want: "sanitizer-not-loaded", wantOK: true},
		{name: "Thrown", err: &SanitizeError{Message: "too much recursion"}, want: "sanitize-error:too much recursion", wantOK: true},
		{name: "Transport", err: errors.New("target closed"), want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeTag(tt.err)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SanitizeTag() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReflectionDetector_Fuzzy(t *testing.T) {
	detector := NewReflectionDetector()

	found, format := detector.Detect("<p><img src=x onerro=alert(1)></p>", "<img src=x onerror=alert(1)>")
	if !found || format != FormatFuzzy {
		t.Errorf("Detect() = %v, %q, want near-copy match", found, format)
	}

	found, _ = detector.Detect("<p>hello</p>", "<b>x</b>x")
	if found {
		t.Error("unrelated body should not match")
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"onerror", "onerro", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestSimilarityRatio(t *testing.T) {
	if got := SimilarityRatio("", ""); got != 1.0 {
		t.Errorf("SimilarityRatio of empty strings = %v", got)
	}
	if got := SimilarityRatio("abcd", "abce"); got != 0.75 {
		t.Errorf("SimilarityRatio() = %v, want 0.75", got)
	}

	fm := NewFuzzyMatcher()
	fm.SetThreshold(2)
	if !fm.IsFuzzyMatch("<svg onload=alert(1)>", "<svg onload=alert(1)>") {
		t.Error("identical strings must match")
	}
	if fm.IsFuzzyMatch("abcdefgh", "zzzzzzzz") {
		t.Error("out-of-range threshold should be ignored")
	}
}

func TestFindFuzzyReflectionLimits(t *testing.T) {
	fm := NewFuzzyMatcher()

	if _, idx := fm.FindFuzzyReflection("<b>x</b>", "<b>"); idx != -1 {
		t.Error("short probes are not fuzzy matched")
	}

	match, idx := fm.FindFuzzyReflection("xx<SVG ONLOAD=alert(1)>", "<svg onload=alert(1)>")
	if idx != 2 || match != "<SVG ONLOAD=alert(1)>" {
		t.Errorf("FindFuzzyReflection() = %q, %d", match, idx)
	}
}
