package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ScanMode
		wantErr bool
	}{
		{input: "reflected", want: ModeReflected},
		{input: "param", want: ModeReflected},
		{input: "PARAM", want: ModeReflected},
		{input: "dom", want: ModeInjection},
		{input: "inject", want: ModeInjection},
		{input: " injection ", want: ModeInjection},
		{input: "stored", want: ModeUnknown, wantErr: true},
		{input: "", want: ModeUnknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanModeReportNames(t *testing.T) {
	assert.Equal(t, "param", ModeReflected.String())
	assert.Equal(t, "inject", ModeInjection.String())

	text, err := ModeInjection.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "inject", string(text))
}

func TestParseSinkAndSignal(t *testing.T) {
	sink, err := ParseSink("innerHTML")
	require.NoError(t, err)
	assert.Equal(t, SinkInnerHTML, sink)

	sink, err = ParseSink("Fragment")
	require.NoError(t, err)
	assert.Equal(t, SinkFragment, sink)

	_, err = ParseSink("outerHTML")
	assert.Error(t, err)

	signal, err := ParseSignal("")
	require.NoError(t, err)
	assert.Equal(t, SignalHook, signal)

	signal, err = ParseSignal("dialog")
	require.NoError(t, err)
	assert.Equal(t, SignalDialog, signal)

	_, err = ParseSignal("beacon")
	assert.Error(t, err)
}

func TestThrottleIsCapped(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, MaxThrottle, cfg.Throttle(), "default wait of 1000ms is capped")

	cfg.Wait = 120 * time.Millisecond
	assert.Equal(t, 120*time.Millisecond, cfg.Throttle())

	cfg.Wait = 0
	assert.Zero(t, cfg.Throttle())
}

func TestValidate(t *testing.T) {
	base := func() *ScanConfig {
		cfg := DefaultConfig()
		cfg.Mode = ModeReflected
		cfg.TargetURL = "http://test/?q=PAYLOAD"
		return cfg
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.TargetURL = "http://test/?q="
	assert.ErrorIs(t, cfg.Validate(), ErrMissingMarker)

	cfg = base()
	cfg.Mode = ModeInjection
	cfg.TargetURL = "http://test/"
	assert.NoError(t, cfg.Validate(), "injection mode does not need the marker")

	cfg = base()
	cfg.TargetURL = "test/?q=PAYLOAD"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.OutputFormat = "pdf"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.NavTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, Load(v, ""))
	v.Set("mode", "inject")
	v.Set("url", "http://127.0.0.1:8081/sink")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, ModeInjection, cfg.Mode)
	assert.Equal(t, 50*time.Millisecond, cfg.Settle)
	assert.Equal(t, 1000*time.Millisecond, cfg.Wait)
	assert.Equal(t, 30*time.Second, cfg.NavTimeout)
	assert.Equal(t, DefaultSanitizerURL, cfg.SanitizerURL)
	assert.Equal(t, "DOMPurify", cfg.SanitizerGlobal)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
	assert.Equal(t, 200, cfg.SnippetLimit)
}

func TestFromViperUnknownMode(t *testing.T) {
	v := viper.New()
	require.NoError(t, Load(v, ""))
	v.Set("mode", "crawl")

	_, err := FromViper(v)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sinkprobe.yaml")
	content := "mode: param\nsettle: 75\nsanitizer:\n  global: Purifier\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	t.Setenv("SINKPROBE_SANITIZER_URL", "http://127.0.0.1:8081/purify.js")

	v := viper.New()
	require.NoError(t, Load(v, file))

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ModeReflected, cfg.Mode)
	assert.Equal(t, 75*time.Millisecond, cfg.Settle)
	assert.Equal(t, "Purifier", cfg.SanitizerGlobal)
	assert.Equal(t, "http://127.0.0.1:8081/purify.js", cfg.SanitizerURL)
}

func TestLoadMissingConfigFile(t *testing.T) {
	v := viper.New()
	err := Load(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
