package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SINKPROBE_SANITIZER_URL
const EnvPrefix = "SINKPROBE"

// SetDefaults registers every key with its default value so env overrides resolve
// even when no flag or config file sets the key.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("mode", "")
	v.SetDefault("url", "")
	v.SetDefault("payloads", "")
	v.SetDefault("wait", int(d.Wait/time.Millisecond))
	v.SetDefault("settle", int(d.Settle/time.Millisecond))
	v.SetDefault("timeout", int(d.NavTimeout/time.Second))
	v.SetDefault("sink", string(d.Sink))
	v.SetDefault("signal", string(d.Signal))
	v.SetDefault("snippet", d.SnippetLimit)

	v.SetDefault("sanitizer.url", d.SanitizerURL)
	v.SetDefault("sanitizer.file", "")
	v.SetDefault("sanitizer.global", d.SanitizerGlobal)

	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.visible", false)

	v.SetDefault("out", d.OutputFile)
	v.SetDefault("format", d.OutputFormat)
	v.SetDefault("no_table", false)
	v.SetDefault("verbose", false)
	v.SetDefault("silent", false)
}

// Load prepares v with defaults, environment overrides and, when file is set,
// the given YAML config file.
func Load(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file == "" {
		return nil
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file not found: %s", file)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// FromViper builds a ScanConfig from the resolved keys. An unknown mode is
// returned as ErrUnknownMode so the caller can exit with its dedicated code.
func FromViper(v *viper.Viper) (*ScanConfig, error) {
	cfg := DefaultConfig()

	mode, err := ParseMode(v.GetString("mode"))
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode

	sink, err := ParseSink(v.GetString("sink"))
	if err != nil {
		return nil, err
	}
	cfg.Sink = sink

	signal, err := ParseSignal(v.GetString("signal"))
	if err != nil {
		return nil, err
	}
	cfg.Signal = signal

	cfg.TargetURL = v.GetString("url")
	cfg.PayloadFile = v.GetString("payloads")
	cfg.Wait = time.Duration(v.GetInt("wait")) * time.Millisecond
	cfg.Settle = time.Duration(v.GetInt("settle")) * time.Millisecond
	cfg.NavTimeout = time.Duration(v.GetInt("timeout")) * time.Second
	cfg.SnippetLimit = v.GetInt("snippet")

	cfg.SanitizerURL = v.GetString("sanitizer.url")
	cfg.SanitizerFile = v.GetString("sanitizer.file")
	cfg.SanitizerGlobal = v.GetString("sanitizer.global")

	cfg.BrowserBin = v.GetString("browser.bin")
	cfg.VisibleMode = v.GetBool("browser.visible")

	cfg.OutputFile = v.GetString("out")
	cfg.OutputFormat = strings.ToLower(v.GetString("format"))
	cfg.NoTable = v.GetBool("no_table")
	cfg.Verbose = v.GetBool("verbose")
	cfg.Silent = v.GetBool("silent")

	return cfg, nil
}
