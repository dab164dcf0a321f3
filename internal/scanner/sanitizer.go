package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/rs/zerolog"
)

// SanitizerSource loads the sanitizer into the page and calls it there
type SanitizerSource struct {
	URL     string
	Content string
	Global  string
}

// NewSanitizerSource reads the sanitizer file when one is configured; an inline
// file takes precedence over the URL.
func NewSanitizerSource(cfg *config.ScanConfig) (*SanitizerSource, error) {
	src := &SanitizerSource{
		URL:    cfg.SanitizerURL,
		Global: cfg.SanitizerGlobal,
	}
	if src.Global == "" {
		src.Global = config.DefaultSanitizerGlobal
	}

	if cfg.SanitizerFile != "" {
		content, err := os.ReadFile(cfg.SanitizerFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read sanitizer file: %w", err)
		}
		src.URL = ""
		src.Content = string(content)
	}
	return src, nil
}

// Load adds the sanitizer script to the current document. Failures are logged
// and returned; callers continue and later report sanitizer-not-loaded.
func (src *SanitizerSource) Load(ctx context.Context, s Surface) error {
	if src.URL == "" && src.Content == "" {
		return nil
	}
	if err := s.AddScriptTag(ctx, src.URL, src.Content); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("url", src.URL).Msg("Sanitizer script failed to load")
		return err
	}
	return nil
}

// Sanitize runs the in-page sanitizer on input. ErrSanitizerNotLoaded and
// *SanitizeError are sanitizer outcomes; any other error is a surface failure.
func (src *SanitizerSource) Sanitize(ctx context.Context, s Surface, input string) (string, error) {
	res, err := s.Eval(ctx, jsSanitize, src.Global, input)
	if err != nil {
		return "", fmt.Errorf("evaluate sanitizer: %w", err)
	}
	if res.Get("missing").Bool() {
		return "", ErrSanitizerNotLoaded
	}
	if msg := res.Get("error"); !msg.Nil() {
		return "", &SanitizeError{Message: msg.Str()}
	}
	return res.Get("clean").Str(), nil
}
