package scanner

import (
	"fmt"

	"github.com/Serdar715/sinkprobe/internal/config"
)

// NewStrategy selects the strategy for cfg.Mode. The switch is exhaustive over
// config.ScanMode; anything else is ErrUnknownMode.
func NewStrategy(cfg *config.ScanConfig) (Strategy, error) {
	switch cfg.Mode {
	case config.ModeReflected:
		sanitizer, err := NewSanitizerSource(cfg)
		if err != nil {
			return nil, err
		}
		return NewReflectedStrategy(cfg.TargetURL, sanitizer), nil

	case config.ModeInjection:
		sanitizer, err := NewSanitizerSource(cfg)
		if err != nil {
			return nil, err
		}
		signal, err := NewSignal(cfg.Signal)
		if err != nil {
			return nil, err
		}
		return NewInjectionStrategy(InjectionOptions{
			Target:    cfg.TargetURL,
			Sanitizer: sanitizer,
			Signal:    signal,
			Sink:      cfg.Sink,
			Settle:    cfg.Settle,
			Snippet:   cfg.SnippetLimit,
		}), nil

	case config.ModeUnknown:
		return nil, fmt.Errorf("%w: no mode selected", ErrUnknownMode)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(cfg.Mode))
	}
}
