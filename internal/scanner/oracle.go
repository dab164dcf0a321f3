package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/ysmood/gson"
)

// NewSignal builds the execution signal selected by kind
func NewSignal(kind config.SignalKind) (ExecutionSignal, error) {
	switch kind {
	case config.SignalHook:
		return NewHookSignal(), nil
	case config.SignalBinding:
		return NewBindingSignal(), nil
	case config.SignalDialog:
		return NewDialogSignal(), nil
	default:
		return nil, fmt.Errorf("unknown signal %q", kind)
	}
}

func runID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HookSignal replaces window.alert with a function that sets a page-global
// flag and suppresses the dialog. Execution that never calls alert is missed.
type HookSignal struct {
	flag string
}

// NewHookSignal creates a hook signal with a per-run flag name
func NewHookSignal() *HookSignal {
	return &HookSignal{flag: AlertFlagPrefix + runID()}
}

func (h *HookSignal) Name() string { return "hook" }

// Flag returns the page-global property the hook sets
func (h *HookSignal) Flag() string { return h.flag }

func (h *HookSignal) Install(ctx context.Context, s Surface) error {
	_, err := s.Eval(ctx, jsHookInstall, h.flag)
	return err
}

func (h *HookSignal) Reset(ctx context.Context, s Surface) error {
	_, err := s.Eval(ctx, jsFlagReset, h.flag)
	return err
}

func (h *HookSignal) Observe(ctx context.Context, s Surface, settle time.Duration) (bool, error) {
	if err := sleepCtx(ctx, settle); err != nil {
		return false, err
	}
	res, err := s.Eval(ctx, jsFlagRead, h.flag)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

// BindingSignal routes the alert override into a Go callback through a page
// binding, so the flag lives outside the page.
type BindingSignal struct {
	name    string
	mu      sync.Mutex
	exposed bool
	fired   atomic.Bool
}

// NewBindingSignal creates a binding signal with a per-run binding name
func NewBindingSignal() *BindingSignal {
	return &BindingSignal{name: BindingPrefix + runID()}
}

func (b *BindingSignal) Name() string { return "binding" }

func (b *BindingSignal) Install(ctx context.Context, s Surface) error {
	b.mu.Lock()
	if !b.exposed {
		err := s.Expose(ctx, b.name, func(gson.JSON) {
			b.fired.Store(true)
		})
		if err != nil {
			b.mu.Unlock()
			return err
		}
		b.exposed = true
	}
	b.mu.Unlock()

	_, err := s.Eval(ctx, jsBindingInstall, b.name)
	return err
}

func (b *BindingSignal) Reset(ctx context.Context, s Surface) error {
	b.fired.Store(false)
	return nil
}

func (b *BindingSignal) Observe(ctx context.Context, s Surface, settle time.Duration) (bool, error) {
	if err := sleepCtx(ctx, settle); err != nil {
		return false, err
	}
	return b.fired.Load(), nil
}

// DialogSignal leaves alert alone and counts native dialogs. The session
// accepts each dialog, so the page is never left blocked.
type DialogSignal struct {
	once  sync.Once
	count atomic.Int64
}

// NewDialogSignal creates a dialog-counting signal
func NewDialogSignal() *DialogSignal {
	return &DialogSignal{}
}

func (d *DialogSignal) Name() string { return "dialog" }

func (d *DialogSignal) Install(ctx context.Context, s Surface) error {
	d.once.Do(func() {
		s.OnDialog(func(message string) {
			d.count.Add(1)
			log.Debug().Str("message", message).Msg("Native dialog opened")
		})
	})
	return nil
}

func (d *DialogSignal) Reset(ctx context.Context, s Surface) error {
	d.count.Store(0)
	return nil
}

func (d *DialogSignal) Observe(ctx context.Context, s Surface, settle time.Duration) (bool, error) {
	if err := sleepCtx(ctx, settle); err != nil {
		return false, err
	}
	return d.count.Load() > 0, nil
}

// sleepCtx waits d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
