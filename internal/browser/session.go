// Package browser owns the single headless Chromium instance and page a scan runs in.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
	"github.com/ysmood/gson"
)

var (
	// ErrBrowserLaunch indicates Chromium could not be started or connected to
	ErrBrowserLaunch = errors.New("browser launch failed")

	// ErrNavigationTimeout indicates the page did not settle before the navigation timeout
	ErrNavigationTimeout = errors.New("navigation timeout")
)

const DefaultNavTimeout = 30 * time.Second

// Options controls how the browser is started
type Options struct {
	Bin        string
	Visible    bool
	NavTimeout time.Duration
}

// Session is one browser page driven sequentially. Native dialogs are
// accepted for the whole page lifetime so a stray alert cannot block the scan.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	owned    bool

	navTimeout time.Duration

	// ctx bounds the listeners that live as long as the page
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	dialogFn []func(message string)
	stops    []func() error

	closeOnce sync.Once
}

// Launch starts Chromium and opens the scan page
func Launch(opts Options) (*Session, error) {
	l := launcher.New().
		Headless(!opts.Visible).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-infobars").
		Set("disable-extensions")

	bin := opts.Bin
	if bin == "" {
		if path, found := launcher.LookPath(); found {
			bin = path
		}
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Debug().Err(err).Msg("Could not disable certificate checks")
	}

	s, err := Attach(b, opts.NavTimeout)
	if err != nil {
		_ = b.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	s.launcher = l
	s.owned = true

	log.Debug().Str("bin", bin).Bool("visible", opts.Visible).Msg("Browser launched")
	return s, nil
}

// Attach opens a page on an already connected browser. Close releases only the page.
func Attach(b *rod.Browser, navTimeout time.Duration) (*Session, error) {
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if navTimeout <= 0 {
		navTimeout = DefaultNavTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		browser:    b,
		page:       page,
		navTimeout: navTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}

	go page.Context(ctx).EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		s.mu.Lock()
		handlers := append([]func(string){}, s.dialogFn...)
		s.mu.Unlock()

		for _, fn := range handlers {
			fn(e.Message)
		}
		if err := (proto.PageHandleJavaScriptDialog{Accept: true}).Call(page); err != nil {
			log.Debug().Err(err).Msg("Dialog dismiss failed")
		}
	})()

	return s, nil
}

// Navigate loads target and waits for network-almost-idle. It returns the
// main document status, or 0 when no document response was observed.
func (s *Session) Navigate(ctx context.Context, target string) (int, error) {
	navCtx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	page := s.page.Context(navCtx)
	frameID := s.page.FrameID

	var status atomic.Int64
	listenCtx, stopListen := context.WithCancel(navCtx)
	defer stopListen()
	go s.page.Context(listenCtx).EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Type != proto.NetworkResourceTypeDocument || e.Response == nil {
			return
		}
		if e.FrameID != "" && e.FrameID != frameID {
			return
		}
		status.Store(int64(e.Response.Status))
	})()

	idle := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := page.Navigate(target); err != nil {
		return int(status.Load()), navigationError(ctx, navCtx, err)
	}
	idle()

	if err := navCtx.Err(); err != nil {
		return int(status.Load()), navigationError(ctx, navCtx, err)
	}
	return int(status.Load()), nil
}

func navigationError(parent, navCtx context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return fmt.Errorf("navigate: %w", err)
}

// AddScriptTag loads a script from url, or inline content when url is empty
func (s *Session) AddScriptTag(ctx context.Context, url, content string) error {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()
	return s.page.Context(ctx).AddScriptTag(url, content)
}

// Eval runs a JS function expression with args and returns its value
func (s *Session) Eval(ctx context.Context, js string, args ...interface{}) (gson.JSON, error) {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

// Expose binds fn to window[name]. The binding survives navigations and is
// removed on Close.
func (s *Session) Expose(ctx context.Context, name string, fn func(gson.JSON)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop, err := s.page.Context(s.ctx).Expose(name, func(arg gson.JSON) (interface{}, error) {
		fn(arg)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("expose %s: %w", name, err)
	}

	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
	return nil
}

// OnDialog registers fn to be called with the message of every native dialog
func (s *Session) OnDialog(fn func(message string)) {
	s.mu.Lock()
	s.dialogFn = append(s.dialogFn, fn)
	s.mu.Unlock()
}

// Close releases the page, and the browser when the session launched it.
// Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		stops := s.stops
		s.stops = nil
		s.mu.Unlock()

		for _, stop := range stops {
			_ = stop()
		}
		s.cancel()

		err = s.page.Close()
		if !s.owned {
			return
		}
		if cerr := s.browser.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
		log.Debug().Msg("Browser closed")
	})
	return err
}
