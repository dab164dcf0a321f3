package scanner

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/ysmood/gson"
)

var (
	reStubScript  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	reStubHandler = regexp.MustCompile(`(?i)\s+on\w+=("[^"]*"|'[^']*'|[^\s>]+)`)
)

// stubSanitize strips script elements and event handler attributes
func stubSanitize(s string) string {
	s = reStubScript.ReplaceAllString(s, "")
	return reStubHandler.ReplaceAllString(s, "")
}

// fakeExecutes decides whether markup assigned through a sink would call alert.
// Handler attributes fire for every sink, script elements only for fragments.
func fakeExecutes(markup, sinkJS string) bool {
	if !strings.Contains(markup, "alert(") {
		return false
	}
	if reStubHandler.MatchString(markup) {
		return true
	}
	return sinkJS == jsAssignFragment && reStubScript.MatchString(markup)
}

// reflectQuery renders the decoded q parameter into the document body
func reflectQuery(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "<html><body></body></html>"
	}
	return "<html><head></head><body><div id=\"out\">" + u.Query().Get("q") + "</div></body></html>"
}

// escapeQuery renders the q parameter HTML-escaped
func escapeQuery(target string) string {
	u, _ := url.Parse(target)
	return "<html><body>" + html.EscapeString(u.Query().Get("q")) + "</body></html>"
}

// fakeSurface simulates the page state the strategies observe
type fakeSurface struct {
	mu sync.Mutex

	// behaviour
	status      int
	navErr      error
	document    func(url string) string
	loadErr     error
	sanitize    func(string) string
	sanitizeErr string
	assignErr   string
	dropSandbox bool
	evalErr     map[string]error
	panicOnNav  bool
	afterNav    func()

	// markup that fires alert also detaches the sandbox
	removeOnAlert bool

	// page state, reset by Navigate
	url             string
	hookFlag        string
	bindingHook     string
	flags           map[string]bool
	sandbox         *string
	sanitizerLoaded bool

	// session state
	bindings    map[string]func(gson.JSON)
	dialogFns   []func(string)
	navigations int
	exposeCalls int
	scripts     []string
	assignJS    []string
	closed      bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		status:   200,
		document: reflectQuery,
		sanitize: stubSanitize,
		evalErr:  make(map[string]error),
		flags:    make(map[string]bool),
		bindings: make(map[string]func(gson.JSON)),
	}
}

func (f *fakeSurface) Navigate(ctx context.Context, target string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.panicOnNav {
		panic("surface exploded")
	}

	f.mu.Lock()
	f.navigations++
	f.url = target
	f.hookFlag = ""
	f.bindingHook = ""
	f.flags = make(map[string]bool)
	f.sandbox = nil
	f.sanitizerLoaded = false
	err := f.navErr
	status := f.status
	after := f.afterNav
	f.mu.Unlock()

	if after != nil {
		after()
	}
	if err != nil {
		return 0, err
	}
	return status, nil
}

func (f *fakeSurface) AddScriptTag(ctx context.Context, src, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scripts = append(f.scripts, src+content)
	if f.loadErr != nil {
		return f.loadErr
	}
	f.sanitizerLoaded = true
	return nil
}

func (f *fakeSurface) Eval(ctx context.Context, js string, args ...interface{}) (gson.JSON, error) {
	if err := ctx.Err(); err != nil {
		return gson.New(nil), err
	}

	f.mu.Lock()
	if err, ok := f.evalErr[js]; ok {
		f.mu.Unlock()
		return gson.New(nil), err
	}

	var fire bool
	var result interface{}

	switch js {
	case jsOuterHTML:
		result = f.document(f.url)

	case jsHookInstall:
		f.hookFlag = args[0].(string)
		f.flags[f.hookFlag] = false
		result = true

	case jsFlagReset:
		f.flags[args[0].(string)] = false
		result = true

	case jsFlagRead:
		result = f.flags[args[0].(string)]

	case jsBindingInstall:
		f.bindingHook = args[0].(string)
		result = true

	case jsRebuildSandbox:
		if f.dropSandbox {
			f.sandbox = nil
			result = false
			break
		}
		empty := ""
		f.sandbox = &empty
		result = true

	case jsAssignInnerHTML, jsAssignFragment:
		f.assignJS = append(f.assignJS, js)
		markup := args[1].(string)
		switch {
		case f.sandbox == nil:
			result = map[string]interface{}{"missing": true}
		case f.assignErr != "":
			result = map[string]interface{}{"error": f.assignErr}
		default:
			f.sandbox = &markup
			fire = fakeExecutes(markup, js)
			result = map[string]interface{}{"ok": true}
		}

	case jsReadSandbox:
		if f.sandbox == nil {
			result = map[string]interface{}{"missing": true}
		} else {
			result = map[string]interface{}{"html": *f.sandbox}
		}

	case jsSanitize:
		switch {
		case !f.sanitizerLoaded || f.sanitize == nil:
			result = map[string]interface{}{"missing": true}
		case f.sanitizeErr != "":
			result = map[string]interface{}{"error": f.sanitizeErr}
		default:
			result = map[string]interface{}{"clean": f.sanitize(args[1].(string))}
		}

	default:
		f.mu.Unlock()
		return gson.New(nil), fmt.Errorf("fake surface: unexpected script %q", js)
	}
	f.mu.Unlock()

	if fire {
		f.fireAlert()
	}
	return gson.New(result), nil
}

// fireAlert behaves like window.alert under whatever override is installed
func (f *fakeSurface) fireAlert() {
	f.mu.Lock()
	switch {
	case f.hookFlag != "":
		f.flags[f.hookFlag] = true
		f.mu.Unlock()
	case f.bindingHook != "":
		fn := f.bindings[f.bindingHook]
		f.mu.Unlock()
		if fn != nil {
			fn(gson.New("alert"))
		}
	default:
		fns := append([]func(string){}, f.dialogFns...)
		f.mu.Unlock()
		for _, fn := range fns {
			fn("1")
		}
	}
}

func (f *fakeSurface) Expose(ctx context.Context, name string, fn func(gson.JSON)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exposeCalls++
	f.bindings[name] = fn
	return nil
}

func (f *fakeSurface) OnDialog(fn func(message string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialogFns = append(f.dialogFns, fn)
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("already closed")
	}
	f.closed = true
	return nil
}

var _ Surface = (*fakeSurface)(nil)
