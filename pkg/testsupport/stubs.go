package testsupport

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// RenderContext is a minimal stacked interfaces.RenderContext for tests.
type RenderContext struct {
	Name   string
	Values map[string]any
	View   interfaces.ViewResolver
	parent *RenderContext
}

var _ interfaces.RenderContext = (*RenderContext)(nil)

// NewRenderContext returns a context named name holding values.
func NewRenderContext(name string, values map[string]any) *RenderContext {
	return &RenderContext{Name: name, Values: values}
}

// WithView sets the view capability and returns the receiver.
func (c *RenderContext) WithView(view interfaces.ViewResolver) *RenderContext {
	c.View = view
	return c
}

func (c *RenderContext) Get(key string) (any, bool) {
	for frame := c; frame != nil; frame = frame.parent {
		if value, ok := frame.Values[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func (c *RenderContext) TemplateName() string { return c.Name }

func (c *RenderContext) Options() interfaces.RenderOptions {
	return interfaces.RenderOptions{View: c.View}
}

func (c *RenderContext) Push(values map[string]any) interfaces.RenderContext {
	return &RenderContext{Name: c.Name, Values: values, View: c.View, parent: c}
}

// LookupCall records a single view lookup.
type LookupCall struct {
	Bundle string
	Locale string
}

// View resolves bundles to "<bundle>@<locale>" locations and records calls.
type View struct {
	mu    sync.Mutex
	Err   error
	calls []LookupCall
}

func (v *View) Lookup(_ context.Context, bundle string, opts interfaces.LookupOptions) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, LookupCall{Bundle: bundle, Locale: opts.Locale})
	if v.Err != nil {
		return "", v.Err
	}
	return bundle + "@" + opts.Locale, nil
}

// Calls returns a snapshot of recorded lookups.
func (v *View) Calls() []LookupCall {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]LookupCall(nil), v.calls...)
}

// Reader serves file contents from memory and counts reads.
type Reader struct {
	mu    sync.Mutex
	Files map[string]string
	Err   error
	reads int
	// Gate, when set, blocks every read until it is closed.
	Gate chan struct{}
}

func (r *Reader) ReadFile(_ context.Context, location string) ([]byte, error) {
	r.mu.Lock()
	r.reads++
	gate := r.Gate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if r.Err != nil {
		return nil, r.Err
	}
	data, ok := r.Files[location]
	if !ok {
		return nil, fmt.Errorf("testsupport: %s: %w", location, os.ErrNotExist)
	}
	return []byte(data), nil
}

// Reads returns the number of ReadFile calls.
func (r *Reader) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

// Template renders a fixed body followed by the injected content value for Key.
type Template struct {
	Name string
	Body string
	Key  string
}

func (t *Template) TemplateName() string { return t.Name }

func (t *Template) Render(_ context.Context, rc interfaces.RenderContext, w io.Writer) error {
	if _, err := io.WriteString(w, t.Body); err != nil {
		return err
	}
	if t.Key == "" {
		return nil
	}
	value, _ := rc.Get("content")
	content, _ := value.(interfaces.ContentMapping)
	text, _ := content.Lookup(t.Key)
	_, err := io.WriteString(w, text)
	return err
}

// Engine is an in-memory interfaces.TemplateEngine.
type Engine struct {
	mu       sync.Mutex
	hook     interfaces.LoadHook
	Cache    bool
	compiles int
	Registry map[string]interfaces.Template
	// Key is forwarded to compiled templates.
	Key string
}

var _ interfaces.TemplateEngine = (*Engine)(nil)

func (e *Engine) CacheEnabled() bool { return e.Cache }

func (e *Engine) OnLoad() interfaces.LoadHook { return e.hook }

func (e *Engine) SetOnLoad(hook interfaces.LoadHook) { e.hook = hook }

func (e *Engine) Compile(name, source string) (interfaces.Template, error) {
	e.mu.Lock()
	e.compiles++
	e.mu.Unlock()
	return &Template{Name: name, Body: source, Key: e.Key}, nil
}

func (e *Engine) IsTemplate(v any) bool {
	_, ok := v.(interfaces.Template)
	return ok
}

func (e *Engine) RegisterTemplate(name string, tmpl interfaces.Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Registry == nil {
		e.Registry = map[string]interfaces.Template{}
	}
	e.Registry[name] = tmpl
}

// Compiles returns the number of Compile calls.
func (e *Engine) Compiles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compiles
}

// Load mirrors a host render path: registry first when caching, hook otherwise.
func (e *Engine) Load(ctx context.Context, name string) (interfaces.Template, error) {
	if e.Cache {
		e.mu.Lock()
		tmpl, ok := e.Registry[name]
		e.mu.Unlock()
		if ok {
			return tmpl, nil
		}
	}
	value, err := e.hook.Call(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	tmpl, ok := value.(interfaces.Template)
	if !ok {
		return nil, fmt.Errorf("testsupport: hook returned %T", value)
	}
	return tmpl, nil
}
