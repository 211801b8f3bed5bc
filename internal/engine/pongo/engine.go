package pongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// ErrTemplateNotFound is returned when no hook is installed to load a name.
var ErrTemplateNotFound = errors.New("pongo: template not found")

// Engine drives pongo2 through the interfaces.TemplateEngine contract. The
// registry holds templates by name; the load hook fills it on demand.
type Engine struct {
	set    *pongo2.TemplateSet
	cache  atomic.Bool
	view   interfaces.ViewResolver
	logger interfaces.Logger

	mu       sync.RWMutex
	hook     interfaces.LoadHook
	registry map[string]interfaces.Template
}

var _ interfaces.TemplateEngine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	cache  bool
	hook   interfaces.LoadHook
	loader pongo2.TemplateLoader
	view   interfaces.ViewResolver
	logger interfaces.Logger
}

// WithCache sets the initial state of the engine-wide cache flag.
func WithCache(enabled bool) Option {
	return func(c *engineConfig) {
		c.cache = enabled
	}
}

// WithLoadHook installs the initial load hook.
func WithLoadHook(hook interfaces.LoadHook) Option {
	return func(c *engineConfig) {
		c.hook = hook
	}
}

// WithTemplateLoader sets the pongo2 loader used for include and extends tags.
func WithTemplateLoader(loader pongo2.TemplateLoader) Option {
	return func(c *engineConfig) {
		if loader != nil {
			c.loader = loader
		}
	}
}

// WithView sets the view resolver attached to every render context.
func WithView(view interfaces.ViewResolver) Option {
	return func(c *engineConfig) {
		c.view = view
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds an engine. Caching is enabled unless WithCache(false) is given.
func New(opts ...Option) *Engine {
	cfg := engineConfig{
		cache:  true,
		loader: emptyLoader{},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := &Engine{
		set:      pongo2.NewSet("usecontent", cfg.loader),
		view:     cfg.view,
		logger:   cfg.logger,
		hook:     cfg.hook,
		registry: map[string]interfaces.Template{},
	}
	e.cache.Store(cfg.cache)
	return e
}

// CacheEnabled implements interfaces.CacheFlag.
func (e *Engine) CacheEnabled() bool {
	return e.cache.Load()
}

// SetCacheEnabled toggles the engine-wide cache flag at runtime.
func (e *Engine) SetCacheEnabled(enabled bool) {
	e.cache.Store(enabled)
}

func (e *Engine) OnLoad() interfaces.LoadHook {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hook
}

func (e *Engine) SetOnLoad(hook interfaces.LoadHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hook = hook
}

// Compile parses source with the engine's template set.
func (e *Engine) Compile(name, source string) (interfaces.Template, error) {
	tpl, err := e.set.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("pongo: compile %s: %w", name, err)
	}
	return &Template{name: name, tpl: tpl}, nil
}

// IsTemplate reports values the engine can render without compiling.
func (e *Engine) IsTemplate(v any) bool {
	switch t := v.(type) {
	case *Template:
		return t != nil
	case interfaces.TemplateBody:
		return t.IsTemplateBody()
	default:
		return false
	}
}

func (e *Engine) RegisterTemplate(name string, tmpl interfaces.Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry[name] = tmpl
}

// Registered returns the template stored under name.
func (e *Engine) Registered(name string) (interfaces.Template, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tmpl, ok := e.registry[name]
	return tmpl, ok
}

// Load returns the registered template when caching is on, otherwise it
// calls the load hook and compiles whatever source it returns.
func (e *Engine) Load(ctx context.Context, name string, opts interfaces.LoadOptions) (interfaces.Template, error) {
	if e.CacheEnabled() {
		if tmpl, ok := e.Registered(name); ok {
			return tmpl, nil
		}
	}

	hook := e.OnLoad()
	if hook.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	value, err := hook.Call(ctx, name, opts)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case interfaces.Template:
		return v, nil
	case string:
		return e.compileAndRegister(name, v)
	case []byte:
		return e.compileAndRegister(name, string(v))
	default:
		return nil, fmt.Errorf("pongo: load %s returned %T", name, value)
	}
}

func (e *Engine) compileAndRegister(name, source string) (interfaces.Template, error) {
	tmpl, err := e.Compile(name, source)
	if err != nil {
		return nil, err
	}
	if e.CacheEnabled() {
		e.RegisterTemplate(name, tmpl)
	}
	return tmpl, nil
}

// Render loads name and renders it with data as the root frame, using the
// engine's default view.
func (e *Engine) Render(ctx context.Context, name string, data map[string]any, w io.Writer) error {
	return e.RenderWithOptions(ctx, name, data, w, interfaces.RenderOptions{View: e.view})
}

// RenderWithOptions is Render with explicit per-request options.
func (e *Engine) RenderWithOptions(ctx context.Context, name string, data map[string]any, w io.Writer, opts interfaces.RenderOptions) error {
	tmpl, err := e.Load(ctx, name, nil)
	if err != nil {
		return err
	}
	rc := NewContext(name, data, opts)
	if err := tmpl.Render(ctx, rc, w); err != nil {
		e.logger.Debug("pongo.render.failed", "template", name, "error", err)
		return err
	}
	return nil
}

type emptyLoader struct{}

func (emptyLoader) Abs(_, name string) string { return name }

func (emptyLoader) Get(path string) (io.Reader, error) {
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
}
