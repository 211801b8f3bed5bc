package interfaces

import (
	"context"
	"io"
)

// Template is a compiled render unit known to a TemplateEngine.
type Template interface {
	TemplateName() string
	Render(ctx context.Context, rc RenderContext, w io.Writer) error
}

// TemplateModule is implemented by loader results that wrap a compiled
// template (for example a precompiled module exposing its body).
type TemplateModule interface {
	Template() Template
}

// TemplateBody marks templates the engine must treat as already compiled.
type TemplateBody interface {
	IsTemplateBody() bool
}

// RenderOptions carries per-render collaborators supplied by the host.
type RenderOptions struct {
	View ViewResolver
}

// RenderContext exposes ambient render-time values. Implementations are
// owned by the engine and are read-only for content helpers, except for
// Push which returns a child context.
type RenderContext interface {
	Get(key string) (any, bool)
	TemplateName() string
	Options() RenderOptions
	Push(values map[string]any) RenderContext
}

// LookupOptions narrows a view lookup.
type LookupOptions struct {
	// Locale is the canonical tag, empty when no locale could be determined.
	Locale string
}

// ViewResolver maps a bundle identifier and locale to a readable location.
type ViewResolver interface {
	Lookup(ctx context.Context, bundle string, opts LookupOptions) (string, error)
}

// LoadOptions is the optional options bag forwarded to load hooks.
type LoadOptions map[string]any

// LoadFunc is the two-argument load convention: name only.
type LoadFunc func(ctx context.Context, name string) (any, error)

// LoadWithOptionsFunc is the three-argument load convention.
type LoadWithOptionsFunc func(ctx context.Context, name string, opts LoadOptions) (any, error)

// LoadHook is the engine extension point invoked when a template is loaded
// by name. It records which calling convention the underlying function uses
// so decorators can call through with matching arguments.
type LoadHook struct {
	simple      LoadFunc
	withOptions LoadWithOptionsFunc
}

// SimpleHook wraps a two-argument loader.
func SimpleHook(fn LoadFunc) LoadHook {
	return LoadHook{simple: fn}
}

// OptionsHook wraps a three-argument loader.
func OptionsHook(fn LoadWithOptionsFunc) LoadHook {
	return LoadHook{withOptions: fn}
}

// IsZero reports whether no loader is configured.
func (h LoadHook) IsZero() bool {
	return h.simple == nil && h.withOptions == nil
}

// Arity returns 2 or 3 for configured hooks and 0 otherwise.
func (h LoadHook) Arity() int {
	switch {
	case h.withOptions != nil:
		return 3
	case h.simple != nil:
		return 2
	default:
		return 0
	}
}

// Call dispatches to the configured loader using its own convention.
func (h LoadHook) Call(ctx context.Context, name string, opts LoadOptions) (any, error) {
	switch h.Arity() {
	case 3:
		return h.withOptions(ctx, name, opts)
	case 2:
		return h.simple(ctx, name)
	default:
		return nil, ErrNoLoadHook
	}
}

// CacheFlag reports the engine-wide caching switch. It is consulted on every
// lookup, never snapshotted.
type CacheFlag interface {
	CacheEnabled() bool
}

// TemplateEngine is the subset of a rendering engine this module drives.
type TemplateEngine interface {
	CacheFlag
	OnLoad() LoadHook
	SetOnLoad(hook LoadHook)
	Compile(name, source string) (Template, error)
	IsTemplate(v any) bool
	RegisterTemplate(name string, tmpl Template)
}
