package pongo

import (
	"context"
	"io"
	"maps"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-usecontent/internal/injection"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// Template is a compiled pongo2 template.
type Template struct {
	name string
	tpl  *pongo2.Template
}

var _ interfaces.Template = (*Template)(nil)

func (t *Template) TemplateName() string { return t.name }

// Render executes the template with the flattened render context.
func (t *Template) Render(_ context.Context, rc interfaces.RenderContext, w io.Writer) error {
	return t.tpl.ExecuteWriter(variables(rc), w)
}

// Context is a stack of frames; lookups walk from the newest frame out.
type Context struct {
	name   string
	values map[string]any
	opts   interfaces.RenderOptions
	parent *Context
}

var _ interfaces.RenderContext = (*Context)(nil)

// NewContext returns a root context for template name.
func NewContext(name string, data map[string]any, opts interfaces.RenderOptions) *Context {
	return &Context{name: name, values: data, opts: opts}
}

func (c *Context) Get(key string) (any, bool) {
	for frame := c; frame != nil; frame = frame.parent {
		if value, ok := frame.values[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func (c *Context) TemplateName() string { return c.name }

func (c *Context) Options() interfaces.RenderOptions { return c.opts }

func (c *Context) Push(values map[string]any) interfaces.RenderContext {
	return &Context{name: c.name, values: values, opts: c.opts, parent: c}
}

// Values merges all frames, newer frames overriding older ones.
func (c *Context) Values() map[string]any {
	var frames []map[string]any
	for frame := c; frame != nil; frame = frame.parent {
		frames = append(frames, frame.values)
	}
	out := map[string]any{}
	for i := len(frames) - 1; i >= 0; i-- {
		maps.Copy(out, frames[i])
	}
	return out
}

type valuer interface {
	Values() map[string]any
}

var injectedKeys = []string{injection.ContentKey, injection.BundleKey, injection.LocaleKey, injection.MessageKey, injection.MarkupKey}

func variables(rc interfaces.RenderContext) pongo2.Context {
	out := pongo2.Context{}
	if rc == nil {
		return out
	}
	if v, ok := rc.(valuer); ok {
		maps.Copy(out, v.Values())
	} else {
		for _, key := range injectedKeys {
			if value, ok := rc.Get(key); ok {
				out[key] = value
			}
		}
	}
	if msg, ok := out[injection.MessageKey].(injection.MessageFunc); ok {
		markup, _ := out[injection.MarkupKey].(bool)
		out[injection.MessageKey] = func(key string, args ...any) *pongo2.Value {
			if markup {
				return pongo2.AsSafeValue(msg(key, args...))
			}
			return pongo2.AsValue(msg(key, args...))
		}
	}
	if content, ok := out[injection.ContentKey].(interfaces.ContentMapping); ok {
		out[injection.ContentKey] = map[string]string(content)
	}
	return out
}
