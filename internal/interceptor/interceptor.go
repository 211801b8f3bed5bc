package interceptor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-usecontent/internal/content"
	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// DefaultSuffix is appended to a template name to form its bundle key.
const DefaultSuffix = ".properties"

const loadHookRequiredCode = "LOAD_HOOK_REQUIRED"

var (
	// ErrLoadHookRequired is returned when the engine has no hook to wrap.
	ErrLoadHookRequired = errors.New("interceptor: engine has no load hook installed")
	// ErrUnsupportedTemplate is returned when a loaded value cannot become a template.
	ErrUnsupportedTemplate = errors.New("interceptor: unsupported template value")
	// ErrInjectorRequired is returned when Install is called without an injector.
	ErrInjectorRequired = errors.New("interceptor: content injector required")
)

// Kind classifies a value returned by the underlying load hook.
type Kind int

const (
	RawSource Kind = iota
	CompiledTemplate
	ModuleTemplate
	WrappedTemplate
)

func (k Kind) String() string {
	switch k {
	case RawSource:
		return "raw_source"
	case CompiledTemplate:
		return "compiled_template"
	case ModuleTemplate:
		return "module_template"
	case WrappedTemplate:
		return "wrapped_template"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Loaded is a load hook result classified once at load time.
type Loaded struct {
	Kind     Kind
	Source   string
	Template interfaces.Template
}

// Classify inspects value using the engine's template predicate.
func Classify(engine interfaces.TemplateEngine, value any) (Loaded, error) {
	switch v := value.(type) {
	case *Wrapped:
		return Loaded{Kind: WrappedTemplate, Template: v}, nil
	case interfaces.TemplateModule:
		inner := v.Template()
		if wrapped, ok := inner.(*Wrapped); ok && wrapped != nil {
			return Loaded{Kind: WrappedTemplate, Template: wrapped}, nil
		}
		if inner != nil {
			return Loaded{Kind: ModuleTemplate, Template: inner}, nil
		}
	}
	if engine.IsTemplate(value) {
		if tmpl, ok := value.(interfaces.Template); ok {
			return Loaded{Kind: CompiledTemplate, Template: tmpl}, nil
		}
	}
	switch v := value.(type) {
	case string:
		return Loaded{Kind: RawSource, Source: v}, nil
	case []byte:
		return Loaded{Kind: RawSource, Source: string(v)}, nil
	case fmt.Stringer:
		return Loaded{Kind: RawSource, Source: v.String()}, nil
	}
	return Loaded{}, fmt.Errorf("%w: %T", ErrUnsupportedTemplate, value)
}

// Interceptor decorates an engine's load hook so every loaded template is
// wrapped with content injection for its own bundle.
type Interceptor struct {
	engine   interfaces.TemplateEngine
	injector interfaces.ContentInjector
	previous interfaces.LoadHook
	suffix   string
	logger   interfaces.Logger
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithSuffix overrides the bundle suffix. Empty keeps DefaultSuffix.
func WithSuffix(suffix string) Option {
	return func(i *Interceptor) {
		if suffix != "" {
			i.suffix = suffix
		}
	}
}

// WithLogger sets the interceptor logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Install replaces the engine's load hook with a decorator that calls the
// previous hook first. It fails when no hook is installed yet.
func Install(engine interfaces.TemplateEngine, injector interfaces.ContentInjector, opts ...Option) (*Interceptor, error) {
	if engine == nil || engine.OnLoad().IsZero() {
		return nil, goerrors.Wrap(ErrLoadHookRequired, goerrors.CategoryValidation, ErrLoadHookRequired.Error()).
			WithTextCode(loadHookRequiredCode)
	}
	if injector == nil {
		return nil, ErrInjectorRequired
	}

	i := &Interceptor{
		engine:   engine,
		injector: injector,
		previous: engine.OnLoad(),
		suffix:   DefaultSuffix,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}

	engine.SetOnLoad(interfaces.OptionsHook(i.Load))
	i.logger.Debug("interceptor.installed", "previous_arity", i.previous.Arity(), "suffix", i.suffix)
	return i, nil
}

// Previous returns the hook that was installed before the interceptor.
func (i *Interceptor) Previous() interfaces.LoadHook {
	return i.previous
}

// Uninstall restores the previous hook.
func (i *Interceptor) Uninstall() {
	i.engine.SetOnLoad(i.previous)
}

// Load is the installed three-argument hook.
func (i *Interceptor) Load(ctx context.Context, name string, opts interfaces.LoadOptions) (any, error) {
	value, err := i.previous.Call(ctx, name, opts)
	if err != nil {
		return nil, err
	}

	loaded, err := Classify(i.engine, value)
	if err != nil {
		i.logger.WithContext(ctx).Warn("interceptor.load.unsupported", "template", name, "error", err)
		return nil, err
	}
	logger := logging.WithFields(i.logger.WithContext(ctx), map[string]any{"template": name, "kind": loaded.Kind.String()})
	if loaded.Kind == WrappedTemplate {
		logger.Debug("interceptor.load.already_wrapped")
		return loaded.Template, nil
	}

	inner := loaded.Template
	if inner == nil {
		inner, err = i.engine.Compile(name, loaded.Source)
		if err != nil {
			return nil, err
		}
	}

	wrapped := &Wrapped{
		templateName: inner.TemplateName(),
		inner:        inner,
		injector:     i.injector,
		suffix:       i.suffix,
	}
	if wrapped.templateName == "" {
		wrapped.templateName = name
	}

	if i.engine.CacheEnabled() {
		i.engine.RegisterTemplate(wrapped.templateName, wrapped)
		logger.Debug("interceptor.template.registered")
	}
	return wrapped, nil
}

// Wrapped injects the template's own bundle before rendering it.
type Wrapped struct {
	templateName string
	inner        interfaces.Template
	injector     interfaces.ContentInjector
	suffix       string
}

var (
	_ interfaces.Template     = (*Wrapped)(nil)
	_ interfaces.TemplateBody = (*Wrapped)(nil)
)

func (w *Wrapped) TemplateName() string { return w.templateName }

func (w *Wrapped) IsTemplateBody() bool { return true }

// Inner returns the decorated template.
func (w *Wrapped) Inner() interfaces.Template { return w.inner }

// Bundle returns the bundle key injected on render.
func (w *Wrapped) Bundle() string { return w.templateName + w.suffix }

// Render writes nothing unless injection succeeds.
func (w *Wrapped) Render(ctx context.Context, rc interfaces.RenderContext, out io.Writer) error {
	bundle := w.Bundle()
	if rc == nil || rc.Options().View == nil {
		name := ""
		if rc != nil {
			name = rc.TemplateName()
		}
		return content.NewMissingViewError(name, bundle)
	}

	var buf bytes.Buffer
	if err := w.injector.UseContent(ctx, &buf, rc, w.inner, bundle); err != nil {
		return err
	}
	_, err := buf.WriteTo(out)
	return err
}
