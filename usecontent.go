// Package usecontent injects locale-specific content bundles into every
// template rendered through a host template engine.
package usecontent

import (
	"context"
	"io"
	"io/fs"

	"github.com/goliatone/go-usecontent/internal/di"
	"github.com/goliatone/go-usecontent/internal/engine/pongo"
	"github.com/goliatone/go-usecontent/internal/locale"
	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/internal/parser"
	"github.com/goliatone/go-usecontent/internal/views"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

type (
	// Option customises the services built by Register.
	Option = di.Option
	// Locality is the structured locale hosts may push onto a render context.
	Locality = locale.Locality
	// PongoEngine is the bundled pongo2 engine adapter.
	PongoEngine = pongo.Engine
	// PongoOption configures a PongoEngine.
	PongoOption = pongo.Option
	// FSView resolves bundles from an fs.FS with a locale fallback chain.
	FSView = views.FSResolver
	// ParserRegistry dispatches bundle parsing on file extension.
	ParserRegistry = parser.Registry
)

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithFileReader     = di.WithFileReader
	WithParser         = di.WithParser
	WithFormatter      = di.WithFormatter

	WithPongoCache          = pongo.WithCache
	WithPongoLoadHook       = pongo.WithLoadHook
	WithPongoTemplateLoader = pongo.WithTemplateLoader
	WithPongoView           = pongo.WithView
	WithPongoLogger         = pongo.WithLogger
)

// Module is the handle returned by Register.
type Module struct {
	container *di.Container
}

// Register wires content resolution for engine. With AutoloadTemplateContent
// the engine's load hook is wrapped so every template gets its own bundle;
// registration fails if the engine has no hook to wrap.
func Register(engine interfaces.TemplateEngine, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(engine, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container.
func (m *Module) Container() *di.Container {
	return m.container
}

// Resolve returns the bundle for the locale active in rc.
func (m *Module) Resolve(ctx context.Context, rc interfaces.RenderContext, bundle string) (interfaces.ContentMapping, error) {
	return m.container.ContentResolver().Resolve(ctx, rc, bundle)
}

// UseContent renders block with bundle injected, for hosts that pick the
// bundle name themselves.
func (m *Module) UseContent(ctx context.Context, w io.Writer, rc interfaces.RenderContext, block interfaces.Template, bundle string) error {
	return m.container.Injector().UseContent(ctx, w, rc, block, bundle)
}

// Locale returns the canonical locale for rc.
func (m *Module) Locale(rc interfaces.RenderContext) (string, bool) {
	return m.container.Locales().Resolve(rc)
}

// CachedBundles reports how many bundles are cached.
func (m *Module) CachedBundles() int {
	return m.container.Cache().Len()
}

// Uninstall restores the engine's original load hook.
func (m *Module) Uninstall() {
	if i := m.container.Interceptor(); i != nil {
		i.Uninstall()
	}
}

// NewPongoEngine builds a pongo2-backed engine.
func NewPongoEngine(opts ...PongoOption) *PongoEngine {
	return pongo.New(opts...)
}

// PongoFSLoader returns a load hook reading name+ext from fsys.
func PongoFSLoader(fsys fs.FS, ext string) interfaces.LoadHook {
	return pongo.FSLoader(fsys, ext)
}

// PongoTemplateLoader lets include and extends tags read from fsys.
var PongoTemplateLoader = pongo.TemplateLoader

// NewFSView resolves bundles below root inside fsys.
func NewFSView(fsys fs.FS, root string) *FSView {
	return views.NewFSResolver(fsys, root)
}

// ContextWithLogFields attaches fields that loggers merge into every entry
// logged while resolving content for ctx.
func ContextWithLogFields(ctx context.Context, fields map[string]any) context.Context {
	return logging.ContextWithFields(ctx, fields)
}

// NewParserRegistry returns the default extension-dispatching parser.
func NewParserRegistry() *ParserRegistry {
	return parser.NewRegistry()
}
