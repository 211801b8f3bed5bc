package content

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-usecontent/internal/bundlecache"
	"github.com/goliatone/go-usecontent/internal/locale"
	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/internal/parser"
	"github.com/goliatone/go-usecontent/internal/views"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// Resolver returns the parsed bundle for the locale active in a render
// context, consulting the bundle cache before any I/O.
type Resolver struct {
	cache   *bundlecache.Cache
	locales *locale.Resolver
	reader  interfaces.FileReader
	parser  interfaces.Parser
	logger  interfaces.Logger

	dedupe bool
	group  singleflight.Group
}

var _ interfaces.ContentLoader = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithFileReader overrides how view locations are read. Without one, views
// that implement interfaces.FileReader read their own locations and any
// other view is read from the OS.
func WithFileReader(reader interfaces.FileReader) Option {
	return func(r *Resolver) {
		if reader != nil {
			r.reader = reader
		}
	}
}

// WithParser overrides the bundle parser. Defaults to parser.NewRegistry().
func WithParser(p interfaces.Parser) Option {
	return func(r *Resolver) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithLocaleResolver overrides how locales are derived from render contexts.
func WithLocaleResolver(locales *locale.Resolver) Option {
	return func(r *Resolver) {
		if locales != nil {
			r.locales = locales
		}
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithInflightDedupe collapses concurrent misses for the same cache key into
// a single lookup/read/parse whose result is shared by every waiter. When
// disabled (the default) each concurrent miss performs its own I/O and the
// last one to finish populates the cache.
func WithInflightDedupe(enabled bool) Option {
	return func(r *Resolver) {
		r.dedupe = enabled
	}
}

// NewResolver builds a resolver backed by cache.
func NewResolver(cache *bundlecache.Cache, opts ...Option) *Resolver {
	r := &Resolver{
		cache:   cache,
		locales: locale.NewResolver(),
		parser:  parser.NewRegistry(),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve implements interfaces.ContentLoader. Lookup and read errors are
// returned unchanged; parse failures are wrapped in a ParseError.
func (r *Resolver) Resolve(ctx context.Context, rc interfaces.RenderContext, bundle string) (interfaces.ContentMapping, error) {
	templateName := ""
	if rc != nil {
		templateName = rc.TemplateName()
	}
	if rc == nil || rc.Options().View == nil {
		r.logger.WithContext(ctx).Debug("content.view.missing", "template", templateName, "bundle", bundle)
		return nil, NewMissingViewError(templateName, bundle)
	}
	view := rc.Options().View

	tag, _ := r.locales.Resolve(rc)
	key := bundlecache.Key(bundle, tag)
	logger := logging.WithBundleContext(r.logger.WithContext(ctx), templateName, bundle, tag)

	if mapping, ok := r.cache.Get(key); ok {
		logger.Debug("content.cache.hit", "cache_key", key)
		return mapping, nil
	}

	if !r.dedupe {
		return r.load(ctx, logger, view, bundle, tag, key)
	}

	value, err, shared := r.group.Do(key, func() (any, error) {
		return r.load(ctx, logger, view, bundle, tag, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("content.inflight.shared", "cache_key", key)
	}
	return value.(interfaces.ContentMapping), nil
}

func (r *Resolver) load(ctx context.Context, logger interfaces.Logger, view interfaces.ViewResolver, bundle, tag, key string) (interfaces.ContentMapping, error) {
	logger.Debug("content.lookup")
	location, err := view.Lookup(ctx, bundle, interfaces.LookupOptions{Locale: tag})
	if err != nil {
		return nil, err
	}

	data, err := r.readerFor(view).ReadFile(ctx, location)
	if err != nil {
		return nil, err
	}

	mapping, err := r.parser.Parse(location, data)
	if err != nil {
		logger.Warn("content.parse.failed", "location", location, "error", err)
		return nil, wrapParseError(bundle, location, err)
	}

	if r.cache.Set(key, mapping) {
		logger.Debug("content.cache.store", "cache_key", key, "entries", len(mapping))
	}
	return mapping, nil
}

func (r *Resolver) readerFor(view interfaces.ViewResolver) interfaces.FileReader {
	if r.reader != nil {
		return r.reader
	}
	if reader, ok := view.(interfaces.FileReader); ok {
		return reader
	}
	return views.OSReader{}
}
