package di

import (
	"errors"

	"github.com/goliatone/go-usecontent/internal/bundlecache"
	"github.com/goliatone/go-usecontent/internal/content"
	"github.com/goliatone/go-usecontent/internal/injection"
	"github.com/goliatone/go-usecontent/internal/interceptor"
	"github.com/goliatone/go-usecontent/internal/locale"
	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/internal/logging/console"
	"github.com/goliatone/go-usecontent/internal/logging/gologger"
	"github.com/goliatone/go-usecontent/internal/message"
	"github.com/goliatone/go-usecontent/internal/runtimeconfig"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// ErrEngineRequired is returned when no template engine is supplied.
var ErrEngineRequired = errors.New("di: template engine is required")

// Container wires the content services around a single template engine.
type Container struct {
	Config runtimeconfig.Config

	engine         interfaces.TemplateEngine
	loggerProvider interfaces.LoggerProvider

	reader    interfaces.FileReader
	parser    interfaces.Parser
	formatter interfaces.MessageFormatterWithMetadata

	cache       *bundlecache.Cache
	locales     *locale.Resolver
	resolver    *content.Resolver
	injector    *injection.Injector
	interceptor *interceptor.Interceptor
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithFileReader overrides how resolved view locations are read.
func WithFileReader(reader interfaces.FileReader) Option {
	return func(c *Container) {
		if reader != nil {
			c.reader = reader
		}
	}
}

// WithParser overrides the bundle parser registry.
func WithParser(p interfaces.Parser) Option {
	return func(c *Container) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithFormatter overrides the message formatter exposed to templates.
func WithFormatter(formatter interfaces.MessageFormatterWithMetadata) Option {
	return func(c *Container) {
		if formatter != nil {
			c.formatter = formatter
		}
	}
}

// NewContainer validates cfg, builds the content services and, when
// AutoloadTemplateContent is set, installs the load interceptor on engine.
func NewContainer(engine interfaces.TemplateEngine, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		engine: engine,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureServices()

	if cfg.AutoloadTemplateContent {
		installed, err := interceptor.Install(engine, c.injector,
			interceptor.WithSuffix(cfg.BundleSuffix),
			interceptor.WithLogger(logging.InterceptorLogger(c.loggerProvider)),
		)
		if err != nil {
			return nil, err
		}
		c.interceptor = installed
	}

	logging.RootLogger(c.loggerProvider).Debug("usecontent.registered",
		"autoload", cfg.AutoloadTemplateContent,
		"metadata", cfg.EnableMetadata,
		"dedupe_inflight", cfg.Content.DedupeInflight,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}

	logCfg := c.Config.Logging
	switch runtimeconfig.NormalizeProvider(logCfg.Provider) {
	case "console":
		opts := console.Options{}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = noopProvider{}
	}
	return nil
}

func (c *Container) configureServices() {
	provider := c.loggerProvider

	c.cache = bundlecache.New(c.engine)
	c.locales = locale.NewResolver(
		locale.WithSignals(c.Config.Locale.Signals...),
		locale.WithLogger(logging.LocaleLogger(provider)),
	)

	if c.formatter == nil {
		c.formatter = message.NewFormatter(
			message.WithMetadata(c.Config.EnableMetadata),
			message.WithLogger(logging.MessageLogger(provider)),
		)
	}

	resolverOpts := []content.Option{
		content.WithLocaleResolver(c.locales),
		content.WithInflightDedupe(c.Config.Content.DedupeInflight),
		content.WithLogger(logging.ContentLogger(provider)),
	}
	if c.reader != nil {
		resolverOpts = append(resolverOpts, content.WithFileReader(c.reader))
	}
	if c.parser != nil {
		resolverOpts = append(resolverOpts, content.WithParser(c.parser))
	}
	c.resolver = content.NewResolver(c.cache, resolverOpts...)

	c.injector = injection.New(c.resolver,
		injection.WithFormatter(c.formatter),
		injection.WithMetadataMarkers(c.Config.EnableMetadata),
		injection.WithLocaleResolver(c.locales),
		injection.WithLogger(logging.ContentLogger(provider)),
	)
}

// Engine returns the engine the container was built for.
func (c *Container) Engine() interfaces.TemplateEngine { return c.engine }

// LoggerProvider returns the active logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Cache returns the bundle cache shared by resolver and injector.
func (c *Container) Cache() *bundlecache.Cache { return c.cache }

// Locales returns the locale resolver.
func (c *Container) Locales() *locale.Resolver { return c.locales }

// ContentResolver returns the bundle resolver.
func (c *Container) ContentResolver() *content.Resolver { return c.resolver }

// Injector returns the content injection primitive.
func (c *Container) Injector() *injection.Injector { return c.injector }

// Interceptor returns the installed load interceptor, nil when autoload is off.
func (c *Container) Interceptor() *interceptor.Interceptor { return c.interceptor }

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }
