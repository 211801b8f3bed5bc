package injection

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-usecontent/internal/locale"
	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/internal/message"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// Frame keys pushed onto the render context before a block renders.
const (
	ContentKey = "content"
	BundleKey  = "contentBundle"
	LocaleKey  = "contentLocale"
	MessageKey = "message"
	// MarkupKey is true when the message helper already returns escaped HTML.
	MarkupKey  = "contentMarkup"
)

// MessageFunc renders a bundle entry. Arguments are either a single
// map[string]any or alternating key/value pairs used as template data.
type MessageFunc func(key string, args ...any) string

// Injector resolves bundles through a ContentLoader and exposes them to the
// block being rendered.
type Injector struct {
	loader    interfaces.ContentLoader
	locales   *locale.Resolver
	formatter interfaces.MessageFormatterWithMetadata
	annotate  bool
	logger    interfaces.Logger
}

var _ interfaces.ContentInjector = (*Injector)(nil)

// Option configures an Injector.
type Option func(*Injector)

// WithFormatter sets the formatter backing the message helper.
func WithFormatter(formatter interfaces.MessageFormatterWithMetadata) Option {
	return func(i *Injector) {
		if formatter != nil {
			i.formatter = formatter
		}
	}
}

// WithMetadataMarkers wraps message output in <edit> markers when the
// formatter returns metadata.
func WithMetadataMarkers(enabled bool) Option {
	return func(i *Injector) {
		i.annotate = enabled
	}
}

// WithLocaleResolver overrides how the message helper picks plural rules.
func WithLocaleResolver(locales *locale.Resolver) Option {
	return func(i *Injector) {
		if locales != nil {
			i.locales = locales
		}
	}
}

// WithLogger sets the injector logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(i *Injector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New returns an injector resolving bundles through loader.
func New(loader interfaces.ContentLoader, opts ...Option) *Injector {
	i := &Injector{
		loader:    loader,
		locales:   locale.NewResolver(),
		formatter: message.NewFormatter(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// UseContent implements interfaces.ContentInjector. Loader errors are
// returned unchanged and nothing is written.
func (i *Injector) UseContent(ctx context.Context, w io.Writer, rc interfaces.RenderContext, block interfaces.Template, bundle string) error {
	if i == nil || i.loader == nil {
		return errors.New("injection: content loader not configured")
	}
	mapping, err := i.loader.Resolve(ctx, rc, bundle)
	if err != nil {
		return err
	}
	if block == nil {
		return nil
	}

	tag, _ := i.locales.Resolve(rc)
	child := rc.Push(map[string]any{
		ContentKey: mapping,
		BundleKey:  bundle,
		LocaleKey:  tag,
		MessageKey: i.messageFunc(mapping, bundle, tag),
		MarkupKey:  i.annotate,
	})
	return block.Render(ctx, child, w)
}

func (i *Injector) messageFunc(mapping interfaces.ContentMapping, bundle, tag string) MessageFunc {
	return func(key string, args ...any) string {
		text, meta, err := i.formatter.FormatWithMetadata(mapping, tag, bundle, key, templateData(args))
		if err != nil {
			i.logger.Warn("content.message.failed", "bundle", bundle, "locale", tag, "key", key, "error", err)
		}
		if i.annotate {
			return message.Annotate(text, meta)
		}
		return text
	}
}

func templateData(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	if len(args) == 1 {
		if data, ok := args[0].(map[string]any); ok {
			return data
		}
	}
	data := make(map[string]any, len(args)/2)
	for idx := 0; idx+1 < len(args); idx += 2 {
		data[fmt.Sprint(args[idx])] = args[idx+1]
	}
	return data
}
