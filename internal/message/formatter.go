package message

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// ErrMessageNotFound is returned when a key is absent from a bundle.
var ErrMessageNotFound = errors.New("message: key not found")

// CountKey is the template data entry used to pick a plural form.
const CountKey = "Count"

var pluralSuffixes = []string{"zero", "one", "two", "few", "many", "other"}

// Formatter renders bundle messages with go-i18n interpolation and plural
// selection. Plural variants live next to the base key as key.one, key.other.
type Formatter struct {
	enableMetadata bool
	fallback       language.Tag
	logger         interfaces.Logger
}

var (
	_ interfaces.MessageFormatter             = (*Formatter)(nil)
	_ interfaces.MessageFormatterWithMetadata = (*Formatter)(nil)
)

// Option configures a Formatter.
type Option func(*Formatter)

// WithMetadata toggles source metadata on formatted messages.
func WithMetadata(enabled bool) Option {
	return func(f *Formatter) {
		f.enableMetadata = enabled
	}
}

// WithFallbackLanguage sets the plural rules used for unknown locales.
func WithFallbackLanguage(tag language.Tag) Option {
	return func(f *Formatter) {
		f.fallback = tag
	}
}

// WithLogger sets the formatter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFormatter returns a formatter with English plural fallback.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		fallback: language.English,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// MetadataEnabled reports whether metadata annotations were requested.
func (f *Formatter) MetadataEnabled() bool {
	return f.enableMetadata
}

// Format implements interfaces.MessageFormatter.
func (f *Formatter) Format(content interfaces.ContentMapping, locale, key string, data map[string]any) (string, error) {
	msg, ok := buildMessage(content, key)
	if !ok {
		return key, fmt.Errorf("%w: %s", ErrMessageNotFound, key)
	}
	if !needsLocalizer(msg) {
		return msg.Other, nil
	}

	tag := f.tagFor(locale)
	bundle := i18n.NewBundle(tag)
	if err := bundle.AddMessages(tag, msg); err != nil {
		f.logger.Debug("message.plural.fallback", "locale", locale, "error", err)
		tag = f.fallback
		bundle = i18n.NewBundle(tag)
		if err := bundle.AddMessages(tag, msg); err != nil {
			return key, err
		}
	}

	cfg := &i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	}
	if count, ok := data[CountKey]; ok {
		cfg.PluralCount = count
	}
	return i18n.NewLocalizer(bundle, tag.String()).Localize(cfg)
}

// FormatWithMetadata implements interfaces.MessageFormatterWithMetadata.
// Metadata is nil when the formatter was built without WithMetadata.
func (f *Formatter) FormatWithMetadata(content interfaces.ContentMapping, locale, bundle, key string, data map[string]any) (string, map[string]any, error) {
	text, err := f.Format(content, locale, key, data)
	if !f.enableMetadata {
		return text, nil, err
	}
	return text, map[string]any{
		"key":    key,
		"bundle": bundle,
		"locale": locale,
	}, err
}

// Annotate returns text as escaped HTML wrapped in an <edit> element carrying
// metadata attributes so in-context editors can map rendered copy back to its
// bundle. Without metadata only the escaped text is returned.
func Annotate(text string, meta map[string]any) string {
	if len(meta) == 0 {
		return html.EscapeString(text)
	}
	var b strings.Builder
	b.WriteString("<edit")
	for _, name := range []string{"key", "bundle", "locale"} {
		value, ok := meta[name]
		if !ok {
			continue
		}
		b.WriteString(" data-")
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(fmt.Sprint(value)))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(html.EscapeString(text))
	b.WriteString("</edit>")
	return b.String()
}

func (f *Formatter) tagFor(locale string) language.Tag {
	if locale == "" {
		return f.fallback
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return f.fallback
	}
	base, _ := tag.Base()
	return language.Make(base.String())
}

func buildMessage(content interfaces.ContentMapping, key string) (*i18n.Message, bool) {
	msg := &i18n.Message{ID: key}
	found := false
	if value, ok := content.Lookup(key); ok {
		msg.Other = value
		found = true
	}
	for _, suffix := range pluralSuffixes {
		value, ok := content.Lookup(key + "." + suffix)
		if !ok {
			continue
		}
		found = true
		switch suffix {
		case "zero":
			msg.Zero = value
		case "one":
			msg.One = value
		case "two":
			msg.Two = value
		case "few":
			msg.Few = value
		case "many":
			msg.Many = value
		case "other":
			msg.Other = value
		}
	}
	if found && msg.Other == "" {
		msg.Other = firstNonEmpty(msg.One, msg.Few, msg.Many, msg.Two, msg.Zero)
	}
	return msg, found
}

func needsLocalizer(msg *i18n.Message) bool {
	if msg.Zero != "" || msg.One != "" || msg.Two != "" || msg.Few != "" || msg.Many != "" {
		return true
	}
	return strings.Contains(msg.Other, "{{")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
