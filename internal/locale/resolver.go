package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-usecontent/internal/logging"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// DefaultSignals lists the render context keys checked for a locale, most
// specific (per-request overrides) first.
var DefaultSignals = []string{"contextLocale", "contentLocality", "locale", "locality"}

// Locality is the structured locale shape hosts push onto a render context.
type Locality struct {
	Language string
	Country  string
	Script   string
	Variants []string
}

// IsZero reports whether no field is set.
func (l Locality) IsZero() bool {
	return l.Language == "" && l.Country == "" && l.Script == "" && len(l.Variants) == 0
}

// Resolver derives a canonical locale tag from a render context.
type Resolver struct {
	signals []string
	logger  interfaces.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSignals overrides the checked context keys. Empty input keeps the defaults.
func WithSignals(keys ...string) Option {
	return func(r *Resolver) {
		cleaned := make([]string, 0, len(keys))
		for _, key := range keys {
			if trimmed := strings.TrimSpace(key); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			r.signals = cleaned
		}
	}
}

// WithLogger sets the logger used for normalisation diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a Resolver probing DefaultSignals.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		signals: append([]string(nil), DefaultSignals...),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Signals returns the checked keys in priority order.
func (r *Resolver) Signals() []string {
	return append([]string(nil), r.signals...)
}

// Resolve returns the locale for rc. ok is false when no locale could be
// determined; callers treat that as a valid, locale-less request.
func (r *Resolver) Resolve(rc interfaces.RenderContext) (string, bool) {
	if rc == nil {
		return "", false
	}
	for _, key := range r.signals {
		value, found := rc.Get(key)
		if !found || !truthy(value) {
			continue
		}
		tag, ok := r.Normalize(value)
		r.logger.Debug("locale.resolved", "signal", key, "locale", tag, "known", ok)
		return tag, ok
	}
	return "", false
}

// Normalize converts a locale value into a tag string.
func (r *Resolver) Normalize(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case language.Tag:
		if v == language.Und {
			return "", false
		}
		return v.String(), true
	case Locality:
		return r.fromLocality(v)
	case *Locality:
		if v == nil {
			return "", false
		}
		return r.fromLocality(*v)
	case map[string]string:
		return r.fromLocality(Locality{
			Language: v["language"],
			Country:  first(v["country"], v["region"]),
			Script:   v["script"],
		})
	case map[string]any:
		return r.fromLocality(localityFromMap(v))
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		r.logger.Debug("locale.unsupported", "type", fmt.Sprintf("%T", value))
		return "", false
	}
}

func (r *Resolver) fromLocality(l Locality) (string, bool) {
	if l.IsZero() {
		return "", false
	}
	if l.Language != "" && l.Country != "" {
		return l.Language + "-" + l.Country, true
	}
	tag, err := Compose(l)
	if err != nil {
		r.logger.Debug("locale.compose.failed", "error", err)
		return "", false
	}
	return tag, tag != ""
}

// Compose renders a Locality as a canonical BCP-47 tag.
func Compose(l Locality) (string, error) {
	if strings.TrimSpace(l.Language) == "" {
		return "", fmt.Errorf("locale: language is required to compose %+v", l)
	}
	parts := make([]any, 0, 3+len(l.Variants))

	base, err := language.ParseBase(l.Language)
	if err != nil {
		return "", fmt.Errorf("locale: language %q: %w", l.Language, err)
	}
	parts = append(parts, base)

	if l.Script != "" {
		script, err := language.ParseScript(l.Script)
		if err != nil {
			return "", fmt.Errorf("locale: script %q: %w", l.Script, err)
		}
		parts = append(parts, script)
	}
	if l.Country != "" {
		region, err := language.ParseRegion(l.Country)
		if err != nil {
			return "", fmt.Errorf("locale: region %q: %w", l.Country, err)
		}
		parts = append(parts, region)
	}
	for _, raw := range l.Variants {
		variant, err := language.ParseVariant(raw)
		if err != nil {
			return "", fmt.Errorf("locale: variant %q: %w", raw, err)
		}
		parts = append(parts, variant)
	}

	tag, err := language.Compose(parts...)
	if err != nil {
		return "", fmt.Errorf("locale: compose: %w", err)
	}
	return tag.String(), nil
}

func localityFromMap(m map[string]any) Locality {
	l := Locality{
		Language: stringField(m, "language"),
		Country:  first(stringField(m, "country"), stringField(m, "region")),
		Script:   stringField(m, "script"),
	}
	switch variants := m["variants"].(type) {
	case []string:
		l.Variants = append(l.Variants, variants...)
	case []any:
		for _, item := range variants {
			if s, ok := item.(string); ok && s != "" {
				l.Variants = append(l.Variants, s)
			}
		}
	}
	return l
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case Locality:
		return !v.IsZero()
	case *Locality:
		return v != nil && !v.IsZero()
	case language.Tag:
		return v != language.Und
	default:
		return true
	}
}
