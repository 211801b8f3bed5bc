package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

var (
	ErrUnsupportedBundleFormat = errors.New("parser: unsupported bundle format")
	ErrInvalidEncoding         = errors.New("parser: bundle is not valid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Registry dispatches to a parser based on the location's file extension.
type Registry struct {
	parsers  map[string]interfaces.Parser
	fallback interfaces.Parser
}

// Option configures a Registry.
type Option func(*Registry)

// WithFallback sets the parser used for unknown extensions. Passing nil makes
// unknown extensions fail with ErrUnsupportedBundleFormat.
func WithFallback(p interfaces.Parser) Option {
	return func(r *Registry) {
		r.fallback = p
	}
}

// WithParser registers p for ext (for example ".ini").
func WithParser(ext string, p interfaces.Parser) Option {
	return func(r *Registry) {
		r.Register(ext, p)
	}
}

// NewRegistry returns a registry that understands .properties, .toml,
// .yaml/.yml and .json bundles and treats anything else as .properties.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{parsers: map[string]interfaces.Parser{}}
	r.Register(".properties", interfaces.ParserFunc(Properties))
	r.Register(".toml", interfaces.ParserFunc(TOML))
	r.Register(".yaml", interfaces.ParserFunc(YAML))
	r.Register(".yml", interfaces.ParserFunc(YAML))
	r.Register(".json", interfaces.ParserFunc(JSON))
	r.fallback = interfaces.ParserFunc(Properties)

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register binds p to ext. The extension is matched case-insensitively.
func (r *Registry) Register(ext string, p interfaces.Parser) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || p == nil {
		return
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.parsers[ext] = p
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Parse implements interfaces.Parser.
func (r *Registry) Parse(location string, data []byte) (interfaces.ContentMapping, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEncoding, location)
	}

	ext := strings.ToLower(filepath.Ext(location))
	p, ok := r.parsers[ext]
	if !ok {
		p = r.fallback
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBundleFormat, ext)
	}
	return p.Parse(location, data)
}

// Properties parses Java-style .properties content. ${key} references are
// kept verbatim; expansion is left to the message formatter.
func Properties(_ string, data []byte) (interfaces.ContentMapping, error) {
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return interfaces.ContentMapping(props.Map()), nil
}

// TOML parses a TOML document, flattening tables into dotted keys.
func TOML(_ string, data []byte) (interfaces.ContentMapping, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return Flatten(doc), nil
}

// YAML parses a YAML document, flattening mappings into dotted keys.
func YAML(_ string, data []byte) (interfaces.ContentMapping, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return Flatten(doc), nil
}

// JSON parses a JSON object, flattening nested objects into dotted keys.
func JSON(_ string, data []byte) (interfaces.ContentMapping, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return Flatten(doc), nil
}

// Flatten converts a nested document into a flat mapping. Nested maps join
// with ".", list items are addressed as key[i].
func Flatten(doc map[string]any) interfaces.ContentMapping {
	out := interfaces.ContentMapping{}
	for key, value := range doc {
		flatten(out, key, value)
	}
	return out
}

func flatten(out interfaces.ContentMapping, key string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(out, join(key, k), child)
		}
	case map[any]any:
		for k, child := range v {
			flatten(out, join(key, fmt.Sprint(k)), child)
		}
	case []any:
		for i, child := range v {
			flatten(out, key+"["+strconv.Itoa(i)+"]", child)
		}
	case []map[string]any:
		for i, child := range v {
			flatten(out, key+"["+strconv.Itoa(i)+"]", child)
		}
	case nil:
		out[key] = ""
	case string:
		out[key] = v
	case time.Time:
		out[key] = v.Format(time.RFC3339)
	case float64:
		out[key] = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		out[key] = fmt.Sprint(v)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
