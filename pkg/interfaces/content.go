package interfaces

import (
	"context"
	"errors"
	"io"
)

// ErrNoLoadHook is returned when a zero LoadHook is invoked.
var ErrNoLoadHook = errors.New("interfaces: load hook not configured")

// ContentMapping is a flat key/value bundle produced by a Parser. Cached
// mappings are shared between renders and must never be mutated.
type ContentMapping map[string]string

// Lookup returns the value stored for key.
func (m ContentMapping) Lookup(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	value, ok := m[key]
	return value, ok
}

// Clone returns a copy callers may modify freely.
func (m ContentMapping) Clone() ContentMapping {
	if m == nil {
		return nil
	}
	out := make(ContentMapping, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// Parser turns raw bundle text into a ContentMapping.
type Parser interface {
	Parse(location string, data []byte) (ContentMapping, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(location string, data []byte) (ContentMapping, error)

// Parse implements Parser.
func (f ParserFunc) Parse(location string, data []byte) (ContentMapping, error) {
	return f(location, data)
}

// FileReader reads the full contents of a location returned by a view.
type FileReader interface {
	ReadFile(ctx context.Context, location string) ([]byte, error)
}

// FileReaderFunc adapts a function to FileReader.
type FileReaderFunc func(ctx context.Context, location string) ([]byte, error)

// ReadFile implements FileReader.
func (f FileReaderFunc) ReadFile(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// ContentLoader resolves the bundle for the locale active in rc.
type ContentLoader interface {
	Resolve(ctx context.Context, rc RenderContext, bundle string) (ContentMapping, error)
}

// ContentInjector renders block with the named bundle made available to it.
type ContentInjector interface {
	UseContent(ctx context.Context, w io.Writer, rc RenderContext, block Template, bundle string) error
}
