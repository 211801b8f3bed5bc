package pongo

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// DefaultExtension is appended to template names by FSLoader.
const DefaultExtension = ".html"

// FSLoader returns a two-argument load hook reading name+ext from fsys.
func FSLoader(fsys fs.FS, ext string) interfaces.LoadHook {
	if ext == "" {
		ext = DefaultExtension
	}
	return interfaces.SimpleHook(func(ctx context.Context, name string) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, clean(name)+ext)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	})
}

// TemplateLoader adapts fsys to pongo2 so include and extends resolve
// against the same tree the load hook reads from.
func TemplateLoader(fsys fs.FS) pongo2.TemplateLoader {
	return fsTemplateLoader{fsys: fsys}
}

type fsTemplateLoader struct {
	fsys fs.FS
}

func (l fsTemplateLoader) Abs(base, name string) string {
	if strings.HasPrefix(name, "/") || base == "" {
		return clean(name)
	}
	return clean(path.Join(path.Dir(base), name))
}

func (l fsTemplateLoader) Get(name string) (io.Reader, error) {
	data, err := fs.ReadFile(l.fsys, clean(name))
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func clean(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}
