package views

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

const bundleNotFoundCode = "CONTENT_BUNDLE_NOT_FOUND"

// ErrBundleNotFound is the root cause of every NotFoundError.
var ErrBundleNotFound = errors.New("views: bundle not found")

// NotFoundError lists the candidate paths checked for a bundle.
type NotFoundError struct {
	Bundle     string
	Locale     string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("views: bundle %q not found for locale %q (tried %s)", e.Bundle, e.Locale, strings.Join(e.Candidates, ", "))
}

func (e *NotFoundError) Unwrap() error {
	return ErrBundleNotFound
}

// FSResolver locates bundles in an fs.FS using a locale fallback chain:
// <COUNTRY>/<language>/<bundle>, <language>/<bundle>, <bundle>.
type FSResolver struct {
	fsys fs.FS
	root string
}

var (
	_ interfaces.ViewResolver = (*FSResolver)(nil)
	_ interfaces.FileReader   = (*FSResolver)(nil)
)

// NewFSResolver resolves bundles below root inside fsys.
func NewFSResolver(fsys fs.FS, root string) *FSResolver {
	root = strings.Trim(path.Clean("/"+root), "/")
	return &FSResolver{fsys: fsys, root: root}
}

// Candidates returns the lookup order for bundle in locale.
func (r *FSResolver) Candidates(bundle, locale string) []string {
	bundle = strings.TrimLeft(path.Clean("/"+bundle), "/")
	language, country := Split(locale)

	out := make([]string, 0, 3)
	if language != "" && country != "" {
		out = append(out, r.join(country, language, bundle))
	}
	if language != "" {
		out = append(out, r.join(language, bundle))
	}
	return append(out, r.join(bundle))
}

// Lookup implements interfaces.ViewResolver.
func (r *FSResolver) Lookup(ctx context.Context, bundle string, opts interfaces.LookupOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	candidates := r.Candidates(bundle, opts.Locale)
	for _, candidate := range candidates {
		info, err := fs.Stat(r.fsys, candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	cause := &NotFoundError{Bundle: bundle, Locale: opts.Locale, Candidates: candidates}
	return "", goerrors.Wrap(cause, goerrors.CategoryNotFound, cause.Error()).
		WithTextCode(bundleNotFoundCode)
}

// ReadFile implements interfaces.FileReader for locations returned by Lookup.
func (r *FSResolver) ReadFile(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(r.fsys, location)
}

func (r *FSResolver) join(parts ...string) string {
	if r.root == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{r.root}, parts...)...)
}

// Split breaks a tag such as "en-US" or "en_US" into language and country.
// Script subtags are skipped so "zh-Hant-TW" yields ("zh", "TW").
func Split(locale string) (string, string) {
	parts := strings.FieldsFunc(locale, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 {
		return "", ""
	}
	language := parts[0]
	for _, part := range parts[1:] {
		if len(part) == 2 || (len(part) == 3 && isDigits(part)) {
			return language, part
		}
	}
	return language, ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// OSReader reads locations from the local filesystem.
type OSReader struct{}

// ReadFile implements interfaces.FileReader.
func (OSReader) ReadFile(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(location)
}
