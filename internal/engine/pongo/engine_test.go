package pongo

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-usecontent/internal/bundlecache"
	"github.com/goliatone/go-usecontent/internal/content"
	"github.com/goliatone/go-usecontent/internal/injection"
	"github.com/goliatone/go-usecontent/internal/interceptor"
	"github.com/goliatone/go-usecontent/internal/views"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/hello.html":           {Data: []byte("Hello {{ name }}")},
		"templates/home.html":            {Data: []byte(`<h1>{{ content.title }}</h1>{{ message("title") }}{% include "partials/footer.html" %}`)},
		"templates/partials/footer.html": {Data: []byte("<footer>{{ contentBundle }}</footer>")},
		"locales/US/en/home.properties":  {Data: []byte("title=Welcome")},
		"locales/home.properties":        {Data: []byte("title=Hi")},
	}
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	templates, err := fs.Sub(siteFS(), "templates")
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	base := []Option{
		WithLoadHook(FSLoader(templates, ".html")),
		WithTemplateLoader(TemplateLoader(templates)),
	}
	return New(append(base, opts...)...)
}

func TestRenderCompilesAndRegisters(t *testing.T) {
	engine := newEngine(t)

	var out bytes.Buffer
	if err := engine.Render(context.Background(), "hello", map[string]any{"name": "Ada"}, &out); err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.String() != "Hello Ada" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if _, ok := engine.Registered("hello"); !ok {
		t.Fatalf("expected template to be registered while caching")
	}
}

func TestCacheFlagIsMutable(t *testing.T) {
	engine := newEngine(t, WithCache(false))
	if engine.CacheEnabled() {
		t.Fatalf("expected cache disabled")
	}
	if _, err := engine.Load(context.Background(), "hello", nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := engine.Registered("hello"); ok {
		t.Fatalf("nothing should be registered while caching is off")
	}

	engine.SetCacheEnabled(true)
	if !engine.CacheEnabled() {
		t.Fatalf("expected cache enabled")
	}
}

func TestLoadWithoutHook(t *testing.T) {
	_, err := New().Load(context.Background(), "hello", nil)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestCompileReportsSyntaxErrors(t *testing.T) {
	if _, err := New().Compile("broken", "{% if %}"); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestIsTemplate(t *testing.T) {
	engine := New()
	tmpl, err := engine.Compile("x", "x")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !engine.IsTemplate(tmpl) {
		t.Fatalf("compiled templates are templates")
	}
	if engine.IsTemplate("x") {
		t.Fatalf("source is not a template")
	}
}

func TestContextFramesShadowParents(t *testing.T) {
	root := NewContext("home", map[string]any{"a": 1, "b": 2}, interfaces.RenderOptions{})
	child := root.Push(map[string]any{"b": 3})

	if v, _ := child.Get("b"); v != 3 {
		t.Fatalf("child frame should shadow parent, got %v", v)
	}
	if v, _ := child.Get("a"); v != 1 {
		t.Fatalf("parent values should remain visible, got %v", v)
	}
	values := child.(*Context).Values()
	if values["a"] != 1 || values["b"] != 3 {
		t.Fatalf("unexpected flattened values %v", values)
	}
	if child.TemplateName() != "home" {
		t.Fatalf("pushed frames keep the template name")
	}
}

func TestRenderWithContentInterceptor(t *testing.T) {
	view := views.NewFSResolver(siteFS(), "locales")
	engine := newEngine(t, WithView(view))

	resolver := content.NewResolver(bundlecache.New(engine), content.WithFileReader(view))
	if _, err := interceptor.Install(engine, injection.New(resolver)); err != nil {
		t.Fatalf("install: %v", err)
	}

	cases := []struct {
		data map[string]any
		want string
	}{
		{map[string]any{"locale": "en-US"}, "<h1>Welcome</h1>Welcome<footer>home.properties</footer>"},
		{nil, "<h1>Hi</h1>Hi<footer>home.properties</footer>"},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		if err := engine.Render(context.Background(), "home", tc.data, &out); err != nil {
			t.Fatalf("render: %v", err)
		}
		if out.String() != tc.want {
			t.Fatalf("want %q got %q", tc.want, out.String())
		}
	}

	registered, ok := engine.Registered("home")
	if !ok {
		t.Fatalf("expected wrapper to be registered")
	}
	if _, ok := registered.(*interceptor.Wrapped); !ok {
		t.Fatalf("expected wrapped template, got %T", registered)
	}
}

func TestRenderWithoutViewFails(t *testing.T) {
	engine := newEngine(t)
	resolver := content.NewResolver(bundlecache.New(engine))
	if _, err := interceptor.Install(engine, injection.New(resolver)); err != nil {
		t.Fatalf("install: %v", err)
	}

	var out bytes.Buffer
	err := engine.Render(context.Background(), "home", nil, &out)
	if !errors.Is(err, content.ErrNoView) {
		t.Fatalf("expected missing view, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}
