package content

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-usecontent/internal/bundlecache"
	"github.com/goliatone/go-usecontent/internal/locale"
	"github.com/goliatone/go-usecontent/internal/views"
	"github.com/goliatone/go-usecontent/pkg/interfaces"
	"github.com/goliatone/go-usecontent/pkg/testsupport"
)

type cacheFlag bool

func (f *cacheFlag) CacheEnabled() bool { return bool(*f) }

func newFixture(cacheOn bool, opts ...Option) (*Resolver, *testsupport.View, *testsupport.Reader, *cacheFlag) {
	flag := cacheFlag(cacheOn)
	view := &testsupport.View{}
	reader := &testsupport.Reader{Files: map[string]string{
		"home.properties@en-US": "title=Welcome",
		"home.properties@":      "title=Hi",
		"broken.properties@":    "<<<",
	}}
	opts = append([]Option{WithFileReader(reader)}, opts...)
	return NewResolver(bundlecache.New(&flag), opts...), view, reader, &flag
}

func homeContext(view *testsupport.View) *testsupport.RenderContext {
	return testsupport.NewRenderContext("home", map[string]any{
		"locality": locale.Locality{Language: "en", Country: "US"},
	}).WithView(view)
}

func samePointer(a, b interfaces.ContentMapping) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestResolveCachesPerBundleAndLocale(t *testing.T) {
	resolver, view, reader, _ := newFixture(true)
	ctx := context.Background()
	rc := homeContext(view)

	first, err := resolver.Resolve(ctx, rc, "home.properties")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first["title"] != "Welcome" {
		t.Fatalf("unexpected mapping %v", first)
	}

	second, err := resolver.Resolve(ctx, rc, "home.properties")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if !samePointer(first, second) {
		t.Fatalf("expected the cached mapping to be returned")
	}
	calls := view.Calls()
	if len(calls) != 1 || reader.Reads() != 1 {
		t.Fatalf("expected one lookup and one read, got %d lookups %d reads", len(calls), reader.Reads())
	}
	if calls[0] != (testsupport.LookupCall{Bundle: "home.properties", Locale: "en-US"}) {
		t.Fatalf("unexpected lookup %+v", calls[0])
	}
	if _, ok := resolver.cache.Get("home.properties#en-US"); !ok {
		t.Fatalf("expected entry under home.properties#en-US")
	}
}

func TestResolveWithoutCacheRepeatsIO(t *testing.T) {
	resolver, view, reader, _ := newFixture(false)
	ctx := context.Background()
	rc := homeContext(view)

	for i := 0; i < 2; i++ {
		got, err := resolver.Resolve(ctx, rc, "home.properties")
		if err != nil || got["title"] != "Welcome" {
			t.Fatalf("resolve %d: %v %v", i, got, err)
		}
	}
	if len(view.Calls()) != 2 || reader.Reads() != 2 {
		t.Fatalf("expected independent lookups, got %d lookups %d reads", len(view.Calls()), reader.Reads())
	}
	if resolver.cache.Len() != 0 {
		t.Fatalf("expected nothing cached while disabled")
	}
}

func TestResolveFlagIsReadPerLookup(t *testing.T) {
	resolver, view, reader, flag := newFixture(false)
	ctx := context.Background()
	rc := homeContext(view)

	if _, err := resolver.Resolve(ctx, rc, "home.properties"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	*flag = true
	for i := 0; i < 2; i++ {
		if _, err := resolver.Resolve(ctx, rc, "home.properties"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if reader.Reads() != 2 {
		t.Fatalf("expected the toggle to take effect on the next lookup, got %d reads", reader.Reads())
	}
}

func TestResolveWithoutLocaleUsesLocalelessKey(t *testing.T) {
	resolver, view, _, _ := newFixture(true)
	rc := testsupport.NewRenderContext("home", nil).WithView(view)

	got, err := resolver.Resolve(context.Background(), rc, "home.properties")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got["title"] != "Hi" {
		t.Fatalf("unexpected mapping %v", got)
	}
	if _, ok := resolver.cache.Get("home.properties#"); !ok {
		t.Fatalf("expected locale-less cache key")
	}
}

func TestResolveMissingViewIsReturned(t *testing.T) {
	resolver, _, reader, _ := newFixture(true)
	rc := testsupport.NewRenderContext("greeting", nil)

	got, err := resolver.Resolve(context.Background(), rc, "greeting.properties")
	if err == nil || got != nil {
		t.Fatalf("expected missing view error, got %v %v", got, err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "'greeting'") || !strings.Contains(msg, "'greeting.properties'") {
		t.Fatalf("error should name template and bundle: %s", msg)
	}
	if !errors.Is(err, ErrNoView) {
		t.Fatalf("expected ErrNoView, got %v", err)
	}
	var missing *MissingViewError
	if !errors.As(err, &missing) || missing.Bundle != "greeting.properties" {
		t.Fatalf("expected MissingViewError, got %T", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category")
	}
	if reader.Reads() != 0 {
		t.Fatalf("no I/O expected")
	}

	if _, err := resolver.Resolve(context.Background(), nil, "x.properties"); !errors.Is(err, ErrNoView) {
		t.Fatalf("nil context should report missing view, got %v", err)
	}
}

func TestResolvePropagatesLookupAndReadErrorsUnchanged(t *testing.T) {
	lookupErr := errors.New("lookup failed")
	resolver, view, reader, _ := newFixture(true)
	view.Err = lookupErr

	_, err := resolver.Resolve(context.Background(), homeContext(view), "home.properties")
	if err != lookupErr {
		t.Fatalf("expected lookup error unchanged, got %v", err)
	}
	if reader.Reads() != 0 {
		t.Fatalf("read must not happen after failed lookup")
	}

	readErr := errors.New("disk on fire")
	view.Err = nil
	reader.Err = readErr
	_, err = resolver.Resolve(context.Background(), homeContext(view), "home.properties")
	if err != readErr {
		t.Fatalf("expected read error unchanged, got %v", err)
	}
}

func TestResolveParseErrorIsNotCached(t *testing.T) {
	syntaxErr := errors.New("bad syntax")
	failing := interfaces.ParserFunc(func(string, []byte) (interfaces.ContentMapping, error) {
		return nil, syntaxErr
	})
	resolver, view, reader, _ := newFixture(true, WithParser(failing))
	rc := testsupport.NewRenderContext("broken", nil).WithView(view)

	for i := 0; i < 2; i++ {
		_, err := resolver.Resolve(context.Background(), rc, "broken.properties")
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if parseErr.Location != "broken.properties@" {
			t.Fatalf("unexpected location %q", parseErr.Location)
		}
		if !errors.Is(err, syntaxErr) {
			t.Fatalf("expected parser error to be wrapped, got %v", err)
		}
		if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
			t.Fatalf("expected bad input category")
		}
	}
	if reader.Reads() != 2 {
		t.Fatalf("parse failures must not be cached, got %d reads", reader.Reads())
	}
}

func TestConcurrentMissesAreNotDeduplicatedByDefault(t *testing.T) {
	resolver, view, reader, _ := newFixture(true)
	reader.Gate = make(chan struct{})
	rc := homeContext(view)

	results := resolveConcurrently(t, resolver, rc, 2, func() {
		waitFor(t, func() bool { return reader.Reads() == 2 })
		close(reader.Gate)
	})

	if reader.Reads() != 2 || len(view.Calls()) != 2 {
		t.Fatalf("expected duplicate I/O, got %d reads", reader.Reads())
	}
	for _, got := range results {
		if got["title"] != "Welcome" {
			t.Fatalf("unexpected mapping %v", got)
		}
	}
	if resolver.cache.Len() != 1 {
		t.Fatalf("expected single cache entry after the race")
	}
}

func TestInflightDedupeSharesSingleLoad(t *testing.T) {
	resolver, view, reader, _ := newFixture(true, WithInflightDedupe(true))
	reader.Gate = make(chan struct{})
	rc := homeContext(view)

	results := resolveConcurrently(t, resolver, rc, 3, func() {
		waitFor(t, func() bool { return reader.Reads() == 1 })
		time.Sleep(50 * time.Millisecond)
		close(reader.Gate)
	})

	if reader.Reads() != 1 || len(view.Calls()) != 1 {
		t.Fatalf("expected a single shared load, got %d reads", reader.Reads())
	}
	for _, got := range results[1:] {
		if !samePointer(results[0], got) {
			t.Fatalf("expected waiters to share the mapping")
		}
	}
}

func resolveConcurrently(t *testing.T, resolver *Resolver, rc interfaces.RenderContext, n int, release func()) []interfaces.ContentMapping {
	t.Helper()
	results := make([]interfaces.ContentMapping, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = resolver.Resolve(context.Background(), rc, "home.properties")
		}(i)
	}
	release()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	return results
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestResolveReadsThroughViewWithoutReader(t *testing.T) {
	flag := cacheFlag(true)
	view := views.NewFSResolver(fstest.MapFS{
		"bundles/US/en/home.properties": {Data: []byte("title=Welcome")},
	}, "bundles")
	resolver := NewResolver(bundlecache.New(&flag))

	rc := testsupport.NewRenderContext("home", map[string]any{"locale": "en-US"}).WithView(view)
	mapping, err := resolver.Resolve(context.Background(), rc, "home.properties")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if mapping["title"] != "Welcome" {
		t.Fatalf("unexpected mapping %v", mapping)
	}
}

type ctxKey struct{}

type contextLogger struct {
	mu       sync.Mutex
	contexts []context.Context
}

func (l *contextLogger) Trace(string, ...any) {}
func (l *contextLogger) Debug(string, ...any) {}
func (l *contextLogger) Info(string, ...any)  {}
func (l *contextLogger) Warn(string, ...any)  {}
func (l *contextLogger) Error(string, ...any) {}
func (l *contextLogger) Fatal(string, ...any) {}

func (l *contextLogger) WithContext(ctx context.Context) interfaces.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contexts = append(l.contexts, ctx)
	return l
}

func TestResolveLogsWithRequestContext(t *testing.T) {
	logger := &contextLogger{}
	resolver, view, _, _ := newFixture(true, WithLogger(logger))

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	if _, err := resolver.Resolve(ctx, homeContext(view), "home.properties"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(logger.contexts) == 0 || logger.contexts[0].Value(ctxKey{}) != "req-1" {
		t.Fatalf("expected resolver logs to carry the request context")
	}
}
