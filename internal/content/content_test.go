package content

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/locale"
)

// fakeStore serves records from a map and listings from pre-built pages.
type fakeStore struct {
	mu       sync.Mutex
	records  map[string]cms.Item
	pages    []cms.Page
	failPage int
	oneErr   error
	oneCalls atomic.Int32
	fetched  []string
}

func newFakeStore(paths ...string) *fakeStore {
	s := &fakeStore{records: map[string]cms.Item{}}
	for _, p := range paths {
		s.records[p] = item(p)
	}
	return s
}

func item(rel string) cms.Item {
	crumbs := cms.BreadcrumbsOf(rel)
	return cms.Item{
		Type:         cms.TypePages,
		RelativePath: rel,
		Breadcrumbs:  crumbs,
		Locale:       cms.LocaleOf("", crumbs),
		Title:        rel,
	}
}

func (s *fakeStore) FetchOne(ctx context.Context, typeTag, rel string) (cms.Item, error) {
	s.oneCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, rel)
	if s.oneErr != nil {
		return cms.Item{}, s.oneErr
	}
	it, ok := s.records[rel]
	if !ok {
		return cms.Item{}, cms.ErrNotFound
	}
	return it.Clone(), nil
}

func (s *fakeStore) FetchPage(ctx context.Context, typeTag, after string) (cms.Page, error) {
	idx := 0
	if after != "" {
		n, err := strconv.Atoi(after)
		if err != nil {
			return cms.Page{}, err
		}
		idx = n
	}
	if s.failPage > 0 && idx+1 == s.failPage {
		return cms.Page{}, errors.New("upstream unavailable")
	}
	if idx >= len(s.pages) {
		return cms.Page{}, nil
	}
	return s.pages[idx], nil
}

func pagesOf(sizes ...int) []cms.Page {
	var pages []cms.Page
	n := 0
	for i, size := range sizes {
		page := cms.Page{}
		for j := 0; j < size; j++ {
			page.Items = append(page.Items, item(fmt.Sprintf("item-%d.mdx", n)))
			n++
		}
		if i < len(sizes)-1 {
			page.HasMore = true
			page.NextCursor = strconv.Itoa(i + 1)
		}
		pages = append(pages, page)
	}
	return pages
}

func TestResolvePrefersLocalizedRecord(t *testing.T) {
	store := newFakeStore("ateliers/danse.mdx", "ateliers/danse.de.mdx")
	r := NewResolver(store, cms.TypePages, nil)

	got, err := r.Resolve(context.Background(), []string{"ateliers", "danse"}, "de")
	require.NoError(t, err)
	require.Equal(t, "ateliers/danse.de.mdx", got.RelativePath)
	require.Equal(t, locale.DE, got.Locale)
}

func TestResolveFallsBackToDefaultRecord(t *testing.T) {
	store := newFakeStore("ateliers/danse.mdx")
	r := NewResolver(store, cms.TypePages, nil)

	got, err := r.Resolve(context.Background(), []string{"ateliers", "danse"}, "de")
	require.NoError(t, err)
	require.Equal(t, "ateliers/danse.mdx", got.RelativePath)
	require.Equal(t, []string{"ateliers/danse.de.mdx", "ateliers/danse.mdx"}, store.fetched)

	res, err := r.ResolveWithSource(context.Background(), []string{"ateliers", "danse"}, "de")
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.Equal(t, "ateliers/danse.mdx", res.Candidate)

	res, err = r.ResolveWithSource(context.Background(), []string{"ateliers", "danse"}, "fr")
	require.NoError(t, err)
	require.False(t, res.Fallback)
}

func TestResolveNotFound(t *testing.T) {
	store := newFakeStore("about.mdx")
	r := NewResolver(store, cms.TypePages, nil)

	for _, loc := range locale.Strings() {
		_, err := r.Resolve(context.Background(), []string{"contact"}, loc)
		require.ErrorIs(t, err, ErrNotFound, loc)
	}
}

func TestResolveInvalidLocaleSkipsStore(t *testing.T) {
	store := newFakeStore("about.mdx", "about.xx.mdx")
	r := NewResolver(store, cms.TypePages, nil)

	for _, loc := range []string{"xx", "", "fr-FR", "../fr"} {
		_, err := r.Resolve(context.Background(), []string{"about"}, loc)
		require.ErrorIs(t, err, ErrNotFound)
	}
	require.Zero(t, store.oneCalls.Load())
}

func TestResolveRejectsMalformedPaths(t *testing.T) {
	store := newFakeStore("about.mdx")
	r := NewResolver(store, cms.TypePages, nil)

	_, err := r.Resolve(context.Background(), nil, "fr")
	require.ErrorIs(t, err, ErrNotFound)
	for _, path := range [][]string{{"a", ""}, {"..", "secret"}, {"."}, {"a/b"}, {`a\b`}} {
		_, err = r.Resolve(context.Background(), path, "fr")
		require.ErrorIs(t, err, ErrNotFound, path)
	}
	require.Zero(t, store.oneCalls.Load())
}

func TestResolveTreatsStoreFailureAsAbsent(t *testing.T) {
	store := newFakeStore("about.mdx")
	store.oneErr = errors.New("connection reset")
	r := NewResolver(store, cms.TypePages, nil)

	_, err := r.Resolve(context.Background(), []string{"about"}, "en")
	require.ErrorIs(t, err, ErrNotFound)
	require.EqualValues(t, 2, store.oneCalls.Load())
}

func TestResolveReturnsContextError(t *testing.T) {
	store := newFakeStore("about.mdx")
	store.oneErr = errors.New("request aborted")
	r := NewResolver(store, cms.TypePages, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, []string{"about"}, "de")
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrNotFound)
	require.EqualValues(t, 1, store.oneCalls.Load())
}

func TestResolveRequiresExactLocale(t *testing.T) {
	store := newFakeStore("about.mdx", "about.de.mdx")
	r := NewResolver(store, cms.TypePages, nil)

	for _, loc := range []string{"DE", " de", "de ", "Fr"} {
		_, err := r.Resolve(context.Background(), []string{"about"}, loc)
		require.ErrorIs(t, err, ErrNotFound, loc)
	}
	require.Zero(t, store.oneCalls.Load())
}

func TestEnumerateNestedPage(t *testing.T) {
	store := newFakeStore()
	store.pages = []cms.Page{{Items: []cms.Item{item("ateliers/danse.mdx")}}}
	e := NewEnumerator(store, nil)

	routes, err := e.Enumerate(context.Background(), cms.TypePages)
	require.NoError(t, err)
	require.Equal(t, []RouteParam{
		{Locale: locale.DE, Path: []string{"ateliers", "danse"}},
		{Locale: locale.EN, Path: []string{"ateliers", "danse"}},
		{Locale: locale.SR, Path: []string{"ateliers", "danse"}},
	}, routes)
}

func TestEnumerateCountsAcrossPages(t *testing.T) {
	sizes := []int{3, 5, 1, 4}
	store := newFakeStore()
	store.pages = pagesOf(sizes...)
	e := NewEnumerator(store, nil)

	routes, err := e.Enumerate(context.Background(), cms.TypePages)
	require.NoError(t, err)
	require.Len(t, routes, (3+5+1+4)*(len(locale.All())-1))
	require.Equal(t, locale.DE, routes[0].Locale)
	require.Equal(t, locale.SR, routes[len(routes)-1].Locale)
}

func TestEnumerateSkipsLocaleSuffixedRecords(t *testing.T) {
	store := newFakeStore()
	store.pages = []cms.Page{
		{Items: []cms.Item{item("about.mdx"), item("about.de.mdx")}, HasMore: true, NextCursor: "1"},
		{Items: []cms.Item{item("ateliers/danse.sr.mdx"), item("ateliers.en/theatre.mdx")}},
	}
	e := NewEnumerator(store, nil)

	routes, err := e.Enumerate(context.Background(), cms.TypePages)
	require.NoError(t, err)
	require.Len(t, routes, 6)
	for _, r := range routes {
		require.False(t, locale.HasSuffix(r.Path[len(r.Path)-1]), r.Path)
		require.False(t, r.Locale.IsDefault())
	}
	require.Equal(t, []string{"ateliers", "theatre"}, routes[1].Path)
}

func TestEnumerateEmptyStore(t *testing.T) {
	e := NewEnumerator(newFakeStore(), nil)
	routes, err := e.Enumerate(context.Background(), cms.TypeAgenda)
	require.NoError(t, err)
	require.Empty(t, routes)
}

// repeatingStore returns a full page with the same cursor on every call.
type repeatingStore struct {
	fakeStore
	calls atomic.Int32
}

func (s *repeatingStore) FetchPage(ctx context.Context, typeTag, after string) (cms.Page, error) {
	n := s.calls.Add(1)
	return cms.Page{
		Items:      []cms.Item{item(fmt.Sprintf("loop-%d.mdx", n))},
		HasMore:    true,
		NextCursor: "again",
	}, nil
}

func TestEnumerateStopsOnRepeatedCursor(t *testing.T) {
	store := &repeatingStore{}
	e := NewEnumerator(store, nil)

	routes, err := e.Enumerate(context.Background(), cms.TypePages)
	require.NoError(t, err)
	require.EqualValues(t, 2, store.calls.Load())
	require.Len(t, routes, 2*len(locale.NonDefault()))
}

func TestEnumerateStopsOnEmptyPage(t *testing.T) {
	store := newFakeStore()
	store.pages = []cms.Page{
		{Items: []cms.Item{item("a.mdx")}, HasMore: true, NextCursor: "1"},
		{HasMore: true, NextCursor: "2"},
		{Items: []cms.Item{item("b.mdx")}},
	}
	e := NewEnumerator(store, nil)
	routes, err := e.Enumerate(context.Background(), cms.TypePages)
	require.NoError(t, err)
	require.Len(t, routes, 3)
}

func TestEnumeratePaginationFailureKeepsEarlierPages(t *testing.T) {
	store := newFakeStore()
	store.pages = pagesOf(2, 2, 2)
	store.failPage = 2
	e := NewEnumerator(store, nil)

	routes, err := e.Enumerate(context.Background(), cms.TypePages)
	require.ErrorIs(t, err, ErrPaginationFailure)
	require.Contains(t, err.Error(), "upstream unavailable")
	require.Len(t, routes, 2*3)
}

func TestEnumerateDefault(t *testing.T) {
	store := newFakeStore()
	store.pages = []cms.Page{{Items: []cms.Item{item("index.mdx"), item("index.en.mdx"), item("ateliers/danse.mdx")}}}
	e := NewEnumerator(store, nil)

	routes, err := e.EnumerateDefault(context.Background(), cms.TypePages)
	require.NoError(t, err)
	require.Equal(t, []RouteParam{
		{Locale: locale.FR, Path: []string{"index"}},
		{Locale: locale.FR, Path: []string{"ateliers", "danse"}},
	}, routes)
	require.Equal(t, "/", routes[0].URLPath())
	require.Equal(t, "/ateliers/danse", routes[1].URLPath())
}

func TestRouteParamURLPath(t *testing.T) {
	require.Equal(t, "/de", RouteParam{Locale: locale.DE, Path: []string{"index"}}.URLPath())
	require.Equal(t, "/sr/team", RouteParam{Locale: locale.SR, Path: []string{"team"}}.URLPath())
	require.Equal(t, "/ateliers", RouteParam{Locale: locale.FR, Path: []string{"ateliers", "index"}}.URLPath())
}

func TestCacheRevalidates(t *testing.T) {
	store := newFakeStore("about.mdx")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewCache(NewResolver(store, cms.TypePages, nil), NewEnumerator(store, nil), time.Minute, WithClock(clock))
	ctx := context.Background()

	_, err := c.Resolve(ctx, []string{"about"}, "fr")
	require.NoError(t, err)
	calls := store.oneCalls.Load()

	_, err = c.Resolve(ctx, []string{"about"}, "fr")
	require.NoError(t, err)
	require.Equal(t, calls, store.oneCalls.Load())

	now = now.Add(2 * time.Minute)
	_, err = c.Resolve(ctx, []string{"about"}, "fr")
	require.NoError(t, err)
	require.Greater(t, store.oneCalls.Load(), calls)
}

func TestCacheDoesNotStoreNotFound(t *testing.T) {
	store := newFakeStore()
	c := NewCache(NewResolver(store, cms.TypePages, nil), NewEnumerator(store, nil), 0)
	ctx := context.Background()

	_, err := c.Resolve(ctx, []string{"about"}, "fr")
	require.ErrorIs(t, err, ErrNotFound)

	store.mu.Lock()
	store.records["about.mdx"] = item("about.mdx")
	store.mu.Unlock()

	got, err := c.Resolve(ctx, []string{"about"}, "fr")
	require.NoError(t, err)
	require.Equal(t, "about.mdx", got.RelativePath)
}

func TestCacheRejectsMalformedPaths(t *testing.T) {
	store := newFakeStore("a/b.mdx")
	c := NewCache(NewResolver(store, cms.TypePages, nil), NewEnumerator(store, nil), 0)
	ctx := context.Background()

	got, err := c.Resolve(ctx, []string{"a", "b"}, "fr")
	require.NoError(t, err)
	require.Equal(t, "a/b.mdx", got.RelativePath)

	_, err = c.Resolve(ctx, []string{"a/b"}, "fr")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Resolve(ctx, []string{"a", "b"}, "FR")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCacheReturnsCopies(t *testing.T) {
	store := newFakeStore("ateliers/danse.mdx")
	c := NewCache(NewResolver(store, cms.TypePages, nil), NewEnumerator(store, nil), 0)

	got, err := c.Resolve(context.Background(), []string{"ateliers", "danse"}, "fr")
	require.NoError(t, err)
	got.Breadcrumbs[0] = "mutated"

	again, err := c.Resolve(context.Background(), []string{"ateliers", "danse"}, "fr")
	require.NoError(t, err)
	require.Equal(t, "ateliers", again.Breadcrumbs[0])
}

func TestCacheItemsSkipsPartialListings(t *testing.T) {
	store := newFakeStore()
	store.pages = pagesOf(1, 1)
	store.failPage = 2
	c := NewCache(NewResolver(store, cms.TypePages, nil), NewEnumerator(store, nil), 0)

	items, err := c.Items(context.Background(), cms.TypePages)
	require.ErrorIs(t, err, ErrPaginationFailure)
	require.Len(t, items, 1)

	store.failPage = 0
	items, err = c.Items(context.Background(), cms.TypePages)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestCanonical(t *testing.T) {
	items := []cms.Item{item("team.mdx"), item("team.de.mdx"), item("agenda.mdx")}
	got := Canonical(items)
	require.Len(t, got, 2)
	require.Equal(t, "agenda.mdx", got[1].RelativePath)
}
