package hintserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/snipcomplete/internal/catalog"
	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
	"github.com/NikitaCOEUR/snipcomplete/internal/widget"
)

func newCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(catalog.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Seed(context.Background(), &catalog.Fixture{
		Tags: []catalog.Tag{
			{Slug: "green", Count: 5},
			{Slug: "greenlet", Count: 2},
			{Slug: "red", Count: 12},
		},
		Snippets: []catalog.Snippet{
			{Title: "Foo Bar", Author: "alice", URL: "/s/1/"},
			{Title: "Football scores", Author: "bob", URL: "/s/2/"},
		},
	}))
	return store
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type brokenCatalog struct{}

func (brokenCatalog) TagHints(context.Context, string, int) ([]catalog.Tag, error) {
	return nil, errors.New("disk gone")
}

func (brokenCatalog) SnippetHints(context.Context, string, int) ([]catalog.Snippet, error) {
	panic("unexpected")
}

func TestServer_TagHint(t *testing.T) {
	h := New(newCatalog(t), Options{}).Handler()

	rec := get(t, h, "/snippets/tag-hint/?q=gre")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	var hints []completion.TagHint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hints))
	assert.Equal(t, []completion.TagHint{{Tag: "green", Count: 5}, {Tag: "greenlet", Count: 2}}, hints)
}

func TestServer_ShortQueryReturnsEmptyList(t *testing.T) {
	h := New(newCatalog(t), Options{}).Handler()

	for _, target := range []string{"/snippets/tag-hint/?q=gr", "/snippets/tag-hint/", "/search/autocomplete/?q=fo"} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.JSONEq(t, `[]`, rec.Body.String(), target)
	}
}

func TestServer_Autocomplete(t *testing.T) {
	h := New(newCatalog(t), Options{}).Handler()

	rec := get(t, h, "/search/autocomplete/?q=foo")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"title": "Foo Bar", "author": "alice", "url": "/s/1/"},
		{"title": "Football scores", "author": "bob", "url": "/s/2/"}
	]`, rec.Body.String())
}

func TestServer_Limit(t *testing.T) {
	h := New(newCatalog(t), Options{Limit: 1}).Handler()

	rec := get(t, h, "/snippets/tag-hint/?q=gre")

	var hints []completion.TagHint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hints))
	assert.Len(t, hints, 1)
}

func TestServer_CustomPaths(t *testing.T) {
	h := New(newCatalog(t), Options{TagPath: "/api/tags/", SnippetPath: "/api/search/"}).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/api/tags/?q=red").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/search/?q=foo").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/snippets/tag-hint/?q=red").Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	h := New(newCatalog(t), Options{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snippets/tag-hint/?q=red", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Health(t *testing.T) {
	rec := get(t, New(newCatalog(t), Options{}).Handler(), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_CatalogFailure(t *testing.T) {
	h := New(brokenCatalog{}, Options{}).Handler()

	rec := get(t, h, "/snippets/tag-hint/?q=red")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog unavailable")
}

func TestServer_RecoversPanics(t *testing.T) {
	h := New(brokenCatalog{}, Options{}).Handler()

	rec := get(t, h, "/search/autocomplete/?q=foo")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_CORSAndAccessLog(t *testing.T) {
	var access bytes.Buffer
	h := New(newCatalog(t), Options{AllowCORS: true, AccessLog: &access}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/snippets/tag-hint/?q=red", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, access.String(), "GET /snippets/tag-hint/?q=red")
}

func TestServer_Serve(t *testing.T) {
	l, err := Listen("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(newCatalog(t), Options{}).Serve(ctx, l) }()

	base := "http://" + l.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_EndToEndWithProviders(t *testing.T) {
	srv := httptest.NewServer(New(newCatalog(t), Options{}).Handler())
	defer srv.Close()

	tags := widget.New("tags", nil)
	completion.NewTagProvider(completion.Options{BaseURL: srv.URL}).Bind(tags)

	tags.Input(context.Background(), "red, gree")
	entries := tags.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "green (5)", entries[0].Text)

	_, ok := tags.Select(1)
	require.True(t, ok)
	assert.Equal(t, "red, greenlet, ", tags.Value())

	search := widget.New("search", nil)
	completion.NewSnippetProvider(completion.Options{BaseURL: srv.URL}).Bind(search)

	search.Input(context.Background(), "foot")
	require.Len(t, search.Items(), 1)
	assert.Equal(t, completion.Suggestion{Label: "Football scores", Value: "Football scores", URL: "/s/2/"}, search.Items()[0])
}
