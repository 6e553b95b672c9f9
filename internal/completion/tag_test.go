package completion

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/snipcomplete/internal/cerrors"
)

func TestNewTagProvider_Defaults(t *testing.T) {
	p := NewTagProvider(Options{})

	assert.Equal(t, DefaultTagEndpoint, p.Options().Endpoint)
	assert.Equal(t, DefaultMinLength, p.Options().MinLength)
	assert.NotNil(t, p.Options().HTTPClient)
	assert.NotNil(t, p.Options().Logger)
}

func TestNewTagProvider_Overrides(t *testing.T) {
	p := NewTagProvider(Options{Endpoint: "/tags/", MinLength: 1})

	assert.Equal(t, "/tags/", p.Options().Endpoint)
	assert.Equal(t, 1, p.Options().MinLength)
}

func TestTagProvider_Fetch(t *testing.T) {
	srv, rec := hintServer(t, http.StatusOK, []TagHint{{Tag: "green", Count: 5}})
	p := NewTagProvider(Options{Endpoint: srv.URL})

	items, err := p.Fetch(context.Background(), "red, blue, gr")
	require.NoError(t, err)

	assert.Equal(t, []string{"gr"}, rec.queries())
	require.Len(t, items, 1)
	assert.Equal(t, "green (5)", items[0].Label)
	assert.Equal(t, "red, blue, green, ", items[0].Value)
	assert.Empty(t, items[0].URL)
}

func TestTagProvider_Fetch_SingleTag(t *testing.T) {
	srv, rec := hintServer(t, http.StatusOK, []TagHint{{Tag: "hello-world", Count: 2}})
	p := NewTagProvider(Options{Endpoint: srv.URL})

	items, err := p.Fetch(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{"hello"}, rec.queries())
	require.Len(t, items, 1)
	assert.Equal(t, "hello-world, ", items[0].Value)
}

func TestTagProvider_Fetch_PreservesOrder(t *testing.T) {
	hints := []TagHint{{Tag: "django", Count: 40}, {Tag: "djangorest", Count: 9}, {Tag: "djangocms", Count: 9}}
	srv, _ := hintServer(t, http.StatusOK, hints)
	p := NewTagProvider(Options{Endpoint: srv.URL})

	items, err := p.Fetch(context.Background(), "python,dja")
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "python, django, ", items[0].Value)
	assert.Equal(t, "djangorest (9)", items[1].Label)
	assert.Equal(t, "djangocms (9)", items[2].Label)
}

func TestTagProvider_Fetch_NoFragmentSkipsRequest(t *testing.T) {
	srv, rec := hintServer(t, http.StatusOK, []TagHint{{Tag: "x", Count: 1}})
	p := NewTagProvider(Options{Endpoint: srv.URL})

	for _, term := range []string{"", ",  ,", "red, blue, ", " - "} {
		items, err := p.Fetch(context.Background(), term)
		require.NoError(t, err, term)
		assert.NotNil(t, items, term)
		assert.Empty(t, items, term)
	}
	assert.Equal(t, 0, rec.hits())
}

func TestTagProvider_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       interface{}
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops", wantStatus: 500},
		{name: "malformed json", status: http.StatusOK, body: "{not json", wantStatus: 200},
		{name: "wrong shape", status: http.StatusOK, body: `{"tag": "x"}`, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := hintServer(t, tt.status, tt.body)
			p := NewTagProvider(Options{Endpoint: srv.URL})

			items, err := p.Fetch(context.Background(), "gre")
			require.Error(t, err)
			assert.Nil(t, items)

			var transportErr *cerrors.TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, tt.wantStatus, transportErr.Status)
		})
	}
}

func TestTagProvider_Fetch_Unreachable(t *testing.T) {
	p := NewTagProvider(Options{Endpoint: "http://127.0.0.1:1/snippets/tag-hint/"})

	_, err := p.Fetch(context.Background(), "gre")
	var transportErr *cerrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 0, transportErr.Status)
	assert.Equal(t, "TRANSPORT_ERROR", transportErr.Code())
}

func TestTagSuggestions(t *testing.T) {
	items := TagSuggestions("", nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items = TagSuggestions("a, ", []TagHint{{Tag: "b", Count: 0}})
	assert.Equal(t, []Suggestion{{Label: "b (0)", Value: "a, b, "}}, items)
}

func TestTagProvider_Bind(t *testing.T) {
	srv, _ := hintServer(t, http.StatusOK, []TagHint{{Tag: "green", Count: 5}})
	p := NewTagProvider(Options{Endpoint: srv.URL})
	el := &fakeElement{}

	p.Bind(el)

	assert.Equal(t, 1, el.calls)
	assert.Same(t, el, p.Element())
	assert.Equal(t, DefaultMinLength, el.opts.MinLength)
	assert.Nil(t, el.opts.RenderItem)
	require.NotNil(t, el.opts.Source)

	var got []Suggestion
	el.opts.Source(context.Background(), Request{Term: "red, gr"}, func(items []Suggestion) { got = items })
	assert.Equal(t, []Suggestion{{Label: "green (5)", Value: "red, green, "}}, got)
}

func TestTagProvider_Bind_SourceSwallowsFailures(t *testing.T) {
	srv, _ := hintServer(t, http.StatusBadGateway, "down")
	p := NewTagProvider(Options{Endpoint: srv.URL})
	el := &fakeElement{}
	p.Bind(el)

	called := false
	el.opts.Source(context.Background(), Request{Term: "gre"}, func([]Suggestion) { called = true })
	assert.False(t, called)
}

func TestTagProvider_Bind_NilElement(t *testing.T) {
	p := NewTagProvider(Options{})

	assert.NotPanics(t, func() { p.Bind(nil) })
	assert.Nil(t, p.Element())

	var typedNil *nilableElement
	assert.NotPanics(t, func() { p.Bind(typedNil) })
	assert.Nil(t, p.Element())
}
