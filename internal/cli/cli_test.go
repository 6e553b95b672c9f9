package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/snipcomplete/internal/cerrors"
	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
)

// isolate points the default config lookup at an empty directory
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func hintServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(completion.DefaultTagEndpoint, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]completion.TagHint{{Tag: r.URL.Query().Get("q") + "een", Count: 4}})
	})
	mux.HandleFunc(completion.DefaultSnippetEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]completion.SnippetHint{{Title: "Quick sort", URL: "/snippets/1/"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestQuery_Tags(t *testing.T) {
	isolate(t)
	srv := hintServer(t)
	var out bytes.Buffer

	err := Query(context.Background(), QueryParams{
		Params: Params{BaseURL: srv.URL, LogOutput: io.Discard},
		Kind:   KindTags,
		Text:   "red, gr",
		Out:    &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "green (4)\tred, green, \n", out.String())
}

func TestQuery_SearchWithSprigFormat(t *testing.T) {
	isolate(t)
	srv := hintServer(t)
	var out bytes.Buffer

	err := Query(context.Background(), QueryParams{
		Params: Params{BaseURL: srv.URL, LogOutput: io.Discard},
		Kind:   KindSearch,
		Text:   "sort",
		Format: "{{ .Label | upper }} {{ .URL | quote }}",
		Out:    &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "QUICK SORT \"/snippets/1/\"\n", out.String())
}

func TestQuery_NoFragmentPrintsNothing(t *testing.T) {
	isolate(t)
	var out bytes.Buffer

	// no server: an empty fragment must not issue a request
	err := Query(context.Background(), QueryParams{
		Params: Params{BaseURL: "http://127.0.0.1:1", LogOutput: io.Discard},
		Kind:   KindTags,
		Text:   " , ",
		Out:    &out,
	})
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestQuery_TransportError(t *testing.T) {
	isolate(t)
	err := Query(context.Background(), QueryParams{
		Params: Params{BaseURL: "http://127.0.0.1:1", LogOutput: io.Discard},
		Kind:   KindSearch,
		Text:   "sort",
		Out:    io.Discard,
	})
	require.Error(t, err)

	var tErr *cerrors.TransportError
	assert.True(t, errors.As(err, &tErr))
}

func TestQuery_BadInput(t *testing.T) {
	isolate(t)

	err := Query(context.Background(), QueryParams{
		Params: Params{LogOutput: io.Discard},
		Kind:   "colours",
		Text:   "red",
	})
	assert.ErrorContains(t, err, "unknown query kind")

	err = Query(context.Background(), QueryParams{
		Params: Params{LogOutput: io.Discard},
		Kind:   KindTags,
		Format: "{{ .Label",
	})
	assert.ErrorContains(t, err, "invalid format")
}

func TestQuery_ConfigFile(t *testing.T) {
	isolate(t)
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("base_url: "+srv.URL+"\ntag:\n  endpoint: /api/tags/\n"), 0644))

	err := Query(context.Background(), QueryParams{
		Params: Params{ConfigPath: cfgPath, LogOutput: io.Discard},
		Kind:   KindTags,
		Text:   "gre",
		Out:    io.Discard,
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/tags/", <-paths)
}

func TestLoad_BadConfig(t *testing.T) {
	isolate(t)
	_, err := load(Params{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)

	var cfgErr *cerrors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoad_FlagOverrides(t *testing.T) {
	isolate(t)
	s, err := load(Params{LogLevel: "debug", BaseURL: "http://x.test", LogOutput: io.Discard})
	require.NoError(t, err)

	assert.Equal(t, "debug", s.cfg.LogLevel)
	assert.Equal(t, "http://x.test", s.cfg.BaseURL)
	assert.True(t, s.log.Enabled("debug"))
}

func TestPanes_AreBound(t *testing.T) {
	isolate(t)
	s, err := load(Params{LogOutput: io.Discard})
	require.NoError(t, err)

	panes := s.panes()
	require.Len(t, panes, 2)
	assert.Equal(t, KindTags, panes[0].Label)
	assert.Equal(t, KindSearch, panes[1].Label)
	for _, p := range panes {
		assert.True(t, p.Field.Bound(), p.Label)
		assert.Equal(t, 3, p.Field.MinLength(), p.Label)
	}
}

func TestServe(t *testing.T) {
	isolate(t)
	seed := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(seed, []byte(`tags:
  - slug: green
    count: 5
  - slug: grey
    count: 7
snippets:
  - title: Quick sort
    author: ana
    url: /snippets/1/
`), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	var access bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeParams{
			Params:    Params{LogOutput: io.Discard},
			Addr:      "127.0.0.1:0",
			Seed:      seed,
			AccessLog: &lockedBuffer{buf: &access},
			Ready:     func(addr string) { ready <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	var out bytes.Buffer
	err := Query(ctx, QueryParams{
		Params: Params{BaseURL: "http://" + addr, LogOutput: io.Discard},
		Kind:   KindTags,
		Text:   "red, gre",
		Out:    &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "grey (7)\tred, grey, \ngreen (5)\tred, green, \n", out.String())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, access.String(), "GET /snippets/tag-hint/?q=gre")
}

func TestServe_BadSeed(t *testing.T) {
	isolate(t)
	err := Serve(context.Background(), ServeParams{
		Params: Params{LogOutput: io.Discard},
		Addr:   "127.0.0.1:0",
		Seed:   filepath.Join(t.TempDir(), "none.yml"),
	})
	require.Error(t, err)

	var catErr *cerrors.CatalogError
	assert.True(t, errors.As(err, &catErr))
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "ok.yml")
	invalid := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(valid, []byte("log_level: info\n"), 0644))
	require.NoError(t, os.WriteFile(invalid, []byte("log_level: loud\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, Validate(valid, &out))
	assert.Contains(t, out.String(), "Configuration is valid")

	out.Reset()
	err := Validate(invalid, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out.String(), "Found 1 error(s)")
}

func TestValidate_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	err := Validate("", io.Discard)
	assert.ErrorContains(t, err, "no config file found")

	path := filepath.Join(home, "snipcomplete", "config.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("timeout: 1s\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, Validate("", &out))
	assert.Contains(t, out.String(), path)
}

func TestSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Schema("", &out))
	assert.True(t, strings.HasPrefix(out.String(), "{"))

	path := filepath.Join(t.TempDir(), "schema.json")
	out.Reset()
	require.NoError(t, Schema(path, &out))
	assert.Contains(t, out.String(), "JSON Schema written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

// lockedBuffer serializes writes from server goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestStatus(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, Status(context.Background(), Params{BaseURL: srv.URL, LogOutput: io.Discard}, &out))

	assert.Contains(t, out.String(), srv.URL+"/snippets/tag-hint/")
	assert.Contains(t, out.String(), "Healthy")
}
