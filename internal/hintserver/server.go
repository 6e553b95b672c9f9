// Package hintserver serves the tag-hint and snippet-autocomplete endpoints
// that the completion providers consume.
package hintserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/NikitaCOEUR/snipcomplete/internal/catalog"
	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
	"github.com/NikitaCOEUR/snipcomplete/internal/logger"
)

const (
	// MinQueryLength is the shortest q that produces hints; shorter ones get []
	MinQueryLength = 3

	ReadTimeout    = 5 * time.Second
	WriteTimeout   = 10 * time.Second
	MaxHeaderBytes = 60000
	HandlerTimeout = 10 * time.Second
)

// Catalog is the lookup surface the handlers need
type Catalog interface {
	TagHints(ctx context.Context, prefix string, limit int) ([]catalog.Tag, error)
	SnippetHints(ctx context.Context, q string, limit int) ([]catalog.Snippet, error)
}

// Options configures the server
type Options struct {
	TagPath     string    // Defaults to completion.DefaultTagEndpoint
	SnippetPath string    // Defaults to completion.DefaultSnippetEndpoint
	Limit       int       // Hints per response, defaults to catalog.DefaultLimit
	AllowCORS   bool      // Allow any origin
	AccessLog   io.Writer // Combined-format access log, nil disables it
	Logger      *logger.Logger
}

// Server answers hint requests from a catalog
type Server struct {
	catalog Catalog
	opts    Options
	log     *logger.Logger
}

// New creates a server backed by c
func New(c Catalog, opts Options) *Server {
	if opts.TagPath == "" {
		opts.TagPath = completion.DefaultTagEndpoint
	}
	if opts.SnippetPath == "" {
		opts.SnippetPath = completion.DefaultSnippetEndpoint
	}
	if opts.Limit <= 0 {
		opts.Limit = catalog.DefaultLimit
	}
	return &Server{catalog: c, opts: opts, log: logger.OrDiscard(opts.Logger).Named("hintserver")}
}

// Handler returns the routed, middleware-wrapped handler
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.wrap(s.handleHealth)).Methods(http.MethodGet)
	r.HandleFunc(s.opts.TagPath, s.wrap(s.handleTagHint)).Methods(http.MethodGet)
	r.HandleFunc(s.opts.SnippetPath, s.wrap(s.handleAutocomplete)).Methods(http.MethodGet)

	var handler http.Handler = http.TimeoutHandler(r, HandlerTimeout, "Timeout")
	if s.opts.AllowCORS {
		handler = handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet}),
		)(handler)
	}
	if s.opts.AccessLog != nil {
		handler = handlers.CombinedLoggingHandler(s.opts.AccessLog, handler)
	}
	return handler
}

// Serve blocks serving on l until ctx is cancelled
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		ReadTimeout:    ReadTimeout,
		WriteTimeout:   WriteTimeout,
		MaxHeaderBytes: MaxHeaderBytes,
		Handler:        s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	s.log.Info().Str("addr", l.Addr().String()).Msg("Serving hints")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Listen opens a TCP listener, picking a free port when addr is empty
func Listen(addr string) (net.Listener, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return l, nil
}

type handlerFunc func(w http.ResponseWriter, r *http.Request)

// wrap recovers panics and marks every response uncacheable
func (s *Server) wrap(fn handlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.log.Error().Str("path", r.URL.Path).Str("panic", fmt.Sprint(p)).Msg("Handler panicked")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		w.Header().Set("Cache-Control", "no-cache")
		fn(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UnixMilli(),
	})
}

func (s *Server) handleTagHint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results := []completion.TagHint{}

	if len(q) >= MinQueryLength {
		tags, err := s.catalog.TagHints(r.Context(), q, s.opts.Limit)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		for _, t := range tags {
			results = append(results, completion.TagHint{Tag: t.Slug, Count: t.Count})
		}
	}

	s.log.Debug().
		Str("q", q).
		Str("request_id", r.Header.Get(completion.RequestIDHeader)).
		Int("count", len(results)).
		Msg("Tag hints")
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results := []completion.SnippetHint{}

	if len(q) >= MinQueryLength {
		snippets, err := s.catalog.SnippetHints(r.Context(), q, s.opts.Limit)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		for _, sn := range snippets {
			results = append(results, completion.SnippetHint{Title: sn.Title, Author: sn.Author, URL: sn.URL})
		}
	}

	s.log.Debug().
		Str("q", q).
		Str("request_id", r.Header.Get(completion.RequestIDHeader)).
		Int("count", len(results)).
		Msg("Snippet hints")
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error().Str("path", r.URL.Path).Err(err).Msg("Catalog lookup failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
