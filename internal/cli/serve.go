package cli

import (
	"context"
	"io"

	"github.com/NikitaCOEUR/snipcomplete/internal/catalog"
	"github.com/NikitaCOEUR/snipcomplete/internal/hintserver"
	"github.com/NikitaCOEUR/snipcomplete/internal/timing"
)

// ServeParams contains parameters for the serve command. Empty fields fall
// back to the server section of the config.
type ServeParams struct {
	Params
	Addr      string
	DB        string
	Seed      string
	CORS      bool
	AccessLog io.Writer         // Combined-format access log, nil disables it
	Ready     func(addr string) // Called once the listener is open
}

// Serve runs the hint service until ctx is cancelled
func Serve(ctx context.Context, params ServeParams) error {
	timer := timing.NewTimer()

	s, err := load(params.Params)
	if err != nil {
		return err
	}
	sc := s.cfg.Server
	if params.Addr != "" {
		sc.Addr = params.Addr
	}
	if params.DB != "" {
		sc.DB = params.DB
	}
	if params.Seed != "" {
		sc.Seed = params.Seed
	}
	sc.CORS = sc.CORS || params.CORS

	dbPath := sc.DB
	if dbPath == "" {
		dbPath = catalog.MemoryPath
	}
	store, err := catalog.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	timer.Mark("open")

	if sc.Seed != "" {
		fixture, err := catalog.LoadFixture(sc.Seed)
		if err != nil {
			return err
		}
		if err := store.Seed(ctx, fixture); err != nil {
			return err
		}
	}
	timer.Mark("seed")

	tags, snippets, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	s.log.Info().
		Str("db", dbPath).
		Int("tags", tags).
		Int("snippets", snippets).
		Str("timing", timer.Summary()).
		Msg("Catalog ready")

	srv := hintserver.New(store, hintserver.Options{
		TagPath:     s.cfg.Tag.Endpoint,
		SnippetPath: s.cfg.Snippet.Endpoint,
		Limit:       sc.Limit,
		AllowCORS:   sc.CORS,
		AccessLog:   params.AccessLog,
		Logger:      s.log,
	})

	l, err := hintserver.Listen(sc.Addr)
	if err != nil {
		return err
	}
	if params.Ready != nil {
		params.Ready(l.Addr().String())
	}
	return srv.Serve(ctx, l)
}
