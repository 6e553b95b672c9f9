// Package cli implements the snipcomplete commands. Each command takes a
// params struct built by cmd/snipcomplete from flags.
package cli

import (
	"io"
	"net/http"
	"os"

	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
	"github.com/NikitaCOEUR/snipcomplete/internal/config"
	"github.com/NikitaCOEUR/snipcomplete/internal/logger"
)

// Params holds the global flags shared by every command
type Params struct {
	LogLevel   string    // Overrides log_level from the config when set
	ConfigPath string    // Empty means the default path, if it exists
	BaseURL    string    // Overrides base_url from the config when set
	LogOutput  io.Writer // Defaults to stderr
}

// settings is what every command starts from
type settings struct {
	cfg *config.Config
	log *logger.Logger
}

func load(p Params) (*settings, error) {
	cfg, err := config.Load(config.Resolve(p.ConfigPath))
	if err != nil {
		return nil, err
	}

	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}

	out := p.LogOutput
	if out == nil {
		out = os.Stderr
	}

	return &settings{cfg: cfg, log: logger.New(cfg.LogLevel, out)}, nil
}

func (s *settings) providerOptions(pc config.ProviderConfig) completion.Options {
	return completion.Options{
		Endpoint:   pc.Endpoint,
		MinLength:  pc.MinLength,
		BaseURL:    s.cfg.BaseURL,
		HTTPClient: &http.Client{Timeout: s.cfg.Timeout},
		Logger:     s.log,
	}
}

func (s *settings) tagProvider() *completion.TagProvider {
	return completion.NewTagProvider(s.providerOptions(s.cfg.Tag))
}

func (s *settings) snippetProvider() *completion.SnippetProvider {
	return completion.NewSnippetProvider(s.providerOptions(s.cfg.Snippet))
}
