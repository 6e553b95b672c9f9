// Package status collects and renders the state of the snipcomplete setup.
package status

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
	"github.com/NikitaCOEUR/snipcomplete/internal/config"
	"github.com/NikitaCOEUR/snipcomplete/internal/timing"
	"github.com/NikitaCOEUR/snipcomplete/pkg/version"
)

// HealthPath is probed on the hint service
const HealthPath = "/health"

// Collect gathers status information for cfg. client is used for the health
// probe and defaults to one with the config timeout.
func Collect(ctx context.Context, cfg *config.Config, configPath string, client *http.Client) *Data {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	data := &Data{
		Version:    version.Version,
		ConfigPath: configPath,
		LogLevel:   cfg.LogLevel,
		Timeout:    cfg.Timeout,
		BaseURL:    cfg.BaseURL,
	}

	for _, p := range []struct {
		name string
		pc   config.ProviderConfig
	}{
		{"tags", cfg.Tag},
		{"search", cfg.Snippet},
	} {
		info := ProviderInfo{Name: p.name, MinLength: p.pc.MinLength}
		opts := completion.Options{Endpoint: p.pc.Endpoint, BaseURL: cfg.BaseURL}
		if u, err := opts.URL(); err != nil {
			info.Err = err.Error()
		} else {
			info.URL = u
		}
		data.Providers = append(data.Providers, info)
	}

	if cfg.BaseURL != "" {
		data.Service = probe(ctx, client, cfg.BaseURL)
	}
	return data
}

func probe(ctx context.Context, client *http.Client, baseURL string) *ServiceInfo {
	info := &ServiceInfo{}

	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		info.Err = fmt.Sprintf("invalid base URL: %v", err)
		return info
	}
	info.HealthURL = base.ResolveReference(&url.URL{Path: HealthPath}).String()

	timer := timing.NewTimer()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.HealthURL, nil)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	resp, err := client.Do(req)
	info.Latency = timer.Elapsed()
	if err != nil {
		info.Err = err.Error()
		return info
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		info.Err = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return info
	}
	info.Healthy = true
	return info
}
