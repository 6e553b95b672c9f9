package status

import "time"

// Data contains all the information to display in status
type Data struct {
	Version string

	// Configuration
	ConfigPath string // Empty when running on defaults
	LogLevel   string
	Timeout    time.Duration
	BaseURL    string

	Providers []ProviderInfo

	// Hint service, probed only when a base URL is set
	Service *ServiceInfo
}

// ProviderInfo describes one completion provider
type ProviderInfo struct {
	Name      string
	URL       string // Resolved endpoint
	MinLength int
	Err       string // Set when the endpoint cannot be resolved
}

// ServiceInfo is the result of probing the hint service
type ServiceInfo struct {
	HealthURL string
	Healthy   bool
	Latency   time.Duration
	Err       string
}
