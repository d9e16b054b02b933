package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MinRefreshInterval = 60    // Minimum refresh interval in seconds
	MinPort            = 1     // Minimum valid port number
	MaxPort            = 65535 // Maximum valid port number
	MaxAPITimeout      = 300   // Maximum API timeout in seconds

	// Default values
	DefaultThreshold       = 80.0 // Reporting threshold in percent
	DefaultManagementURL   = "https://management.azure.com"
	DefaultRefreshInterval = 3600 // 1 hour in seconds
	DefaultHTTPPort        = 8080
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultAPITimeout      = 30 // API timeout in seconds
)

// Default scan scope when the config and flags name none.
var (
	DefaultProviders = []string{"Microsoft.Storage", "Microsoft.Network", "Microsoft.Compute"}
	DefaultRegions   = []string{"eastus", "centralus", "eastus2"}
)

// Subscription represents an Azure subscription to scan
type Subscription struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Config represents the application configuration
type Config struct {
	Subscriptions   []Subscription `yaml:"subscriptions"`
	Providers       []string       `yaml:"providers"`
	Regions         []string       `yaml:"regions"`
	Threshold       *float64       `yaml:"threshold"` // Pointer to distinguish between 0 and unset
	ManagementURL   string         `yaml:"management_url"`
	RefreshInterval int            `yaml:"refresh_interval"` // seconds, serve mode
	HTTPPort        int            `yaml:"http_port"`
	LogLevel        string         `yaml:"log_level"`
	LogFormat       string         `yaml:"log_format"`
	APITimeout      int            `yaml:"api_timeout"` // Azure API timeout in seconds
}

// Load loads configuration from a YAML file and applies environment
// variable overrides. An empty path skips the file and builds the
// configuration from defaults and environment alone, for runs driven
// entirely by command line flags.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304 -- Config file path is provided by administrator via CLI flag, not user input
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if len(cfg.Providers) == 0 {
		cfg.Providers = append([]string(nil), DefaultProviders...)
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = append([]string(nil), DefaultRegions...)
	}
	// Only apply default if Threshold is nil (not set), not if it's explicitly 0
	if cfg.Threshold == nil {
		threshold := DefaultThreshold
		cfg.Threshold = &threshold
	}
	if cfg.ManagementURL == "" {
		cfg.ManagementURL = DefaultManagementURL
	}
	cfg.ManagementURL = strings.TrimRight(cfg.ManagementURL, "/")
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
	// Subscriptions without a friendly name fall back to their ID
	for i := range cfg.Subscriptions {
		if cfg.Subscriptions[i].Name == "" {
			cfg.Subscriptions[i].Name = cfg.Subscriptions[i].ID
		}
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	// Override subscriptions (comma-separated id:name pairs)
	// Example: AZQUOTA_SUBSCRIPTIONS="sub1:prod,sub2:dev"
	if val := os.Getenv("AZQUOTA_SUBSCRIPTIONS"); val != "" {
		if subs := ParseSubscriptions(strings.Split(val, ",")); len(subs) > 0 {
			cfg.Subscriptions = subs
		}
	}

	// Override providers and regions (comma-separated)
	if val := os.Getenv("AZQUOTA_PROVIDERS"); val != "" {
		cfg.Providers = splitList(val)
	}
	if val := os.Getenv("AZQUOTA_REGIONS"); val != "" {
		cfg.Regions = splitList(val)
	}

	// Override reporting threshold
	if val := os.Getenv("AZQUOTA_THRESHOLD"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid AZQUOTA_THRESHOLD: must be a number, got %q", val)
		}
		cfg.Threshold = &f
	}

	// Override management endpoint
	if val := os.Getenv("AZQUOTA_MANAGEMENT_URL"); val != "" {
		cfg.ManagementURL = strings.TrimRight(val, "/")
	}

	// Override refresh interval
	if val := os.Getenv("AZQUOTA_REFRESH_INTERVAL"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AZQUOTA_REFRESH_INTERVAL: must be an integer, got %q", val)
		}
		cfg.RefreshInterval = i
	}

	// Override HTTP port
	if val := os.Getenv("AZQUOTA_HTTP_PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AZQUOTA_HTTP_PORT: must be an integer, got %q", val)
		}
		cfg.HTTPPort = i
	}

	// Override API timeout
	if val := os.Getenv("AZQUOTA_API_TIMEOUT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AZQUOTA_API_TIMEOUT: must be an integer, got %q", val)
		}
		cfg.APITimeout = i
	}

	// Override log settings
	if val := os.Getenv("AZQUOTA_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("AZQUOTA_LOG_FORMAT"); val != "" {
		cfg.LogFormat = val
	}

	return nil
}

// ParseSubscriptions converts "id" or "id:name" items into Subscription
// values. Items with an empty ID are skipped, and the name falls back
// to the ID when missing.
func ParseSubscriptions(items []string) []Subscription {
	subs := []Subscription{}
	for _, item := range items {
		parts := strings.SplitN(item, ":", 2)
		id := strings.TrimSpace(parts[0])
		if id == "" {
			continue
		}
		name := id
		if len(parts) == 2 {
			if n := strings.TrimSpace(parts[1]); n != "" {
				name = n
			}
		}
		subs = append(subs, Subscription{ID: id, Name: name})
	}
	return subs
}

func splitList(val string) []string {
	items := []string{}
	for _, item := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// Validate checks value ranges and allowed sets. Load runs it after
// defaults and env overrides, and commands run it again after layering
// their flags. Subscription presence is not checked here; commands
// verify it after merging their flags so that flag-only invocations
// work without a config file.
func Validate(cfg *Config) error {
	for i, sub := range cfg.Subscriptions {
		if sub.ID == "" {
			return fmt.Errorf("subscription at index %d has empty ID", i)
		}
	}

	for i, p := range cfg.Providers {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("provider at index %d is empty", i)
		}
	}
	for i, r := range cfg.Regions {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("region at index %d is empty", i)
		}
	}

	if cfg.Threshold != nil && *cfg.Threshold < 0 {
		return fmt.Errorf("threshold cannot be negative, got %v", *cfg.Threshold)
	}

	u, err := url.Parse(cfg.ManagementURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("management_url must be an absolute URL, got %q", cfg.ManagementURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("management_url must use http or https, got %q", cfg.ManagementURL)
	}

	if cfg.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %d", cfg.RefreshInterval)
	}
	if cfg.RefreshInterval < MinRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %d seconds", MinRefreshInterval)
	}

	if cfg.HTTPPort < MinPort || cfg.HTTPPort > MaxPort {
		return fmt.Errorf("http_port must be between %d and %d", MinPort, MaxPort)
	}

	if cfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout)
	}
	if cfg.APITimeout > MaxAPITimeout {
		return fmt.Errorf("api_timeout should not exceed %d seconds, got %d", MaxAPITimeout, cfg.APITimeout)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", cfg.LogFormat)
	}

	return nil
}
