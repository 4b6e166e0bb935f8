// Package config provides XML-based configuration management for the dashboard server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Backend modes.
const (
	BackendModeHTTP      = "http"
	BackendModeSimulated = "simulated"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"SuricataDashboard"`

	Server  ServerConfig  `xml:"Server"`
	Backend BackendConfig `xml:"Backend"`
	Storage StorageConfig `xml:"Storage"`
	Session SessionConfig `xml:"Session"`
	Display DisplayConfig `xml:"Display"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`

	// Sustained POST requests per second per client, 0 disables limiting
	RateLimitPerSecond float64 `xml:"RateLimitPerSecond"`
}

// BackendConfig describes the ML backend the dashboard submits logs to
type BackendConfig struct {
	Mode           string `xml:"Mode"` // "http" or "simulated"
	URL            string `xml:"URL"`
	TimeoutSeconds int    `xml:"TimeoutSeconds"` // 0 waits indefinitely
	SimulatedDelay int    `xml:"SimulatedDelayMs"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
}

// SessionConfig controls how long idle dashboards are kept
type SessionConfig struct {
	TimeoutMinutes         int `xml:"TimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
	MaxSessions            int `xml:"MaxSessions"`
}

// DisplayConfig contains rendering settings
type DisplayConfig struct {
	TimeZone    string `xml:"TimeZone"` // IANA name, empty for server local time
	PaletteFile string `xml:"PaletteFile"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	EnableMetrics        bool   `xml:"EnableMetrics"`
	OTLPEndpoint         string `xml:"OTLPEndpoint"` // host:port of an OTLP/gRPC collector, empty disables tracing
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 0,
			IdleTimeout:  120,
			BodyLimit:    "512M",

			RateLimitPerSecond: 20,
		},
		Backend: BackendConfig{
			Mode:           BackendModeHTTP,
			URL:            "http://localhost:5000/api/process",
			TimeoutSeconds: 0,
			SimulatedDelay: 2000,
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
		},
		Session: SessionConfig{
			TimeoutMinutes:         30,
			CleanupIntervalMinutes: 5,
			MaxSessions:            1000,
		},
		Display: DisplayConfig{
			TimeZone:    "",
			PaletteFile: "",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			EnableMetrics:        true,
			OTLPEndpoint:         "",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, config.Validate()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, config.Validate()
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Suricata ML Dashboard Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that cannot be defaulted silently
func (c *AppConfig) Validate() error {
	switch c.Backend.Mode {
	case BackendModeHTTP:
		if c.Backend.URL == "" {
			return fmt.Errorf("backend URL is required in %q mode", BackendModeHTTP)
		}
	case BackendModeSimulated:
	default:
		return fmt.Errorf("unknown backend mode %q", c.Backend.Mode)
	}

	if c.Session.TimeoutMinutes <= 0 || c.Session.CleanupIntervalMinutes <= 0 {
		return fmt.Errorf("session timeout and cleanup interval must be positive")
	}

	if c.Server.RateLimitPerSecond < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", c.Server.RateLimitPerSecond)
	}

	if c.Display.TimeZone != "" {
		if _, err := time.LoadLocation(c.Display.TimeZone); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", c.Display.TimeZone, err)
		}
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
	}

	if url := os.Getenv("BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if mode := os.Getenv("BACKEND_MODE"); mode != "" {
		c.Backend.Mode = mode
	}
	if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
		c.Advanced.OTLPEndpoint = endpoint
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.UploadsDirectory) {
		c.Storage.UploadsDirectory = filepath.Join(configDir, c.Storage.UploadsDirectory)
	}
	if c.Display.PaletteFile != "" && !filepath.IsAbs(c.Display.PaletteFile) {
		c.Display.PaletteFile = filepath.Join(configDir, c.Display.PaletteFile)
	}
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// BackendTimeout returns the backend request timeout, zero for none
func (c *AppConfig) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// Location returns the display time zone
func (c *AppConfig) Location() *time.Location {
	if c.Display.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Display.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
