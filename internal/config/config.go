package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Base TCP port for display 0. Display n listens on basePort+n.
const basePort = 6000

// globalConfig stores the configuration loaded with command-line overrides
// This allows other packages to access the same configuration that was loaded by the server
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the application configuration
type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	Transport TransportConfig `yaml:"transport"`
	Security  SecurityConfig  `yaml:"security"`
	Logging   LoggingConfig   `yaml:"logging"`
	Debug     DebugConfig     `yaml:"debug"`
}

// LoadOptions holds command-line override options. Pointer fields
// distinguish "flag not given" from an explicit zero value.
type LoadOptions struct {
	ConfigFile string
	Display    *int
	Mode       string
	Width      *int
	Height     *int
	LogLevel   string
	DisableTCP bool
	SocketDir  string
	WSAddr     string
	DebugAddr  string
	AuthPolicy string
	CookieFile string
}

// DisplayConfig holds display-specific configuration
type DisplayConfig struct {
	Number int    `yaml:"number" env:"XDS_DISPLAY" default:"0"`
	Mode   string `yaml:"mode" env:"XDS_MODE" default:"headless"`
	Width  int    `yaml:"width" env:"XDS_WIDTH" default:"1280"`
	Height int    `yaml:"height" env:"XDS_HEIGHT" default:"1024"`
	Vendor string `yaml:"vendor" env:"XDS_VENDOR" default:"xds"`
}

// TransportConfig holds listener configuration
type TransportConfig struct {
	EnableTCP        bool          `yaml:"enableTCP" env:"XDS_ENABLE_TCP" default:"true"`
	Host             string        `yaml:"host" env:"XDS_HOST" default:"0.0.0.0"`
	SocketDir        string        `yaml:"socketDir" env:"XDS_SOCKET_DIR" default:"/tmp/.X11-unix"`
	WSAddr           string        `yaml:"wsAddr" env:"XDS_WS_ADDR" default:""`
	MaxConnections   int           `yaml:"maxConnections" env:"XDS_MAX_CONNECTIONS" default:"100"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout" env:"XDS_HANDSHAKE_TIMEOUT" default:"10s"`
}

// SecurityConfig holds connection authorization configuration
type SecurityConfig struct {
	Policy     string `yaml:"policy" env:"XDS_AUTH_POLICY" default:"none"`
	CookieFile string `yaml:"cookieFile" env:"XDS_COOKIE_FILE" default:""`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"XDS_LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"XDS_LOG_FORMAT" default:"text"`
}

// DebugConfig holds the observability listener configuration.
// The listener stays off unless an address is set.
type DebugConfig struct {
	Addr string `yaml:"addr" env:"XDS_DEBUG_ADDR" default:""`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration with command-line overrides.
// Precedence, lowest to highest: defaults, YAML file, environment,
// command-line flags.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := defaults()

	// YAML file, if one was named on the command line or in the environment
	path := getOverrideOrEnv(opts.ConfigFile, "XDS_CONFIG", "")
	if path != "" {
		if err := loadFile(config, path); err != nil {
			return nil, err
		}
	}

	// Environment, on top of whatever the file set
	config.Display.Number = getIntWithDefault("XDS_DISPLAY", config.Display.Number)
	config.Display.Mode = getEnvWithDefault("XDS_MODE", config.Display.Mode)
	config.Display.Width = getIntWithDefault("XDS_WIDTH", config.Display.Width)
	config.Display.Height = getIntWithDefault("XDS_HEIGHT", config.Display.Height)
	config.Display.Vendor = getEnvWithDefault("XDS_VENDOR", config.Display.Vendor)

	config.Transport.EnableTCP = getBoolWithDefault("XDS_ENABLE_TCP", config.Transport.EnableTCP)
	config.Transport.Host = getEnvWithDefault("XDS_HOST", config.Transport.Host)
	config.Transport.SocketDir = getEnvWithDefault("XDS_SOCKET_DIR", config.Transport.SocketDir)
	config.Transport.WSAddr = getEnvWithDefault("XDS_WS_ADDR", config.Transport.WSAddr)
	config.Transport.MaxConnections = getIntWithDefault("XDS_MAX_CONNECTIONS", config.Transport.MaxConnections)
	config.Transport.HandshakeTimeout = getDurationWithDefault("XDS_HANDSHAKE_TIMEOUT", config.Transport.HandshakeTimeout)

	config.Security.Policy = getEnvWithDefault("XDS_AUTH_POLICY", config.Security.Policy)
	config.Security.CookieFile = getEnvWithDefault("XDS_COOKIE_FILE", config.Security.CookieFile)

	config.Logging.Level = getEnvWithDefault("XDS_LOG_LEVEL", config.Logging.Level)
	config.Logging.Format = getEnvWithDefault("XDS_LOG_FORMAT", config.Logging.Format)

	config.Debug.Addr = getEnvWithDefault("XDS_DEBUG_ADDR", config.Debug.Addr)

	// Command-line overrides
	if opts.Display != nil {
		config.Display.Number = *opts.Display
	}
	if opts.Mode != "" {
		config.Display.Mode = opts.Mode
	}
	if opts.Width != nil {
		config.Display.Width = *opts.Width
	}
	if opts.Height != nil {
		config.Display.Height = *opts.Height
	}
	if opts.DisableTCP {
		config.Transport.EnableTCP = false
	}
	if opts.SocketDir != "" {
		config.Transport.SocketDir = opts.SocketDir
	}
	if opts.WSAddr != "" {
		config.Transport.WSAddr = opts.WSAddr
	}
	if opts.DebugAddr != "" {
		config.Debug.Addr = opts.DebugAddr
	}
	if opts.AuthPolicy != "" {
		config.Security.Policy = opts.AuthPolicy
	}
	if opts.CookieFile != "" {
		config.Security.CookieFile = opts.CookieFile
	}
	if opts.LogLevel != "" {
		config.Logging.Level = opts.LogLevel
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store the configuration globally so other packages can access it
	configMutex.Lock()
	globalConfig = config
	configMutex.Unlock()

	return config, nil
}

// GetGlobalConfig returns the globally stored configuration
// This should be used by packages that need access to the configuration
// loaded by the server with command-line overrides
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// TCPAddr returns the listen address for the display's TCP endpoint.
func (c *Config) TCPAddr() string {
	return net.JoinHostPort(c.Transport.Host, strconv.Itoa(basePort+c.Display.Number))
}

// SocketPath returns the path of the display's Unix socket.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Transport.SocketDir, fmt.Sprintf("X%d", c.Display.Number))
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate display config
	if c.Display.Number < 0 || basePort+c.Display.Number > 65535 {
		return fmt.Errorf("invalid display number: %d", c.Display.Number)
	}

	validModes := map[string]bool{
		"headless": true,
		"virtual":  true,
		"native":   true,
	}

	if !validModes[c.Display.Mode] {
		return fmt.Errorf("invalid display mode: %s", c.Display.Mode)
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display dimensions must be positive")
	}

	if c.Display.Width > 65535 || c.Display.Height > 65535 {
		return fmt.Errorf("display dimensions must fit in 16 bits")
	}

	// Validate transport config
	if c.Transport.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be positive")
	}

	if c.Transport.HandshakeTimeout <= 0 {
		return fmt.Errorf("handshake timeout must be positive")
	}

	// Validate security config
	validPolicies := map[string]bool{
		"none":   true,
		"cookie": true,
	}

	if !validPolicies[c.Security.Policy] {
		return fmt.Errorf("invalid auth policy: %s", c.Security.Policy)
	}

	if c.Security.Policy == "cookie" {
		if c.Security.CookieFile == "" {
			return fmt.Errorf("cookie file must be specified when the cookie policy is enabled")
		}

		if _, err := os.Stat(c.Security.CookieFile); os.IsNotExist(err) {
			return fmt.Errorf("cookie file does not exist: %s", c.Security.CookieFile)
		}
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// defaults returns a Config with every field at its built-in default
func defaults() *Config {
	return &Config{
		Display: DisplayConfig{
			Number: 0,
			Mode:   "headless",
			Width:  1280,
			Height: 1024,
			Vendor: "xds",
		},
		Transport: TransportConfig{
			EnableTCP:        true,
			Host:             "0.0.0.0",
			SocketDir:        "/tmp/.X11-unix",
			WSAddr:           "",
			MaxConnections:   100,
			HandshakeTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			Policy:     "none",
			CookieFile: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Debug: DebugConfig{
			Addr: "",
		},
	}
}

// loadFile merges a YAML configuration file over the current values
func loadFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getOverrideOrEnv returns command-line override value, env value, or default
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}
