package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/ledgerdash/ledgerdash/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "ledgerdash.json"

	// EnvPrefix prefixes the environment variables that override the file.
	EnvPrefix = "LEDGERDASH_"

	// DefaultPort is the default development server port.
	DefaultPort = 1420

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultPortAttempts is how many consecutive ports are tried when
	// strictPort is off.
	DefaultPortAttempts = 10

	// DefaultStaticDir is the default directory of built client assets.
	DefaultStaticDir = "dist"

	// DefaultMode is the default mode, selecting .env.<mode> files.
	DefaultMode = "development"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"
)

// DefaultClientEnvPrefixes returns the prefixes of environment variables
// exposed to the client by default.
func DefaultClientEnvPrefixes() []string {
	return []string{"VITE_", "TAURI_"}
}

// Config represents the complete ledgerdash.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Mode selects the .env.<mode> files and is exposed to the client as MODE.
	Mode string `json:"mode,omitempty" env:"MODE"`

	// EnvPrefix lists the prefixes of environment variables exposed to the
	// client. Variables without one of them never leave the process.
	EnvPrefix []string `json:"envPrefix,omitempty" env:"ENV_PREFIX" envSeparator:","`

	// ClearScreen clears the terminal when the dev server starts.
	ClearScreen bool `json:"clearScreen"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `json:"metrics"`

	// configPath is where the config was loaded from; empty for defaults.
	configPath string

	// root is the project directory relative paths are resolved against.
	root string
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty" env:"PORT"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" env:"HOST"`

	// StrictPort makes startup fail when Port is taken instead of trying
	// the next free port.
	StrictPort bool `json:"strictPort" env:"STRICT_PORT"`

	// PortAttempts bounds the fallback search when StrictPort is off.
	PortAttempts int `json:"portAttempts,omitempty" env:"PORT_ATTEMPTS"`

	// OpenBrowser opens the browser automatically on start.
	OpenBrowser bool `json:"openBrowser,omitempty"`

	// HotReload enables the live reload channel and file watcher.
	HotReload bool `json:"hotReload" env:"HOT_RELOAD"`

	// Ignore contains glob patterns ignored by the file watcher.
	Ignore []string `json:"ignore,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing built client assets.
	Dir string `json:"dir,omitempty" env:"STATIC_DIR"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	Enabled bool `json:"enabled"`

	// Path is the URL path of the metrics endpoint.
	Path string `json:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Mode:        DefaultMode,
		EnvPrefix:   DefaultClientEnvPrefixes(),
		ClearScreen: false,
		Dev: DevConfig{
			Port:         DefaultPort,
			Host:         DefaultHost,
			StrictPort:   true,
			PortAttempts: DefaultPortAttempts,
			HotReload:    true,
		},
		Static: StaticConfig{
			Dir: DefaultStaticDir,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}

// Load reads configuration from ledgerdash.json in the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'ledgerdash init' to create one")
		}
		return nil, errors.New("E101").WithDetail(err.Error()).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, decodeError(path, data, err)
	}

	cfg.configPath = path
	cfg.root = filepath.Dir(path)
	cfg.applyDefaults()

	return cfg, nil
}

// decodeError converts a JSON decoding error into an E101 pointing at the
// offending position of the file.
func decodeError(path string, data []byte, err error) *errors.Error {
	e := errors.New("E101").
		WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
		WithSuggestion("Check that " + ConfigFileName + " is valid JSON and field types match the documented schema").
		Wrap(err)

	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return e
	}

	line, col := lineColumn(data, offset)
	return e.WithLocation(path, line, col)
}

// lineColumn converts a byte offset into a 1-based line and column.
func lineColumn(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = int(offset) - (bytes.LastIndexByte(before, '\n') + 1)
	if col < 1 {
		col = 1
	}
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E101").WithDetail(err.Error()).Wrap(err)
	}

	c.configPath = path
	c.root = filepath.Dir(path)
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the project directory.
func (c *Config) Dir() string {
	return c.root
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if c.EnvPrefix == nil {
		c.EnvPrefix = DefaultClientEnvPrefixes()
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.PortAttempts == 0 {
		c.Dev.PortAttempts = DefaultPortAttempts
	}
	if c.Static.Dir == "" {
		c.Static.Dir = DefaultStaticDir
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// ApplyEnv overrides fields from LEDGERDASH_* variables. When environ is
// nil the process environment is used.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("E105").
			WithDetail(err.Error()).
			WithSuggestion("Check the " + EnvPrefix + "* variables in your environment").
			Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 1 || c.Dev.Port > 65535 {
		return errors.New("E102").
			WithDetail("Port " + strconv.Itoa(c.Dev.Port) + " is outside 1-65535")
	}
	if c.Dev.PortAttempts < 1 {
		return errors.New("E102").
			WithDetail("portAttempts must be at least 1")
	}
	for _, prefix := range c.EnvPrefix {
		if strings.TrimSpace(prefix) == "" {
			return errors.New("E103").
				WithSuggestion(`Use a prefix such as "VITE_"`)
		}
	}
	if c.Mode == "" || strings.ContainsAny(c.Mode, `/\ `) || strings.HasPrefix(c.Mode, ".") {
		return errors.New("E104").
			WithDetail("Mode " + strconv.Quote(c.Mode) + " cannot be used in a .env file name").
			WithSuggestion(`Use a plain name such as "development" or "production"`)
	}
	if c.Static.Dir == "" {
		return errors.New("E106").WithDetail("static.dir is empty")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.Newf(errors.CategoryConfig, "metrics.path %q must begin with \"/\"", c.Metrics.Path)
	}
	return nil
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return net.JoinHostPort(c.Dev.Host, strconv.Itoa(c.Dev.Port))
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// StaticPath returns the absolute path to the static directory.
func (c *Config) StaticPath() string {
	if filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.root, c.Static.Dir)
}

// IsProduction reports whether the mode is "production".
func (c *Config) IsProduction() bool {
	return c.Mode == "production"
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing ledgerdash.json, or an E100 error.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'ledgerdash init' to create one")
		}
		dir = parent
	}
}

// Discover loads the configuration of the project containing startDir and
// applies environment overrides. Without a ledgerdash.json the defaults are
// used, rooted at startDir.
func Discover(startDir string) (*Config, error) {
	var cfg *Config
	root, err := FindProjectRoot(startDir)
	if err == nil {
		cfg, err = Load(root)
		if err != nil {
			return nil, err
		}
	} else {
		abs, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, absErr
		}
		cfg = New()
		cfg.root = abs
	}

	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromWorkingDir discovers the configuration from the current working
// directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Discover(wd)
}
