// Package config holds the sitebuilder configuration: directory layout,
// build tuning and preview server settings. Components receive a *Config by
// parameter; there is no global configuration state.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultFileName is the configuration file looked up in the working
// directory when no explicit path is given.
const DefaultFileName = "sitebuilder.yaml"

// Config is the complete sitebuilder configuration.
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Dirs   DirsConfig   `yaml:"dirs"`
	Build  BuildConfig  `yaml:"build"`
	Server ServerConfig `yaml:"server"`

	// baseDir rebases the input directories, see Rebase.
	baseDir string
}

// SiteConfig carries site-wide presentation settings.
type SiteConfig struct {
	Title string `yaml:"title"`
}

// DirsConfig names the project directories. All paths are relative to the
// working directory unless absolute.
type DirsConfig struct {
	Content   string `yaml:"content"`
	Static    string `yaml:"static"`
	Styles    string `yaml:"styles"`
	Templates string `yaml:"templates"`
	Output    string `yaml:"output"`
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	// RenderWorkers caps concurrent page renders. 1 renders sequentially.
	RenderWorkers int `yaml:"render_workers"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Port      int           `yaml:"port"`
	IndexName string        `yaml:"index_name"`
	StateDir  string        `yaml:"state_dir"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

// MetricsConfig toggles the prometheus endpoint on the preview server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the conventional configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path. A missing file at the default
// location is not an error; the conventional defaults apply. An explicitly
// configured path must exist.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if path == DefaultFileName {
			slog.Debug("No configuration file, using defaults")
			return Default(), nil
		}
		return nil, apperrors.ConfigError(fmt.Sprintf("configuration file not found: %s", path), err)
	}
	if err != nil {
		return nil, apperrors.ConfigError("failed to read configuration file", err)
	}

	// Expand ${VAR} references in the YAML content before unmarshalling.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, apperrors.ConfigError("failed to parse configuration file", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads .env then .env.local into the process environment.
// Existing variables are never overwritten, and missing files are fine.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Could not load env file", logfields.Path(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(name))
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "New Site"
	}
	if cfg.Dirs.Content == "" {
		cfg.Dirs.Content = "content"
	}
	if cfg.Dirs.Static == "" {
		cfg.Dirs.Static = "static"
	}
	if cfg.Dirs.Styles == "" {
		cfg.Dirs.Styles = "styles"
	}
	if cfg.Dirs.Templates == "" {
		cfg.Dirs.Templates = "templates"
	}
	if cfg.Dirs.Output == "" {
		cfg.Dirs.Output = "public"
	}
	if cfg.Build.RenderWorkers == 0 {
		cfg.Build.RenderWorkers = 1
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.IndexName == "" {
		cfg.Server.IndexName = "index"
	}
	if cfg.Server.StateDir == "" {
		cfg.Server.StateDir = ".sitebuilder"
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return apperrors.ConfigError(fmt.Sprintf("server port %d out of range", c.Server.Port), nil)
	}
	if c.Build.RenderWorkers < 1 {
		return apperrors.ConfigError(fmt.Sprintf("render_workers must be at least 1, got %d", c.Build.RenderWorkers), nil)
	}
	if strings.ContainsAny(c.Server.IndexName, "/\\") {
		return apperrors.ConfigError(fmt.Sprintf("index_name %q must be a bare file name", c.Server.IndexName), nil)
	}
	dirs := map[string]string{
		"content":   c.Dirs.Content,
		"static":    c.Dirs.Static,
		"styles":    c.Dirs.Styles,
		"templates": c.Dirs.Templates,
		"output":    c.Dirs.Output,
	}
	for key, value := range dirs {
		if value == "" {
			return apperrors.ConfigError(fmt.Sprintf("dirs.%s must not be empty", key), nil)
		}
	}
	return nil
}

// Rebase returns a copy whose input directories resolve under root, for
// building a project fetched into a workspace. The output directory is made
// absolute first so rendered files still land in the invoking project.
func (c *Config) Rebase(root string) (*Config, error) {
	out, err := filepath.Abs(c.Dirs.Output)
	if err != nil {
		return nil, apperrors.FileSystemFailure("abs", c.Dirs.Output, err)
	}
	clone := *c
	clone.Dirs.Output = out
	clone.baseDir = root
	return &clone, nil
}

// ContentDir returns the resolved content root.
func (c *Config) ContentDir() string { return c.dir(c.Dirs.Content) }

// TemplatesDir returns the resolved templates directory.
func (c *Config) TemplatesDir() string { return c.dir(c.Dirs.Templates) }

// StaticDir returns the resolved static asset tree.
func (c *Config) StaticDir() string { return c.dir(c.Dirs.Static) }

// StylesDir returns the resolved styles asset tree.
func (c *Config) StylesDir() string { return c.dir(c.Dirs.Styles) }

// OutputDir returns the output root. It is never rebased.
func (c *Config) OutputDir() string { return c.Dirs.Output }

// AssetDirs returns the trees copied verbatim into the output root, in copy
// order.
func (c *Config) AssetDirs() []string {
	return []string{c.StaticDir(), c.StylesDir()}
}

// InputDirs returns the four authoring directories, used by init scaffolding
// and the watch command.
func (c *Config) InputDirs() []string {
	return []string{c.ContentDir(), c.StaticDir(), c.StylesDir(), c.TemplatesDir()}
}

func (c *Config) dir(name string) string {
	if c.baseDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.baseDir, name)
}
