package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/balkashynov/todo/internal/progress"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config is the merged todo configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
}

// StorageConfig selects the durable backend
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // sqlite or file
	Path    string `yaml:"path" mapstructure:"path"`       // empty means the backend default
}

type ProgressConfig struct {
	Policy string `yaml:"policy" mapstructure:"policy"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Storage:  StorageConfig{Backend: BackendSQLite},
		Progress: ProgressConfig{Policy: string(progress.PolicyTasks)},
		Server:   ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load merges the global and project config files over the defaults.
// When explicit is set only that file is read, and it must exist.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		cfg := Default()
		if err := loadFile(explicit, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", explicit, err)
		}
		return cfg, cfg.Validate()
	}
	return LoadFiles(GlobalPath(), ProjectPath())
}

// LoadFiles applies each existing file in order; later files override earlier ones
func LoadFiles(paths ...string) (*Config, error) {
	cfg := Default()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := loadFile(path, cfg); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// Validate rejects unknown backends and progress policies
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = BackendSQLite
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unknown storage backend %q (use sqlite or file)", c.Storage.Backend)
	}

	p, err := progress.ParsePolicy(c.Progress.Policy)
	if err != nil {
		return err
	}
	c.Progress.Policy = string(p)

	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = Default().Server.Addr
	}
	return nil
}

// Policy returns the validated progress policy
func (c *Config) Policy() progress.Policy {
	p, err := progress.ParsePolicy(c.Progress.Policy)
	if err != nil {
		return progress.PolicyTasks
	}
	return p
}

// YAML renders the effective configuration
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(b), nil
}

// Dir returns ~/.todo, the home of the default database and config.
// It is empty when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".todo")
}

// GlobalPath returns the path to the global config file, or "" without a home directory
func GlobalPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// ProjectPath returns the path to the project config file
func ProjectPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".todo", "config.yaml")
}
