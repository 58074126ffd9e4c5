package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/crmarques/zpasync/faults"
)

const DefaultConfigPath = "~/.zpasync/config.yaml"

// LoadOptions selects where configuration comes from. Path wins over the
// ZPASYNC_CONFIG variable, which wins over DefaultConfigPath.
type LoadOptions struct {
	Path   string
	Lookup LookupFunc
}

// Load reads the config file, applies ZPA_* environment overrides and
// defaults, and validates the result. A missing file is only an error when
// it was named explicitly.
func Load(options LoadOptions) (Config, error) {
	cfg, err := Read(options)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for commands that need only part of the
// configuration.
func Read(options LoadOptions) (Config, error) {
	lookup := options.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	explicit := strings.TrimSpace(options.Path)
	if explicit == "" {
		if value, ok := lookup(EnvConfigPath); ok {
			explicit = strings.TrimSpace(value)
		}
	}

	path, err := resolveConfigPath(explicit)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err = Decode(data)
		if err != nil {
			return Config{}, err
		}
	case errors.Is(err, fs.ErrNotExist) && explicit == "":
	case errors.Is(err, fs.ErrNotExist):
		return Config{}, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("config file %q not found", path), err)
	default:
		return Config{}, faults.NewTypedError(faults.InternalError, fmt.Sprintf("failed to read config file %q", path), err)
	}

	applyEnvOverrides(&cfg, lookup)
	ApplyDefaults(&cfg)
	return cfg, nil
}

// Decode strictly parses config YAML; unknown keys are rejected.
func Decode(data []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, faults.NewTypedError(faults.ValidationError, "invalid config yaml", err)
	}
	return cfg, nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Auth.TokenURL == "" {
		cfg.API.Auth.TokenURL = DefaultTokenURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	if cfg.API.RateLimit != nil && cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 1
	}
	if cfg.Reconcile.Parallelism == 0 {
		cfg.Reconcile.Parallelism = DefaultParallelism
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

func resolveConfigPath(explicitPath string) (string, error) {
	path := explicitPath
	if path == "" {
		path = DefaultConfigPath
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", faults.NewTypedError(faults.InternalError, "failed to resolve user home directory", err)
		}
		if path == "~" {
			path = homeDir
		} else {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
		}
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		return "", faults.NewTypedError(faults.ValidationError, "config path is invalid", errors.New("resolved to current directory"))
	}
	return cleanPath, nil
}
