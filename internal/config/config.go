// Package config resolves client settings from the process environment and,
// for the afyctl CLI, from an optional YAML config file.
//
// Settings precedence (highest to lowest):
//  1. Explicit values passed to the client constructor
//  2. Environment variables (AETHERFY_API_KEY, AETHERFY_WORKSPACE, ...)
//  3. YAML config file (CLI only)
//  4. Hardcoded defaults
//
// The environment is read once at client construction and never polled
// afterward.
package config

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "AETHERFY_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Env holds the AETHERFY_* environment values relevant to the client.
type Env struct {
	// APIKey is AETHERFY_API_KEY.
	APIKey string `koanf:"api_key"`

	// AltAPIKey is AETHERFY_VECTORS_API_KEY, consulted after APIKey.
	AltAPIKey string `koanf:"vectors_api_key"`

	// Workspace is AETHERFY_WORKSPACE.
	Workspace string `koanf:"workspace"`

	// Endpoint is AETHERFY_ENDPOINT, an optional endpoint override.
	Endpoint string `koanf:"endpoint"`
}

// LoadEnv reads the AETHERFY_* environment variables.
func LoadEnv() (*Env, error) {
	k := koanf.New(".")

	// AETHERFY_API_KEY -> api_key, AETHERFY_VECTORS_API_KEY -> vectors_api_key
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var e Env
	if err := k.Unmarshal("", &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment: %w", err)
	}
	return &e, nil
}

// ResolveAPIKey applies the key precedence: explicit argument, then
// AETHERFY_API_KEY, then AETHERFY_VECTORS_API_KEY. Empty when none is set.
func (e *Env) ResolveAPIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if e.APIKey != "" {
		return e.APIKey
	}
	return e.AltAPIKey
}

// FileConfig is the afyctl YAML config file shape.
type FileConfig struct {
	// Endpoint is the service base URL.
	Endpoint string `koanf:"endpoint"`

	// FallbackEndpoints are additional endpoints for failover.
	FallbackEndpoints []string `koanf:"fallback_endpoints"`

	// Workspace scopes all collection names.
	Workspace string `koanf:"workspace"`

	// Timeout bounds each individual request.
	Timeout time.Duration `koanf:"timeout"`
}

// LoadFile reads an afyctl config file and overrides it with environment
// variables. A missing file is not an error; the zero config is returned.
//
// The file must be owner-readable only (0600 or 0400): it may name
// credentials sources, and weaker permissions are rejected.
func LoadFile(path string) (*FileConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open config file: %w", err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return nil, fmt.Errorf("failed to stat config file: %w", err)
			}
			if err := validateFileProperties(info); err != nil {
				return nil, fmt.Errorf("config file validation failed: %w", err)
			}

			content, err := io.ReadAll(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	// Environment overrides file values.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg FileConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// validateFileProperties checks file permissions and size using the already
// opened descriptor to avoid a TOCTOU race.
func validateFileProperties(info os.FileInfo) error {
	// Skip the permission check on Windows (different permission model).
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}
