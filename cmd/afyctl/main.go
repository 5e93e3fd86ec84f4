// Package main implements the afyctl CLI for manual operations against the
// Aetherfy vector service.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aetherfy/vectors-go/internal/config"
	"github.com/aetherfy/vectors-go/pkg/vectors"
)

var (
	flagEndpoint  string
	flagWorkspace string
	flagConfig    string
	flagTimeout   time.Duration
	flagVerbose   bool

	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "afyctl",
	Short: "CLI for the Aetherfy vector service",
	Long: `afyctl is a command-line interface for the Aetherfy vector service.
It reads the API key from AETHERFY_API_KEY and optional defaults from
~/.config/afyctl/config.yaml.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "service base URL (default from config/env)")
	rootCmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", "", "workspace scoping all collection names")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.config/afyctl/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "per-request timeout")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(upsertCmd)
	rootCmd.AddCommand(usageCmd)
}

// newClient builds a vectors client from flags, config file and environment.
func newClient() (*vectors.Client, error) {
	configPath := flagConfig
	if configPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configPath = filepath.Join(home, ".config", "afyctl", "config.yaml")
		}
	}
	fileCfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	endpoint := flagEndpoint
	if endpoint == "" {
		endpoint = fileCfg.Endpoint
	}
	workspace := flagWorkspace
	if workspace == "" {
		workspace = fileCfg.Workspace
	}
	timeout := flagTimeout
	if timeout == 0 {
		timeout = fileCfg.Timeout
	}

	logger := zap.NewNop()
	if flagVerbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	return vectors.New(vectors.Config{
		Endpoint:          endpoint,
		FallbackEndpoints: fileCfg.FallbackEndpoints,
		Workspace:         workspace,
		Timeout:           timeout,
		Logger:            logger,
	})
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
