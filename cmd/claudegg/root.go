package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/metalagman/claudegg/internal/claude"
	"github.com/metalagman/claudegg/internal/config"
	"github.com/metalagman/claudegg/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// version is the host version sent in the User-Agent, set with -ldflags "-X main.version=...".
	version = "dev"

	cfgFile string
	debug   bool

	httpClient claude.Doer = http.DefaultClient
)

var defaultConfigPath = filepath.Join(".claudegg", "settings.json")

// Execute runs the root command.
func Execute() error {
	rootCmd, err := newRootCmd()
	if err != nil {
		return err
	}
	return rootCmd.Execute()
}

func newRootCmd() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "claudegg",
		Short:         "claudegg sends a single message to the claude.gg messages API",
		Version:       version,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.Init(debug)
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "settings file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return nil, fmt.Errorf("bind config flag: %w", err)
	}

	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(configCmd())
	return rootCmd, nil
}

func openSettings() (*config.Store, error) {
	path := viper.GetString("config")
	if path == "" {
		path = defaultConfigPath
	}
	store, err := config.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open settings %s: %w", path, err)
	}
	return store, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}
