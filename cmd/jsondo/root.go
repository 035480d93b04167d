package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/jsondo"
	"github.com/aretw0/jsondo/pkg/core"
	"github.com/aretw0/jsondo/pkg/integration"
)

var (
	verbose bool
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsondo",
	Short: "Edit a JSON document with dotted-path actions",
	Long: `jsondo keeps a single JSON document on disk and mutates it with
path-addressed actions: init, delete, insert and sort.

Actions can be applied directly (jsondo do) or received as json_do events
over HTTP (jsondo serve).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringP("file", "f", integration.DefaultStoragePath, "Storage file")
	rootCmd.PersistentFlags().Bool("strict", false, "Decode YAML numbers as json.Number")

	_ = viper.BindPFlag(integration.ConfStoragePath, rootCmd.PersistentFlags().Lookup("file"))
	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))

	viper.SetEnvPrefix("JSONDO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// initConfig reads the config file, if any. Flags and JSONDO_* variables
// override its values.
func initConfig() error {
	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
	slog.Debug("config loaded", "file", viper.ConfigFileUsed())
	return nil
}

// openService builds a service for the configured storage file.
func openService() (*core.Service, error) {
	return jsondo.New(viper.GetString(integration.ConfStoragePath),
		jsondo.WithStrict(viper.GetBool("strict")),
		jsondo.WithLogger(slog.Default()),
	)
}
