// Package cmd implements the command-line interface for newsharvest.
// It provides the root command and subcommands for running harvest
// sessions and inspecting configured sources.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/newsharvest/cmd/harvest"
	cmdsources "github.com/jonesrussell/newsharvest/cmd/sources"
	"github.com/jonesrussell/newsharvest/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug logging for all commands.
	Debug bool

	// rootCmd represents the root command for the newsharvest CLI.
	rootCmd = &cobra.Command{
		Use:   "newsharvest",
		Short: "A concurrent multi-source news harvester",
		Long: `A concurrent multi-source news harvester built with Go.
It paginates news archives, extracts structured records, and publishes
them to an event stream with per-source CSV snapshots.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so credentials are visible before config init.
	_ = godotenv.Load()

	// Parse flags early so --debug is seen during config init.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("newsharvest version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(harvest.Command())
	rootCmd.AddCommand(cmdsources.Command())
}

// initConfig reads the config file and environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Environment variables take precedence over defaults.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// The config file is optional; defaults and environment variables
	// are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Config file not found: %v (using defaults and environment variables)\n", err)
	}

	if err := bindFlags(); err != nil {
		return err
	}
	if err := bindEnvVars(); err != nil {
		return err
	}

	if Debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
		Debug = true
	}
	if viper.GetString("app.environment") == "development" {
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}

	return nil
}

// bindFlags binds command-line flags to Viper.
func bindFlags() error {
	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	return nil
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":          {"APP_ENV"},
		"app.debug":                {"APP_DEBUG"},
		"logger.level":             {"LOG_LEVEL"},
		"logger.encoding":          {"LOG_FORMAT"},
		"crawl.source_file":        {"SOURCE_FILE"},
		"crawl.snapshot_dir":       {"SNAPSHOT_DIR"},
		"stream.addr":              {"REDIS_ADDR"},
		"stream.password":          {"REDIS_PASSWORD"},
		"stream.topic":             {"NEWS_TOPIC", "KAFKA_TOPIC"},
		"elasticsearch.addresses":  {"ELASTICSEARCH_HOSTS", "ELASTICSEARCH_ADDRESSES"},
		"elasticsearch.password":   {"ELASTIC_PASSWORD", "ELASTICSEARCH_PASSWORD"},
		"elasticsearch.api_key":    {"ELASTICSEARCH_API_KEY"},
		"extract.model":            {"EXTRACT_MODEL"},
		"metrics.address":          {"METRICS_ADDR"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "newsharvest",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "json",
		"development": false,
	})

	viper.SetDefault("crawl", map[string]any{
		"max_pages":    config.DefaultMaxPages,
		"max_attempts": config.DefaultMaxAttempts,
		"retry_delay":  "5s",
		"page_delay":   "2s",
		"source_file":  config.DefaultSourceFile,
		"snapshot_dir": config.DefaultSnapshotDir,
	})

	viper.SetDefault("stream", map[string]any{
		"addr":  config.DefaultRedisAddr,
		"db":    0,
		"topic": config.DefaultTopic,
	})

	viper.SetDefault("elasticsearch", map[string]any{
		"enabled":      false,
		"addresses":    []string{"http://127.0.0.1:9200"},
		"index_prefix": "newsharvest",
	})

	viper.SetDefault("extract", map[string]any{
		"request_timeout": "30s",
	})

	viper.SetDefault("metrics", map[string]any{
		"address": ":9091",
	})
}
