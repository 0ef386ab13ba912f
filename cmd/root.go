/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/longkey1/bookchat/internal/bookchat/config"
	"github.com/longkey1/bookchat/internal/observability"
	"github.com/longkey1/bookchat/internal/version"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile         string
	verbose         bool
	shutdownTracing observability.ShutdownFunc
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookchat",
	Short: "Chat with the Humanoid Robotics book assistant",
	Long: `bookchat is a terminal client for the Humanoid Robotics book assistant.
It sends your questions to the book's answer service and shows the conversation.

Use 'bookchat widget' for the full-screen chat widget, 'bookchat repl' for a
line-oriented session, or 'bookchat ask' for a single question.
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(os.Stderr); err != nil {
			return err
		}

		shutdown, err := observability.Init(cmd.Context(), observability.Config{
			ServiceName:    "bookchat",
			ServiceVersion: version.Short(),
			OTLPEndpoint:   viper.GetString("otlp_endpoint"),
			SamplingRate:   1.0,
			BatchTimeout:   observability.DefaultConfig("bookchat").BatchTimeout,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Tracing disabled")
			return nil
		}
		shutdownTracing = shutdown
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	finish()
	if err != nil {
		os.Exit(1)
	}
}

// finish flushes traces and closes the log file.
func finish() {
	if shutdownTracing != nil {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Debug().Err(err).Msg("Tracer shutdown failed")
		}
	}
	closeLogFile()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/bookchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides log_level)")
	rootCmd.PersistentFlags().String("api-url", "", "base URL of the answer service (overrides api_url)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	// .env in the working directory, as the site build does
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error reading .env file: %v\n", err)
	}

	viper.SetEnvPrefix("BOOKCHAT")
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "bookchat")

	config.SetDefaults(viper.GetViper())

	// The site build exposes the endpoint as DOCUSAURUS_API_URL.
	viper.BindEnv("api_url", "BOOKCHAT_API_URL", "DOCUSAURUS_API_URL")
	viper.BindEnv("request_timeout", "BOOKCHAT_REQUEST_TIMEOUT")
	viper.BindEnv("otlp_endpoint", "BOOKCHAT_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		for _, path := range []string{"/etc/bookchat", "/usr/local/etc/bookchat"} {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		systemConfigLoaded := false
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "  BOOKCHAT_API_URL:", viper.GetString("api_url"))
		fmt.Fprintln(os.Stderr, "  BOOKCHAT_REQUEST_TIMEOUT:", viper.GetString("request_timeout"))
	}
}
