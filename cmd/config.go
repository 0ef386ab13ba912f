package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/longkey1/bookchat/internal/bookchat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, api_url, chat_endpoint, health_endpoint, request_timeout, log_level, log_file, otlp_endpoint, suggestions"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file, .env and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  bookchat config                  # Show all configuration
  bookchat config api_url          # Show only the answer service URL
  bookchat config chat_endpoint    # Show the full chat endpoint
  bookchat config request_timeout  # Show only the request timeout`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			value, ok := configField(cfg, strings.ToLower(args[0]))
			if !ok {
				return fmt.Errorf("unknown field: %s\nAvailable fields: %s", args[0], configFields)
			}
			fmt.Fprintln(out, value)
			return nil
		}

		printConfig(out, cfg)
		return nil
	},
}

// configField returns the display value of a single field
func configField(cfg *config.Config, field string) (string, bool) {
	switch field {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "api_url", "apiurl":
		return cfg.APIURL, true
	case "chat_endpoint", "chatendpoint":
		return cfg.ChatEndpoint(), true
	case "health_endpoint", "healthendpoint":
		return cfg.HealthEndpoint(), true
	case "request_timeout", "requesttimeout":
		return cfg.RequestTimeout, true
	case "log_level", "loglevel":
		return cfg.LogLevel, true
	case "log_file", "logfile":
		return cfg.LogFile, true
	case "otlp_endpoint", "otlpendpoint":
		return cfg.OTLPEndpoint, true
	case "suggestions":
		return strings.Join(cfg.Suggestions, ","), true
	default:
		return "", false
	}
}

// printConfig writes every configuration value
func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "ConfigFile: %s\n", viper.ConfigFileUsed())
	fmt.Fprintf(w, "APIURL: %s\n", cfg.APIURL)
	fmt.Fprintf(w, "ChatEndpoint: %s\n", cfg.ChatEndpoint())
	fmt.Fprintf(w, "HealthEndpoint: %s\n", cfg.HealthEndpoint())
	fmt.Fprintf(w, "RequestTimeout: %s\n", cfg.RequestTimeout)
	fmt.Fprintf(w, "LogLevel: %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "LogFile: %s\n", cfg.LogFile)
	fmt.Fprintf(w, "OTLPEndpoint: %s\n", cfg.OTLPEndpoint)
	fmt.Fprintf(w, "Suggestions: %s\n", strings.Join(cfg.Suggestions, ","))
}

func init() {
	rootCmd.AddCommand(configCmd)
}
