package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/longkey1/bookchat/internal/bookchat/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	Long: `Initialize the configuration file with default settings.
The config file will be created at $HOME/.config/bookchat/config.toml by default.
You can specify a different location using the --config option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := cfgFile
		if configFile == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %v", err)
			}
			configFile = filepath.Join(home, ".config", "bookchat", "config.toml")
		}

		if err := writeDefaultConfig(configFile); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", configFile)
		return nil
	},
}

// writeDefaultConfig encodes the default configuration to path, refusing to overwrite
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %v", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config.NewDefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode config: %v", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
