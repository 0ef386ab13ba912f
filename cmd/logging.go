package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/longkey1/bookchat/internal/bookchat/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var logFile *os.File

// setupLogging configures the global zerolog logger. Logs go to the configured
// log_file as JSON, or to console as human readable lines. A nil console
// discards logs unless a log file is configured.
func setupLogging(console io.Writer) error {
	level, err := parseLevel(viper.GetString("log_level"))
	if err != nil {
		return err
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if path := viper.GetString("log_file"); path != "" {
		resolved, err := config.ResolvePath(path)
		if err != nil {
			return errors.Wrap(err, "resolving log file path")
		}
		closeLogFile()
		f, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "opening log file %s", resolved)
		}
		logFile = f
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
		return nil
	}

	if console == nil {
		log.Logger = zerolog.Nop()
		return nil
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	return nil
}

func parseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

func closeLogFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
