// Package cli implements the course-selector CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-selector/internal/config"
	"github.com/rcliao/course-selector/internal/logging"
	"github.com/rcliao/course-selector/internal/store"
)

var (
	dbPath     string
	configPath string
	formatFlag string
	logLevel   string
	clientFlag string
)

// RootCmd is the top-level command. Commands return their errors; the
// caller prints them, so deferred cleanup always runs.
var RootCmd = &cobra.Command{
	Use:   "course-selector",
	Short: "Course selection helper state",
	Long:  "Version announcement banner and required-course list state for the course selector, backed by a local SQLite store.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := logging.ParseLevel(logLevel); !ok {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		if formatFlag != "json" && formatFlag != "text" {
			return fmt.Errorf("invalid format %q (use json or text)", formatFlag)
		}
		logger := logging.New(logLevel, cmd.ErrOrStderr())
		logging.SetDefault(logger)
		cmd.SetContext(logging.With(cmd.Context(), logger.With("client", clientFlag)))
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $COURSE_SELECTOR_DB or ~/.course-selector/state.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $COURSE_SELECTOR_CONFIG, built-in defaults if unset)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&clientFlag, "client", "c", "default", "Client whose state is read and written")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("COURSE_SELECTOR_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".course-selector", "state.db")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return os.Getenv("COURSE_SELECTOR_CONFIG")
}

func openStore() (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(getDBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func textOutput() bool {
	return formatFlag == "text"
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
