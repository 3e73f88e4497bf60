package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/suneung/internal/pipeline"
	"github.com/abhisek/suneung/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "suneung",
	Short: "CSAT math problem generator",
	Long: "suneung generates Korean CSAT (수능) math problems with an LLM, checks them " +
		"against the curriculum, scores their difficulty and runs them through " +
		"review and revision until they are accepted or rejected.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return setupLogging(cmd, os.Stderr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides SUNEUNG_DB env var)")
	pf.String("config", "", "Pipeline config YAML file")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging installs the default slog logger chosen by the log flags.
func setupLogging(cmd *cobra.Command, w io.Writer) error {
	levelName, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid --log-level %q", levelName)
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid --log-format %q", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SUNEUNG_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the database selected by the flags.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadPipelineConfig reads --config over the defaults.
func loadPipelineConfig(cmd *cobra.Command) (pipeline.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return pipeline.LoadConfig(path)
}
