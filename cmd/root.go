package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/store"
)

// Environment variables read by the CLI.
const (
	envDBDriver = "LECTURA_DB_DRIVER"
	envDBDSN    = "LECTURA_DB_DSN"
	envContent  = "LECTURA_CONTENT"
	envLogLevel = "LECTURA_LOG_LEVEL"
)

var rootCmd = &cobra.Command{
	Use:   "lectura",
	Short: "Reading comprehension quiz for French learners",
	Long: "Lectura is a terminal reading comprehension exercise: read a story, answer open questions " +
		"graded by an LLM with a hint after the first miss, and get a personalised report.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LECTURA_DB env var)")
	rootCmd.PersistentFlags().String("content", "", "Path to a YAML question bank (overrides LECTURA_CONTENT env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading the environment")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadDotEnv loads the dotenv file if it exists. Variables already set in
// the environment win.
func loadDotEnv(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LECTURA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the event store. LECTURA_DB_DRIVER selects the backend;
// Postgres reads its DSN from LECTURA_DB_DSN, SQLite uses the --db path.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	driver, err := store.ParseDriver(os.Getenv(envDBDriver))
	if err != nil {
		return nil, err
	}

	dsn := os.Getenv(envDBDSN)
	if driver == store.DriverSQLite {
		if dsn, err = resolveDBPath(cmd); err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	} else if dsn == "" {
		return nil, fmt.Errorf("%s is required for driver %s", envDBDSN, driver)
	}

	s, err := store.OpenDriver(cmd.Context(), driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadBank resolves the question bank from --content, LECTURA_CONTENT or the
// embedded reference bank.
func loadBank(cmd *cobra.Command) (*content.Bank, error) {
	path, _ := cmd.Flags().GetString("content")
	if path == "" {
		path = os.Getenv(envContent)
	}
	b, err := content.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return b, nil
}

// setupLogging installs the default slog logger.
func setupLogging(w io.Writer, json bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv(envLogLevel))}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// contextWithTimeout derives a deadline-bound context from the command's.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), d)
}
