package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/lectura/internal/app"
	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/report"
	"github.com/abhisek/lectura/internal/server"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a reading session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func addPlayFlags(c *cobra.Command) {
	c.Flags().String("server", "", "Grade through a running `lectura serve` at this base URL instead of calling the LLM directly")
	c.Flags().StringP("out", "o", ".", "Directory for exported PDF reports")
	c.Flags().String("log-file", "", "Log file (defaults to lectura.log next to the database)")
	c.Flags().Bool("skip-intro", false, "Skip the welcome animation")
}

func init() {
	addPlayFlags(playCmd)
}

// runPlay opens the store, builds dependencies, and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()

	logPath, _ := cmd.Flags().GetString("log-file")
	if logPath == "" {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		logPath = filepath.Join(filepath.Dir(dbPath), "lectura.log")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	setupLogging(logFile, false)

	bank, err := loadBank(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	serverURL, _ := cmd.Flags().GetString("server")
	cfg := app.Config{
		Bank:     bank,
		Recorder: quiz.NewStoreRecorder(st.EventRepo()),
		Exporter: report.NewPDFExporter(),
	}
	cfg.OutputDir, _ = cmd.Flags().GetString("out")
	cfg.SkipWelcome, _ = cmd.Flags().GetBool("skip-intro")

	grader, remediator, err := buildGateways(ctx, bank, st.EventRepo(), serverURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Answers cannot be graded; every submission will count as wrong.")
	} else {
		cfg.Grader = grader
		cfg.Remediator = remediator
	}

	srvCfg, err := server.ConfigFromEnv()
	if err != nil {
		return err
	}
	cfg.GradingTimeout = srvCfg.GradingTimeout
	cfg.RemediationTimeout = srvCfg.RemediationTimeout

	return app.Run(cfg)
}
