package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/report"
	"github.com/abhisek/lectura/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluate/remediate endpoints and the session API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(os.Stderr, true)

		cfg, err := server.ConfigFromEnv()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		bank, err := loadBank(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		grader, remediator, err := buildGateways(ctx, bank, st.EventRepo(), "")
		if err != nil {
			return err
		}

		srv, err := server.New(cfg, server.Deps{
			Bank:       bank,
			Grader:     grader,
			Remediator: remediator,
			Recorder:   quiz.NewStoreRecorder(st.EventRepo()),
			Exporter:   report.NewPDFExporter(),
		})
		if err != nil {
			return fmt.Errorf("build server: %w", err)
		}
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides LECTURA_HTTP_ADDR)")
}
