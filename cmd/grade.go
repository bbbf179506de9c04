package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/server"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <answer>",
	Short: "Grade one answer to a question of the bank",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr(), false)

		bank, err := loadBank(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetInt("question")
		q, ok := bank.ByID(id)
		if !ok {
			return fmt.Errorf("question %d not found", id)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		serverURL, _ := cmd.Flags().GetString("server")
		grader, _, err := buildGateways(cmd.Context(), bank, st.EventRepo(), serverURL)
		if err != nil {
			return err
		}

		srvCfg, err := server.ConfigFromEnv()
		if err != nil {
			return err
		}
		ctx, cancel := contextWithTimeout(cmd, srvCfg.GradingTimeout)
		defer cancel()

		answer := strings.Join(args, " ")
		res := grader.Grade(ctx, grading.Request{
			QuestionText:  q.Text,
			ModelAnswer:   q.CorrectAnswer,
			LearnerAnswer: answer,
		})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Question: %s (%s)\n", q.Text, q.Category.Label())
		fmt.Fprintf(out, "Answer:   %s\n", answer)
		fmt.Fprintf(out, "Verdict:  %s\n", res.Verdict)
		fmt.Fprintf(out, "Feedback: %s\n", res.Feedback)
		if res.Degraded {
			fmt.Fprintln(out, "(grading service unavailable)")
		}
		return nil
	},
}

func init() {
	gradeCmd.Flags().IntP("question", "q", 1, "Question ID")
	gradeCmd.Flags().String("server", "", "Grade through a running `lectura serve` at this base URL")
}
