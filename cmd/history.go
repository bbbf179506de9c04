package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List completed sessions, or the answers of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if len(args) == 1 {
			return printAttempts(cmd, s.EventRepo(), args[0])
		}

		limit, _ := cmd.Flags().GetInt("limit")
		ctx := context.Background()
		events, err := s.EventRepo().QuerySessionEvents(ctx, store.SessionActionComplete, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No completed sessions yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-24s  %-5s  %-6s  %s\n",
			"Session", "Completed", "Learner", "Score", "Time", "Categories")
		fmt.Println(strings.Repeat("─", 120))
		for _, e := range events {
			fmt.Printf("%-36s  %-16s  %-24s  %2d/%-2d  %-6s  %s\n",
				e.SessionID,
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				truncate(e.FirstName+" "+e.LastName, 24),
				e.CorrectAnswers, e.QuestionsTotal,
				formatDuration(time.Duration(e.DurationSecs)*time.Second),
				formatScores(e.Scores),
			)
		}
		return nil
	},
}

func printAttempts(cmd *cobra.Command, repo store.EventRepo, sessionID string) error {
	attempts, err := repo.AttemptsForSession(context.Background(), sessionID)
	if err != nil {
		return fmt.Errorf("query attempts: %w", err)
	}
	if len(attempts) == 0 {
		fmt.Printf("No answers recorded for session %s.\n", sessionID)
		return nil
	}

	fmt.Printf("%-4s  %-14s  %-7s  %-5s  %s\n", "Q", "Category", "Outcome", "Tries", "Answer")
	fmt.Println(strings.Repeat("─", 80))
	for _, a := range attempts {
		fmt.Printf("%-4d  %-14s  %-7s  %-5d  %s\n",
			a.QuestionID, categoryLabel(a.Category), a.Outcome, a.TriesUsed, a.LearnerAnswer)
	}
	return nil
}

func categoryLabel(s string) string {
	c, err := content.ParseCategory(s)
	if err != nil {
		return s
	}
	return c.Label()
}

func formatScores(scores []store.CategoryScoreSummary) string {
	parts := make([]string, 0, len(scores))
	for _, sc := range scores {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", categoryLabel(sc.Category), sc.Percentage))
	}
	return strings.Join(parts, "  ")
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
