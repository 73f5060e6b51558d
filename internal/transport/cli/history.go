package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/askdb/internal/domain/history"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent questions and answers",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output entries as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", historyLimit)
	}

	svc, closeFn, err := openServices(cmd.Context(), cmd.Name())
	if err != nil {
		return err
	}
	defer closeFn()
	if svc.History == nil {
		return errors.New("history not configured")
	}

	entries, err := svc.History.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	if historyJSON {
		if entries == nil {
			entries = []history.Entry{}
		}
		return writeJSON(cmd.OutOrStdout(), entries)
	}

	if len(entries) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		cmd.Printf("[%s] ", formatTime(e.AskedAt))
		_, _ = youLabel.Fprint(out, "You: ")
		cmd.Println(e.Question)
		_, _ = botLabel.Fprint(out, "  Bot: ")
		cmd.Print(e.Answer, " ")
		_, _ = tagColor.Fprintf(out, "[%s]\n", e.Strategy)
	}
	return nil
}
