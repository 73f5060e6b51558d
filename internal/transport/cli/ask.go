package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question",
	Long: `Answers one natural-language question and exits.
With --json the strategy and the retrieved data are printed along with the answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and its data as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	svc, closeFn, err := openServices(cmd.Context(), cmd.Name())
	if err != nil {
		return err
	}
	defer closeFn()
	if svc.Asker == nil {
		return errors.New("question answering not configured")
	}

	answer, err := svc.Asker.Ask(cmd.Context(), question)
	if err != nil {
		printFailure(cmd.ErrOrStderr(), err)
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return writeJSON(cmd.OutOrStdout(), answerJSON{
			ID:       answer.ID.String(),
			Question: answer.Question,
			Answer:   answer.Text,
			Strategy: string(answer.Strategy),
			Result:   answer.Result,
		})
	}
	printAnswer(cmd.OutOrStdout(), answer)
	return nil
}
