package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `Starts a read-eval-print loop. Every line is answered as a question.
Type "exit" or "quit" (or send EOF) to leave. A failed question is reported
and the session continues.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	svc, closeFn, err := openServices(cmd.Context(), cmd.Name())
	if err != nil {
		return err
	}
	defer closeFn()
	if svc.Asker == nil {
		return errors.New("question answering not configured")
	}

	out := cmd.OutOrStdout()
	cmd.Println(`Ask me anything about the users data. Type "exit" to quit.`)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		_, _ = youLabel.Fprint(out, "You: ")
		if !scanner.Scan() {
			cmd.Println()
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			cmd.Println("Bye!")
			return nil
		}

		if err := cmd.Context().Err(); err != nil {
			return err
		}
		answer, err := svc.Asker.Ask(cmd.Context(), line)
		if err != nil {
			printFailure(out, err)
			continue
		}
		printAnswer(out, answer)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
