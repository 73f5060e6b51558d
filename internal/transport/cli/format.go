package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/result"
	"github.com/kailas-cloud/askdb/internal/usecase/orchestrator"
)

var (
	youLabel = color.New(color.FgCyan, color.Bold)
	botLabel = color.New(color.FgGreen, color.Bold)
	tagColor = color.New(color.FgYellow)
	errColor = color.New(color.FgRed)
)

type answerJSON struct {
	ID       string        `json:"id"`
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Strategy string        `json:"strategy"`
	Result   result.Result `json:"result"`
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printAnswer(w io.Writer, a orchestrator.Answer) {
	_, _ = botLabel.Fprint(w, "Bot: ")
	_, _ = fmt.Fprint(w, a.Text, " ")
	_, _ = tagColor.Fprintf(w, "[%s]\n", a.Strategy)
}

func printFailure(w io.Writer, err error) {
	_, _ = botLabel.Fprint(w, "Bot: ")
	_, _ = errColor.Fprintln(w, describeError(err))
}

// describeError renders a failed question for a terminal user.
func describeError(err error) string {
	if stage, ok := domain.StageOf(err); ok {
		return fmt.Sprintf("sorry, I could not answer that (%s failed): %v", stage, err)
	}
	return fmt.Sprintf("sorry, I could not answer that: %v", err)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
