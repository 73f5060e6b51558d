// Package cli is the askdb command line: the HTTP server, the interactive chat
// and the data management commands.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// Services are the collaborators the commands drive. A nil field disables the
// commands that need it.
type Services struct {
	Asker   Asker
	History HistoryReader
	Seeder  Seeder
	Indexer Indexer
	Server  Server
}

// Bootstrap builds Services for the named command and returns a func releasing them.
type Bootstrap func(ctx context.Context, command string) (*Services, func(), error)

var bootstrap Bootstrap

var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Ask questions about your users in plain language",
	Long: `askdb answers natural-language questions about the users dataset.
Structured questions are translated into exact queries, open-ended ones are
answered from the semantic knowledge base, and mixed questions use both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetBootstrap installs the function that wires services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func openServices(ctx context.Context, command string) (*Services, func(), error) {
	if bootstrap == nil {
		return nil, nil, errNotConfigured
	}
	svc, closeFn, err := bootstrap(ctx, command)
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() {}
	}
	return svc, closeFn, nil
}
