package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load users from a JSON file",
	Long: `Loads a JSON array of users into the users table. Existing users with the
same id are replaced. Use "-" to read from standard input.
Run "askdb index" afterwards to refresh the semantic knowledge base.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the semantic knowledge base",
	Long: `Renders one profile document per user, embeds it and stores the vector.
Users whose document cannot be embedded are skipped and reported.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(indexCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(filepath.Clean(args[0]))
		if err != nil {
			return fmt.Errorf("open dataset: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	svc, closeFn, err := openServices(cmd.Context(), cmd.Name())
	if err != nil {
		return err
	}
	defer closeFn()
	if svc.Seeder == nil {
		return errors.New("seeding not configured")
	}

	n, err := svc.Seeder.Seed(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	cmd.Printf("Seeded %d users.\n", n)
	return nil
}

func runIndex(cmd *cobra.Command, _ []string) error {
	svc, closeFn, err := openServices(cmd.Context(), cmd.Name())
	if err != nil {
		return err
	}
	defer closeFn()
	if svc.Indexer == nil {
		return errors.New("indexing not configured")
	}

	sum, err := svc.Indexer.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	cmd.Printf("Indexed %d of %d users", sum.Indexed, sum.Total)
	if sum.Failed > 0 {
		cmd.Printf(" (%d failed)", sum.Failed)
	}
	cmd.Println(".")
	cmd.Printf("Knowledge base holds %d documents.\n", sum.Stored)
	return nil
}
