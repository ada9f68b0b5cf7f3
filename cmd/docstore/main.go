package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "docstore: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docstore",
		Short: "Document store administration CLI",
		Long: `docstore runs maintenance tasks against the document store: applying
database migrations, issuing access tokens and re-queueing tagging.
Settings come from the same environment variables as the API.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(),
		newTokenCmd(),
		newRetagCmd(),
		newRunsCmd(),
	)
	return cmd
}
