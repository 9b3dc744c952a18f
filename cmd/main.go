package main

import (
	"context"
	"fmt"
	"os"

	"github.com/corray333/backend-labs/bookstore/internal/app"
	"github.com/corray333/backend-labs/bookstore/internal/config"
	"github.com/corray333/backend-labs/bookstore/internal/dal/postgres"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "bookstore",
		Short: "Bookstore order service",
		PersistentPreRun: func(*cobra.Command, []string) {
			config.MustInit()
		},
		Run: func(*cobra.Command, []string) {
			app.MustNewApp().Run()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP, gRPC and websocket servers",
			Run: func(*cobra.Command, []string) {
				app.MustNewApp().Run()
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down|status]",
			Short:     "Apply or inspect database migrations",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"up", "down", "status"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context(), args[0])
			},
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context, command string) error {
	client, err := postgres.Connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.Migrate(ctx, command)
}
