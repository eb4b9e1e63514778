package main

import (
	"github.com/kiranshivaraju/agentlist/internal/apikey"
	"github.com/kiranshivaraju/agentlist/internal/config"
	"github.com/kiranshivaraju/agentlist/internal/store"
	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}

	var (
		name   string
		scopes string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key and print it once",
		Long: `Issue a new API key directly against the database.

Use this to bootstrap the first admin key; later keys can be issued
through the admin API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return apikey.ErrInvalidName
			}
			db, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, db)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := apikey.NewService(store.NewPostgresStore(pool))
			key, raw, err := svc.Create(ctx, name, splitScopes(scopes))
			if err != nil {
				return err
			}

			printf(cmd, "id:     %s\n", key.ID)
			printf(cmd, "scopes: %v\n", key.Scopes)
			printf(cmd, "key:    %s\n", raw)
			printf(cmd, "Store this key now; it cannot be shown again.\n")
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "human readable key name (required)")
	create.Flags().StringVar(&scopes, "scopes", "admin", "comma separated scopes: read, write, admin")

	cmd.AddCommand(create)
	return cmd
}
