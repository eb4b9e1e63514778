// Package main is agentctl, the operator CLI for AgentList. It talks to the
// database directly and is used to migrate the schema and bootstrap keys.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentctl",
		Short: "Operate an AgentList deployment",
		Long: `agentctl manages an AgentList database directly.

It reads DATABASE_URL from the environment.

Available commands:
  migrate - Apply, roll back, or inspect schema migrations
  keys    - Issue API keys`,
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newKeysCmd())
	return root
}

func defaultMigrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}

func splitScopes(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
