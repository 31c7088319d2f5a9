// Package cli wires the cobra command tree for the migration tool.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "migratool",
	Short: "Migrates legacy user and image records to the redesigned schema",
	Long: `migratool moves user accounts and image assets from the legacy MariaDB
schema into the redesigned PostgreSQL schema: it maps legacy image kinds to
aspect identifiers, derives display fields, reconciles uploader references,
and applies everything transactionally with batch upserts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
