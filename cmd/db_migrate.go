package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// tables created by the registered migrations
var ledgerTables = []string{"pools", "position_entries", "position_locks"}

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "create or update the ledger tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			return err
		}

		for _, table := range ledgerTables {
			cmd.Printf("%-18s ok=%v\n", table, database.View().HasTable(table))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
