package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leftmike/sqlexpr/sql"
)

func init() {
	sqlexprCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of sqlexpr",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), sql.Version())
			},
		})
}
