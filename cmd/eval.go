package cmd

import (
	"github.com/spf13/cobra"
)

var (
	evalCmd = &cobra.Command{
		Use:   "eval expr...",
		Short: "Evaluate each expression and print its value",
		Args:  cobra.MinimumNArgs(1),
		RunE:  evalRun,
	}
)

func init() {
	sqlexprCmd.AddCommand(evalCmd)
}

func evalRun(cmd *cobra.Command, args []string) error {
	ses, err := newSession()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, arg := range args {
		err = ses.EvalLine(arg, w)
		if err != nil {
			return err
		}
	}
	return nil
}
