package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leftmike/sqlexpr/bindings"
	"github.com/leftmike/sqlexpr/repl"
)

var (
	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive console session",
		Args:  cobra.NoArgs,
		RunE:  replRun,
	}

	bindingsFile = ""
)

func init() {
	fs := replCmd.Flags()
	fs.StringVar(&bindingsFile, "bindings", bindingsFile,
		"`file` to keep \\set expressions in between sessions")
	cfg.AddVar("bindings", fs.Lookup("bindings"))

	sqlexprCmd.AddCommand(replCmd)
}

func replRun(cmd *cobra.Command, args []string) error {
	ses, err := newSession()
	if err != nil {
		return err
	}

	if bindingsFile != "" {
		st, err := bindings.Open(bindingsFile)
		if err != nil {
			return fmt.Errorf("sqlexpr: %s", err)
		}
		defer st.Close()

		ses.Store = st
		err = ses.LoadBindings()
		if err != nil {
			return fmt.Errorf("sqlexpr: %s", err)
		}
	}

	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		ses.Name = "stdin"
		return repl.ReplReader(ses, os.Stdin, cmd.OutOrStdout())
	}
	return repl.Interact(ses)
}
