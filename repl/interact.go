package repl

import (
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"
)

const (
	sqlexprHistory = ".sqlexpr_history"
)

// Interact runs a console on the terminal, with line editing and history, until end of
// input.
func Interact(ses *Session) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(sqlexprHistory); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	if ses.Name == "" {
		ses.Name = "console"
	}
	err := ReplExpr(ses,
		func() (string, error) {
			s, err := line.Prompt("sqlexpr: ")
			if err == liner.ErrPromptAborted {
				return "", io.EOF
			} else if err != nil {
				return "", err
			}
			line.AppendHistory(s)
			return s, nil
		}, os.Stdout)

	if f, err := os.Create(sqlexprHistory); err != nil {
		log.WithField("error", err).Warn("history")
		fmt.Fprintf(os.Stderr, "sqlexpr: error writing history file, %s: %s\n", sqlexprHistory,
			err)
	} else {
		line.WriteHistory(f)
		f.Close()
	}
	return err
}
