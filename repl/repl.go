package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/leftmike/sqlexpr/bindings"
	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/flags"
	"github.com/leftmike/sqlexpr/parser"
	"github.com/leftmike/sqlexpr/sql"
	"github.com/leftmike/sqlexpr/tupleset"
)

// Session is the state shared by the lines of one console.
type Session struct {
	TupleSet *tupleset.TupleSet
	Store    *bindings.Store
	Flags    flags.Flags
	Explain  bool
	Name     string
}

// LoadBindings makes every expression in the store a variable of the tuple set.
func (ses *Session) LoadBindings() error {
	if ses.Store == nil {
		return nil
	}
	return ses.Store.ForEach(func(name, src string, e expr.Expr) error {
		return ses.TupleSet.SetVariable(name, e)
	})
}

// ReplExpr evaluates one line at a time, as returned by next, until next returns an error;
// io.EOF ends the loop quietly.
func ReplExpr(ses *Session, next func() (string, error), w io.Writer) error {
	for {
		line, err := next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line[0] == '\\' {
			err = ses.command(line[1:], w)
		} else {
			err = ses.EvalLine(line, w)
		}
		if err != nil {
			log.WithFields(log.Fields{"line": line, "error": err}).Debug("repl")
			fmt.Fprintln(w, err)
		}
	}
}

// ReplReader runs ReplExpr over the lines read from r.
func ReplReader(ses *Session, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	return ReplExpr(ses,
		func() (string, error) {
			if scanner.Scan() {
				return scanner.Text(), nil
			}
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}, w)
}

func (ses *Session) parse(src, fn string) (expr.Expr, error) {
	return parser.ParseExpr(strings.NewReader(src), fn)
}

// SetVariable binds name to the expression src, saving it in the store if there is one.
func (ses *Session) SetVariable(name, src string) error {
	e, err := ses.parse(src, name)
	if err != nil {
		return err
	}
	old, hadOld := ses.TupleSet.Resolve(name)
	err = ses.TupleSet.SetVariable(name, e)
	if err != nil {
		return err
	}
	if ses.Store != nil {
		err = ses.Store.Set(name, src)
		if err != nil {
			if hadOld {
				ses.TupleSet.SetVariable(name, old)
			} else {
				ses.TupleSet.UnsetVariable(name)
			}
			return err
		}
	}
	return nil
}

func (ses *Session) command(line string, w io.Writer) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	if ses.Flags == nil {
		ses.Flags = flags.Default()
	}

	switch cmd {
	case "set":
		name, src, ok := strings.Cut(arg, " ")
		src = strings.TrimSpace(src)
		if !ok || name == "" || src == "" {
			return fmt.Errorf("repl: usage: \\set <name> <expr>")
		}
		return ses.SetVariable(name, src)
	case "unset":
		if arg == "" {
			return fmt.Errorf("repl: usage: \\unset <name>")
		}
		if ses.Store != nil {
			err := ses.Store.Delete(arg)
			if err != nil && err != bindings.ErrNotFound {
				return err
			}
		}
		if !ses.TupleSet.UnsetVariable(arg) {
			return fmt.Errorf("repl: variable %s not found", arg)
		}
	case "vars":
		vars := ses.TupleSet.Variables()
		names := maps.Keys(vars)
		slices.Sort(names)

		tw := tablewriter.NewWriter(w)
		tw.SetAutoFormatHeaders(false)
		tw.SetHeader([]string{"name", "expression"})
		for _, nam := range names {
			tw.Append([]string{nam, vars[nam].String()})
		}
		tw.Render()
	case "explain":
		switch arg {
		case "on":
			ses.Explain = true
		case "off":
			ses.Explain = false
		default:
			return fmt.Errorf("repl: usage: \\explain on|off")
		}
	case "flag":
		name, val, _ := strings.Cut(arg, " ")
		f, ok := flags.LookupFlag(name)
		if !ok {
			return fmt.Errorf("repl: flag %s not found", name)
		}
		switch strings.TrimSpace(val) {
		case "on", "true":
			ses.Flags[f] = true
		case "off", "false":
			ses.Flags[f] = false
		case "":
			fmt.Fprintf(w, "%s: %v\n", name, ses.Flags.GetFlag(f))
		default:
			return fmt.Errorf("repl: usage: \\flag <name> [on|off]")
		}
	case "help":
		fmt.Fprint(w, `\set <name> <expr>    bind name to expr
\unset <name>         remove the binding of name
\vars                 list the bindings
\explain on|off       print the compiled form of each expression
\flag <name> [on|off] show or change a compiler flag
`)
	default:
		return fmt.Errorf("repl: unknown command \\%s; try \\help", cmd)
	}
	return nil
}

func formatValue(v sql.Value) string {
	if s, ok := v.(sql.StringValue); ok {
		return string(s)
	}
	return sql.Format(v)
}

// EvalLine compiles the expression in line and prints its value, or a table of its value for
// each row when there are bindings.
func (ses *Session) EvalLine(line string, w io.Writer) error {
	e, err := ses.parse(line, ses.Name)
	if err != nil {
		return err
	}
	if ses.Flags == nil {
		ses.Flags = flags.Default()
	}
	ce, err := ses.TupleSet.Compile(e, ses.Flags)
	if err != nil {
		return err
	}
	if ses.Explain {
		fmt.Fprintf(w, "%s\n", ce)
	}

	bnds := ses.TupleSet.Bindings()
	if len(bnds) == 0 {
		v, err := expr.Eval(ce, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, sql.Format(v))
		return nil
	}

	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)

	var hdr []string
	for _, b := range bnds {
		for _, col := range b.Columns {
			hdr = append(hdr, b.Name+"."+col)
		}
	}
	tw.SetHeader(append(hdr, "result"))

	err = ses.TupleSet.Rows(func(r tupleset.Row) error {
		v, err := expr.Eval(ce, r)
		if err != nil {
			return err
		}
		row := make([]string, 0, len(hdr)+1)
		for _, tuple := range r {
			for _, tv := range tuple {
				row = append(row, formatValue(tv))
			}
		}
		tw.Append(append(row, formatValue(v)))
		return nil
	})
	if err != nil {
		return err
	}
	tw.Render()
	fmt.Fprintf(w, "(%d rows)\n", tw.NumLines())
	return nil
}
