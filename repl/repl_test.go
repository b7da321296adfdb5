package repl_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreyvit/diff"

	"github.com/leftmike/sqlexpr/bindings"
	"github.com/leftmike/sqlexpr/repl"
	"github.com/leftmike/sqlexpr/testutil"
	"github.com/leftmike/sqlexpr/tupleset"
)

func run(t *testing.T, ses *repl.Session, input string) string {
	t.Helper()

	var buf bytes.Buffer
	err := repl.ReplReader(ses, strings.NewReader(input), &buf)
	if err != nil {
		t.Fatalf("ReplReader() failed with %s", err)
	}
	return buf.String()
}

func TestReplScalar(t *testing.T) {
	testutil.SetupLogger("repl_test.log")

	ses := &repl.Session{TupleSet: tupleset.New(), Name: "test"}
	got := run(t, ses, `1 + 2

\set a 10
a * 2
\explain on
a + 1
\explain off
null or true
null and true
'x' ++ 'y'
q + 1
\unset a
\unset a
a
\flag fold_constants
\flag fold_constants off
\flag fold_constants
\flag pushdown off
\bogus
`)

	want := `3
20
11
11
true
null
'xy'
sqlexpr: unresolved variable "q"
repl: variable a not found
sqlexpr: unresolved variable "a"
fold_constants: true
fold_constants: false
repl: flag pushdown not found
repl: unknown command \bogus; try \help
`
	if got != want {
		t.Errorf("ReplReader() got diff:\n%s", diff.LineDiff(want, got))
	}
}

func TestReplParseError(t *testing.T) {
	ses := &repl.Session{TupleSet: tupleset.New(), Name: "test"}
	got := run(t, ses, "1 +\n(1, 2\n")

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("ReplReader() got %q want two errors", got)
	}
	for _, ln := range lines {
		if !strings.HasPrefix(ln, "test:1:") {
			t.Errorf("ReplReader() got %q want test:1:<col>: <error>", ln)
		}
	}
}

func TestReplRows(t *testing.T) {
	ts := tupleset.New()
	err := ts.LoadYAML(strings.NewReader(`
binding: t
columns: [a, b]
rows:
  - [1, 'one']
  - [2, null]
  - [3, 'three']
`), "rows.yaml")
	if err != nil {
		t.Fatalf("LoadYAML() failed with %s", err)
	}

	ses := &repl.Session{TupleSet: ts, Name: "test"}
	got := run(t, ses, "t.b ~ 'none'\nt.a * 10\n")

	for _, s := range []string{"t.a", "t.b", "result", "none", "three", "30", "(3 rows)"} {
		if !strings.Contains(got, s) {
			t.Errorf("ReplReader() got %s want %s", got, s)
		}
	}
	if strings.Count(got, "(3 rows)") != 2 {
		t.Errorf("ReplReader() got %s want two tables", got)
	}
}

func TestReplStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repl.bbolt")
	st, err := bindings.Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed with %s", path, err)
	}

	ses := &repl.Session{TupleSet: tupleset.New(), Store: st, Name: "test"}
	got := run(t, ses, "\\set a 1 + 2\n\\set b a * 2\n\\set c 1 +\n")
	if !strings.HasPrefix(got, "c:1:") {
		t.Errorf("ReplReader() got %q want a parse error", got)
	}
	st.Close()

	st, err = bindings.Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed with %s", path, err)
	}
	defer st.Close()

	ses = &repl.Session{TupleSet: tupleset.New(), Store: st, Name: "test"}
	err = ses.LoadBindings()
	if err != nil {
		t.Fatalf("LoadBindings() failed with %s", err)
	}
	got = run(t, ses, "b + 1\n\\unset b\nb\n")
	want := `7
sqlexpr: unresolved variable "b"
`
	if got != want {
		t.Errorf("ReplReader() got diff:\n%s", diff.LineDiff(want, got))
	}

	if _, _, err := st.Get("b"); err != bindings.ErrNotFound {
		t.Errorf("Get(b) got %v want %s", err, bindings.ErrNotFound)
	}
}

func TestReplStoreRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejected.bbolt")
	st, err := bindings.Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed with %s", path, err)
	}

	ts := tupleset.New()
	if _, err := ts.AddBinding("t", "a"); err != nil {
		t.Fatalf("AddBinding(t) failed with %s", err)
	}
	ses := &repl.Session{TupleSet: ts, Store: st, Name: "test"}
	got := run(t, ses, "\\set x x + 1\n\\set y 1\n\\set z y * z\n\\set t 2\n")
	want := `tupleset: variable x refers to itself
tupleset: variable z refers to itself
tupleset: variable t is already a binding
`
	if got != want {
		t.Errorf("ReplReader() got diff:\n%s", diff.LineDiff(want, got))
	}
	st.Close()

	st, err = bindings.Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed with %s", path, err)
	}
	defer st.Close()

	for _, name := range []string{"x", "z", "t"} {
		if _, _, err := st.Get(name); err != bindings.ErrNotFound {
			t.Errorf("Get(%s) got %v want %s", name, err, bindings.ErrNotFound)
		}
	}

	ses = &repl.Session{TupleSet: tupleset.New(), Store: st, Name: "test"}
	err = ses.LoadBindings()
	if err != nil {
		t.Fatalf("LoadBindings() failed with %s", err)
	}
	got = run(t, ses, "y + 1\n")
	if got != "2\n" {
		t.Errorf("ReplReader() got %q want \"2\\n\"", got)
	}
}
