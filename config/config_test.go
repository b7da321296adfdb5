package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/leftmike/sqlexpr/config"
	"github.com/leftmike/sqlexpr/flags"
)

func newConfig(t *testing.T, args ...string) (*config.Config, *string, *string) {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	level := fs.String("log-level", "info", "")
	file := fs.String("log-file", "sqlexpr.log", "")
	err := fs.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v) failed with %s", args, err)
	}

	c := config.New()
	c.AddVar("log-level", fs.Lookup("log-level"))
	c.AddVar("log-file", fs.Lookup("log-file"))
	return c, level, file
}

func TestDecode(t *testing.T) {
	cases := []struct {
		cfg   string
		level string
		file  string
		fold  bool
		vars  map[string]string
		fail  bool
	}{
		{cfg: ``, level: "info", file: "sqlexpr.log", fold: true},
		{cfg: `log-level = "debug"`, level: "debug", file: "sqlexpr.log", fold: true},
		{
			cfg: `/* comment */ log-file = "x.log" // comment
fold_constants = false`,
			level: "info", file: "x.log", fold: false,
		},
		{
			cfg: `variables {
    limit = 10
    greeting = "'hello'"
}`,
			level: "info", file: "sqlexpr.log", fold: true,
			vars: map[string]string{"limit": "10", "greeting": "'hello'"},
		},
		{cfg: `bad = 123`, fail: true},
		{cfg: `log-level`, fail: true},
		{cfg: `fold_constants = "maybe"`, fail: true},
		{cfg: `variables = 10`, fail: true},
	}

	for _, c := range cases {
		cfg, level, file := newConfig(t)
		err := cfg.Decode(c.cfg)
		if c.fail {
			if err == nil {
				t.Errorf("Decode(%q) did not fail", c.cfg)
			}
			continue
		}
		if err != nil {
			t.Errorf("Decode(%q) failed with %s", c.cfg, err)
			continue
		}
		if *level != c.level || *file != c.file {
			t.Errorf("Decode(%q) got %s, %s want %s, %s", c.cfg, *level, *file, c.level, c.file)
		}
		if cfg.Flags.GetFlag(flags.FoldConstants) != c.fold {
			t.Errorf("Decode(%q) got fold_constants %v want %v", c.cfg,
				cfg.Flags.GetFlag(flags.FoldConstants), c.fold)
		}
		if len(cfg.Variables) != len(c.vars) {
			t.Errorf("Decode(%q) got %v want %v", c.cfg, cfg.Variables, c.vars)
		}
		for nam, src := range c.vars {
			if cfg.Variables[nam] != src {
				t.Errorf("Decode(%q) got %s=%s want %s", c.cfg, nam, cfg.Variables[nam], src)
			}
		}
	}
}

func TestCommandLineWins(t *testing.T) {
	cfg, level, _ := newConfig(t, "--log-level", "warn")
	err := cfg.Decode(`log-level = "debug"`)
	if err != nil {
		t.Fatalf("Decode() failed with %s", err)
	}
	if *level != "warn" {
		t.Errorf("Decode() got %s want warn", *level)
	}
}

func TestLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "sqlexpr.hcl")
	err := os.WriteFile(fn, []byte("specialize_ops = false\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, _, _ := newConfig(t)
	err = cfg.Load(fn)
	if err != nil {
		t.Fatalf("Load(%s) failed with %s", fn, err)
	}
	if cfg.Flags.GetFlag(flags.SpecializeOps) {
		t.Errorf("Load(%s) got specialize_ops true want false", fn)
	}

	if err := cfg.Load(filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Errorf("Load(missing.hcl) did not fail")
	}
}
