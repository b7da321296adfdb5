package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/leftmike/sqlexpr/config"
	"github.com/leftmike/sqlexpr/flags"
	"github.com/leftmike/sqlexpr/repl"
	"github.com/leftmike/sqlexpr/tupleset"
)

var (
	sqlexprCmd = &cobra.Command{
		Use:               "sqlexpr",
		Short:             "Compile and evaluate scalar expressions",
		Long:              "sqlexpr folds, specializes, and evaluates SQL-like scalar expressions.",
		SilenceUsage:      true,
		PersistentPreRunE: sqlexprPreRun,
		PersistentPostRun: sqlexprPostRun,
	}

	logFile   = "sqlexpr.log"
	logLevel  = "info"
	logStderr = false
	logWriter io.WriteCloser

	configFile = "sqlexpr.hcl"
	noConfig   = false

	dataFiles = []string{}
	varArgs   = []string{}
	flagArgs  = []string{}
	explain   = false

	cfg = config.New()
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		DisableLevelTruncation: true,
	})

	fs := sqlexprCmd.PersistentFlags()

	fs.StringVar(&logFile, "log-file", logFile, "`file` to use for logging")
	cfg.AddVar("log-file", fs.Lookup("log-file"))

	fs.StringVar(&logLevel, "log-level", logLevel,
		"log level: trace, debug, info, warn, error, fatal, or panic")
	cfg.AddVar("log-level", fs.Lookup("log-level"))

	fs.BoolVarP(&logStderr, "log-stderr", "s", logStderr, "log to standard error")

	fs.StringVar(&configFile, "config-file", configFile, "`file` to load config from")
	fs.BoolVar(&noConfig, "no-config", noConfig, "don't load config file")

	fs.StringSliceVar(&dataFiles, "data", dataFiles,
		"YAML `file` of bindings and variables; multiple allowed")
	cfg.AddVar("data", fs.Lookup("data"))

	fs.StringArrayVar(&varArgs, "var", varArgs, "bind `name=expr`; multiple allowed")
	fs.StringSliceVar(&flagArgs, "flag", flagArgs, "set compiler `flag=bool`; multiple allowed")
	fs.BoolVar(&explain, "explain", explain, "print the compiled form of each expression")
}

func Execute() error {
	return sqlexprCmd.Execute()
}

func sqlexprPreRun(cmd *cobra.Command, args []string) error {
	if configFile != "" && !noConfig {
		err := cfg.Load(configFile)
		if err != nil && !(os.IsNotExist(err) && !cmd.Flags().Changed("config-file")) {
			return fmt.Errorf("sqlexpr: %s", err)
		}
	}

	for _, fa := range flagArgs {
		name, val, ok := strings.Cut(fa, "=")
		if !ok {
			val = "true"
		}
		f, ok := flags.LookupFlag(name)
		if !ok {
			return fmt.Errorf("sqlexpr: %s is not a flag", name)
		}
		b, err := cast.ToBoolE(val)
		if err != nil {
			return fmt.Errorf("sqlexpr: %s: %s", name, err)
		}
		cfg.Flags[f] = b
	}

	if !logStderr && logFile != "" {
		var err error
		logWriter, err = os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logWriter = nil
			return fmt.Errorf("sqlexpr: %s", err)
		}
		log.SetOutput(logWriter)
	} else {
		log.SetOutput(os.Stderr)
	}

	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("sqlexpr: %s", err)
	}
	log.SetLevel(ll)

	log.WithField("pid", os.Getpid()).Info("sqlexpr starting")
	return nil
}

func sqlexprPostRun(cmd *cobra.Command, args []string) {
	log.WithField("pid", os.Getpid()).Info("sqlexpr done")

	if logWriter != nil {
		logWriter.Close()
		logWriter = nil
	}
}

// newSession builds a session from the data files, the config variables, and the --var
// arguments, in that order.
func newSession() (*repl.Session, error) {
	ses := &repl.Session{
		TupleSet: tupleset.New(),
		Flags:    cfg.Flags,
		Explain:  explain,
		Name:     "sqlexpr",
	}

	for _, fn := range dataFiles {
		f, err := os.Open(fn)
		if err != nil {
			return nil, fmt.Errorf("sqlexpr: %s", err)
		}
		err = ses.TupleSet.LoadYAML(f, fn)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("sqlexpr: %s", err)
		}
	}

	for name, src := range cfg.Variables {
		err := ses.SetVariable(name, src)
		if err != nil {
			return nil, fmt.Errorf("sqlexpr: %s", err)
		}
	}

	for _, va := range varArgs {
		name, src, ok := strings.Cut(va, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("sqlexpr: expected name=expr; got %s", va)
		}
		err := ses.SetVariable(strings.TrimSpace(name), src)
		if err != nil {
			return nil, fmt.Errorf("sqlexpr: %s", err)
		}
	}
	return ses, nil
}
