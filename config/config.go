// Package config loads settings from an HCL file: values for command line flags which were
// not given on the command line, compiler flags, and named expressions.
//
//	log-level = "debug"
//	fold_constants = false
//	variables {
//	    limit = 10
//	    greeting = "'hello'"
//	}
package config

import (
	"fmt"
	"io/ioutil"

	"github.com/hashicorp/hcl"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"

	"github.com/leftmike/sqlexpr/flags"
)

const variablesKey = "variables"

type Config struct {
	vars map[string]*pflag.Flag

	// Flags are the compiler flags, starting from their defaults.
	Flags flags.Flags

	// Variables are the sources of named expressions.
	Variables map[string]string
}

func New() *Config {
	return &Config{
		vars:      map[string]*pflag.Flag{},
		Flags:     flags.Default(),
		Variables: map[string]string{},
	}
}

// AddVar lets the config file set flg under name; a flag changed on the command line keeps
// its value.
func (c *Config) AddVar(name string, flg *pflag.Flag) {
	c.vars[name] = flg
}

func (c *Config) Load(fn string) error {
	b, err := ioutil.ReadFile(fn)
	if err != nil {
		return err
	}
	err = c.Decode(string(b))
	if err != nil {
		return fmt.Errorf("%s: %s", fn, err)
	}
	return nil
}

func (c *Config) Decode(s string) error {
	var cfg map[string]interface{}
	err := hcl.Decode(&cfg, s)
	if err != nil {
		return err
	}

	for name, val := range cfg {
		if name == variablesKey {
			err = c.decodeVariables(val)
			if err != nil {
				return err
			}
		} else if flg, ok := c.vars[name]; ok {
			if flg.Changed {
				continue
			}
			s, err := cast.ToStringE(val)
			if err != nil {
				return fmt.Errorf("%s: %s", name, err)
			}
			err = flg.Value.Set(s)
			if err != nil {
				return fmt.Errorf("%s: %s", name, err)
			}
		} else if f, ok := flags.LookupFlag(name); ok {
			b, err := cast.ToBoolE(val)
			if err != nil {
				return fmt.Errorf("%s: expected boolean value; got %v", name, val)
			}
			c.Flags[f] = b
		} else {
			return fmt.Errorf("%s is not a config variable", name)
		}
	}
	return nil
}

func (c *Config) decodeVariables(val interface{}) error {
	var blocks []map[string]interface{}
	switch val := val.(type) {
	case []map[string]interface{}:
		blocks = val
	case map[string]interface{}:
		blocks = []map[string]interface{}{val}
	default:
		return fmt.Errorf("%s: expected a block; got %v", variablesKey, val)
	}

	for _, blk := range blocks {
		for name, v := range blk {
			src, err := cast.ToStringE(v)
			if err != nil {
				return fmt.Errorf("%s.%s: %s", variablesKey, name, err)
			}
			c.Variables[name] = src
		}
	}
	return nil
}
