package tupleset

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/sql"
)

type document struct {
	Binding   string                 `yaml:"binding"`
	Columns   []string               `yaml:"columns"`
	Rows      [][]interface{}        `yaml:"rows"`
	Variables map[string]interface{} `yaml:"variables"`
}

// LoadYAML adds the bindings and variables described by a stream of YAML documents:
//
//	binding: t
//	columns: [a, b]
//	rows:
//	  - [1, 'one']
//	  - [2, null]
//	---
//	variables:
//	  limit: 10
func (ts *TupleSet) LoadYAML(r io.Reader, fn string) error {
	dec := yaml.NewDecoder(r)
	for ddx := 0; ; ddx += 1 {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("%s: document %d: %s", fn, ddx, err)
		}

		err = ts.loadDocument(&doc)
		if err != nil {
			return fmt.Errorf("%s: document %d: %s", fn, ddx, err)
		}
	}
}

func (ts *TupleSet) loadDocument(doc *document) error {
	if doc.Binding == "" {
		if len(doc.Columns) > 0 || len(doc.Rows) > 0 {
			return errors.New("columns and rows need a binding")
		}
	} else {
		_, err := ts.AddBinding(doc.Binding, doc.Columns...)
		if err != nil {
			return err
		}

		for rdx, row := range doc.Rows {
			tuple := make([]sql.Value, len(row))
			for vdx, v := range row {
				tuple[vdx], err = sql.FromGo(v)
				if err != nil {
					return fmt.Errorf("row %d: %s", rdx, err)
				}
			}
			err = ts.AddRow(doc.Binding, tuple)
			if err != nil {
				return fmt.Errorf("row %d: %s", rdx, err)
			}
		}
		log.WithFields(log.Fields{"binding": doc.Binding, "rows": len(doc.Rows)}).Info(
			"loaded binding")
	}

	for nam, v := range doc.Variables {
		val, err := sql.FromGo(v)
		if err != nil {
			return fmt.Errorf("variable %s: %s", nam, err)
		}
		err = ts.SetVariable(nam, &expr.Literal{Value: val})
		if err != nil {
			return err
		}
	}
	return nil
}
