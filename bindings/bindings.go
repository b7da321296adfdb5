// Package bindings persists named expressions, in their text form, in a bbolt file.
package bindings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/parser"
)

var (
	bindingsBucket = []byte("bindings")

	ErrNotFound = errors.New("bindings: not found")
)

type Store struct {
	db *bbolt.DB
}

// Open opens, and creates if necessary, the store in the file named by path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bindings: open %s: %s", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bindingsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bindings: open %s: %s", path, err)
	}

	log.WithField("path", path).Debug("bindings opened")
	return &Store{db: db}, nil
}

func (st *Store) Close() error {
	return st.db.Close()
}

func parse(name, src string) (expr.Expr, error) {
	return parser.ParseExpr(strings.NewReader(src), name)
}

// Set binds name to the expression src; src must parse.
func (st *Store) Set(name, src string) error {
	if name == "" {
		return errors.New("bindings: empty name")
	}
	_, err := parse(name, src)
	if err != nil {
		return err
	}

	return st.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bindingsBucket).Put([]byte(name), []byte(src))
	})
}

// Get returns the source and the parsed expression bound to name.
func (st *Store) Get(name string) (string, expr.Expr, error) {
	var src string
	err := st.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket(bindingsBucket).Get([]byte(name))
		if val == nil {
			return ErrNotFound
		}
		src = string(val)
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	e, err := parse(name, src)
	if err != nil {
		return "", nil, err
	}
	return src, e, nil
}

func (st *Store) Delete(name string) error {
	return st.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bindingsBucket)
		if bkt.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		return bkt.Delete([]byte(name))
	})
}

// ForEach calls fn for every binding in name order; it stops at the first error.
func (st *Store) ForEach(fn func(name, src string, e expr.Expr) error) error {
	return st.db.View(func(tx *bbolt.Tx) error {
		cr := tx.Bucket(bindingsBucket).Cursor()
		for key, val := cr.First(); key != nil; key, val = cr.Next() {
			e, err := parse(string(key), string(val))
			if err != nil {
				return err
			}
			err = fn(string(key), string(val), e)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
