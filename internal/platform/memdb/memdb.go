// Package memdb is the in-memory store behind every memory adapter. It is used
// when POSTGRES_DSN is absent and by tests. Write transactions are serialized
// by a single lock and rolled back through an undo log.
package memdb

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrReadOnly is returned when a write is attempted inside View.
var ErrReadOnly = errors.New("memdb: write inside read-only transaction")

// DB holds named tables.
type DB struct {
	mu       sync.RWMutex
	tablesMu sync.Mutex
	tables   map[string]any
	seqs     map[string]int64
}

// New returns an empty database.
func New() *DB {
	return &DB{tables: map[string]any{}, seqs: map[string]int64{}}
}

// Tx is a handle passed to View and Update callbacks.
type Tx struct {
	db       *DB
	writable bool
	undo     []func()
}

// View runs fn under a shared lock.
func (db *DB) View(fn func(tx *Tx) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(&Tx{db: db})
}

// Update runs fn under the exclusive lock. Every mutation is undone when fn
// returns an error or panics.
func (db *DB) Update(fn func(tx *Tx) error) (err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	tx := &Tx{db: db, writable: true}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
		if err != nil {
			tx.rollback()
		}
	}()
	return fn(tx)
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *Tx) mustWrite() {
	if !tx.writable {
		panic(ErrReadOnly)
	}
}

// NextID allocates the next value of the named sequence.
func (tx *Tx) NextID(seq string) int64 {
	tx.mustWrite()
	prev := tx.db.seqs[seq]
	tx.db.seqs[seq] = prev + 1
	tx.undo = append(tx.undo, func() { tx.db.seqs[seq] = prev })
	return prev + 1
}

// Table is a typed handle to a named map inside a DB. Values are stored by
// copy; callers clone slices they intend to mutate.
type Table[K comparable, V any] struct {
	name string
}

// NewTable declares a table. Declarations with the same name must use the same types.
func NewTable[K comparable, V any](name string) Table[K, V] {
	return Table[K, V]{name: name}
}

// Name returns the table name.
func (t Table[K, V]) Name() string { return t.name }

func (t Table[K, V]) rows(tx *Tx) map[K]V {
	tx.db.tablesMu.Lock()
	defer tx.db.tablesMu.Unlock()
	raw, ok := tx.db.tables[t.name]
	if !ok {
		rows := map[K]V{}
		tx.db.tables[t.name] = rows
		return rows
	}
	rows, ok := raw.(map[K]V)
	if !ok {
		panic(fmt.Sprintf("memdb: table %q declared with conflicting types", t.name))
	}
	return rows
}

// Get returns the row stored under key.
func (t Table[K, V]) Get(tx *Tx, key K) (V, bool) {
	v, ok := t.rows(tx)[key]
	return v, ok
}

// Put inserts or replaces the row stored under key.
func (t Table[K, V]) Put(tx *Tx, key K, value V) {
	tx.mustWrite()
	rows := t.rows(tx)
	prev, existed := rows[key]
	rows[key] = value
	tx.undo = append(tx.undo, func() {
		if existed {
			rows[key] = prev
			return
		}
		delete(rows, key)
	})
}

// Delete removes the row stored under key and reports whether it existed.
func (t Table[K, V]) Delete(tx *Tx, key K) bool {
	tx.mustWrite()
	rows := t.rows(tx)
	prev, existed := rows[key]
	if !existed {
		return false
	}
	delete(rows, key)
	tx.undo = append(tx.undo, func() { rows[key] = prev })
	return true
}

// Filter returns every row matching keep, ordered by less when provided.
func (t Table[K, V]) Filter(tx *Tx, keep func(V) bool, less func(a, b V) bool) []V {
	rows := t.rows(tx)
	out := make([]V, 0, len(rows))
	for _, v := range rows {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	if less != nil {
		sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// Len returns the number of rows.
func (t Table[K, V]) Len(tx *Tx) int {
	return len(t.rows(tx))
}
