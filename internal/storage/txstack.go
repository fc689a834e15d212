package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoTransaction is returned by Commit or Rollback with no open level.
var ErrNoTransaction = errors.New("no open transaction")

// TxStack layers uncommitted writes over a base DB. Begin pushes a level,
// Commit merges the top level into the one below (or flushes it to the
// base when it is the outermost), Rollback discards it. Reads always see
// the writes of every open level, so a nested operation started while an
// outer one is still running observes the outer one's effects.
//
// With no level open, writes go straight to the base.
//
// TxStack is not safe for concurrent use; callers serialize access.
type TxStack struct {
	base   DB
	levels []*txLevel
}

// txLevel holds one level's writes. A nil value marks a deletion.
type txLevel struct {
	writes map[string][]byte
}

// NewTxStack wraps base. The base is not owned: Close is a no-op.
func NewTxStack(base DB) *TxStack {
	return &TxStack{base: base}
}

// Begin opens a new transaction level.
func (s *TxStack) Begin() {
	s.levels = append(s.levels, &txLevel{writes: make(map[string][]byte)})
}

// Depth returns the number of open levels.
func (s *TxStack) Depth() int {
	return len(s.levels)
}

// Commit closes the top level and keeps its writes.
func (s *TxStack) Commit() error {
	top, err := s.pop()
	if err != nil {
		return err
	}
	if len(s.levels) > 0 {
		parent := s.levels[len(s.levels)-1]
		for k, v := range top.writes {
			parent.writes[k] = v
		}
		return nil
	}
	return s.flush(top)
}

// Rollback closes the top level and drops its writes.
func (s *TxStack) Rollback() error {
	_, err := s.pop()
	return err
}

func (s *TxStack) pop() (*txLevel, error) {
	if len(s.levels) == 0 {
		return nil, ErrNoTransaction
	}
	top := s.levels[len(s.levels)-1]
	s.levels = s.levels[:len(s.levels)-1]
	return top, nil
}

// flush writes a level to the base, atomically when the base supports it.
func (s *TxStack) flush(lvl *txLevel) error {
	keys := make([]string, 0, len(lvl.writes))
	for k := range lvl.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batcher, ok := s.base.(Batcher)
	if !ok {
		for _, k := range keys {
			if err := s.writeBase(k, lvl.writes[k]); err != nil {
				return fmt.Errorf("flush %q: %w", k, err)
			}
		}
		return nil
	}

	batch := batcher.NewBatch()
	for _, k := range keys {
		v := lvl.writes[k]
		var err error
		if v == nil {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			return fmt.Errorf("stage %q: %w", k, err)
		}
	}
	return batch.Commit()
}

func (s *TxStack) writeBase(key string, value []byte) error {
	if value == nil {
		return s.base.Delete([]byte(key))
	}
	return s.base.Put([]byte(key), value)
}

// lookup searches open levels from the top down.
func (s *TxStack) lookup(key []byte) (value []byte, found bool) {
	k := string(key)
	for i := len(s.levels) - 1; i >= 0; i-- {
		if v, ok := s.levels[i].writes[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Get retrieves a value by key.
func (s *TxStack) Get(key []byte) ([]byte, error) {
	if v, ok := s.lookup(key); ok {
		if v == nil {
			return nil, ErrNotFound
		}
		return copyBytes(v), nil
	}
	return s.base.Get(key)
}

// Put stores a key-value pair in the top level.
func (s *TxStack) Put(key, value []byte) error {
	if len(s.levels) == 0 {
		return s.base.Put(key, value)
	}
	v := copyBytes(value)
	if v == nil {
		v = []byte{}
	}
	s.levels[len(s.levels)-1].writes[string(key)] = v
	return nil
}

// Delete removes a key in the top level.
func (s *TxStack) Delete(key []byte) error {
	if len(s.levels) == 0 {
		return s.base.Delete(key)
	}
	s.levels[len(s.levels)-1].writes[string(key)] = nil
	return nil
}

// Has checks if a key exists.
func (s *TxStack) Has(key []byte) (bool, error) {
	if v, ok := s.lookup(key); ok {
		return v != nil, nil
	}
	return s.base.Has(key)
}

// ForEach iterates over the merged view of the base and every open level,
// in key order.
func (s *TxStack) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	if len(s.levels) == 0 {
		return s.base.ForEach(prefix, fn)
	}

	merged := make(map[string][]byte)
	err := s.base.ForEach(prefix, func(key, value []byte) error {
		merged[string(key)] = value
		return nil
	})
	if err != nil {
		return err
	}

	p := string(prefix)
	for _, lvl := range s.levels {
		for k, v := range lvl.writes {
			if !strings.HasPrefix(k, p) {
				continue
			}
			if v == nil {
				delete(merged, k)
			} else {
				merged[k] = v
			}
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), copyBytes(merged[k])); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the base manages its own lifecycle.
func (s *TxStack) Close() error {
	return nil
}
