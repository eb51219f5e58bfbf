// Package memory is an in-process Store used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"careerboard/internal/store"
)

// Schema names the key attributes of a table. SortKey is empty for single-key tables.
type Schema struct {
	PartitionKey string
	SortKey      string
}

type table struct {
	schema Schema
	items  []store.Item
}

type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func New(schemas map[string]Schema) *Store {
	s := &Store{tables: make(map[string]*table, len(schemas))}
	for name, sc := range schemas {
		s.tables[name] = &table{schema: sc}
	}
	return s
}

func (s *Store) table(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table %q", store.ErrUnavailable, name)
	}
	return t, nil
}

func (s *Store) Scan(_ context.Context, tableName string, filter store.Filter) ([]store.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(tableName)
	if err != nil {
		return nil, err
	}
	out := make([]store.Item, 0)
	for _, it := range t.items {
		if Match(it, filter) {
			out = append(out, copyItem(it))
		}
	}
	return out, nil
}

func (s *Store) Query(_ context.Context, tableName string, pk store.PartitionKey, filter store.Filter) ([]store.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(tableName)
	if err != nil {
		return nil, err
	}
	out := make([]store.Item, 0)
	for _, it := range t.items {
		if it.String(pk.Name) != pk.Value {
			continue
		}
		if Match(it, filter) {
			out = append(out, copyItem(it))
		}
	}
	return out, nil
}

func (s *Store) Put(_ context.Context, tableName string, item store.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(tableName)
	if err != nil {
		return err
	}
	return t.put(item)
}

func (s *Store) BatchPut(_ context.Context, tableName string, items []store.Item) error {
	if len(items) > store.MaxBatchSize {
		return store.ErrBatchTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(tableName)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := t.checkKey(it); err != nil {
			return err
		}
	}
	for _, it := range items {
		if err := t.put(it); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Update(_ context.Context, tableName string, key store.Key, attrs store.Item) (store.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(tableName)
	if err != nil {
		return nil, err
	}

	idx := t.indexOf(store.Item(key))
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	it := t.items[idx]
	for k, v := range attrs {
		if _, isKey := key[k]; isKey {
			continue
		}
		it[k] = copyValue(v)
	}
	return copyItem(it), nil
}

func (s *Store) Delete(_ context.Context, tableName string, key store.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(tableName)
	if err != nil {
		return err
	}
	idx := t.indexOf(store.Item(key))
	if idx < 0 {
		return nil
	}
	t.items = append(t.items[:idx], t.items[idx+1:]...)
	return nil
}

// Len returns the number of items in a table.
func (s *Store) Len(tableName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableName]
	if !ok {
		return 0
	}
	return len(t.items)
}

func (t *table) checkKey(it store.Item) error {
	if it.String(t.schema.PartitionKey) == "" {
		return fmt.Errorf("%w: %s", store.ErrMissingKeyPart, t.schema.PartitionKey)
	}
	if t.schema.SortKey != "" && it.String(t.schema.SortKey) == "" {
		return fmt.Errorf("%w: %s", store.ErrMissingKeyPart, t.schema.SortKey)
	}
	return nil
}

func (t *table) put(it store.Item) error {
	if err := t.checkKey(it); err != nil {
		return err
	}
	cp := copyItem(it)
	if idx := t.indexOf(it); idx >= 0 {
		t.items[idx] = cp
		return nil
	}
	t.items = append(t.items, cp)
	return nil
}

func (t *table) indexOf(key store.Item) int {
	pk := key.String(t.schema.PartitionKey)
	sk := ""
	if t.schema.SortKey != "" {
		sk = key.String(t.schema.SortKey)
	}
	for i, it := range t.items {
		if it.String(t.schema.PartitionKey) != pk {
			continue
		}
		if t.schema.SortKey != "" && it.String(t.schema.SortKey) != sk {
			continue
		}
		return i
	}
	return -1
}

// Match evaluates filter against it with the same semantics as the DynamoDB adapter:
// equality and contains are case-sensitive, contains on a list checks element equality.
func Match(it store.Item, filter store.Filter) bool {
	for _, c := range filter.Conditions {
		if !matchCondition(it, c) {
			return false
		}
	}
	return true
}

func matchCondition(it store.Item, c store.Condition) bool {
	v, present := it[c.Field]
	switch c.Op {
	case store.OpEquals:
		return present && equalValues(v, c.Value)
	case store.OpContains:
		needle := fmt.Sprint(c.Value)
		switch tv := v.(type) {
		case string:
			return strings.Contains(tv, needle)
		case []string:
			for _, e := range tv {
				if e == needle {
					return true
				}
			}
		case []any:
			for _, e := range tv {
				if s, ok := e.(string); ok && s == needle {
					return true
				}
			}
		}
		return false
	case store.OpAbsentOrEmpty:
		if !present || v == nil {
			return true
		}
		switch tv := v.(type) {
		case string:
			return tv == ""
		case []string:
			return len(tv) == 0
		case []any:
			return len(tv) == 0
		}
		return false
	}
	return false
}

func equalValues(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		switch bv := b.(type) {
		case float64:
			return av == bv
		case int:
			return av == float64(bv)
		}
	case int:
		switch bv := b.(type) {
		case int:
			return av == bv
		case float64:
			return float64(av) == bv
		}
	}
	return false
}

func copyItem(it store.Item) store.Item {
	out := make(store.Item, len(it))
	for k, v := range it {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case []string:
		return append([]string(nil), tv...)
	case []any:
		return append([]any(nil), tv...)
	case map[string]any:
		m := make(map[string]any, len(tv))
		for k, e := range tv {
			m[k] = copyValue(e)
		}
		return m
	}
	return v
}

var _ store.Store = (*Store)(nil)
