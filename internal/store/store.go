// Package store defines the document-store primitives used by the listing pipeline.
package store

import (
	"context"
	"errors"
)

// MaxBatchSize is the largest number of items accepted by a single BatchPut call.
const MaxBatchSize = 25

var (
	ErrUnavailable    = errors.New("store unavailable")
	ErrNotFound       = errors.New("item not found")
	ErrBatchTooLarge  = errors.New("batch exceeds maximum size")
	ErrMissingKeyPart = errors.New("item is missing a key attribute")
)

// Item is a schemaless document as read from or written to a table.
type Item map[string]any

// Clone returns a shallow copy of the item.
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// String returns the attribute as a string, or "" when absent or not a string.
func (it Item) String(name string) string {
	s, _ := it[name].(string)
	return s
}

// Key addresses a single item: attribute name to value.
type Key map[string]any

type Op int

const (
	OpEquals Op = iota
	OpContains
	// OpAbsentOrEmpty matches items where the attribute is missing, an empty string or an empty list.
	OpAbsentOrEmpty
)

type Condition struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. Matching is case-sensitive.
type Filter struct {
	Conditions []Condition
}

func (f Filter) Empty() bool {
	return len(f.Conditions) == 0
}

func Equals(field string, value any) Condition {
	return Condition{Field: field, Op: OpEquals, Value: value}
}

func Contains(field string, value string) Condition {
	return Condition{Field: field, Op: OpContains, Value: value}
}

func AbsentOrEmpty(field string) Condition {
	return Condition{Field: field, Op: OpAbsentOrEmpty}
}

// PartitionKey selects all items sharing one partition key value.
type PartitionKey struct {
	Name  string
	Value string
}

type Store interface {
	Scan(ctx context.Context, table string, filter Filter) ([]Item, error)
	Query(ctx context.Context, table string, pk PartitionKey, filter Filter) ([]Item, error)
	Put(ctx context.Context, table string, item Item) error
	// Update sets attrs on the existing item at key and returns the item after the update.
	// It fails with ErrNotFound when no item exists at key.
	Update(ctx context.Context, table string, key Key, attrs Item) (Item, error)
	// Delete removes the item at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, table string, key Key) error
	BatchPut(ctx context.Context, table string, items []Item) error
}
