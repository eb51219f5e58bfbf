package listing

import "careerboard/internal/store"

type FilterKind int

const (
	FilterExact FilterKind = iota
	FilterContains
	FilterBool
)

// FilterField maps a query parameter onto a store-level condition.
type FilterField struct {
	Param string
	Field string
	Kind  FilterKind
	// Sentinel makes the NotMentioned value select items where Field is absent or empty.
	Sentinel bool
}

// Enrichment derives TargetField on read from the value of SourceField. It is never persisted.
type Enrichment struct {
	SourceField string
	TargetField string
}

// Resource describes one collection flowing through the listing pipeline.
type Resource struct {
	Name          string
	CollectionKey string
	Table         string

	PartitionKey string
	// SortKey is empty for tables addressed by the partition key alone; the partition key is
	// then the item identifier.
	SortKey string

	TimestampField string
	DefaultLimit   int
	// Relocatable resources move items to a new partition on update when the partition key
	// changes. Other resources never overwrite key fields on update.
	Relocatable bool

	SearchFields []string
	Filters      []FilterField
	ArrayFields  []string
	BoolFields   []string
	Required     []string
	Defaults     map[string]any
	Enrich       *Enrichment

	// Validate runs after required-field checks on create and bulk upload.
	Validate func(store.Item) error
	// NormalizeID canonicalizes identifiers before lookup and on create.
	NormalizeID func(string) string
}

// IDField is the attribute that identifies an item to callers.
func (r Resource) IDField() string {
	if r.SortKey != "" {
		return r.SortKey
	}
	return r.PartitionKey
}

func (r Resource) normalizeID(id string) string {
	if r.NormalizeID != nil {
		return r.NormalizeID(id)
	}
	return id
}

func (r Resource) isArrayField(name string) bool {
	for _, f := range r.ArrayFields {
		if f == name {
			return true
		}
	}
	return false
}

func (r Resource) isBoolField(name string) bool {
	for _, f := range r.BoolFields {
		if f == name {
			return true
		}
	}
	return false
}

// keyID renders the primary key of it as a comparable string.
func (r Resource) keyID(it store.Item) string {
	id := it.String(r.PartitionKey)
	if r.SortKey != "" {
		id += "\x00" + it.String(r.SortKey)
	}
	return id
}

func (r Resource) keyOf(it store.Item) store.Key {
	k := store.Key{r.PartitionKey: it.String(r.PartitionKey)}
	if r.SortKey != "" {
		k[r.SortKey] = it.String(r.SortKey)
	}
	return k
}
