package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "careerboard/internal/domain/listing"
	"careerboard/internal/store"
)

type RelocationPhase int

const (
	RelocationPending RelocationPhase = iota
	// RelocationInserted means the item exists under To but the copy under From may remain.
	RelocationInserted
	RelocationCompleted
)

func (p RelocationPhase) String() string {
	switch p {
	case RelocationPending:
		return "pending"
	case RelocationInserted:
		return "inserted"
	case RelocationCompleted:
		return "completed"
	}
	return "unknown"
}

// Relocation moves an item between partitions as insert-then-delete. The two writes are not
// atomic; a failure after the insert leaves the item readable under both keys.
type Relocation struct {
	Table string
	From  store.Key
	To    store.Key
	Item  store.Item
	Phase RelocationPhase
}

func (r *Relocation) Run(ctx context.Context, st store.Store) error {
	if r.Phase == RelocationPending {
		if err := st.Put(ctx, r.Table, r.Item); err != nil {
			return fmt.Errorf("insert under new key: %w", err)
		}
		r.Phase = RelocationInserted
	}
	if r.Phase == RelocationInserted {
		if err := st.Delete(ctx, r.Table, r.From); err != nil {
			return fmt.Errorf("delete old key: %w", err)
		}
		r.Phase = RelocationCompleted
	}
	return nil
}

// Update applies patch to the item identified by id. Key fields are never overwritten in
// place; on relocatable resources a new partition key value relocates the item. Copies left
// behind by an earlier incomplete relocation are removed once the update is stored.
func (s *Service) Update(ctx context.Context, id string, patch store.Item) (store.Item, error) {
	copies, err := s.locateAll(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(copies) == 0 {
		return nil, ErrNotFound
	}
	current := newest(copies, s.res.TimestampField)

	attrs, err := s.preparePatch(patch)
	if err != nil {
		return nil, err
	}

	newPK := attrs.String(s.res.PartitionKey)
	delete(attrs, s.res.PartitionKey)
	moving := s.res.Relocatable && newPK != "" && newPK != current.String(s.res.PartitionKey)

	attrs[domain.LastUpdatedField] = domain.FormatTimestamp(s.now())

	if moving {
		return s.relocate(ctx, current, copies, newPK, attrs)
	}

	updated, err := s.store.Update(ctx, s.res.Table, s.res.keyOf(current), attrs)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.storeErr("update", err)
	}
	if err := s.dropStale(ctx, copies, updated); err != nil {
		return nil, err
	}
	return s.present(updated), nil
}

// dropStale deletes every copy of kept stored under another key. Keys in handled were
// already written or removed.
func (s *Service) dropStale(ctx context.Context, copies []store.Item, kept store.Item, handled ...store.Item) error {
	skip := map[string]struct{}{s.res.keyID(kept): {}}
	for _, it := range handled {
		skip[s.res.keyID(it)] = struct{}{}
	}
	for _, it := range copies {
		if _, ok := skip[s.res.keyID(it)]; ok {
			continue
		}
		if err := s.store.Delete(ctx, s.res.Table, s.res.keyOf(it)); err != nil {
			id := kept.String(s.res.IDField())
			s.logger.Printf("[Listing] stale copy remains resource=%s id=%s key=%v err=%v",
				s.res.Name, id, s.res.keyOf(it), err)
			return fmt.Errorf("%w: %s %s: %w", ErrRelocationIncomplete, s.res.Name, id, err)
		}
	}
	return nil
}

func (s *Service) relocate(ctx context.Context, current store.Item, copies []store.Item, newPK string, attrs store.Item) (store.Item, error) {
	merged := current.Clone()
	for k, v := range attrs {
		merged[k] = v
	}
	merged[s.res.PartitionKey] = newPK

	r := &Relocation{
		Table: s.res.Table,
		From:  s.res.keyOf(current),
		To:    s.res.keyOf(merged),
		Item:  merged,
	}
	if err := r.Run(ctx, s.store); err != nil {
		if r.Phase == RelocationInserted {
			s.logger.Printf("[Listing] relocation incomplete resource=%s id=%s from=%v to=%v err=%v",
				s.res.Name, merged.String(s.res.IDField()), r.From, r.To, err)
			return nil, fmt.Errorf("%w: %s %s: %w", ErrRelocationIncomplete, s.res.Name, merged.String(s.res.IDField()), err)
		}
		return nil, s.storeErr("relocate", err)
	}
	if err := s.dropStale(ctx, copies, merged, current); err != nil {
		return nil, err
	}
	return s.present(merged), nil
}

// preparePatch normalizes caller-supplied fields. The identifier is dropped; the partition key
// is kept so the caller can decide whether to relocate.
func (s *Service) preparePatch(patch store.Item) (store.Item, error) {
	out := make(store.Item, len(patch)+1)
	for k, v := range patch {
		if k == s.res.IDField() || k == domain.LastUpdatedField {
			continue
		}
		if s.res.SortKey != "" && k == s.res.SortKey {
			continue
		}
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			v = strings.TrimSpace(str)
		}
		switch {
		case s.res.isArrayField(k):
			v = domain.StringList(v)
		case s.res.isBoolField(k):
			b, err := coerceBool(v)
			if err != nil {
				return nil, &ValidationError{Fields: []string{k}, Reason: "invalid boolean field"}
			}
			v = b
		}
		out[k] = v
	}
	return out, nil
}
