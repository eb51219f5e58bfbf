package listing

import (
	"context"
	"sort"

	"careerboard/internal/store"
)

// Duplicate is one identifier stored under more than one partition key, usually left behind
// by an incomplete relocation.
type Duplicate struct {
	ID string `json:"id"`
	// Keep is the partition key value of the most recently updated copy.
	Keep       string   `json:"keep"`
	Partitions []string `json:"partitions"`
}

// FindDuplicates scans the table for identifiers that appear under several partition keys.
// Resources without a sort key cannot hold duplicates.
func (s *Service) FindDuplicates(ctx context.Context) ([]Duplicate, error) {
	if s.res.SortKey == "" {
		return []Duplicate{}, nil
	}

	items, err := s.store.Scan(ctx, s.res.Table, store.Filter{})
	if err != nil {
		return nil, s.storeErr("scan duplicates", err)
	}

	groups := make(map[string][]store.Item)
	order := make([]string, 0)
	for _, it := range items {
		id := it.String(s.res.SortKey)
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], it)
	}

	out := make([]Duplicate, 0)
	for _, id := range order {
		copies := groups[id]
		if len(copies) < 2 {
			continue
		}
		parts := make([]string, 0, len(copies))
		for _, c := range copies {
			parts = append(parts, c.String(s.res.PartitionKey))
		}
		sort.Strings(parts)
		out = append(out, Duplicate{
			ID:         id,
			Keep:       newest(copies, s.res.TimestampField).String(s.res.PartitionKey),
			Partitions: parts,
		})
	}
	return out, nil
}

// ResolveDuplicates deletes every copy except the one named by Keep and returns how many
// copies were removed.
func (s *Service) ResolveDuplicates(ctx context.Context, dups []Duplicate) (int, error) {
	removed := 0
	for _, d := range dups {
		for _, p := range d.Partitions {
			if p == d.Keep {
				continue
			}
			key := store.Key{s.res.PartitionKey: p, s.res.SortKey: d.ID}
			if err := s.store.Delete(ctx, s.res.Table, key); err != nil {
				return removed, s.storeErr("resolve duplicates", err)
			}
			removed++
			s.logger.Printf("[Listing] removed duplicate resource=%s id=%s partition=%s", s.res.Name, d.ID, p)
		}
	}
	return removed, nil
}
