package listing

import (
	"context"
	"sort"
	"strconv"
	"strings"

	domain "careerboard/internal/domain/listing"
	"careerboard/internal/search"
	"careerboard/internal/store"
)

type ListQuery struct {
	Page  int
	Limit int
	// Search is the free-text q parameter.
	Search string
	// Filters holds raw query parameters keyed by parameter name. Unknown names are ignored.
	Filters map[string]string
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type ListResult struct {
	Items      []store.Item
	Pagination Pagination
}

// List filters, searches, sorts newest first and paginates one resource.
func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	page, limit, err := s.pageBounds(q)
	if err != nil {
		return ListResult{}, err
	}

	filter, pk, err := s.buildFilter(q.Filters)
	if err != nil {
		return ListResult{}, err
	}

	var items []store.Item
	if pk != nil {
		items, err = s.store.Query(ctx, s.res.Table, *pk, filter)
	} else {
		items, err = s.store.Scan(ctx, s.res.Table, filter)
	}
	if err != nil {
		return ListResult{}, s.storeErr("list", err)
	}

	items = s.applySearch(items, search.NewQuery(q.Search))
	sortNewestFirst(items, s.res.TimestampField)

	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageItems := make([]store.Item, 0, end-start)
	for _, it := range items[start:end] {
		pageItems = append(pageItems, s.present(it))
	}
	s.enrich(ctx, pageItems)

	return ListResult{
		Items: pageItems,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}, nil
}

func (s *Service) pageBounds(q ListQuery) (int, int, error) {
	page, limit := q.Page, q.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = s.res.DefaultLimit
	}
	if limit == 0 {
		limit = 15
	}
	if page < 1 {
		return 0, 0, &ValidationError{Fields: []string{"page"}, Reason: "page must be at least 1"}
	}
	if limit < 1 {
		return 0, 0, &ValidationError{Fields: []string{"limit"}, Reason: "limit must be at least 1"}
	}
	return page, limit, nil
}

// buildFilter translates query parameters into store conditions. An exact filter on the
// partition key turns the read into a Query on that partition.
func (s *Service) buildFilter(params map[string]string) (store.Filter, *store.PartitionKey, error) {
	var (
		filter store.Filter
		pk     *store.PartitionKey
	)
	for _, f := range s.res.Filters {
		raw := strings.TrimSpace(params[f.Param])
		if raw == "" {
			continue
		}

		if f.Sentinel && raw == domain.NotMentioned {
			filter.Conditions = append(filter.Conditions, store.AbsentOrEmpty(f.Field))
			continue
		}

		switch f.Kind {
		case FilterExact:
			if f.Field == s.res.PartitionKey && pk == nil {
				pk = &store.PartitionKey{Name: f.Field, Value: raw}
				continue
			}
			filter.Conditions = append(filter.Conditions, store.Equals(f.Field, raw))
		case FilterContains:
			filter.Conditions = append(filter.Conditions, store.Contains(f.Field, raw))
		case FilterBool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return store.Filter{}, nil, &ValidationError{Fields: []string{f.Param}, Reason: "invalid boolean filter"}
			}
			filter.Conditions = append(filter.Conditions, store.Equals(f.Field, b))
		}
	}
	return filter, pk, nil
}

func (s *Service) applySearch(items []store.Item, q search.Query) []store.Item {
	if q.Empty() || len(s.res.SearchFields) == 0 {
		return items
	}
	out := items[:0]
	fields := make([]string, len(s.res.SearchFields))
	for _, it := range items {
		for i, f := range s.res.SearchFields {
			fields[i] = it.String(f)
		}
		if q.MatchesAny(fields...) {
			out = append(out, it)
		}
	}
	return out
}

// sortNewestFirst orders by tsField descending. Missing or unparsable timestamps sort last;
// ties keep store order.
func sortNewestFirst(items []store.Item, tsField string) {
	sort.SliceStable(items, func(i, j int) bool {
		return domain.ParseTimestamp(items[i][tsField]).After(domain.ParseTimestamp(items[j][tsField]))
	})
}
