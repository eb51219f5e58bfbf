package listing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	domain "careerboard/internal/domain/listing"
	"careerboard/internal/notify"
	"careerboard/internal/store"

	"github.com/google/uuid"
)

// LogoResolver resolves a logo URL for each distinct name. It never fails; unresolved names
// map to a placeholder.
type LogoResolver interface {
	ResolveAll(ctx context.Context, names []string) map[string]string
}

type Service struct {
	res    Resource
	store  store.Store
	logos  LogoResolver
	sink   notify.Sink
	logger *log.Logger

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithLogoResolver(r LogoResolver) Option {
	return func(s *Service) { s.logos = r }
}

func WithSink(sink notify.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func NewService(res Resource, st store.Store, opts ...Option) *Service {
	s := &Service{
		res:    res,
		store:  st,
		sink:   notify.Nop{},
		logger: log.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Resource() Resource {
	return s.res
}

// Get returns the item identified by id, enriched.
func (s *Service) Get(ctx context.Context, id string) (store.Item, error) {
	it, err := s.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	out := []store.Item{s.present(it)}
	s.enrich(ctx, out)
	return out[0], nil
}

// Create validates input, assigns server-side fields and stores the item. On resources keyed
// by partition and identifier, a caller-supplied identifier already stored under any
// partition is rejected.
func (s *Service) Create(ctx context.Context, input store.Item) (store.Item, error) {
	it, err := s.prepareNew(input)
	if err != nil {
		return nil, err
	}
	if s.res.SortKey != "" && input[s.res.SortKey] != nil {
		existing, err := s.locateAll(ctx, it.String(s.res.SortKey))
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, &ValidationError{Fields: []string{s.res.SortKey}, Reason: "identifier already exists"}
		}
	}
	if err := s.store.Put(ctx, s.res.Table, it); err != nil {
		return nil, s.storeErr("create", err)
	}

	s.sink.Publish(ctx, notify.Event{
		Type:     notify.EventListingCreated,
		Resource: s.res.Name,
		ID:       it.String(s.res.IDField()),
		At:       s.now().UTC(),
	})
	return s.present(it), nil
}

// Delete removes every copy of the item identified by id. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	copies, err := s.locateAll(ctx, id)
	if err != nil {
		return err
	}
	for _, it := range copies {
		if err := s.store.Delete(ctx, s.res.Table, s.res.keyOf(it)); err != nil {
			return s.storeErr("delete", err)
		}
	}
	return nil
}

func (s *Service) prepareNew(input store.Item) (store.Item, error) {
	it := make(store.Item, len(input)+4)
	for k, v := range input {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			v = strings.TrimSpace(str)
		}
		it[k] = v
	}

	idField := s.res.IDField()
	if id := it.String(idField); id != "" {
		it[idField] = s.res.normalizeID(id)
	} else if s.res.SortKey != "" {
		it[idField] = s.newID()
	}

	for _, f := range s.res.ArrayFields {
		if v, ok := it[f]; ok {
			it[f] = domain.StringList(v)
		}
	}
	for _, f := range s.res.BoolFields {
		if v, ok := it[f]; ok {
			b, err := coerceBool(v)
			if err != nil {
				return nil, &ValidationError{Fields: []string{f}, Reason: "invalid boolean field"}
			}
			it[f] = b
		}
	}

	if missing := s.missingRequired(it); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if s.res.Validate != nil {
		if err := s.res.Validate(it); err != nil {
			return nil, err
		}
	}

	for k, v := range s.res.Defaults {
		if _, ok := it[k]; !ok {
			it[k] = v
		}
	}
	it[s.res.TimestampField] = domain.FormatTimestamp(s.now())
	return it, nil
}

func (s *Service) missingRequired(it store.Item) []string {
	missing := make([]string, 0)
	for _, f := range s.res.Required {
		v, ok := it[f]
		if !ok || v == nil {
			missing = append(missing, f)
			continue
		}
		switch tv := v.(type) {
		case string:
			if tv == "" {
				missing = append(missing, f)
			}
		case []string:
			if len(tv) == 0 {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

// locate returns the current copy of the item identified by id. When a relocation left a
// duplicate behind, the most recently updated copy wins.
func (s *Service) locate(ctx context.Context, id string) (store.Item, error) {
	copies, err := s.locateAll(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(copies) == 0 {
		return nil, ErrNotFound
	}
	if len(copies) > 1 {
		s.logger.Printf("[Listing] duplicate copies resource=%s id=%s count=%d", s.res.Name, id, len(copies))
	}
	return newest(copies, s.res.TimestampField), nil
}

func (s *Service) locateAll(ctx context.Context, id string) ([]store.Item, error) {
	id = s.res.normalizeID(strings.TrimSpace(id))
	if id == "" {
		return nil, ErrNotFound
	}

	var (
		items []store.Item
		err   error
	)
	if s.res.SortKey == "" {
		items, err = s.store.Query(ctx, s.res.Table, store.PartitionKey{Name: s.res.PartitionKey, Value: id}, store.Filter{})
	} else {
		items, err = s.store.Scan(ctx, s.res.Table, store.Filter{Conditions: []store.Condition{store.Equals(s.res.SortKey, id)}})
	}
	if err != nil {
		return nil, s.storeErr("locate", err)
	}
	return items, nil
}

// present normalizes array-typed fields for callers.
func (s *Service) present(it store.Item) store.Item {
	out := it.Clone()
	for _, f := range s.res.ArrayFields {
		if v, ok := out[f]; ok {
			out[f] = domain.StringList(v)
		}
	}
	return out
}

func (s *Service) enrich(ctx context.Context, items []store.Item) {
	if s.res.Enrich == nil || s.logos == nil || len(items) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(items))
	names := make([]string, 0, len(items))
	for _, it := range items {
		n := strings.TrimSpace(it.String(s.res.Enrich.SourceField))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	if len(names) == 0 {
		return
	}

	urls := s.logos.ResolveAll(ctx, names)
	for _, it := range items {
		n := strings.TrimSpace(it.String(s.res.Enrich.SourceField))
		if u, ok := urls[n]; ok {
			it[s.res.Enrich.TargetField] = u
		}
	}
}

func (s *Service) storeErr(op string, err error) error {
	s.logger.Printf("[Listing] store error resource=%s op=%s err=%v", s.res.Name, op, err)
	return fmt.Errorf("%w: %s %s: %w", ErrStore, s.res.Name, op, err)
}

func newest(items []store.Item, tsField string) store.Item {
	best := items[0]
	bestAt := recency(best, tsField)
	for _, it := range items[1:] {
		if at := recency(it, tsField); at.After(bestAt) {
			best, bestAt = it, at
		}
	}
	return best
}

func recency(it store.Item, tsField string) time.Time {
	if t := domain.ParseTimestamp(it[domain.LastUpdatedField]); !t.IsZero() {
		return t
	}
	return domain.ParseTimestamp(it[tsField])
}

func coerceBool(v any) (bool, error) {
	switch tv := v.(type) {
	case bool:
		return tv, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(tv))
	}
	return false, errors.New("not a boolean")
}
