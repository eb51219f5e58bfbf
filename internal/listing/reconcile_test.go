package listing

import (
	"context"
	"testing"
	"time"

	domain "careerboard/internal/domain/listing"
)

func TestService_FindAndResolveDuplicates(t *testing.T) {
	svc, st := newTestService(t)
	stale := job("1", "Tech", "A", "Acme", fixedNow.Add(-time.Hour))
	fresh := job("1", "Ops", "A", "Acme", fixedNow.Add(-time.Hour))
	fresh[domain.LastUpdatedField] = domain.FormatTimestamp(fixedNow)
	seed(t, st, stale, fresh, job("2", "Tech", "B", "Acme", fixedNow))

	dups, err := svc.FindDuplicates(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(dups) != 1 || dups[0].ID != "1" || dups[0].Keep != "Ops" || len(dups[0].Partitions) != 2 {
		t.Fatalf("unexpected duplicates: %+v", dups)
	}

	removed, err := svc.ResolveDuplicates(context.Background(), dups)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if removed != 1 || st.Len("Jobs") != 2 {
		t.Fatalf("unexpected state: removed=%d len=%d", removed, st.Len("Jobs"))
	}

	dups, _ = svc.FindDuplicates(context.Background())
	if len(dups) != 0 {
		t.Fatalf("expected no duplicates left, got %+v", dups)
	}
}
