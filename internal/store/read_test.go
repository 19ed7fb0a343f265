package store

import (
	"context"
	"errors"
	"testing"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	run.Documents = []string{"a.td", "b.td"}
	if err := s.WriteRun(ctx, run, nil); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	run.Seq = 1
	if got.ID != run.ID || got.Seq != run.Seq || got.Fingerprint != run.Fingerprint ||
		got.IRVersion != run.IRVersion || got.GeneratorVersion != run.GeneratorVersion {
		t.Errorf("ReadRun() = %+v, want %+v", got, run)
	}
	if len(got.Documents) != 2 || got.Documents[0] != "a.td" || got.Documents[1] != "b.td" {
		t.Errorf("Documents = %v, want [a.td b.td]", got.Documents)
	}
}

func TestLatestRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestRun(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty catalog: err = %v, want ErrNotFound", err)
	}

	for _, id := range []string{"run-1", "run-2"} {
		if err := s.WriteRun(ctx, createTestRun(id), nil); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", id, err)
		}
	}

	got, err := s.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if got.ID != "run-2" {
		t.Errorf("LatestRun().ID = %q, want run-2", got.ID)
	}
}

func TestReadSignatures_EmissionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteRun(ctx, createTestRun("run-1"), fooSignatures()); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	recs, err := s.ReadSignatures(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadSignatures() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Name != "llvm.foo.i8" || recs[1].Name != "llvm.foo.i16" {
		t.Errorf("names = [%s %s], want [llvm.foo.i8 llvm.foo.i16]", recs[0].Name, recs[1].Name)
	}
	if recs[0].Seq != 1 || recs[1].Seq != 2 {
		t.Errorf("seqs = [%d %d], want [1 2]", recs[0].Seq, recs[1].Seq)
	}
	if recs[1].Params[0] != "i16" || recs[1].Return != "i32" {
		t.Errorf("record = %+v, want (i16) -> i32", recs[1])
	}
}

func TestReadSignatures_UnknownRunIsEmpty(t *testing.T) {
	s := createTestStore(t)

	recs, err := s.ReadSignatures(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ReadSignatures() failed: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", recs)
	}
}

func TestLookupSelector_AcrossRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-2", "run-1"} {
		if err := s.WriteRun(ctx, createTestRun(id), fooSignatures()); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", id, err)
		}
	}

	recs, err := s.LookupSelector(ctx, "llvm.foo.i16")
	if err != nil {
		t.Fatalf("LookupSelector() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	// Oldest run first, by write order rather than id.
	if recs[0].RunID != "run-2" || recs[1].RunID != "run-1" {
		t.Errorf("run ids = [%s %s], want [run-2 run-1]", recs[0].RunID, recs[1].RunID)
	}
	if recs[0].ID != recs[1].ID {
		t.Errorf("identical signatures got different ids: %s vs %s", recs[0].ID, recs[1].ID)
	}

	none, err := s.LookupSelector(ctx, "llvm.bar")
	if err != nil {
		t.Fatalf("LookupSelector() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d records for unknown selector, want 0", len(none))
	}
}
