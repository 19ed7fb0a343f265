package store

import (
	"context"
	"testing"

	"github.com/roach88/tdgen/internal/ir"
)

func TestWriteRun_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteRun(ctx, createTestRun("run-1"), fooSignatures()); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	var seq int64
	var fingerprint, docs string
	err := s.db.QueryRow(`SELECT seq, fingerprint, documents FROM runs WHERE id = ?`, "run-1").
		Scan(&seq, &fingerprint, &docs)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
	if fingerprint != "fp-run-1" {
		t.Errorf("fingerprint = %q, want %q", fingerprint, "fp-run-1")
	}
	if docs != `["a.td"]` {
		t.Errorf("documents = %s, want %s", docs, `["a.td"]`)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM signatures WHERE run_id = ?`, "run-1").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("signature count = %d, want 2", count)
	}
}

func TestWriteRun_StoresCanonicalTypeLists(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteRun(ctx, createTestRun("run-1"), fooSignatures()[:1]); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	var id, ret, params, overloads string
	err := s.db.QueryRow(`SELECT id, return_type, params, overloads FROM signatures`).
		Scan(&id, &ret, &params, &overloads)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if want := ir.MustSignatureID(fooSignatures()[0]); id != want {
		t.Errorf("id = %q, want %q", id, want)
	}
	if ret != "i32" {
		t.Errorf("return_type = %q, want %q", ret, "i32")
	}
	if params != `["i8"]` {
		t.Errorf("params = %s, want %s", params, `["i8"]`)
	}
	if overloads != `["i8"]` {
		t.Errorf("overloads = %s, want %s", overloads, `["i8"]`)
	}
}

func TestWriteRun_VoidReturnAndEmptyLists(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sig := ir.Signature{Arch: "generic", Intrinsic: "int_trap", Name: "llvm.trap", Return: ir.Void{}}
	if err := s.WriteRun(ctx, createTestRun("run-1"), []ir.Signature{sig}); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	recs, err := s.ReadSignatures(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadSignatures() failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Return != "void" {
		t.Errorf("Return = %q, want void", recs[0].Return)
	}
	if recs[0].Params == nil || len(recs[0].Params) != 0 {
		t.Errorf("Params = %#v, want empty non-nil slice", recs[0].Params)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	if err := s.WriteRun(ctx, run, fooSignatures()); err != nil {
		t.Fatalf("first WriteRun() failed: %v", err)
	}
	// Same id with different content is ignored.
	run.Fingerprint = "other"
	if err := s.WriteRun(ctx, run, fooSignatures()[:1]); err != nil {
		t.Fatalf("second WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.Fingerprint != "fp-run-1" {
		t.Errorf("Fingerprint = %q, want original %q", got.Fingerprint, "fp-run-1")
	}

	recs, err := s.ReadSignatures(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadSignatures() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d signatures, want 2", len(recs))
	}
}

func TestWriteRun_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-b", "run-a", "run-c"} {
		if err := s.WriteRun(ctx, createTestRun(id), nil); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", id, err)
		}
	}

	for id, want := range map[string]int64{"run-b": 1, "run-a": 2, "run-c": 3} {
		run, err := s.ReadRun(ctx, id)
		if err != nil {
			t.Fatalf("ReadRun(%s) failed: %v", id, err)
		}
		if run.Seq != want {
			t.Errorf("%s: Seq = %d, want %d", id, run.Seq, want)
		}
	}
}

func TestWriteRun_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.WriteRun(ctx, createTestRun("run-1"), fooSignatures()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := s.ReadRun(context.Background(), "run-1"); err == nil {
		t.Error("run should not exist after failed write")
	}
}
