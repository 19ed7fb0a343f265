package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tdgen/internal/ir"
)

// WriteRun records run and its signatures in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency: writing a run id that
// already exists leaves the catalog unchanged.
//
// run.Seq is ignored; the next run sequence number is assigned here.
// Signatures are numbered in slice order starting at 1.
func (s *Store) WriteRun(ctx context.Context, run Run, sigs []ir.Signature) (err error) {
	docsJSON, err := marshalStrings(run.Documents)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, fingerprint, ir_version, generator_version, documents)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Fingerprint,
		run.IRVersion,
		run.GeneratorVersion,
		docsJSON,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n == 0 {
		return tx.Commit()
	}

	for i, sig := range sigs {
		if err := writeSignature(ctx, tx, run.ID, int64(i+1), sig); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func writeSignature(ctx context.Context, tx *sql.Tx, runID string, seq int64, sig ir.Signature) error {
	id, err := ir.SignatureID(sig)
	if err != nil {
		return fmt.Errorf("write signature %s: %w", sig.Name, err)
	}
	paramsJSON, err := marshalStrings(ir.TypeStrings(sig.Params))
	if err != nil {
		return fmt.Errorf("write signature %s: %w", sig.Name, err)
	}
	overloadsJSON, err := marshalStrings(ir.TypeStrings(sig.Overloads))
	if err != nil {
		return fmt.Errorf("write signature %s: %w", sig.Name, err)
	}

	ret := "void"
	if sig.Return != nil {
		ret = sig.Return.String()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO signatures
		(id, run_id, seq, arch, intrinsic, name, return_type, params, overloads)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		id,
		runID,
		seq,
		sig.Arch,
		sig.Intrinsic,
		sig.Name,
		ret,
		paramsJSON,
		overloadsJSON,
	)
	if err != nil {
		return fmt.Errorf("write signature %s: %w", sig.Name, err)
	}
	return nil
}
