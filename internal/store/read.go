package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadRun returns the run with the given id, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, fingerprint, ir_version, generator_version, documents
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// LatestRun returns the most recently written run, or ErrNotFound when the
// catalog is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, fingerprint, ir_version, generator_version, documents
		FROM runs
		ORDER BY seq DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read latest run: %w", err)
	}
	return run, nil
}

// ReadSignatures returns the signatures of a run in emission order.
//
// Returns an empty slice (not nil) if the run has no signatures.
func (s *Store) ReadSignatures(ctx context.Context, runID string) ([]SignatureRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, arch, intrinsic, name, return_type, params, overloads
		FROM signatures
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query signatures: %w", err)
	}
	return collectSignatures(rows)
}

// LookupSelector returns every stored signature named name, oldest run first.
//
// Returns an empty slice (not nil) if no signature has that name.
func (s *Store) LookupSelector(ctx context.Context, name string) ([]SignatureRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.run_id, s.seq, s.arch, s.intrinsic, s.name, s.return_type, s.params, s.overloads
		FROM signatures s
		JOIN runs r ON r.id = s.run_id
		WHERE s.name = ?
		ORDER BY r.seq ASC, s.seq ASC, s.id COLLATE BINARY ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query selector: %w", err)
	}
	return collectSignatures(rows)
}

func collectSignatures(rows *sql.Rows) ([]SignatureRecord, error) {
	defer rows.Close()

	records := []SignatureRecord{}
	for rows.Next() {
		rec, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}
	return records, nil
}

func scanRun(row *sql.Row) (Run, error) {
	var run Run
	var docsJSON string
	err := row.Scan(&run.ID, &run.Seq, &run.Fingerprint, &run.IRVersion, &run.GeneratorVersion, &docsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Documents, err = unmarshalStrings(docsJSON)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func scanSignature(rows *sql.Rows) (SignatureRecord, error) {
	var rec SignatureRecord
	var paramsJSON, overloadsJSON string
	err := rows.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Seq,
		&rec.Arch,
		&rec.Intrinsic,
		&rec.Name,
		&rec.Return,
		&paramsJSON,
		&overloadsJSON,
	)
	if err != nil {
		return SignatureRecord{}, fmt.Errorf("scan signature: %w", err)
	}
	if rec.Params, err = unmarshalStrings(paramsJSON); err != nil {
		return SignatureRecord{}, err
	}
	if rec.Overloads, err = unmarshalStrings(overloadsJSON); err != nil {
		return SignatureRecord{}, err
	}
	return rec, nil
}
