package store

import "errors"

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// Run is one recorded generation run.
type Run struct {
	ID               string   `json:"id"`
	Seq              int64    `json:"seq"` // assigned by WriteRun
	Fingerprint      string   `json:"fingerprint"`
	IRVersion        string   `json:"ir_version"`
	GeneratorVersion string   `json:"generator_version"`
	Documents        []string `json:"documents"`
}

// SignatureRecord is a stored signature. Types are kept in their rendered
// form.
type SignatureRecord struct {
	ID        string   `json:"id"`
	RunID     string   `json:"run_id"`
	Seq       int64    `json:"seq"`
	Arch      string   `json:"arch"`
	Intrinsic string   `json:"intrinsic"`
	Name      string   `json:"name"`
	Return    string   `json:"return"`
	Params    []string `json:"params"`
	Overloads []string `json:"overloads"`
}
