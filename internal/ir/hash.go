package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSignatureSet = "tdgen/signature-set/v1"
	DomainSignature    = "tdgen/signature/v1"
)

// signatureNamespace roots the name-based UUIDs of signatures.
var signatureNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tdgen://signature"))

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes an ordered list of signatures. Two runs that emit the
// same signatures in the same order produce the same fingerprint.
func Fingerprint(sigs []Signature) (string, error) {
	list := make([]any, len(sigs))
	for i, s := range sigs {
		list[i] = SignatureObject(s)
	}
	canonical, err := MarshalCanonical(map[string]any{
		"ir_version": IRVersion,
		"signatures": list,
	})
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSignatureSet, canonical), nil
}

// SignatureID returns a stable name-based UUID (v5) for one signature.
// The id depends on the selector and the full concrete type list.
func SignatureID(s Signature) (string, error) {
	canonical, err := MarshalCanonical(SignatureObject(s))
	if err != nil {
		return "", fmt.Errorf("SignatureID: failed to marshal: %w", err)
	}
	data := []byte(hashWithDomain(DomainSignature, canonical))
	return uuid.NewSHA1(signatureNamespace, data).String(), nil
}

// MustSignatureID is like SignatureID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSignatureID(s Signature) string {
	id, err := SignatureID(s)
	if err != nil {
		panic(err)
	}
	return id
}
