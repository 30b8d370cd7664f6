package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSnapshot = "translit/snapshot/v1"
	DomainArtifact = "translit/artifact/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash computes the content address of a snapshot. Two snapshots
// with the same instructions, functions, blocks and slots hash equally,
// regardless of which Builder produced them.
func SnapshotHash(s *Snapshot) (string, error) {
	canonical, err := MarshalCanonical(s.canonicalForm())
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// ArtifactHash computes the content address of lowered assembly text,
// bound to the snapshot it was produced from.
func ArtifactHash(snapshotHash, assembly string) string {
	return hashWithDomain(DomainArtifact, []byte(snapshotHash+"\x00"+assembly))
}

// MustSnapshotHash is like SnapshotHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotHash(s *Snapshot) string {
	h, err := SnapshotHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
