package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainUnit = "lowir/unit/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content address of a unit from its canonical
// snapshot. Two units with the same expressions, wiring, loops and buffers
// share a fingerprint regardless of how they were authored.
func Fingerprint(l *LinearIR) (string, error) {
	canonical, err := MarshalCanonical(Snapshot(l))
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainUnit, canonical), nil
}
