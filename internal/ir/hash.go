package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainState prefixes state snapshot hashes.
// The version suffix allows the document layout to change later.
const DomainState = "crapsbot/state/v" + StateVersion

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash returns a content hash of the persisted form of s.
// Two states with equal hashes save to equivalent documents.
func StateHash(s *State) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}
