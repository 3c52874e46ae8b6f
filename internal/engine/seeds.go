// Package engine provides the provably fair randomness behind every deal.
package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Seeds is the committed pair a deal is derived from. The server seed is
// used as raw ASCII, never hex-decoded.
type Seeds struct {
	Server string `json:"server_seed"`
	Client string `json:"client_seed"`
}

// Stream returns the byte generator for one nonce.
func (s Seeds) Stream(nonce uint64) *ByteGenerator {
	return NewByteGenerator(s.Server, s.Client, nonce, 0)
}

// HashServerSeed is the public commitment to a server seed: hex SHA-256.
func HashServerSeed(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(sum[:])
}

// NewServerSeed returns 32 random bytes hex-encoded.
func NewServerSeed() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate server seed: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
