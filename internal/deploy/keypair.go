// Package deploy implements the Program Deployer (C4): uploading a program
// binary chunk by chunk, finalizing it, and verifying the on-chain
// executable hash against the artifact on disk.
//
// Grounded on the teacher's e2e/internal/solana keypair helpers (JSON
// int-array keypair files, the format the Solana CLI itself uses) and
// smartcontract/sdk/go/serviceability/executor.go's retry/confirm loop,
// generalized from "one instruction" to "many chunked write instructions
// plus a finalize".
package deploy

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// LoadKeypair reads a Solana CLI-format JSON int-array keypair file.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file %q: %w", path, err)
	}
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("failed to parse keypair file %q: %w", path, err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid keypair file %q: expected %d bytes, got %d", path, ed25519.PrivateKeySize, len(ints))
	}
	raw := make([]byte, len(ints))
	for i, v := range ints {
		raw[i] = byte(v)
	}
	return solana.PrivateKey(raw), nil
}

// GenerateKeypair creates a fresh ed25519 keypair and writes it to path in
// the same JSON int-array format LoadKeypair reads, for deploy flows that
// use a generated (rather than deterministic/vanity) program keypair.
func GenerateKeypair(path string) (solana.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return nil, fmt.Errorf("failed to encode keypair: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write keypair file %q: %w", path, err)
	}
	return solana.PrivateKey(priv), nil
}
