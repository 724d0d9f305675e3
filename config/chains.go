// Package config holds compiled-in chain registry defaults and the
// `--config` baseline file loader, following the pattern of
// config.NetworkConfigForEnv in the teacher repo: a small set of named,
// compiled-in network descriptors, overridable by a user-supplied file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ChainDescriptor is the chain descriptor from the data model: a named chain
// carries a local domain identifier, an RPC endpoint, a native currency
// decimal scale, and the Hyperlane core program IDs deployed there.
type ChainDescriptor struct {
	Name           string `json:"name"`
	Domain         uint32 `json:"domain"`
	RPCURL         string `json:"rpcUrl"`
	NativeDecimals uint8  `json:"nativeDecimals"`

	// Core program IDs, populated once `core deploy` has run; zero value
	// (empty string) means "not yet deployed".
	MailboxProgramID           string `json:"mailboxProgramId,omitempty"`
	IGPProgramID               string `json:"igpProgramId,omitempty"`
	MultisigISMProgramID       string `json:"multisigIsmProgramId,omitempty"`
	ValidatorAnnounceProgramID string `json:"validatorAnnounceProgramId,omitempty"`
}

// builtinChains mirrors the compiled-in defaults pattern of
// config.NetworkConfigForEnv: a handful of known test networks, matching the
// testable scenario S1 (solanatestnet domain 13375, eclipsetestnet domain
// 13376).
var builtinChains = map[string]ChainDescriptor{
	"solanatestnet": {
		Name:           "solanatestnet",
		Domain:         13375,
		RPCURL:         "https://api.testnet.solana.com",
		NativeDecimals: 9,
	},
	"eclipsetestnet": {
		Name:           "eclipsetestnet",
		Domain:         13376,
		RPCURL:         "https://testnet.dev2.eclipsenetwork.xyz",
		NativeDecimals: 9,
	},
}

// BuiltinChain returns the compiled-in descriptor for a known chain name.
func BuiltinChain(name string) (ChainDescriptor, bool) {
	d, ok := builtinChains[name]
	return d, ok
}

// Baseline is the parsed form of a `--config` baseline CLI config file: a
// set of named chain descriptor overrides/additions layered on top of the
// compiled-in registry.
type Baseline struct {
	Chains map[string]ChainDescriptor `json:"chains"`
}

// LoadBaseline reads and parses a baseline config file. A missing path
// ("") returns an empty Baseline, not an error.
func LoadBaseline(path string) (*Baseline, error) {
	if path == "" {
		return &Baseline{Chains: map[string]ChainDescriptor{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline config %q: %w", path, err)
	}
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline config %q: %w", path, err)
	}
	if b.Chains == nil {
		b.Chains = map[string]ChainDescriptor{}
	}
	return &b, nil
}

// Resolve returns the descriptor for name, preferring a baseline override
// over the compiled-in registry. It does not check for domain collisions;
// ValidateNoDomainCollision does that over a set of resolved descriptors.
func Resolve(baseline *Baseline, name string) (ChainDescriptor, error) {
	if baseline != nil {
		if d, ok := baseline.Chains[name]; ok {
			return d, nil
		}
	}
	if d, ok := builtinChains[name]; ok {
		return d, nil
	}
	return ChainDescriptor{}, fmt.Errorf("unknown chain %q: not in baseline config or builtin registry", name)
}

// ValidateNoDomainCollision enforces the data model invariant: within one
// environment, a local domain identifier uniquely identifies a chain.
func ValidateNoDomainCollision(chains []ChainDescriptor) error {
	seen := make(map[uint32]string, len(chains))
	for _, c := range chains {
		if prior, ok := seen[c.Domain]; ok {
			return fmt.Errorf("domain collision: chains %q and %q both declare domain %d", prior, c.Name, c.Domain)
		}
		seen[c.Domain] = c.Name
	}
	return nil
}
