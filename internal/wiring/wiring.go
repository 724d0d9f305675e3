// Package wiring implements the Router Wiring Engine (C6): it computes the
// closure of missing router enrollments across an ordered set of chains,
// plans gas-oracle configuration updates (it reads no gas-oracle or
// destination-gas state from chain), and flags divergent routers for
// operator override.
//
// Grounded on the teacher repo's reconciliation style in
// controlplane/funder (desired-vs-actual diffing before issuing a batch of
// corrective transactions), adapted from funding balances to router sets.
package wiring

import (
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/conductor"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
)

// RouterEndpoint is one chain's deployed warp route program. PlanEnrollments
// builds warp route enroll-remote-router instructions for every endpoint;
// other router kinds (such as hello-world) are not wired through here.
type RouterEndpoint struct {
	Chain      string
	Domain     uint32
	ProgramID  solana.PublicKey
	StorageKey solana.PublicKey // the router's storage PDA, owner-signed enrollment account

	// EnrolledRouters is the on-chain router set read back from state:
	// remote domain -> 32-byte remote router address.
	EnrolledRouters map[uint32][32]byte
}

// MissingEnrollments returns, for each ordered pair of distinct endpoints,
// the enrollment that endpoint A is missing for endpoint B. Enrollment is
// one-directional (A must enroll B's router address under B's domain), so
// a full mesh of N endpoints requires N*(N-1) enrollments; this reports
// only the ones not yet present on-chain.
func MissingEnrollments(endpoints []RouterEndpoint) []Enrollment {
	ordered := make([]RouterEndpoint, len(endpoints))
	copy(ordered, endpoints)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Domain < ordered[j].Domain })

	var missing []Enrollment
	for _, a := range ordered {
		for _, b := range ordered {
			if a.Chain == b.Chain {
				continue // self-enrollment is never proposed
			}
			existing, ok := a.EnrolledRouters[b.Domain]
			remoteRouter := pubkeyToBytes32(b.StorageKey)
			if ok && existing == remoteRouter {
				continue
			}
			missing = append(missing, Enrollment{
				OnChain:      a,
				RemoteDomain: b.Domain,
				RemoteRouter: remoteRouter,
				Divergent:    ok && existing != remoteRouter,
			})
		}
	}
	return missing
}

// Enrollment is one proposed (or divergent) enrollment: set endpoint A's
// router-set entry for RemoteDomain to RemoteRouter.
type Enrollment struct {
	OnChain      RouterEndpoint
	RemoteDomain uint32
	RemoteRouter [32]byte
	// Divergent is true when A already has a different router enrolled
	// for RemoteDomain — applying this enrollment requires --force.
	Divergent bool
}

func pubkeyToBytes32(pk solana.PublicKey) [32]byte {
	var b [32]byte
	copy(b[:], pk[:])
	return b
}

// PlanEnrollments builds the operation list for a set of missing
// enrollments, ordered by chain name and then by ascending remote domain
// for determinism. Divergent
// enrollments are skipped unless force is true, per §4.6's RouterDivergence
// invariant.
func PlanEnrollments(payer solana.PublicKey, enrollments []Enrollment, force bool) (conductor.OperationList, error) {
	sorted := make([]Enrollment, len(enrollments))
	copy(sorted, enrollments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].OnChain.Chain != sorted[j].OnChain.Chain {
			return sorted[i].OnChain.Chain < sorted[j].OnChain.Chain
		}
		return sorted[i].RemoteDomain < sorted[j].RemoteDomain
	})

	var ops conductor.OperationList
	for _, e := range sorted {
		if e.Divergent && !force {
			return nil, errs.New(errs.KindRouterDivergence, e.OnChain.Chain, "wiring.PlanEnrollments", nil,
				"router for remote domain %d on %s already enrolled to a different address; rerun with --force to overwrite", e.RemoteDomain, e.OnChain.Chain)
		}
		ix, err := protocol.BuildWarpRouteEnrollRemoteRouterInstruction(e.OnChain.ProgramID, e.OnChain.StorageKey, payer, protocol.EnrollRemoteRouterArgs{
			RemoteDomain: e.RemoteDomain,
			Router:       e.RemoteRouter,
		})
		if err != nil {
			return nil, err
		}
		ops = append(ops, conductor.Operation{
			Name:                  fmt.Sprintf("wiring.enroll.%s.%d", e.OnChain.Chain, e.RemoteDomain),
			Chain:                 e.OnChain.Chain,
			Instructions:          []solana.Instruction{ix},
			RequiredSigners:       []solana.PublicKey{payer},
			EstimatedComputeUnits: 30_000,
			Summary:               fmt.Sprintf("enroll remote domain %d on %s", e.RemoteDomain, e.OnChain.Chain),
		})
	}
	return ops, nil
}

// GasOracleDesired is one desired (local, remote) gas oracle configuration.
type GasOracleDesired struct {
	Chain             string
	IGPProgramID      solana.PublicKey
	IGPAccount        solana.PublicKey
	RemoteDomain      uint32
	TokenExchangeRate [16]byte
	GasPrice          [16]byte
	TokenDecimals     uint8

	// CurrentlySet marks an entry that already matches on-chain state;
	// PlanGasOracleConfig skips such entries. Nothing in this repository
	// decodes gas oracle configs from an IGP account, and the only caller
	// (`igp gas-oracle-config set`) leaves it false.
	CurrentlySet bool
}

// PlanGasOracleConfig groups desired gas oracle configs into one operation
// per chain, skipping entries whose CurrentlySet is true. It does not read
// on-chain state itself.
func PlanGasOracleConfig(payer solana.PublicKey, desired []GasOracleDesired) (conductor.OperationList, error) {
	byChain := map[string][]protocol.RemoteGasOracleConfig{}
	chainAccount := map[string]solana.PublicKey{}
	chainProgram := map[string]solana.PublicKey{}
	var chainOrder []string

	for _, d := range desired {
		if d.CurrentlySet {
			continue
		}
		if _, ok := byChain[d.Chain]; !ok {
			chainOrder = append(chainOrder, d.Chain)
		}
		byChain[d.Chain] = append(byChain[d.Chain], protocol.RemoteGasOracleConfig{
			RemoteDomain:      d.RemoteDomain,
			TokenExchangeRate: d.TokenExchangeRate,
			GasPrice:          d.GasPrice,
			TokenDecimals:     d.TokenDecimals,
		})
		chainAccount[d.Chain] = d.IGPAccount
		chainProgram[d.Chain] = d.IGPProgramID
	}
	sort.Strings(chainOrder)

	var ops conductor.OperationList
	for _, chain := range chainOrder {
		configs := byChain[chain]
		sort.Slice(configs, func(i, j int) bool { return configs[i].RemoteDomain < configs[j].RemoteDomain })

		ix, err := protocol.BuildIGPSetGasOracleConfigsInstruction(chainProgram[chain], chainAccount[chain], payer, protocol.IGPSetGasOracleConfigsArgs{Configs: configs})
		if err != nil {
			return nil, err
		}
		ops = append(ops, conductor.Operation{
			Name:                  "wiring.gas-oracle." + chain,
			Chain:                 chain,
			Instructions:          []solana.Instruction{ix},
			RequiredSigners:       []solana.PublicKey{payer},
			EstimatedComputeUnits: 40_000,
			Summary:               fmt.Sprintf("set gas oracle config for %d remote domain(s) on %s", len(configs), chain),
		})
	}
	return ops, nil
}
