package cli

import (
	"github.com/gagliardetto/solana-go"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/conductor"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

// pdaForMailboxAuthority is a thin re-export of sealevel's derivation, kept
// local so command files don't each need to import sealevel directly for
// this one common lookup.
func pdaForMailboxAuthority(mailboxProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return sealevel.DeriveMailboxAuthority(mailboxProgramID)
}

// singleOperation wraps one instruction into a one-operation plan, the
// common case for ownership-transfer and one-shot configuration commands
// that don't need a multi-step plan() of their own.
func singleOperation(chain, name string, ix solana.Instruction, payer solana.PublicKey, computeUnits uint32, summary string) conductor.OperationList {
	return conductor.OperationList{operationOf(chain, name, ix, payer, computeUnits, summary, nil)}
}

// conductorSingleOp builds a single operation with explicit predecessors,
// for appending one follow-on instruction to a deploy plan already built by
// deploy.PlanUpload/PlanFinalize.
func conductorSingleOp(chain, name string, ix solana.Instruction, payer solana.PublicKey, computeUnits uint32, summary string, predecessors []string) conductor.Operation {
	return operationOf(chain, name, ix, payer, computeUnits, summary, predecessors)
}

func operationOf(chain, name string, ix solana.Instruction, payer solana.PublicKey, computeUnits uint32, summary string, predecessors []string) conductor.Operation {
	return conductor.Operation{
		Name:                  name,
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: computeUnits,
		Predecessors:          predecessors,
		Summary:               summary,
	}
}
