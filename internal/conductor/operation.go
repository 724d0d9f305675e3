// Package conductor implements the Transaction Conductor (C7): it packs
// logical operations into transactions respecting compute-unit and signer
// constraints, gates on operator approval, and submits with retry and
// confirmation semantics.
//
// Grounded on smartcontract/sdk/go/serviceability/executor.go's Executor
// (blockhash fetch, sign, send, poll-for-status loop, and
// parseFailingInstructionIndex's typed RPC error decoding), generalized
// from "one transaction, one retry loop" into a packer that can batch many
// independent logical operations per transaction.
package conductor

import (
	"github.com/gagliardetto/solana-go"
)

// Operation is one logical, possibly multi-instruction, on-chain action:
// "init mailbox", "enroll remote router B on A", "set gas oracle for
// (A, B.domain)". The conductor packs these into transactions.
type Operation struct {
	// Name identifies this operation for logging, approval summaries, and
	// for Predecessors references from other operations.
	Name string

	// Chain is the chain this operation submits to.
	Chain string

	Instructions          []solana.Instruction
	RequiredSigners        []solana.PublicKey
	EstimatedComputeUnits uint32

	// Predecessors names operations that must be confirmed (or at least
	// already packed into an earlier transaction) before this one may be
	// packed, per §4.7's "order-sensitive operations... carry an explicit
	// predecessor set".
	Predecessors []string

	// Summary is the human-readable line rendered by the approval gate.
	Summary string
}

// OperationList is a plan produced by a protocol-kind's pure plan()
// function, per the command→handler registry design note: plan is pure,
// apply (conductor.Submit) is the only side-effecting path.
type OperationList []Operation
