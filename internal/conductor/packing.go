package conductor

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
)

const (
	// maxTxSigners is a conservative cap on the number of distinct signers
	// packed into one transaction (§4.7's "SVM transaction signer limit").
	maxTxSigners = 16

	// maxTxSizeBytes approximates the SVM's serialized transaction size
	// limit (1232-byte UDP packet budget minus header slack).
	maxTxSizeBytes = 1200

	// perInstructionOverheadBytes is a rough per-instruction serialization
	// overhead (program ID index, account index list, data length prefix)
	// used only to decide packing, never to build the real transaction.
	perInstructionOverheadBytes = 8
	perAccountMetaBytes         = 1 // account index byte once accounts are deduped into the tx account table
	perSignerBytes              = 64
)

// Batch is one transaction's worth of packed operations for a single chain.
type Batch struct {
	Chain                 string
	Operations            []Operation
	Instructions          []solana.Instruction
	Signers               []solana.PublicKey
	EstimatedComputeUnits uint32
}

// Pack groups operations by chain, topologically sorts each chain's
// operations by their declared Predecessors, and greedily packs them into
// Batches such that (a) the union of required signers is <= the signer
// limit, (b) estimated compute is <= computeBudget, (c) the estimated
// serialized size stays under the SVM limit, and (d) no batch packs an
// operation across a barrier from an unconfirmed predecessor (§4.7).
func Pack(ops []Operation, computeBudget uint32) ([]Batch, error) {
	byChain := map[string][]Operation{}
	var chainOrder []string
	for _, op := range ops {
		if _, ok := byChain[op.Chain]; !ok {
			chainOrder = append(chainOrder, op.Chain)
		}
		byChain[op.Chain] = append(byChain[op.Chain], op)
	}

	var batches []Batch
	for _, chain := range chainOrder {
		sorted, err := topoSort(byChain[chain])
		if err != nil {
			return nil, errs.New(errs.KindConfigError, chain, "conductor.Pack", err, "failed to order operations")
		}
		chainBatches := greedyPack(chain, sorted, computeBudget)
		batches = append(batches, chainBatches...)
	}
	return batches, nil
}

// topoSort orders ops so that every operation appears after all of its
// named predecessors (Kahn's algorithm), returning an error on a predecessor
// cycle or a reference to an operation not present in ops.
func topoSort(ops []Operation) ([]Operation, error) {
	byName := make(map[string]Operation, len(ops))
	indegree := make(map[string]int, len(ops))
	dependents := make(map[string][]string, len(ops))

	for _, op := range ops {
		byName[op.Name] = op
		if _, ok := indegree[op.Name]; !ok {
			indegree[op.Name] = 0
		}
	}
	for _, op := range ops {
		for _, pred := range op.Predecessors {
			if _, ok := byName[pred]; !ok {
				return nil, fmt.Errorf("operation %q declares unknown predecessor %q", op.Name, pred)
			}
			indegree[op.Name]++
			dependents[pred] = append(dependents[pred], op.Name)
		}
	}

	var queue []string
	for _, op := range ops {
		if indegree[op.Name] == 0 {
			queue = append(queue, op.Name)
		}
	}

	var ordered []Operation
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		ordered = append(ordered, byName[name])
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(ordered) != len(ops) {
		return nil, fmt.Errorf("predecessor cycle detected among operations")
	}
	return ordered, nil
}

// greedyPack packs a single chain's topologically-sorted operations into
// batches, starting a new batch whenever adding the next operation would
// violate a packing constraint or would pack it in the same batch as an
// unflushed predecessor.
func greedyPack(chain string, ops []Operation, computeBudget uint32) []Batch {
	var batches []Batch
	var current Batch
	flushedInto := map[string]int{} // operation name -> batch index it landed in
	batchIndex := 0

	startNew := func() {
		if len(current.Operations) > 0 {
			batches = append(batches, current)
			batchIndex++
		}
		current = Batch{Chain: chain}
	}

	signerSet := map[solana.PublicKey]bool{}
	resetSignerSet := func() {
		signerSet = map[solana.PublicKey]bool{}
		for _, s := range current.Signers {
			signerSet[s] = true
		}
	}

	for _, op := range ops {
		// Barrier check: every predecessor must already be flushed into a
		// strictly earlier batch.
		needsNewBatch := false
		for _, pred := range op.Predecessors {
			idx, ok := flushedInto[pred]
			if !ok || idx >= batchIndex {
				needsNewBatch = true
				break
			}
		}

		newSignerCount := 0
		for _, s := range op.RequiredSigners {
			if !signerSet[s] {
				newSignerCount++
			}
		}

		newSize := estimateSize(current) + estimateOpSize(op)
		newCompute := current.EstimatedComputeUnits + op.EstimatedComputeUnits
		newSignerTotal := len(current.Signers) + newSignerCount

		if !needsNewBatch && len(current.Operations) > 0 {
			if newSignerTotal > maxTxSigners || newCompute > computeBudget || newSize > maxTxSizeBytes {
				needsNewBatch = true
			}
		}

		if needsNewBatch {
			startNew()
			resetSignerSet()
		}

		current.Operations = append(current.Operations, op)
		current.Instructions = append(current.Instructions, op.Instructions...)
		current.EstimatedComputeUnits += op.EstimatedComputeUnits
		for _, s := range op.RequiredSigners {
			if !signerSet[s] {
				signerSet[s] = true
				current.Signers = append(current.Signers, s)
			}
		}

		flushedInto[op.Name] = batchIndex
	}
	if len(current.Operations) > 0 {
		batches = append(batches, current)
	}
	return batches
}

func estimateOpSize(op Operation) int {
	size := 0
	for _, ix := range op.Instructions {
		data, _ := ix.Data()
		size += perInstructionOverheadBytes + len(data) + len(ix.Accounts())*perAccountMetaBytes
	}
	return size
}

func estimateSize(b Batch) int {
	size := len(b.Signers) * perSignerBytes
	for _, ix := range b.Instructions {
		data, _ := ix.Data()
		size += perInstructionOverheadBytes + len(data) + len(ix.Accounts())*perAccountMetaBytes
	}
	return size
}
