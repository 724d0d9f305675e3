package deploy

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/conductor"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
)

// chunkSize is the maximum number of bytecode bytes carried per Write
// instruction; kept well under the transaction size limit once the
// instruction's offset/length prefix and account metas are included.
const chunkSize = 900

// Artifact is an on-disk program binary plus the keypair that will own its
// program ID.
type Artifact struct {
	ProgramName string
	Bytecode    []byte
	ProgramKey  solana.PrivateKey
}

// Sha256Hex returns the hex-encoded SHA-256 of the artifact bytecode, the
// value recorded in the environment's ProgramRecord and checked against
// on-chain state by VerifyDeployedHash.
func (a Artifact) Sha256Hex() string {
	sum := sha256.Sum256(a.Bytecode)
	return fmt.Sprintf("%x", sum)
}

// PlanUpload builds the operation list that initializes a buffer account
// and chunk-writes an artifact's bytecode into it. Each chunk is its own
// operation with the previous operation as its predecessor, so the
// conductor sends every chunk in a transaction of its own, in offset order.
func PlanUpload(cc *chaincontext.Context, chain string, artifact Artifact, bufferKey solana.PrivateKey) (conductor.OperationList, error) {
	payer := cc.Payer().PublicKey
	bufferPubkey := bufferKey.PublicKey()

	ops := conductor.OperationList{{
		Name:                  fmt.Sprintf("deploy.%s.init-buffer.%s", artifact.ProgramName, chain),
		Chain:                 chain,
		Instructions:          []solana.Instruction{buildInitializeBufferInstruction(bufferPubkey, payer)},
		RequiredSigners:       []solana.PublicKey{payer, bufferPubkey},
		EstimatedComputeUnits: 10_000,
		Summary:               fmt.Sprintf("create upload buffer for %s", artifact.ProgramName),
	}}

	prev := ops[0].Name
	for offset := 0; offset < len(artifact.Bytecode); offset += chunkSize {
		end := offset + chunkSize
		if end > len(artifact.Bytecode) {
			end = len(artifact.Bytecode)
		}
		name := fmt.Sprintf("deploy.%s.write.%s.%d", artifact.ProgramName, chain, offset)
		ops = append(ops, conductor.Operation{
			Name:                  name,
			Chain:                 chain,
			Instructions:          []solana.Instruction{buildWriteInstruction(bufferPubkey, payer, uint32(offset), artifact.Bytecode[offset:end])},
			RequiredSigners:       []solana.PublicKey{payer},
			EstimatedComputeUnits: 5_000,
			Predecessors:          []string{prev},
			Summary:               fmt.Sprintf("write bytes [%d,%d) of %s", offset, end, artifact.ProgramName),
		})
		prev = name
	}

	return ops, nil
}

// PlanFinalize builds the operation that deploys (or upgrades) a program
// from a fully-written buffer, reserving headroom for future upgrades.
func PlanFinalize(cc *chaincontext.Context, chain string, artifact Artifact, bufferKey solana.PrivateKey, programDataAccount solana.PublicKey, maxDataLen uint64, predecessors []string) conductor.Operation {
	payer := cc.Payer().PublicKey
	programPubkey := artifact.ProgramKey.PublicKey()
	bufferPubkey := bufferKey.PublicKey()

	ix := buildDeployWithMaxDataLenInstruction(payer, programDataAccount, programPubkey, bufferPubkey, payer, maxDataLen)
	return conductor.Operation{
		Name:                  fmt.Sprintf("deploy.%s.finalize.%s", artifact.ProgramName, chain),
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer, programPubkey},
		EstimatedComputeUnits: 200_000,
		Predecessors:          predecessors,
		Summary:               fmt.Sprintf("finalize deployment of %s", artifact.ProgramName),
	}
}

// VerifyDeployedHash reads the on-chain program-data account and checks
// that its executable bytes hash to the same SHA-256 as the local
// artifact, returning an ArtifactHashMismatch error on divergence. The
// program-data account's payload is the loader's metadata header (slot +
// upgrade authority option) followed by the raw executable bytes; callers
// pass headerLen so this stays agnostic of loader version differences.
func VerifyDeployedHash(ctx context.Context, cc *chaincontext.Context, chain string, programDataAccount solana.PublicKey, artifact Artifact, headerLen int) error {
	provider, err := cc.Provider(chain)
	if err != nil {
		return err
	}
	info, err := provider.GetAccountInfo(ctx, programDataAccount)
	if err != nil {
		return errs.New(errs.KindRpcError, chain, "deploy.VerifyDeployedHash", err, "failed to read program data account %s", programDataAccount)
	}
	if info == nil || info.Value == nil {
		return errs.New(errs.KindRpcError, chain, "deploy.VerifyDeployedHash", errors.New("account not found"), "program data account %s does not exist", programDataAccount)
	}

	raw := info.Value.Data.GetBinary()
	if len(raw) < headerLen {
		return errs.New(errs.KindArtifactHashMismatch, chain, "deploy.VerifyDeployedHash", nil, "program data account %s shorter than loader header", programDataAccount)
	}
	executable := raw[headerLen:]
	// The loader pads the buffer to its originally reserved length; trim
	// trailing zero bytes beyond the artifact's own length before hashing.
	if len(executable) > len(artifact.Bytecode) {
		executable = executable[:len(artifact.Bytecode)]
	}

	sum := sha256.Sum256(executable)
	got := fmt.Sprintf("%x", sum)
	want := artifact.Sha256Hex()
	if got != want {
		return errs.New(errs.KindArtifactHashMismatch, chain, "deploy.VerifyDeployedHash", nil,
			"on-chain bytecode hash %s does not match artifact hash %s for %s", got, want, artifact.ProgramName)
	}
	return nil
}
