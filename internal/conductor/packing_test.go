package conductor

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyInstruction(programID solana.PublicKey, signer solana.PublicKey, dataLen int) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(signer, true, true),
	}, make([]byte, dataLen))
}

func TestPack_SingleChainSingleBatchWhenUnderLimits(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()

	ops := OperationList{
		{Name: "init-mailbox", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 50_000},
		{Name: "init-igp", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 50_000},
	}

	batches, err := Pack(ops, 1_400_000)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Operations, 2)
	assert.Equal(t, "solanatestnet", batches[0].Chain)
}

func TestPack_SplitsAcrossChains(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()

	ops := OperationList{
		{Name: "a", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 10_000},
		{Name: "b", Chain: "eclipsetestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 10_000},
	}

	batches, err := Pack(ops, 1_400_000)
	require.NoError(t, err)
	require.Len(t, batches, 2)
}

func TestPack_SplitsWhenComputeBudgetExceeded(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()

	ops := OperationList{
		{Name: "a", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 800_000},
		{Name: "b", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 800_000},
	}

	batches, err := Pack(ops, 1_400_000)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "a", batches[0].Operations[0].Name)
	assert.Equal(t, "b", batches[1].Operations[0].Name)
}

func TestPack_RespectsPredecessorBarrier(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()

	ops := OperationList{
		{Name: "enroll-a-to-b", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 10_000},
		{Name: "enroll-b-to-a", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, RequiredSigners: []solana.PublicKey{signer}, EstimatedComputeUnits: 10_000, Predecessors: []string{"enroll-a-to-b"}},
	}

	batches, err := Pack(ops, 1_400_000)
	require.NoError(t, err)

	// A predecessor edge always forces a new batch, even though both would
	// otherwise fit comfortably together.
	require.Len(t, batches, 2)
	assert.Equal(t, "enroll-a-to-b", batches[0].Operations[0].Name)
	assert.Equal(t, "enroll-b-to-a", batches[1].Operations[0].Name)
}

func TestPack_UnknownPredecessorIsAnError(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()

	ops := OperationList{
		{Name: "only", Chain: "solanatestnet", Instructions: []solana.Instruction{dummyInstruction(program, signer, 8)}, Predecessors: []string{"ghost"}},
	}

	_, err := Pack(ops, 1_400_000)
	require.Error(t, err)
}

func TestPack_SplitsWhenSignerCountExceedsLimit(t *testing.T) {
	program := solana.NewWallet().PublicKey()

	var ops OperationList
	for i := 0; i < maxTxSigners+2; i++ {
		s := solana.NewWallet().PublicKey()
		ops = append(ops, Operation{
			Name:                  "op",
			Chain:                 "solanatestnet",
			Instructions:          []solana.Instruction{dummyInstruction(program, s, 8)},
			RequiredSigners:       []solana.PublicKey{s},
			EstimatedComputeUnits: 1,
		})
	}
	for i := range ops {
		ops[i].Name = ops[i].Name + string(rune('a'+i))
	}

	batches, err := Pack(ops, 1_400_000)
	require.NoError(t, err)
	require.Greater(t, len(batches), 1)
}
