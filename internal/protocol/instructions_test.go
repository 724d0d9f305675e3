package protocol

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMailboxInitInstruction_DiscriminatorAndAccounts(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	defaultISM := solana.NewWallet().PublicKey()

	ix, err := BuildMailboxInitInstruction(programID, authority, payer, MailboxInitArgs{
		LocalDomain:    13375,
		DefaultISM:     defaultISM,
		MaxProtocolFee: 1_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, programID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, authority, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, payer, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, uint8(MailboxInit), data[0])
}

func TestBuildWarpRouteTransferRemoteMemoInstruction_EmptyMemoIsNotRejected(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	storage := solana.NewWallet().PublicKey()
	sender := solana.NewWallet().PublicKey()
	mailbox := solana.NewWallet().PublicKey()

	ix, err := BuildWarpRouteTransferRemoteMemoInstruction(programID, storage, sender, mailbox, WarpRouteTransferRemoteMemoArgs{
		DestinationDomain: 13376,
		Recipient:         [32]byte{1},
		Amount:            500,
		Memo:              "",
	})
	require.NoError(t, err)
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, uint8(WarpRouteTransferRemoteMemo), data[0])
}

func TestBuildMultisigISMSetValidatorsAndThresholdInstruction_EncodesValidatorCount(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	domainData := solana.NewWallet().PublicKey()
	accessControl := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()

	ix, err := BuildMultisigISMSetValidatorsAndThresholdInstruction(programID, domainData, accessControl, owner, payer, MultisigISMSetValidatorsAndThresholdArgs{
		RemoteDomain: 11155111,
		Validators:   [][20]byte{{1}, {2}, {3}},
		Threshold:    2,
	})
	require.NoError(t, err)
	require.Len(t, ix.Accounts(), 5)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, uint8(MultisigISMSetValidatorsAndThreshold), data[0])
}

func TestDecodeMailboxState_RoundTripsEncodedLayout(t *testing.T) {
	raw := make([]byte, 0, 4+32+8+8+8+32)
	appendU32 := func(v uint32) {
		raw = append(raw, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	appendU64 := func(v uint64) {
		for i := 0; i < 8; i++ {
			raw = append(raw, byte(v>>(8*i)))
		}
	}
	ism := [32]byte{9, 9, 9}
	owner := [32]byte{7, 7, 7}

	appendU32(13375)
	raw = append(raw, ism[:]...)
	appendU64(42)
	appendU64(1_000_000)
	appendU64(0)
	raw = append(raw, owner[:]...)

	state, err := DecodeMailboxState(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(13375), state.LocalDomain)
	assert.Equal(t, ism, state.DefaultISM)
	assert.Equal(t, uint64(42), state.Nonce)
	assert.Equal(t, owner, state.Owner)
}

func TestDecodeMailboxState_TruncatedDataIsAnError(t *testing.T) {
	_, err := DecodeMailboxState([]byte{1, 2, 3})
	require.Error(t, err)
}
