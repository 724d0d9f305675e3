package protocol

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

// fakeAccountsRPC answers GetAccountInfo from an in-memory map and errors
// with solanarpc.ErrNotFound for everything else, matching how a real
// cluster node answers queries for uninitialized accounts.
type fakeAccountsRPC struct {
	chaincontext.RPCClient
	accounts map[solana.PublicKey][]byte
}

func (f *fakeAccountsRPC) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	data, ok := f.accounts[account]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{
		Value: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(data)},
	}, nil
}

func newPlannerTestContext(t *testing.T, rpc *fakeAccountsRPC) *chaincontext.Context {
	t.Helper()
	wallet := solana.NewWallet()
	return chaincontext.New(
		chaincontext.Signer{PublicKey: wallet.PublicKey(), PrivateKey: &wallet.PrivateKey},
		map[string]chaincontext.Chain{"solanatestnet": {Name: "solanatestnet", Domain: 13375}},
		chaincontext.WithProviderFactory(func(url string) chaincontext.RPCClient { return rpc }),
	)
}

func TestPlanMailboxInit_ProposesInitWhenAbsent(t *testing.T) {
	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{}}
	cc := newPlannerTestContext(t, rpc)

	programID := solana.NewWallet().PublicKey()
	defaultISM := solana.NewWallet().PublicKey()

	ops, err := PlanMailboxInit(context.Background(), cc, "solanatestnet", programID, defaultISM, 1_000_000)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "solanatestnet", ops[0].Chain)
}

func TestPlanMailboxInit_UsesChainDomainNotZero(t *testing.T) {
	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{}}
	cc := newPlannerTestContext(t, rpc)

	programID := solana.NewWallet().PublicKey()
	defaultISM := solana.NewWallet().PublicKey()

	ops, err := PlanMailboxInit(context.Background(), cc, "solanatestnet", programID, defaultISM, 1_000_000)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	authority, _, err := sealevel.DeriveMailboxAuthority(programID)
	require.NoError(t, err)
	payer := cc.Payer().PublicKey
	wantIx, err := BuildMailboxInitInstruction(programID, authority, payer, MailboxInitArgs{
		LocalDomain:    13375,
		DefaultISM:     defaultISM,
		MaxProtocolFee: 1_000_000,
	})
	require.NoError(t, err)
	wantData, err := wantIx.Data()
	require.NoError(t, err)
	gotData, err := ops[0].Instructions[0].Data()
	require.NoError(t, err)
	assert.Equal(t, wantData, gotData, "PlanMailboxInit must use the chain's domain, not a hardcoded zero")
}

func TestPlanMailboxInit_UnknownChainErrors(t *testing.T) {
	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{}}
	cc := newPlannerTestContext(t, rpc)

	_, err := PlanMailboxInit(context.Background(), cc, "no-such-chain", solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), 0)
	require.Error(t, err)
}

func TestPlanMailboxInit_NoOpWhenAlreadyInitialized(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	authority, _, err := sealevel.DeriveMailboxAuthority(programID)
	require.NoError(t, err)

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{
		authority: {1, 2, 3},
	}}
	cc := newPlannerTestContext(t, rpc)

	ops, err := PlanMailboxInit(context.Background(), cc, "solanatestnet", programID, solana.NewWallet().PublicKey(), 1_000_000)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestPlanMultisigISMSetValidatorsAndThreshold_NoOpWhenUnchanged(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	domainData, _, err := sealevel.DeriveMultisigISMDomainData(programID, 11155111)
	require.NoError(t, err)

	validators := [][20]byte{{1}, {2}}
	threshold := uint8(2)

	encoded, err := encodeDomainDataForTest(11155111, validators, threshold)
	require.NoError(t, err)

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{domainData: encoded}}
	cc := newPlannerTestContext(t, rpc)

	ops, err := PlanMultisigISMSetValidatorsAndThreshold(context.Background(), cc, "solanatestnet", programID, solana.NewWallet().PublicKey(), 11155111, validators, threshold)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestPlanMultisigISMSetValidatorsAndThreshold_ProposesUpdateWhenChanged(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	domainData, _, err := sealevel.DeriveMultisigISMDomainData(programID, 11155111)
	require.NoError(t, err)

	encoded, err := encodeDomainDataForTest(11155111, [][20]byte{{1}}, 1)
	require.NoError(t, err)

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{domainData: encoded}}
	cc := newPlannerTestContext(t, rpc)

	ops, err := PlanMultisigISMSetValidatorsAndThreshold(context.Background(), cc, "solanatestnet", programID, solana.NewWallet().PublicKey(), 11155111, [][20]byte{{1}, {2}}, 2)
	require.NoError(t, err)
	require.Len(t, ops, 1)
}

func encodeDomainDataForTest(remoteDomain uint32, validators [][20]byte, threshold uint8) ([]byte, error) {
	buf := make([]byte, 0, 4+4+len(validators)*20+1)
	buf = append(buf, byte(remoteDomain), byte(remoteDomain>>8), byte(remoteDomain>>16), byte(remoteDomain>>24))
	count := uint32(len(validators))
	buf = append(buf, byte(count), byte(count>>8), byte(count>>16), byte(count>>24))
	for _, v := range validators {
		buf = append(buf, v[:]...)
	}
	buf = append(buf, threshold)
	return buf, nil
}

func TestPlanTestISMInit_ErrorsPropagate(t *testing.T) {
	rpc := &fakeAccountsRPC{accounts: nil}
	cc := newPlannerTestContext(t, rpc)

	_, err := PlanTestISMInit(context.Background(), cc, "unknown-chain", solana.NewWallet().PublicKey())
	require.Error(t, err)
}
