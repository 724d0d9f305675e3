package inspector

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

type fakeAccountsRPC struct {
	chaincontext.RPCClient
	accounts map[solana.PublicKey][]byte
	owners   map[solana.PublicKey]solana.PublicKey
}

func (f *fakeAccountsRPC) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	data, ok := f.accounts[account]
	if !ok {
		return &solanarpc.GetAccountInfoResult{Value: nil}, nil
	}
	owner := f.owners[account] // zero value (system program's all-zero key) when unset
	return &solanarpc.GetAccountInfoResult{Value: &solanarpc.Account{
		Owner: owner,
		Data:  solanarpc.DataBytesOrJSONFromBytes(data),
	}}, nil
}

func newInspectorTestContext(t *testing.T, rpc *fakeAccountsRPC) *chaincontext.Context {
	t.Helper()
	wallet := solana.NewWallet()
	return chaincontext.New(
		chaincontext.Signer{PublicKey: wallet.PublicKey(), PrivateKey: &wallet.PrivateKey},
		map[string]chaincontext.Chain{"solanatestnet": {Name: "solanatestnet", Domain: 13375}},
		chaincontext.WithProviderFactory(func(url string) chaincontext.RPCClient { return rpc }),
	)
}

func encodeMailboxStateForTest(localDomain uint32, defaultISM [32]byte, nonce uint64, owner [32]byte) []byte {
	buf := make([]byte, 0, 128)
	put32 := func(v uint32) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	put64 := func(v uint64) {
		for i := 0; i < 8; i++ {
			buf = append(buf, byte(v>>(8*i)))
		}
	}
	put32(localDomain)
	buf = append(buf, defaultISM[:]...)
	put64(nonce)
	put64(1_000_000) // max protocol fee
	put64(0)          // protocol fee
	buf = append(buf, owner[:]...)
	return buf
}

func TestInspectMailbox_DecodesOnChainState(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	authority, _, err := sealevel.DeriveMailboxAuthority(programID)
	require.NoError(t, err)

	var defaultISM, owner [32]byte
	copy(defaultISM[:], solana.NewWallet().PublicKey().Bytes())
	copy(owner[:], solana.NewWallet().PublicKey().Bytes())

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{
		authority: encodeMailboxStateForTest(13375, defaultISM, 42, owner),
	}}
	cc := newInspectorTestContext(t, rpc)

	summary, err := InspectMailbox(context.Background(), cc, "solanatestnet", programID)
	require.NoError(t, err)
	assert.Equal(t, uint32(13375), summary.LocalDomain)
	assert.Equal(t, uint64(42), summary.Nonce)
}

func TestInspectMailbox_ErrorsWhenUninitialized(t *testing.T) {
	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{}}
	cc := newInspectorTestContext(t, rpc)

	_, err := InspectMailbox(context.Background(), cc, "solanatestnet", solana.NewWallet().PublicKey())
	require.Error(t, err)
}

func TestInspectIGP_DecodesOwnerAndBeneficiary(t *testing.T) {
	igpProgramID := solana.NewWallet().PublicKey()
	igpAccount := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	beneficiary := solana.NewWallet().PublicKey()

	data := append(append(append([]byte{}, owner.Bytes()...), beneficiary.Bytes()...), solana.NewWallet().PublicKey().Bytes()...)
	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{igpAccount: data}}
	cc := newInspectorTestContext(t, rpc)

	summary, err := InspectIGP(context.Background(), cc, "solanatestnet", igpProgramID, igpAccount)
	require.NoError(t, err)
	assert.Equal(t, owner.String(), mustBase58ToSolana(t, summary.Owner).String())
	assert.Equal(t, beneficiary.String(), mustBase58ToSolana(t, summary.Beneficiary).String())
}

func mustBase58ToSolana(t *testing.T, s string) solana.PublicKey {
	t.Helper()
	pk, err := solana.PublicKeyFromBase58(s)
	require.NoError(t, err)
	return pk
}

func TestInspectMultisigISM_DecodesValidatorsAndThreshold(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	domainData, _, err := sealevel.DeriveMultisigISMDomainData(programID, 11155111)
	require.NoError(t, err)

	buf := []byte{167, 54, 170, 0} // 11155111 as little-endian u32
	buf = append(buf, 2, 0, 0, 0)         // validator count = 2
	buf = append(buf, make([]byte, 20)...)
	buf = append(buf, make([]byte, 20)...)
	buf = append(buf, 2) // threshold

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{domainData: buf}}
	cc := newInspectorTestContext(t, rpc)

	summary, err := InspectMultisigISM(context.Background(), cc, "solanatestnet", programID, 11155111)
	require.NoError(t, err)
	assert.Len(t, summary.Validators, 2)
	assert.Equal(t, uint8(2), summary.Threshold)
}

func TestDelivered_TrueWhenMarkerPresent(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	var messageID [32]byte
	messageID[0] = 0xab

	marker, _, err := sealevel.DeriveProcessedMessagePDA(programID, messageID)
	require.NoError(t, err)

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{marker: {1}}}
	cc := newInspectorTestContext(t, rpc)

	delivered, err := Delivered(context.Background(), cc, "solanatestnet", programID, messageID)
	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestDelivered_FalseWhenMarkerAbsent(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	var messageID [32]byte

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{}}
	cc := newInspectorTestContext(t, rpc)

	delivered, err := Delivered(context.Background(), cc, "solanatestnet", programID, messageID)
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestRenderJSON_EncodesMailboxSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := MailboxSummary{Chain: "solanatestnet", LocalDomain: 13375, Nonce: 7}

	require.NoError(t, RenderJSON(&buf, summary))

	var decoded MailboxSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, summary, decoded)
}

func TestRenderMailboxTable_SortsByChain(t *testing.T) {
	var buf bytes.Buffer
	RenderMailboxTable(&buf, []MailboxSummary{
		{Chain: "sepolia", LocalDomain: 11155111},
		{Chain: "eclipsetestnet", LocalDomain: 13376},
	})

	out := buf.String()
	assert.Less(t, indexOf(out, "eclipsetestnet"), indexOf(out, "sepolia"))
}

func TestVerifySquadsMultisig_ReportsFalseForNonSquadsOwner(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{owner: {1, 2, 3}}}
	cc := newInspectorTestContext(t, rpc)

	summary, err := VerifySquadsMultisig(context.Background(), cc, "solanatestnet", owner)
	require.NoError(t, err)
	assert.False(t, summary.LooksLikeSquadsMultisig)
}

func TestVerifySquadsMultisig_DecodesThresholdAndMemberCount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	data := make([]byte, 8+32+2+4)
	data[8+32] = 2 // threshold = 2 (LE u16)
	data[8+32+2] = 3 // member count = 3 (LE u32)

	rpc := &fakeAccountsRPC{accounts: map[solana.PublicKey][]byte{owner: data}}
	cc := newInspectorTestContext(t, rpc)
	// Patch the fake to report the Squads program as owner for this one account.
	rpc.owners = map[solana.PublicKey]solana.PublicKey{owner: squadsMultisigProgramID}

	summary, err := VerifySquadsMultisig(context.Background(), cc, "solanatestnet", owner)
	require.NoError(t, err)
	assert.True(t, summary.LooksLikeSquadsMultisig)
	assert.Equal(t, uint16(2), summary.Threshold)
	assert.Equal(t, uint32(3), summary.MemberCount)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
