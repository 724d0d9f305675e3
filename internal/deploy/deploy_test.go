package deploy

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
)

func TestLoadKeypair_RoundTripsGenerated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.json")

	generated, err := GenerateKeypair(path)
	require.NoError(t, err)

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, generated.PublicKey(), loaded.PublicKey())
}

func TestLoadKeypair_RejectsWrongLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2,3]"), 0o600))

	_, err := LoadKeypair(path)
	require.Error(t, err)
}

func TestPlanUpload_ChunksBytecodeWithPredecessorChain(t *testing.T) {
	wallet := solana.NewWallet()
	cc := chaincontext.New(chaincontext.Signer{PublicKey: wallet.PublicKey(), PrivateKey: &wallet.PrivateKey}, nil)

	bufferKey := solana.NewWallet().PrivateKey
	artifact := Artifact{ProgramName: "mailbox", Bytecode: make([]byte, chunkSize*2+10)}

	ops, err := PlanUpload(cc, "solanatestnet", artifact, bufferKey)
	require.NoError(t, err)

	// init-buffer + 3 write chunks (900, 900, 10 bytes)
	require.Len(t, ops, 4)
	assert.Equal(t, "deploy.mailbox.init-buffer.solanatestnet", ops[0].Name)
	for i := 1; i < len(ops); i++ {
		assert.Equal(t, []string{ops[i-1].Name}, ops[i].Predecessors)
	}
}

type fakeProgramDataRPC struct {
	chaincontext.RPCClient
	data []byte
}

func (f *fakeProgramDataRPC) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	return &solanarpc.GetAccountInfoResult{Value: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(f.data)}}, nil
}

func TestVerifyDeployedHash_MatchesWhenBytecodeIdentical(t *testing.T) {
	bytecode := []byte("fake program bytecode")
	header := []byte{0xde, 0xad, 0xbe, 0xef}
	onChain := append(append([]byte{}, header...), bytecode...)

	wallet := solana.NewWallet()
	cc := chaincontext.New(
		chaincontext.Signer{PublicKey: wallet.PublicKey(), PrivateKey: &wallet.PrivateKey},
		map[string]chaincontext.Chain{"solanatestnet": {Name: "solanatestnet"}},
		chaincontext.WithProviderFactory(func(url string) chaincontext.RPCClient {
			return &fakeProgramDataRPC{data: onChain}
		}),
	)

	artifact := Artifact{ProgramName: "mailbox", Bytecode: bytecode}
	err := VerifyDeployedHash(context.Background(), cc, "solanatestnet", solana.NewWallet().PublicKey(), artifact, len(header))
	require.NoError(t, err)
}

func TestVerifyDeployedHash_MismatchIsAnError(t *testing.T) {
	header := []byte{0xde, 0xad, 0xbe, 0xef}
	onChain := append(append([]byte{}, header...), []byte("different bytecode")...)

	wallet := solana.NewWallet()
	cc := chaincontext.New(
		chaincontext.Signer{PublicKey: wallet.PublicKey(), PrivateKey: &wallet.PrivateKey},
		map[string]chaincontext.Chain{"solanatestnet": {Name: "solanatestnet"}},
		chaincontext.WithProviderFactory(func(url string) chaincontext.RPCClient {
			return &fakeProgramDataRPC{data: onChain}
		}),
	)

	artifact := Artifact{ProgramName: "mailbox", Bytecode: []byte("original bytecode")}
	err := VerifyDeployedHash(context.Background(), cc, "solanatestnet", solana.NewWallet().PublicKey(), artifact, len(header))
	require.Error(t, err)
}

func TestArtifact_Sha256HexIsDeterministic(t *testing.T) {
	a := Artifact{Bytecode: []byte("abc")}
	sum := sha256.Sum256([]byte("abc"))
	assert.Equal(t, fmt.Sprintf("%x", sum), a.Sha256Hex())
}
