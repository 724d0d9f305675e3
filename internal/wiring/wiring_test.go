package wiring

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingEnrollments_FullMeshForThreeChains(t *testing.T) {
	a := RouterEndpoint{Chain: "solanatestnet", Domain: 13375, StorageKey: solana.NewWallet().PublicKey()}
	b := RouterEndpoint{Chain: "eclipsetestnet", Domain: 13376, StorageKey: solana.NewWallet().PublicKey()}
	c := RouterEndpoint{Chain: "sepolia", Domain: 11155111, StorageKey: solana.NewWallet().PublicKey()}

	missing := MissingEnrollments([]RouterEndpoint{a, b, c})
	assert.Len(t, missing, 6) // 3 * (3-1)
}

func TestMissingEnrollments_SkipsAlreadyEnrolled(t *testing.T) {
	b := RouterEndpoint{Chain: "eclipsetestnet", Domain: 13376, StorageKey: solana.NewWallet().PublicKey()}
	a := RouterEndpoint{
		Chain:      "solanatestnet",
		Domain:     13375,
		StorageKey: solana.NewWallet().PublicKey(),
		EnrolledRouters: map[uint32][32]byte{
			13376: pubkeyToBytes32(b.StorageKey),
		},
	}

	missing := MissingEnrollments([]RouterEndpoint{a, b})
	require.Len(t, missing, 1)
	assert.Equal(t, "eclipsetestnet", missing[0].OnChain.Chain)
}

func TestMissingEnrollments_FlagsDivergentRouter(t *testing.T) {
	b := RouterEndpoint{Chain: "eclipsetestnet", Domain: 13376, StorageKey: solana.NewWallet().PublicKey()}
	a := RouterEndpoint{
		Chain:      "solanatestnet",
		Domain:     13375,
		StorageKey: solana.NewWallet().PublicKey(),
		EnrolledRouters: map[uint32][32]byte{
			13376: {0xff}, // not b's actual router
		},
	}

	missing := MissingEnrollments([]RouterEndpoint{a, b})
	require.Len(t, missing, 2)
	for _, m := range missing {
		if m.OnChain.Chain == "solanatestnet" {
			assert.True(t, m.Divergent)
		}
	}
}

func TestPlanEnrollments_RejectsDivergentWithoutForce(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	enrollments := []Enrollment{{
		OnChain:      RouterEndpoint{Chain: "solanatestnet", ProgramID: solana.NewWallet().PublicKey(), StorageKey: solana.NewWallet().PublicKey()},
		RemoteDomain: 13376,
		RemoteRouter: [32]byte{1},
		Divergent:    true,
	}}

	_, err := PlanEnrollments(payer, enrollments, false)
	require.Error(t, err)
}

func TestPlanEnrollments_AllowsDivergentWithForce(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	enrollments := []Enrollment{{
		OnChain:      RouterEndpoint{Chain: "solanatestnet", ProgramID: solana.NewWallet().PublicKey(), StorageKey: solana.NewWallet().PublicKey()},
		RemoteDomain: 13376,
		RemoteRouter: [32]byte{1},
		Divergent:    true,
	}}

	ops, err := PlanEnrollments(payer, enrollments, true)
	require.NoError(t, err)
	require.Len(t, ops, 1)
}

func TestPlanGasOracleConfig_SkipsAlreadyCurrentEntries(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	desired := []GasOracleDesired{
		{Chain: "solanatestnet", IGPProgramID: solana.NewWallet().PublicKey(), IGPAccount: solana.NewWallet().PublicKey(), RemoteDomain: 13376, CurrentlySet: true},
	}

	ops, err := PlanGasOracleConfig(payer, desired)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestPlanGasOracleConfig_GroupsByChain(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	igpProgram := solana.NewWallet().PublicKey()
	igpAccount := solana.NewWallet().PublicKey()
	desired := []GasOracleDesired{
		{Chain: "solanatestnet", IGPProgramID: igpProgram, IGPAccount: igpAccount, RemoteDomain: 13376},
		{Chain: "solanatestnet", IGPProgramID: igpProgram, IGPAccount: igpAccount, RemoteDomain: 11155111},
	}

	ops, err := PlanGasOracleConfig(payer, desired)
	require.NoError(t, err)
	require.Len(t, ops, 1)
}
