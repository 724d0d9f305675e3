package chaincontext

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestWithComputeBudget_ClampsToMax(t *testing.T) {
	c := New(Signer{}, nil, WithComputeBudget(MaxComputeBudget+1))
	if c.ComputeBudget() != MaxComputeBudget {
		t.Errorf("expected clamp to %d, got %d", MaxComputeBudget, c.ComputeBudget())
	}
}

func TestWithComputeBudget_ZeroUsesDefault(t *testing.T) {
	c := New(Signer{}, nil, WithComputeBudget(0))
	if c.ComputeBudget() != DefaultComputeBudget {
		t.Errorf("expected default %d, got %d", DefaultComputeBudget, c.ComputeBudget())
	}
}

func TestWithHeapFrameBytes_ClampsToMax(t *testing.T) {
	c := New(Signer{}, nil, WithHeapFrameBytes(MaxHeapFrameBytes+1))
	if c.HeapFrameBytes() != MaxHeapFrameBytes {
		t.Errorf("expected clamp to %d, got %d", MaxHeapFrameBytes, c.HeapFrameBytes())
	}
}

func TestRequireSigner_FailsForReadOnlyIdentity(t *testing.T) {
	c := New(Signer{PublicKey: solana.NewWallet().PublicKey()}, nil)
	if err := c.RequireSigner("mailbox.init"); err == nil {
		t.Fatal("expected NoSigner error for read-only identity")
	}
}

func TestRequireSigner_PassesForSigningIdentity(t *testing.T) {
	wallet := solana.NewWallet()
	c := New(Signer{PublicKey: wallet.PublicKey(), PrivateKey: &wallet.PrivateKey}, nil)
	if err := c.RequireSigner("mailbox.init"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProvider_UnknownChainFails(t *testing.T) {
	c := New(Signer{}, nil)
	if _, err := c.Provider("nope"); err == nil {
		t.Fatal("expected error for unknown chain")
	}
}

func TestProvider_LazilyConstructedAndCached(t *testing.T) {
	calls := 0
	c := New(Signer{}, map[string]Chain{
		"solanatestnet": {Name: "solanatestnet", URL: "http://example.invalid", Domain: 13375},
	}, WithProviderFactory(func(url string) RPCClient {
		calls++
		return nil
	}))

	if _, err := c.Provider("solanatestnet"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Provider("solanatestnet"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected provider to be constructed once and cached, got %d constructions", calls)
	}
}
