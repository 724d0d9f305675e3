// Package chaincontext implements the Chain Context (C1): it holds the RPC
// client, payer identity, compute budget, and approval policy, and mints
// transaction builders. It exclusively owns RPC connections and the payer
// signer (§3, Persisted state ownership; §5, shared resources).
//
// Grounded on the teacher repo's rpc.New(...) construction in
// controlplane/funder/cmd/funder/main.go and the ExecutorRPCClient narrow
// interface in smartcontract/sdk/go/serviceability/executor.go.
package chaincontext

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
)

const (
	// DefaultComputeBudget is the default/max per-transaction compute unit
	// cap (§4.1, §6 --compute-budget).
	DefaultComputeBudget = 1_400_000
	// MaxComputeBudget is the hard ceiling on --compute-budget.
	MaxComputeBudget = 1_400_000
	// MaxHeapFrameBytes is the hard ceiling on --heap-size.
	MaxHeapFrameBytes = 262_144

	// DefaultRPCReadTimeout is the default RPC read timeout (§5).
	DefaultRPCReadTimeout = 15 * time.Second
	// DefaultConfirmTimeout is the default transaction confirmation
	// deadline (§5, §4.7).
	DefaultConfirmTimeout = 60 * time.Second
	// DefaultRatePerSecond is the default per-chain RPC rate limit (§5).
	DefaultRatePerSecond = 10
	// DefaultReadConcurrency is a bounded pool size for independent
	// parallel reads across chains (§5); no code in this repository reads
	// it.
	DefaultReadConcurrency = 8
)

// Signer is a payer identity. It may be backed by a real keypair (able to
// sign) or be read-only (a bare public key, for query-only commands).
type Signer struct {
	PublicKey  solana.PublicKey
	PrivateKey *solana.PrivateKey // nil for a read-only identity
}

// CanSign reports whether this identity can sign transactions.
func (s Signer) CanSign() bool {
	return s.PrivateKey != nil
}

// RPCClient is the narrow surface the Chain Context exposes to every other
// component. It mirrors ExecutorRPCClient from the teacher's
// smartcontract/sdk/go/serviceability/executor.go, extended with the
// program-account and account-info reads the Query/Inspector needs.
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error)
	GetTransaction(ctx context.Context, sig solana.Signature, opts *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error)
	GetProgramAccounts(ctx context.Context, programID solana.PublicKey) (solanarpc.GetProgramAccountsResult, error)
}

// Chain is one entry in the Chain Context: a chain name paired with a lazily
// constructed, cached RPC provider.
type Chain struct {
	Name   string
	URL    string
	Domain uint32

	mu     sync.Mutex
	client RPCClient
}

// ProviderFactory constructs an RPCClient for a URL; overridable in tests to
// avoid real network I/O.
type ProviderFactory func(url string) RPCClient

func defaultProviderFactory(url string) RPCClient {
	return solanarpc.New(url)
}

// Context is the Chain Context (C1). One Context is built per invocation of
// a command and handed down explicitly — never a package-level global,
// per the "mutable per-chain caches" design note.
type Context struct {
	chains          map[string]*Chain
	payer           Signer
	computeBudget   uint32
	heapFrameBytes  uint32
	requireApproval bool
	providerFactory ProviderFactory

	mu sync.Mutex
}

// Option configures a Context at construction.
type Option func(*Context)

// WithComputeBudget overrides the per-tx compute unit cap, clamped to
// MaxComputeBudget.
func WithComputeBudget(units uint32) Option {
	return func(c *Context) {
		if units == 0 || units > MaxComputeBudget {
			units = MaxComputeBudget
		}
		c.computeBudget = units
	}
}

// WithHeapFrameBytes overrides the per-tx heap frame size, clamped to
// MaxHeapFrameBytes.
func WithHeapFrameBytes(bytes uint32) Option {
	return func(c *Context) {
		if bytes > MaxHeapFrameBytes {
			bytes = MaxHeapFrameBytes
		}
		c.heapFrameBytes = bytes
	}
}

// WithApprovalRequired toggles the interactive approval gate.
func WithApprovalRequired(required bool) Option {
	return func(c *Context) { c.requireApproval = required }
}

// WithProviderFactory overrides how RPC providers are constructed; used in
// tests to inject fakes.
func WithProviderFactory(f ProviderFactory) Option {
	return func(c *Context) { c.providerFactory = f }
}

// New builds a Context for a set of named chains with the given payer
// identity.
func New(payer Signer, chains map[string]Chain, opts ...Option) *Context {
	c := &Context{
		chains:          make(map[string]*Chain, len(chains)),
		payer:           payer,
		computeBudget:   DefaultComputeBudget,
		heapFrameBytes:  0,
		providerFactory: defaultProviderFactory,
	}
	for name, ch := range chains {
		chCopy := ch
		c.chains[name] = &chCopy
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Provider returns the (lazily constructed, cached) RPC handle for a chain.
func (c *Context) Provider(chain string) (RPCClient, error) {
	c.mu.Lock()
	ch, ok := c.chains[chain]
	c.mu.Unlock()
	if !ok {
		return nil, errs.New(errs.KindConfigError, chain, "chaincontext.Provider", nil, "unknown chain %q", chain)
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.client == nil {
		ch.client = c.providerFactory(ch.URL)
	}
	return ch.client, nil
}

// Chain returns the descriptor for a chain without constructing its
// provider.
func (c *Context) Chain(name string) (Chain, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.chains[name]
	if !ok {
		return Chain{}, false
	}
	return *ch, true
}

// Payer returns the configured payer identity.
func (c *Context) Payer() Signer { return c.payer }

// ComputeBudget returns the per-tx compute unit cap.
func (c *Context) ComputeBudget() uint32 { return c.computeBudget }

// HeapFrameBytes returns the per-tx heap frame size (0 means "use cluster
// default", i.e. no heap frame instruction is prefixed).
func (c *Context) HeapFrameBytes() uint32 { return c.heapFrameBytes }

// RequireApproval reports whether the interactive approval gate is enabled.
func (c *Context) RequireApproval() bool { return c.requireApproval }

// RequireSigner returns a NoSigner error if the configured payer cannot
// sign, before any RPC call is made, per §4.1's contract.
func (c *Context) RequireSigner(operation string) error {
	if !c.payer.CanSign() {
		return errs.New(errs.KindNoSigner, "", operation, nil, "state-changing command requires a signing payer identity, got a read-only public key")
	}
	return nil
}
