package conductor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
)

const (
	// maxBlockhashRetries bounds how many times a batch is resubmitted with
	// a fresh blockhash after a BlockhashNotFound preflight failure.
	maxBlockhashRetries = 5

	// maxNetworkRetries bounds the cenkalti/backoff retry loop for
	// transport-level send failures.
	maxNetworkRetries = 6

	networkRetryBaseInterval = 100 * time.Millisecond
	networkRetryMaxInterval  = 10 * time.Second

	confirmPollInterval = 500 * time.Millisecond
)

// confirmTimeout and newClock are package-level so tests can shrink the
// deadline and inject a clockwork fake clock instead of sleeping in real
// time; production code never overrides either.
var (
	confirmTimeout = chaincontext.DefaultConfirmTimeout
	newClock       = func() clockwork.Clock { return clockwork.NewRealClock() }
)

// ApprovalFunc renders a batch's human-readable summary and returns whether
// the operator approved it. Returning false aborts the submission without
// mutating any on-chain or environment state.
type ApprovalFunc func(batch Batch) (bool, error)

// Confirmer is the narrow RPC surface Submit needs; chaincontext.RPCClient
// satisfies it.
type Confirmer = chaincontext.RPCClient

// Result is the outcome of submitting one batch.
type Result struct {
	Batch     Batch
	Signature solana.Signature
}

// Submit packs ops via Pack, then signs and sends each batch in order,
// gating on approve when the chain context requires it. It stops at the
// first failed or rejected batch: every prior batch in the returned slice
// was confirmed, everything from the failing batch onward was not
// attempted or not completed.
//
// Grounded on smartcontract/sdk/go/serviceability/executor.go's Executor:
// fetch blockhash, sign, send, poll for status, decode a typed program
// error out of a preflight failure's simulation logs.
func Submit(ctx context.Context, cc *chaincontext.Context, ops OperationList, approve ApprovalFunc) ([]Result, error) {
	batches, err := Pack(ops, cc.ComputeBudget())
	if err != nil {
		return nil, err
	}

	clock := newClock()
	var results []Result
	for _, batch := range batches {
		if cc.RequireApproval() && approve != nil {
			ok, err := approve(batch)
			if err != nil {
				return results, err
			}
			if !ok {
				return results, errs.New(errs.KindOperatorRejected, batch.Chain, "conductor.Submit", nil, "operator rejected batch %q", batchSummary(batch))
			}
		}

		sig, err := submitBatch(ctx, cc, batch, clock)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Batch: batch, Signature: sig})
	}
	return results, nil
}

func batchSummary(b Batch) string {
	names := make([]string, len(b.Operations))
	for i, op := range b.Operations {
		names[i] = op.Name
	}
	return strings.Join(names, ", ")
}

// submitBatch signs and sends a single batch, retrying on BlockhashNotFound
// with a fresh blockhash and on transport errors with exponential backoff,
// then polls for confirmation up to the chain context's confirm timeout.
func submitBatch(ctx context.Context, cc *chaincontext.Context, batch Batch, clock clockwork.Clock) (solana.Signature, error) {
	provider, err := cc.Provider(batch.Chain)
	if err != nil {
		return solana.Signature{}, err
	}
	payer := cc.Payer()
	if !payer.CanSign() {
		return solana.Signature{}, errs.New(errs.KindNoSigner, batch.Chain, "conductor.submitBatch", nil, "batch %q requires a signing payer", batchSummary(batch))
	}

	var sig solana.Signature
	for attempt := 0; attempt <= maxBlockhashRetries; attempt++ {
		bh, err := provider.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
		if err != nil {
			return solana.Signature{}, errs.New(errs.KindRpcError, batch.Chain, "conductor.submitBatch", err, "failed to fetch latest blockhash")
		}

		tx, err := solana.NewTransaction(batch.Instructions, bh.Value.Blockhash, solana.TransactionPayer(payer.PublicKey))
		if err != nil {
			return solana.Signature{}, errs.New(errs.KindProgramError, batch.Chain, "conductor.submitBatch", err, "failed to build transaction for batch %q", batchSummary(batch))
		}
		if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(payer.PublicKey) {
				return payer.PrivateKey
			}
			return nil
		}); err != nil {
			return solana.Signature{}, errs.New(errs.KindNoSigner, batch.Chain, "conductor.submitBatch", err, "failed to sign batch %q", batchSummary(batch))
		}

		sig, err = sendWithRetry(ctx, provider, tx)
		if err == nil {
			break
		}

		if isBlockhashNotFound(err) && attempt < maxBlockhashRetries {
			continue
		}
		if isProgramFailure(err) {
			return solana.Signature{}, errs.New(errs.KindProgramError, batch.Chain, "conductor.submitBatch", err, "program rejected batch %q: %s", batchSummary(batch), err.Error())
		}
		return solana.Signature{}, errs.New(errs.KindRpcError, batch.Chain, "conductor.submitBatch", err, "failed to submit batch %q", batchSummary(batch))
	}

	if err := confirmSignature(ctx, provider, sig, clock); err != nil {
		return sig, errs.New(errs.KindConfirmTimeout, batch.Chain, "conductor.submitBatch", err, "batch %q did not confirm within the deadline", batchSummary(batch))
	}
	return sig, nil
}

// sendWithRetry sends tx, retrying transport-level errors with exponential
// backoff; a preflight program failure is never retried.
func sendWithRetry(ctx context.Context, provider Confirmer, tx *solana.Transaction) (solana.Signature, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = networkRetryBaseInterval
	bo.MaxInterval = networkRetryMaxInterval
	bo.Multiplier = 2
	bounded := backoff.WithMaxRetries(bo, maxNetworkRetries)

	var sig solana.Signature
	op := func() error {
		var sendErr error
		sig, sendErr = provider.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: solanarpc.CommitmentConfirmed,
		})
		if sendErr == nil {
			return nil
		}
		if isProgramFailure(sendErr) || isBlockhashNotFound(sendErr) {
			return backoff.Permanent(sendErr)
		}
		return sendErr
	}

	if err := backoff.Retry(op, bounded); err != nil {
		if perm, ok := err.(*backoff.PermanentError); ok {
			return solana.Signature{}, perm.Err
		}
		return solana.Signature{}, err
	}
	return sig, nil
}

func isBlockhashNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BlockhashNotFound")
}

// isProgramFailure reports whether err is a preflight simulation failure
// carrying an on-chain program error (as opposed to a transport error),
// mirroring the teacher's parseFailingInstructionIndex classification.
func isProgramFailure(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr *solanarpc.JsonRpcError
	if errors.As(err, &rpcErr) {
		return true
	}
	return strings.Contains(err.Error(), "custom program error") || strings.Contains(err.Error(), "Program failed to complete")
}

// confirmSignature polls GetSignatureStatuses every confirmPollInterval
// until the transaction reaches at least "confirmed" commitment or the
// chain context's default confirm timeout elapses.
func confirmSignature(ctx context.Context, provider Confirmer, sig solana.Signature, clock clockwork.Clock) error {
	deadline := clock.Now().Add(confirmTimeout)
	for {
		statuses, err := provider.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			st := statuses.Value[0]
			if st.Err != nil {
				return errors.New("transaction failed on-chain")
			}
			if st.ConfirmationStatus == solanarpc.ConfirmationStatusConfirmed || st.ConfirmationStatus == solanarpc.ConfirmationStatusFinalized {
				return nil
			}
		}
		if clock.Now().After(deadline) {
			return errors.New("confirmation deadline exceeded")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(confirmPollInterval):
		}
	}
}
