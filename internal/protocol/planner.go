package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/conductor"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

// exists reports whether an account has been initialized (non-empty data),
// the idempotence check every planner below uses before proposing an init
// operation, per the "deploy is safe to re-run" invariant. A missing
// account surfaces as solanarpc.ErrNotFound, not a Value==nil result.
func exists(ctx context.Context, cc *chaincontext.Context, chain string, account solana.PublicKey) (bool, error) {
	provider, err := cc.Provider(chain)
	if err != nil {
		return false, err
	}
	info, err := provider.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return info != nil && info.Value != nil && len(info.Value.Data.GetBinary()) > 0, nil
}

// PlanMailboxInit returns an init operation unless the mailbox authority
// PDA is already initialized, in which case it returns an empty plan —
// `core deploy` is safe to re-run.
func PlanMailboxInit(ctx context.Context, cc *chaincontext.Context, chain string, mailboxProgramID, defaultISM solana.PublicKey, maxProtocolFee uint64) (conductor.OperationList, error) {
	authority, _, err := sealevel.DeriveMailboxAuthority(mailboxProgramID)
	if err != nil {
		return nil, err
	}
	already, err := exists(ctx, cc, chain, authority)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}
	chainInfo, ok := cc.Chain(chain)
	if !ok {
		return nil, fmt.Errorf("unknown chain %q", chain)
	}

	payer := cc.Payer().PublicKey
	ix, err := BuildMailboxInitInstruction(mailboxProgramID, authority, payer, MailboxInitArgs{
		LocalDomain:    chainInfo.Domain,
		DefaultISM:     defaultISM,
		MaxProtocolFee: maxProtocolFee,
	})
	if err != nil {
		return nil, err
	}
	return conductor.OperationList{{
		Name:                  "mailbox.init." + chain,
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: 60_000,
		Summary:               fmt.Sprintf("initialize mailbox %s on %s", mailboxProgramID, chain),
	}}, nil
}

// PlanIGPInit returns an init operation for an IGP account unless one
// already exists at the derived (program, salt) PDA.
func PlanIGPInit(ctx context.Context, cc *chaincontext.Context, chain string, igpProgramID, owner, beneficiary solana.PublicKey, salt [32]byte) (conductor.OperationList, error) {
	programData, _, err := sealevel.DeriveIGPProgramData(igpProgramID)
	if err != nil {
		return nil, err
	}
	account, _, err := sealevel.DeriveIGPAccount(igpProgramID, salt)
	if err != nil {
		return nil, err
	}
	already, err := exists(ctx, cc, chain, account)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}

	payer := cc.Payer().PublicKey
	ix, err := BuildIGPInitInstruction(igpProgramID, account, programData, payer, IGPInitArgs{
		Salt:        salt,
		Owner:       owner,
		Beneficiary: beneficiary,
	})
	if err != nil {
		return nil, err
	}
	return conductor.OperationList{{
		Name:                  "igp.init." + chain,
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: 60_000,
		Summary:               fmt.Sprintf("initialize IGP account %s on %s", account, chain),
	}}, nil
}

// PlanMultisigISMInit returns an init operation for the access-control PDA
// unless it already exists.
func PlanMultisigISMInit(ctx context.Context, cc *chaincontext.Context, chain string, ismProgramID, owner solana.PublicKey) (conductor.OperationList, error) {
	accessControl, _, err := sealevel.DeriveMultisigISMAccessControl(ismProgramID)
	if err != nil {
		return nil, err
	}
	already, err := exists(ctx, cc, chain, accessControl)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}

	payer := cc.Payer().PublicKey
	ix, err := BuildMultisigISMInitializeInstruction(ismProgramID, accessControl, payer, MultisigISMInitializeArgs{Owner: owner})
	if err != nil {
		return nil, err
	}
	return conductor.OperationList{{
		Name:                  "multisig-ism.init." + chain,
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: 40_000,
		Summary:               fmt.Sprintf("initialize multisig ISM %s on %s", ismProgramID, chain),
	}}, nil
}

// PlanMultisigISMSetValidatorsAndThreshold diffs the desired validator set
// and threshold for one remote domain against on-chain state, returning an
// empty plan if they already match.
func PlanMultisigISMSetValidatorsAndThreshold(ctx context.Context, cc *chaincontext.Context, chain string, ismProgramID, owner solana.PublicKey, remoteDomain uint32, validators [][20]byte, threshold uint8) (conductor.OperationList, error) {
	domainData, _, err := sealevel.DeriveMultisigISMDomainData(ismProgramID, remoteDomain)
	if err != nil {
		return nil, err
	}
	accessControl, _, err := sealevel.DeriveMultisigISMAccessControl(ismProgramID)
	if err != nil {
		return nil, err
	}

	provider, err := cc.Provider(chain)
	if err != nil {
		return nil, err
	}
	info, err := provider.GetAccountInfo(ctx, domainData)
	if err == nil && info != nil && info.Value != nil {
		current, decodeErr := DecodeMultisigISMDomainDataState(info.Value.Data.GetBinary())
		if decodeErr == nil && validatorSetEqual(current.Validators, validators) && current.Threshold == threshold {
			return nil, nil
		}
	}

	payer := cc.Payer().PublicKey
	ix, err := BuildMultisigISMSetValidatorsAndThresholdInstruction(ismProgramID, domainData, accessControl, owner, payer, MultisigISMSetValidatorsAndThresholdArgs{
		RemoteDomain: remoteDomain,
		Validators:   validators,
		Threshold:    threshold,
	})
	if err != nil {
		return nil, err
	}
	return conductor.OperationList{{
		Name:                  fmt.Sprintf("multisig-ism.set-validators.%s.%d", chain, remoteDomain),
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: 50_000,
		Summary:               fmt.Sprintf("set %d validators (threshold %d) for remote domain %d", len(validators), threshold, remoteDomain),
	}}, nil
}

func validatorSetEqual(a, b [][20]byte) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[[20]byte]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			return false
		}
	}
	return true
}

// PlanTestISMInit returns an init operation for a test ISM unless its
// storage account already exists.
func PlanTestISMInit(ctx context.Context, cc *chaincontext.Context, chain string, testISMProgramID solana.PublicKey) (conductor.OperationList, error) {
	storage, _, err := sealevel.DeriveTestISMStorage(testISMProgramID)
	if err != nil {
		return nil, err
	}
	already, err := exists(ctx, cc, chain, storage)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}

	payer := cc.Payer().PublicKey
	ix, err := BuildTestISMInitInstruction(testISMProgramID, storage, payer)
	if err != nil {
		return nil, err
	}
	return conductor.OperationList{{
		Name:                  "test-ism.init." + chain,
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: 20_000,
		Summary:               fmt.Sprintf("initialize test ISM %s on %s", testISMProgramID, chain),
	}}, nil
}

// PlanValidatorAnnounceInit returns an init operation unless the validator
// announce program's storage has already been set up. Sealevel's validator
// announce program has no singleton storage account beyond the per-
// validator entries, so this plans the program-level init only when the
// caller indicates it has not yet run (tracked in the environment record,
// not derivable from a single PDA).
func PlanValidatorAnnounceInit(cc *chaincontext.Context, chain string, vaProgramID, mailboxProgramID solana.PublicKey, localDomain uint32, alreadyInitialized bool) (conductor.OperationList, error) {
	if alreadyInitialized {
		return nil, nil
	}
	payer := cc.Payer().PublicKey
	ix, err := BuildValidatorAnnounceInitInstruction(vaProgramID, payer, ValidatorAnnounceInitArgs{
		MailboxProgramID: mailboxProgramID,
		LocalDomain:      localDomain,
	})
	if err != nil {
		return nil, err
	}
	return conductor.OperationList{{
		Name:                  "validator-announce.init." + chain,
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: 30_000,
		Summary:               fmt.Sprintf("initialize validator announce %s on %s", vaProgramID, chain),
	}}, nil
}

// PlanHelloWorldInit returns an init operation for the example app unless
// its storage account already exists.
func PlanHelloWorldInit(ctx context.Context, cc *chaincontext.Context, chain string, helloWorldProgramID, mailboxProgramID, igpProgramID solana.PublicKey) (conductor.OperationList, error) {
	storage, _, err := sealevel.DeriveHelloWorldStorage(helloWorldProgramID)
	if err != nil {
		return nil, err
	}
	already, err := exists(ctx, cc, chain, storage)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}

	payer := cc.Payer().PublicKey
	ix, err := BuildHelloWorldInitInstruction(helloWorldProgramID, storage, payer, HelloWorldInitArgs{
		MailboxProgramID: mailboxProgramID,
		IGPProgramID:      igpProgramID,
	})
	if err != nil {
		return nil, err
	}
	return conductor.OperationList{{
		Name:                  "hello-world.init." + chain,
		Chain:                 chain,
		Instructions:          []solana.Instruction{ix},
		RequiredSigners:       []solana.PublicKey{payer},
		EstimatedComputeUnits: 40_000,
		Summary:               fmt.Sprintf("initialize hello-world %s on %s", helloWorldProgramID, chain),
	}}, nil
}
