// Package inspector implements the Query/Inspector (C8): read-only decode
// and presentation of on-chain object state, in both a human-readable table
// form and a --json machine-readable form.
//
// Grounded on the teacher's controlplane/telemetry/cmd/telemetry-data's
// tablewriter.NewWriter conventions (header alignment, row lines,
// multi-line headers), reused here for protocol object summaries instead
// of RTT statistics.
package inspector

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/olekukonko/tablewriter"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

// MailboxSummary is the inspector's view of one chain's mailbox, the
// `mailbox inspect` operation's result shape.
type MailboxSummary struct {
	Chain          string `json:"chain"`
	ProgramID      string `json:"programId"`
	LocalDomain    uint32 `json:"localDomain"`
	DefaultISM     string `json:"defaultIsm"`
	Nonce          uint64 `json:"nonce"`
	MaxProtocolFee uint64 `json:"maxProtocolFee"`
	ProtocolFee    uint64 `json:"protocolFee"`
	Owner          string `json:"owner"`
}

// InspectMailbox reads and decodes a mailbox authority account.
func InspectMailbox(ctx context.Context, cc *chaincontext.Context, chain string, mailboxProgramID solana.PublicKey) (MailboxSummary, error) {
	authority, _, err := sealevel.DeriveMailboxAuthority(mailboxProgramID)
	if err != nil {
		return MailboxSummary{}, err
	}
	provider, err := cc.Provider(chain)
	if err != nil {
		return MailboxSummary{}, err
	}
	info, err := provider.GetAccountInfo(ctx, authority)
	if err != nil {
		return MailboxSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectMailbox", err, "failed to read mailbox account")
	}
	if info == nil || info.Value == nil {
		return MailboxSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectMailbox", nil, "mailbox %s has not been initialized on %s", mailboxProgramID, chain)
	}
	state, err := protocol.DecodeMailboxState(info.Value.Data.GetBinary())
	if err != nil {
		return MailboxSummary{}, errs.New(errs.KindProgramError, chain, "inspector.InspectMailbox", err, "failed to decode mailbox state")
	}
	return MailboxSummary{
		Chain:          chain,
		ProgramID:      mailboxProgramID.String(),
		LocalDomain:    state.LocalDomain,
		DefaultISM:     base58.Encode(state.DefaultISM[:]),
		Nonce:          state.Nonce,
		MaxProtocolFee: state.MaxProtocolFee,
		ProtocolFee:    state.ProtocolFee,
		Owner:          base58.Encode(state.Owner[:]),
	}, nil
}

// Delivered reports whether a message has been processed by a mailbox, per
// §4.8/§8 scenario S4: presence of the processed-message marker PDA is the
// only signal used, never a heuristic over transaction history.
func Delivered(ctx context.Context, cc *chaincontext.Context, chain string, mailboxProgramID solana.PublicKey, messageID [32]byte) (bool, error) {
	marker, _, err := sealevel.DeriveProcessedMessagePDA(mailboxProgramID, messageID)
	if err != nil {
		return false, err
	}
	provider, err := cc.Provider(chain)
	if err != nil {
		return false, err
	}
	info, err := provider.GetAccountInfo(ctx, marker)
	if err != nil {
		return false, errs.New(errs.KindRpcError, chain, "inspector.Delivered", err, "failed to read processed-message marker")
	}
	return info != nil && info.Value != nil, nil
}

// IGPSummary is the inspector's view of one IGP account.
type IGPSummary struct {
	Chain       string `json:"chain"`
	ProgramID   string `json:"programId"`
	Account     string `json:"account"`
	Owner       string `json:"owner"`
	Beneficiary string `json:"beneficiary"`
}

// InspectIGP reads and decodes an IGP account.
func InspectIGP(ctx context.Context, cc *chaincontext.Context, chain string, igpProgramID, igpAccount solana.PublicKey) (IGPSummary, error) {
	provider, err := cc.Provider(chain)
	if err != nil {
		return IGPSummary{}, err
	}
	info, err := provider.GetAccountInfo(ctx, igpAccount)
	if err != nil {
		return IGPSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectIGP", err, "failed to read IGP account %s", igpAccount)
	}
	if info == nil || info.Value == nil {
		return IGPSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectIGP", nil, "IGP account %s has not been initialized on %s", igpAccount, chain)
	}
	state, err := protocol.DecodeIGPAccountState(info.Value.Data.GetBinary())
	if err != nil {
		return IGPSummary{}, errs.New(errs.KindProgramError, chain, "inspector.InspectIGP", err, "failed to decode IGP account state")
	}
	return IGPSummary{
		Chain:       chain,
		ProgramID:   igpProgramID.String(),
		Account:     igpAccount.String(),
		Owner:       base58.Encode(state.Owner[:]),
		Beneficiary: base58.Encode(state.Beneficiary[:]),
	}, nil
}

// MultisigISMSummary is the inspector's view of one remote domain's
// multisig ISM configuration.
type MultisigISMSummary struct {
	Chain        string   `json:"chain"`
	ProgramID    string   `json:"programId"`
	RemoteDomain uint32   `json:"remoteDomain"`
	Validators   []string `json:"validators"` // 0x-prefixed hex addresses
	Threshold    uint8    `json:"threshold"`
}

// InspectMultisigISM reads and decodes a multisig ISM's per-domain
// validator set and threshold.
func InspectMultisigISM(ctx context.Context, cc *chaincontext.Context, chain string, ismProgramID solana.PublicKey, remoteDomain uint32) (MultisigISMSummary, error) {
	domainData, _, err := sealevel.DeriveMultisigISMDomainData(ismProgramID, remoteDomain)
	if err != nil {
		return MultisigISMSummary{}, err
	}
	provider, err := cc.Provider(chain)
	if err != nil {
		return MultisigISMSummary{}, err
	}
	info, err := provider.GetAccountInfo(ctx, domainData)
	if err != nil {
		return MultisigISMSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectMultisigISM", err, "failed to read domain data account")
	}
	if info == nil || info.Value == nil {
		return MultisigISMSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectMultisigISM", nil, "no validator set configured for remote domain %d on %s", remoteDomain, chain)
	}
	state, err := protocol.DecodeMultisigISMDomainDataState(info.Value.Data.GetBinary())
	if err != nil {
		return MultisigISMSummary{}, errs.New(errs.KindProgramError, chain, "inspector.InspectMultisigISM", err, "failed to decode domain data")
	}
	validators := make([]string, len(state.Validators))
	for i, v := range state.Validators {
		validators[i] = "0x" + hex.EncodeToString(v[:])
	}
	return MultisigISMSummary{
		Chain:        chain,
		ProgramID:    ismProgramID.String(),
		RemoteDomain: state.RemoteDomain,
		Validators:   validators,
		Threshold:    state.Threshold,
	}, nil
}

// ValidatorSummary is the inspector's view of one announced validator.
type ValidatorSummary struct {
	Chain           string `json:"chain"`
	Validator       string `json:"validator"`
	StorageLocation string `json:"storageLocation"`
}

// Validator reads back a single validator's announced storage location.
func Validator(ctx context.Context, cc *chaincontext.Context, chain string, vaProgramID solana.PublicKey, validator [20]byte) (ValidatorSummary, error) {
	entry, _, err := sealevel.DeriveValidatorAnnounceEntry(vaProgramID, validator)
	if err != nil {
		return ValidatorSummary{}, err
	}
	provider, err := cc.Provider(chain)
	if err != nil {
		return ValidatorSummary{}, err
	}
	info, err := provider.GetAccountInfo(ctx, entry)
	if err != nil {
		return ValidatorSummary{}, errs.New(errs.KindRpcError, chain, "inspector.Validator", err, "failed to read validator announce entry")
	}
	if info == nil || info.Value == nil {
		return ValidatorSummary{}, errs.New(errs.KindRpcError, chain, "inspector.Validator", nil, "validator %s has not announced on %s", hex.EncodeToString(validator[:]), chain)
	}
	state, err := protocol.DecodeValidatorAnnounceEntryState(info.Value.Data.GetBinary())
	if err != nil {
		return ValidatorSummary{}, errs.New(errs.KindProgramError, chain, "inspector.Validator", err, "failed to decode validator announce entry")
	}
	return ValidatorSummary{
		Chain:           chain,
		Validator:       "0x" + hex.EncodeToString(state.Validator[:]),
		StorageLocation: state.StorageLocation,
	}, nil
}

// WarpTokenInfo is the inspector's view of a deployed warp route's token
// spec and enrolled router set.
type WarpTokenInfo struct {
	Chain     string            `json:"chain"`
	ProgramID string            `json:"programId"`
	Decimals  uint8             `json:"decimals"`
	Routers   map[string]string `json:"routers"` // remote domain (decimal string) -> router address
}

// WarpTokenInfoForChain decodes a warp route storage account.
func WarpTokenInfoForChain(ctx context.Context, cc *chaincontext.Context, chain string, warpProgramID solana.PublicKey) (WarpTokenInfo, error) {
	storage, _, err := sealevel.DeriveWarpRouteStorage(warpProgramID)
	if err != nil {
		return WarpTokenInfo{}, err
	}
	provider, err := cc.Provider(chain)
	if err != nil {
		return WarpTokenInfo{}, err
	}
	info, err := provider.GetAccountInfo(ctx, storage)
	if err != nil {
		return WarpTokenInfo{}, errs.New(errs.KindRpcError, chain, "inspector.WarpTokenInfoForChain", err, "failed to read warp route storage")
	}
	if info == nil || info.Value == nil {
		return WarpTokenInfo{}, errs.New(errs.KindRpcError, chain, "inspector.WarpTokenInfoForChain", nil, "warp route %s has not been initialized on %s", warpProgramID, chain)
	}
	state, err := protocol.DecodeWarpRouteStorageState(info.Value.Data.GetBinary())
	if err != nil {
		return WarpTokenInfo{}, errs.New(errs.KindProgramError, chain, "inspector.WarpTokenInfoForChain", err, "failed to decode warp route storage")
	}

	routers := make(map[string]string, len(state.Routers))
	for domain, router := range state.Routers {
		routers[fmt.Sprintf("%d", domain)] = base58.Encode(router[:])
	}
	return WarpTokenInfo{
		Chain:     chain,
		ProgramID: warpProgramID.String(),
		Decimals:  state.Decimals,
		Routers:   routers,
	}, nil
}

// HelloWorldSummary is the inspector's view of a deployed HelloWorld
// example router: its wired Mailbox/IGP programs and enrolled router set.
type HelloWorldSummary struct {
	Chain            string            `json:"chain"`
	ProgramID        string            `json:"programId"`
	MailboxProgramID string            `json:"mailboxProgramId"`
	IGPProgramID     string            `json:"igpProgramId"`
	Routers          map[string]string `json:"routers"` // remote domain (decimal string) -> router address
}

// InspectHelloWorld decodes a HelloWorld example router's storage account.
func InspectHelloWorld(ctx context.Context, cc *chaincontext.Context, chain string, helloWorldProgramID solana.PublicKey) (HelloWorldSummary, error) {
	storage, _, err := sealevel.DeriveHelloWorldStorage(helloWorldProgramID)
	if err != nil {
		return HelloWorldSummary{}, err
	}
	provider, err := cc.Provider(chain)
	if err != nil {
		return HelloWorldSummary{}, err
	}
	info, err := provider.GetAccountInfo(ctx, storage)
	if err != nil {
		return HelloWorldSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectHelloWorld", err, "failed to read hello-world storage")
	}
	if info == nil || info.Value == nil {
		return HelloWorldSummary{}, errs.New(errs.KindRpcError, chain, "inspector.InspectHelloWorld", nil, "hello-world router %s has not been initialized on %s", helloWorldProgramID, chain)
	}
	state, err := protocol.DecodeHelloWorldStorageState(info.Value.Data.GetBinary())
	if err != nil {
		return HelloWorldSummary{}, errs.New(errs.KindProgramError, chain, "inspector.InspectHelloWorld", err, "failed to decode hello-world storage")
	}

	routers := make(map[string]string, len(state.Routers))
	for domain, router := range state.Routers {
		routers[fmt.Sprintf("%d", domain)] = base58.Encode(router[:])
	}
	return HelloWorldSummary{
		Chain:            chain,
		ProgramID:        helloWorldProgramID.String(),
		MailboxProgramID: base58.Encode(state.MailboxProgramID[:]),
		IGPProgramID:     base58.Encode(state.IGPProgramID[:]),
		Routers:          routers,
	}, nil
}

// SquadsSummary is the best-effort result of inspecting an owner account to
// see whether it looks like a Squads multisig PDA.
type SquadsSummary struct {
	Chain                   string `json:"chain"`
	Owner                   string `json:"owner"`
	OwnerProgram            string `json:"ownerProgram"`
	LooksLikeSquadsMultisig bool   `json:"looksLikeSquadsMultisig"`
	Threshold               uint16 `json:"threshold,omitempty"`
	MemberCount             uint32 `json:"memberCount,omitempty"`
}

// squadsMultisigProgramID is the well-known Squads V4 program deployed on
// Solana mainnet/devnet/testnet; verification only recognizes accounts
// owned by this program.
var squadsMultisigProgramID = solana.MustPublicKeyFromBase58("SQDS4ep65T869zMMBKyuUq6aD6EgTu8psMjkvj52pCf")

// VerifySquadsMultisig reports whether owner is owned by the Squads
// multisig program and, if so, decodes the threshold and member count from
// the account layout that program exposes (an 8-byte anchor discriminator,
// a 32-byte create-key, a little-endian u16 threshold, then a u32-prefixed
// member array). It never asserts more than that: an account owned by a
// different program is reported as "not a Squads multisig", not an error.
func VerifySquadsMultisig(ctx context.Context, cc *chaincontext.Context, chain string, owner solana.PublicKey) (SquadsSummary, error) {
	provider, err := cc.Provider(chain)
	if err != nil {
		return SquadsSummary{}, err
	}
	info, err := provider.GetAccountInfo(ctx, owner)
	if err != nil {
		return SquadsSummary{}, errs.New(errs.KindRpcError, chain, "inspector.VerifySquadsMultisig", err, "failed to read owner account %s", owner)
	}
	if info == nil || info.Value == nil {
		return SquadsSummary{}, errs.New(errs.KindRpcError, chain, "inspector.VerifySquadsMultisig", nil, "owner account %s does not exist on %s", owner, chain)
	}

	summary := SquadsSummary{Chain: chain, Owner: owner.String(), OwnerProgram: info.Value.Owner.String()}
	if !info.Value.Owner.Equals(squadsMultisigProgramID) {
		return summary, nil
	}

	data := info.Value.Data.GetBinary()
	const headerLen = 8 + 32
	if len(data) < headerLen+2+4 {
		return summary, nil // owned by the program but too short to be a multisig account
	}
	summary.LooksLikeSquadsMultisig = true
	summary.Threshold = uint16(data[headerLen]) | uint16(data[headerLen+1])<<8
	memberCountOffset := headerLen + 2
	summary.MemberCount = uint32(data[memberCountOffset]) | uint32(data[memberCountOffset+1])<<8 |
		uint32(data[memberCountOffset+2])<<16 | uint32(data[memberCountOffset+3])<<24
	return summary, nil
}

// RenderJSON writes v as indented JSON, the --json output mode shared by
// every inspector command.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderMailboxTable writes a human-readable table of mailbox summaries,
// one row per chain, sorted by chain name for deterministic output.
func RenderMailboxTable(w io.Writer, summaries []MailboxSummary) {
	sorted := make([]MailboxSummary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Chain < sorted[j].Chain })

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetHeader([]string{"Chain", "Program ID", "Domain", "Default ISM", "Nonce", "Owner"})

	for _, s := range sorted {
		table.Append([]string{
			s.Chain, s.ProgramID, fmt.Sprintf("%d", s.LocalDomain), s.DefaultISM, fmt.Sprintf("%d", s.Nonce), s.Owner,
		})
	}
	table.Render()
}
