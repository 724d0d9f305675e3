package protocol

import (
	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// encode writes a discriminator-prefixed borsh payload, mirroring the
// teacher's instructionData-struct-plus-borsh.Serialize convention: a
// leading discriminator byte followed by the borsh encoding of the
// argument struct.
func encode(discriminator uint8, body any) ([]byte, error) {
	head, err := borsh.Serialize(struct{ Discriminator uint8 }{discriminator})
	if err != nil {
		return nil, err
	}
	if body == nil {
		return head, nil
	}
	tail, err := borsh.Serialize(body)
	if err != nil {
		return nil, err
	}
	return append(head, tail...), nil
}

// --- Mailbox -----------------------------------------------------------

type MailboxInitArgs struct {
	LocalDomain    uint32
	DefaultISM     solana.PublicKey
	MaxProtocolFee uint64
}

func BuildMailboxInitInstruction(programID, authorityPDA, payer solana.PublicKey, args MailboxInitArgs) (solana.Instruction, error) {
	data, err := encode(uint8(MailboxInit), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(authorityPDA, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type MailboxSetDefaultISMArgs struct {
	NewDefaultISM solana.PublicKey
}

func BuildMailboxSetDefaultISMInstruction(programID, authorityPDA, owner solana.PublicKey, args MailboxSetDefaultISMArgs) (solana.Instruction, error) {
	data, err := encode(uint8(MailboxSetDefaultISM), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(authorityPDA, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type MailboxTransferOwnershipArgs struct {
	NewOwner solana.PublicKey
}

func BuildMailboxTransferOwnershipInstruction(programID, authorityPDA, owner solana.PublicKey, args MailboxTransferOwnershipArgs) (solana.Instruction, error) {
	data, err := encode(uint8(MailboxTransferOwnership), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(authorityPDA, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type MailboxDispatchArgs struct {
	DestinationDomain uint32
	Recipient         [32]byte
	MessageBody       []byte
}

func BuildMailboxDispatchInstruction(programID, authorityPDA, dispatchAuthority, payer solana.PublicKey, args MailboxDispatchArgs) (solana.Instruction, error) {
	data, err := encode(uint8(MailboxDispatch), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(authorityPDA, true, false),
		solana.NewAccountMeta(dispatchAuthority, false, true),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// --- Interchain Gas Paymaster -------------------------------------------

type IGPInitArgs struct {
	Salt        [32]byte
	Owner       solana.PublicKey
	Beneficiary solana.PublicKey
}

func BuildIGPInitInstruction(programID, igpAccount, programData, payer solana.PublicKey, args IGPInitArgs) (solana.Instruction, error) {
	data, err := encode(uint8(IGPInit), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(programData, true, false),
		solana.NewAccountMeta(igpAccount, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type RemoteGasOracleConfig struct {
	RemoteDomain      uint32
	TokenExchangeRate [16]byte // u128 little-endian
	GasPrice          [16]byte
	TokenDecimals     uint8
}

type IGPSetGasOracleConfigsArgs struct {
	Configs []RemoteGasOracleConfig
}

func BuildIGPSetGasOracleConfigsInstruction(programID, igpAccount, owner solana.PublicKey, args IGPSetGasOracleConfigsArgs) (solana.Instruction, error) {
	data, err := encode(uint8(IGPSetGasOracleConfigs), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(igpAccount, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type IGPSetDestinationGasOverheadArgs struct {
	RemoteDomain uint32
	GasOverhead  uint64
}

func BuildIGPSetDestinationGasOverheadInstruction(programID, overheadIGPAccount, owner solana.PublicKey, args IGPSetDestinationGasOverheadArgs) (solana.Instruction, error) {
	data, err := encode(uint8(IGPSetDestinationGasOverhead), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(overheadIGPAccount, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type IGPPayForGasArgs struct {
	MessageID    [32]byte
	RemoteDomain uint32
	GasAmount    uint64
}

func BuildIGPPayForGasInstruction(programID, igpAccount, payer solana.PublicKey, args IGPPayForGasArgs) (solana.Instruction, error) {
	data, err := encode(uint8(IGPPayForGas), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(igpAccount, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type IGPClaimArgs struct {
	Amount uint64
}

func BuildIGPClaimInstruction(programID, igpAccount, beneficiary solana.PublicKey, args IGPClaimArgs) (solana.Instruction, error) {
	data, err := encode(uint8(IGPClaim), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(igpAccount, true, false),
		solana.NewAccountMeta(beneficiary, true, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// --- Multisig ISM --------------------------------------------------------

type MultisigISMInitializeArgs struct {
	Owner solana.PublicKey
}

func BuildMultisigISMInitializeInstruction(programID, accessControlPDA, payer solana.PublicKey, args MultisigISMInitializeArgs) (solana.Instruction, error) {
	data, err := encode(uint8(MultisigISMInitialize), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(accessControlPDA, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type MultisigISMSetValidatorsAndThresholdArgs struct {
	RemoteDomain uint32
	Validators   [][20]byte
	Threshold    uint8
}

func BuildMultisigISMSetValidatorsAndThresholdInstruction(programID, domainDataPDA, accessControlPDA, owner, payer solana.PublicKey, args MultisigISMSetValidatorsAndThresholdArgs) (solana.Instruction, error) {
	data, err := encode(uint8(MultisigISMSetValidatorsAndThreshold), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(domainDataPDA, true, false),
		solana.NewAccountMeta(accessControlPDA, false, false),
		solana.NewAccountMeta(owner, false, true),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// --- Test ISM -------------------------------------------------------------

func BuildTestISMInitInstruction(programID, storagePDA, payer solana.PublicKey) (solana.Instruction, error) {
	data, err := encode(uint8(TestISMInit), nil)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type TestISMSetAcceptArgs struct {
	Accept bool
}

func BuildTestISMSetAcceptInstruction(programID, storagePDA, owner solana.PublicKey, args TestISMSetAcceptArgs) (solana.Instruction, error) {
	data, err := encode(uint8(TestISMSetAccept), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// --- Warp route ------------------------------------------------------------

type WarpRouteInitNativeArgs struct {
	MailboxProgramID solana.PublicKey
	Decimals         uint8
}

func BuildWarpRouteInitNativeInstruction(programID, storagePDA, payer solana.PublicKey, args WarpRouteInitNativeArgs) (solana.Instruction, error) {
	data, err := encode(uint8(WarpRouteInitNative), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type WarpRouteInitSyntheticArgs struct {
	MailboxProgramID solana.PublicKey
	Decimals         uint8
	Name             string
	Symbol           string
}

func BuildWarpRouteInitSyntheticInstruction(programID, storagePDA, mint, payer solana.PublicKey, args WarpRouteInitSyntheticArgs) (solana.Instruction, error) {
	data, err := encode(uint8(WarpRouteInitSynthetic), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(mint, true, true),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type WarpRouteInitCollateralArgs struct {
	MailboxProgramID solana.PublicKey
	CollateralMint   solana.PublicKey
}

func BuildWarpRouteInitCollateralInstruction(programID, storagePDA, ataPayer, collateralVault, payer solana.PublicKey, args WarpRouteInitCollateralArgs) (solana.Instruction, error) {
	data, err := encode(uint8(WarpRouteInitCollateral), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(ataPayer, true, false),
		solana.NewAccountMeta(collateralVault, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type EnrollRemoteRouterArgs struct {
	RemoteDomain uint32
	Router       [32]byte
}

func BuildWarpRouteEnrollRemoteRouterInstruction(programID, storagePDA, owner solana.PublicKey, args EnrollRemoteRouterArgs) (solana.Instruction, error) {
	data, err := encode(uint8(WarpRouteEnrollRemoteRouter), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type WarpRouteSetDestinationGasArgs struct {
	RemoteDomain uint32
	GasAmount    uint64
}

func BuildWarpRouteSetDestinationGasInstruction(programID, storagePDA, owner solana.PublicKey, args WarpRouteSetDestinationGasArgs) (solana.Instruction, error) {
	data, err := encode(uint8(WarpRouteSetDestinationGas), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type WarpRouteTransferRemoteArgs struct {
	DestinationDomain uint32
	Recipient         [32]byte
	Amount            uint64
}

func BuildWarpRouteTransferRemoteInstruction(programID, storagePDA, sender, mailboxProgramID solana.PublicKey, args WarpRouteTransferRemoteArgs) (solana.Instruction, error) {
	data, err := encode(uint8(WarpRouteTransferRemote), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(sender, true, true),
		solana.NewAccountMeta(mailboxProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type WarpRouteTransferRemoteMemoArgs struct {
	DestinationDomain uint32
	Recipient         [32]byte
	Amount            uint64
	Memo              string
}

// BuildWarpRouteTransferRemoteMemoInstruction never filters or rejects an
// empty Memo: on-chain, an empty memo is a valid, zero-length memo field
// like any other.
func BuildWarpRouteTransferRemoteMemoInstruction(programID, storagePDA, sender, mailboxProgramID solana.PublicKey, args WarpRouteTransferRemoteMemoArgs) (solana.Instruction, error) {
	data, err := encode(uint8(WarpRouteTransferRemoteMemo), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(sender, true, true),
		solana.NewAccountMeta(mailboxProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// --- Validator announce -----------------------------------------------------

type ValidatorAnnounceInitArgs struct {
	MailboxProgramID solana.PublicKey
	LocalDomain      uint32
}

func BuildValidatorAnnounceInitInstruction(programID, payer solana.PublicKey, args ValidatorAnnounceInitArgs) (solana.Instruction, error) {
	data, err := encode(uint8(ValidatorAnnounceInit), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type ValidatorAnnounceAnnounceArgs struct {
	Validator         [20]byte
	StorageLocation   string
	Signature         [65]byte
}

func BuildValidatorAnnounceAnnounceInstruction(programID, entryPDA, payer solana.PublicKey, args ValidatorAnnounceAnnounceArgs) (solana.Instruction, error) {
	data, err := encode(uint8(ValidatorAnnounceAnnounce), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(entryPDA, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// --- HelloWorld example app -------------------------------------------------

type HelloWorldInitArgs struct {
	MailboxProgramID solana.PublicKey
	IGPProgramID      solana.PublicKey
}

func BuildHelloWorldInitInstruction(programID, storagePDA, payer solana.PublicKey, args HelloWorldInitArgs) (solana.Instruction, error) {
	data, err := encode(uint8(HelloWorldInit), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

func BuildHelloWorldEnrollRemoteRouterInstruction(programID, storagePDA, owner solana.PublicKey, args EnrollRemoteRouterArgs) (solana.Instruction, error) {
	data, err := encode(uint8(HelloWorldEnrollRemoteRouter), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

type HelloWorldSendArgs struct {
	DestinationDomain uint32
	Message           string
}

func BuildHelloWorldSendInstruction(programID, storagePDA, sender, mailboxProgramID solana.PublicKey, args HelloWorldSendArgs) (solana.Instruction, error) {
	data, err := encode(uint8(HelloWorldSendHelloWorld), args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(storagePDA, true, false),
		solana.NewAccountMeta(sender, true, true),
		solana.NewAccountMeta(mailboxProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
