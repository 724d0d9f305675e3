// Package protocol builds borsh-encoded instructions for every Hyperlane
// Sealevel program object (mailbox, IGP, multisig ISM, test ISM, warp
// route, validator announce, hello world), decodes their account state,
// and plans idempotent conductor.Operation sets for the deploy, enroll,
// and configure verbs of the command surface.
//
// Grounded on the teacher repo's dzsdk.SerializeInitializeDzLatencySamples
// pattern (internal Go struct mirroring the on-chain layout, one
// discriminator byte prefix, near/borsh-go for the rest).
package protocol

// MailboxInstruction enumerates the Mailbox program's instruction
// discriminators.
type MailboxInstruction uint8

const (
	MailboxInit MailboxInstruction = iota
	MailboxSetDefaultISM
	MailboxTransferOwnership
	MailboxDispatch
	MailboxSetDefaultIGP
)

// IGPInstruction enumerates the Interchain Gas Paymaster program's
// instruction discriminators.
type IGPInstruction uint8

const (
	IGPInit IGPInstruction = iota
	IGPInitOverheadIGP
	IGPSetGasOracleConfigs
	IGPSetDestinationGasOverhead
	IGPPayForGas
	IGPClaim
	IGPTransferOwnership
)

// MultisigISMInstruction enumerates the Multisig ISM program's instruction
// discriminators.
type MultisigISMInstruction uint8

const (
	MultisigISMInitialize MultisigISMInstruction = iota
	MultisigISMSetValidatorsAndThreshold
	MultisigISMTransferOwnership
)

// TestISMInstruction enumerates the test ISM program's instruction
// discriminators.
type TestISMInstruction uint8

const (
	TestISMInit TestISMInstruction = iota
	TestISMSetAccept
)

// WarpRouteInstruction enumerates the warp route program's instruction
// discriminators. The same discriminator space is shared by the native,
// synthetic, and collateral variants; only InitNative/InitSynthetic/
// InitCollateral differ in their account and argument layout.
type WarpRouteInstruction uint8

const (
	WarpRouteInitNative WarpRouteInstruction = iota
	WarpRouteInitSynthetic
	WarpRouteInitCollateral
	WarpRouteEnrollRemoteRouter
	WarpRouteSetDestinationGas
	WarpRouteTransferRemote
	WarpRouteTransferRemoteMemo
	WarpRouteTransferOwnership
)

// ValidatorAnnounceInstruction enumerates the validator announce program's
// instruction discriminators.
type ValidatorAnnounceInstruction uint8

const (
	ValidatorAnnounceInit ValidatorAnnounceInstruction = iota
	ValidatorAnnounceAnnounce
)

// HelloWorldInstruction enumerates the example HelloWorld app's
// instruction discriminators.
type HelloWorldInstruction uint8

const (
	HelloWorldInit HelloWorldInstruction = iota
	HelloWorldEnrollRemoteRouter
	HelloWorldSendHelloWorld
)
