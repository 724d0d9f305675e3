// Package sealevel implements the Address Deriver: a pure-function module
// computing Program-Derived Addresses (PDAs) for every Hyperlane Sealevel
// protocol object, following the seed schedule Rust programs use on-chain.
//
// Grounded on smartcontract/sdk/go/pda.go and smartcontract/sdk/go/serviceability/pda.go
// in the teacher repo, which define one Derive/Get function per seed schedule
// and always return (PublicKey, bump, error) from solana.FindProgramAddress.
package sealevel

// Seed labels, matching the on-chain program seed schedules from the
// component design's PDA table. Kept as named constants (not inlined
// strings) so every caller site documents which object it derives.
const (
	seedMailboxAuthority         = "mailbox_authority"
	seedMailboxDispatchAuthority = "mailbox_dispatch_authority"
	seedMailboxProcessedMessage  = "mailbox_processed_message"

	seedHyperlaneIGP      = "hyperlane_igp"
	seedIGPProgramData    = "program_data"
	seedIGPAccount        = "igp"
	seedIGPOverheadIGP    = "overhead_igp"

	seedHyperlaneToken = "hyperlane_token"
	seedTokenStorage   = "storage"
	seedTokenATAPayer  = "ata_payer"

	seedValidatorAnnounce = "hyperlane_validator_announce"
	seedVAStorage         = "storage"

	seedMultisigISM = "multisig_ism_message_id"
	seedMultisigISMAccessControl = "access_control"
	seedMultisigISMDomainData    = "domain_data"

	seedTestISM = "test_ism"

	seedHelloWorld         = "hello_world"
	seedHelloWorldStorage  = "hello_world_storage"
)
