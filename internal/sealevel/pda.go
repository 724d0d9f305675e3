package sealevel

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// DeriveMailboxAuthority derives the mailbox's authority PDA, seeded purely
// on the mailbox program ID. This is the account the program initializes on
// `mailbox init` and whose presence the initializer uses to decide whether
// initialization already happened (§4.5, idempotent mailbox init).
func DeriveMailboxAuthority(mailboxProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedMailboxAuthority),
		mailboxProgramID[:],
	}, mailboxProgramID)
}

// DeriveMailboxDispatchAuthority derives the PDA that signs dispatch CPIs
// made through the mailbox on behalf of caller programs (e.g. warp routes).
func DeriveMailboxDispatchAuthority(mailboxProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedMailboxDispatchAuthority),
		mailboxProgramID[:],
	}, mailboxProgramID)
}

// DeriveProcessedMessagePDA derives the marker account recording that a
// given message ID has been delivered. Its mere presence is what `mailbox
// delivered` checks (§4.8, §8 scenario S4) — never a heuristic.
func DeriveProcessedMessagePDA(mailboxProgramID solana.PublicKey, messageID [32]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedMailboxProcessedMessage),
		messageID[:],
	}, mailboxProgramID)
}

// DeriveIGPProgramData derives the IGP program's singleton program-data PDA.
func DeriveIGPProgramData(igpProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedHyperlaneIGP),
		[]byte(seedIGPProgramData),
	}, igpProgramID)
}

// DeriveIGPAccount derives the PDA for one (context, salt) IGP account. The
// salt is what lets the same logical IGP be re-derived deterministically
// across independent runs (§3, Salt).
func DeriveIGPAccount(igpProgramID solana.PublicKey, salt [32]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedHyperlaneIGP),
		[]byte(seedIGPAccount),
		salt[:],
	}, igpProgramID)
}

// DeriveOverheadIGPAccount derives the PDA for the overhead-IGP wrapper
// around a base IGP account, keyed by the same salt.
func DeriveOverheadIGPAccount(igpProgramID solana.PublicKey, salt [32]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedHyperlaneIGP),
		[]byte(seedIGPOverheadIGP),
		salt[:],
	}, igpProgramID)
}

// DeriveWarpRouteStorage derives the per-program warp route storage PDA
// holding the token spec, router set, and mint/ATA linkage.
func DeriveWarpRouteStorage(warpProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedHyperlaneToken),
		[]byte(seedTokenStorage),
	}, warpProgramID)
}

// DeriveATAPayer derives the PDA that pays rent for associated-token-account
// creation on behalf of warp route users.
func DeriveATAPayer(warpProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedHyperlaneToken),
		[]byte(seedTokenATAPayer),
	}, warpProgramID)
}

// DeriveValidatorAnnounceEntry derives the per-validator storage PDA
// recording announced storage locations.
func DeriveValidatorAnnounceEntry(vaProgramID solana.PublicKey, validator [20]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedValidatorAnnounce),
		[]byte(seedVAStorage),
		validator[:],
	}, vaProgramID)
}

// DeriveMultisigISMAccessControl derives the owner/access-control PDA for a
// multisig-ism-message-id program instance.
func DeriveMultisigISMAccessControl(ismProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedMultisigISM),
		[]byte(seedMultisigISMAccessControl),
	}, ismProgramID)
}

// DeriveMultisigISMDomainData derives the per-remote-domain validator
// set/threshold PDA for a multisig-ism-message-id program instance.
func DeriveMultisigISMDomainData(ismProgramID solana.PublicKey, remoteDomain uint32) (solana.PublicKey, uint8, error) {
	domainBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(domainBytes, remoteDomain)
	return solana.FindProgramAddress([][]byte{
		[]byte(seedMultisigISM),
		[]byte(seedMultisigISMDomainData),
		domainBytes,
	}, ismProgramID)
}

// DeriveTestISMStorage derives the single configuration PDA for a test ISM
// instance (its accept/reject flag).
func DeriveTestISMStorage(testISMProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedTestISM),
	}, testISMProgramID)
}

// DeriveHelloWorldStorage derives the storage PDA for a hello-world router
// program instance, holding its mailbox linkage and remote router set.
func DeriveHelloWorldStorage(helloWorldProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(seedHelloWorld),
		[]byte(seedHelloWorldStorage),
	}, helloWorldProgramID)
}
