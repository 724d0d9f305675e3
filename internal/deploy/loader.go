package deploy

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// BPFLoaderUpgradeableProgramID is the well-known BPF Upgradeable Loader
// program every Sealevel program is deployed through.
var BPFLoaderUpgradeableProgramID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")

// loader instruction discriminators are 4-byte little-endian enum indices
// (not the single-byte discriminator convention used by the Hyperlane
// programs themselves), per the upgradeable loader's on-chain layout.
const (
	loaderInitializeBuffer     uint32 = 0
	loaderWrite                uint32 = 1
	loaderDeployWithMaxDataLen uint32 = 2
)

// ProgramDataHeaderLen is the fixed-size prefix of a BPF Upgradeable Loader
// program-data account ahead of its executable bytes: a 4-byte enum
// discriminant, an 8-byte deployment slot, and a 33-byte Option<Pubkey>
// upgrade authority (1-byte tag + 32-byte pubkey, always written even when
// the authority has been set to None).
const ProgramDataHeaderLen = 4 + 8 + 1 + 32

// DeriveProgramDataAddress derives the BPF Upgradeable Loader program-data
// PDA for a deployed program, the account VerifyDeployedHash reads back.
func DeriveProgramDataAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{programID[:]}, BPFLoaderUpgradeableProgramID)
	return pda, err
}

func encodeLoaderDiscriminator(d uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, d)
	return b
}

// buildInitializeBufferInstruction creates the buffer account a program's
// bytecode is chunk-written into before deployment.
func buildInitializeBufferInstruction(bufferAccount, bufferAuthority solana.PublicKey) solana.Instruction {
	data := encodeLoaderDiscriminator(loaderInitializeBuffer)
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(bufferAccount, true, false),
		solana.NewAccountMeta(bufferAuthority, false, false),
	}
	return solana.NewInstruction(BPFLoaderUpgradeableProgramID, accounts, data)
}

// buildWriteInstruction writes one chunk of program bytecode at offset into
// the buffer account.
func buildWriteInstruction(bufferAccount, bufferAuthority solana.PublicKey, offset uint32, chunk []byte) solana.Instruction {
	data := encodeLoaderDiscriminator(loaderWrite)
	offsetBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(offsetBytes, offset)
	data = append(data, offsetBytes...)
	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(chunk)))
	data = append(data, lenBytes...)
	data = append(data, chunk...)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(bufferAccount, true, false),
		solana.NewAccountMeta(bufferAuthority, false, true),
	}
	return solana.NewInstruction(BPFLoaderUpgradeableProgramID, accounts, data)
}

// buildDeployWithMaxDataLenInstruction finalizes a buffer into an
// executable program account, or upgrades an existing one, reserving
// maxDataLen bytes of program-data space for future upgrades.
func buildDeployWithMaxDataLenInstruction(payer, programDataAccount, programAccount, bufferAccount, upgradeAuthority solana.PublicKey, maxDataLen uint64) solana.Instruction {
	data := encodeLoaderDiscriminator(loaderDeployWithMaxDataLen)
	maxLenBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(maxLenBytes, maxDataLen)
	data = append(data, maxLenBytes...)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(programDataAccount, true, false),
		solana.NewAccountMeta(programAccount, true, false),
		solana.NewAccountMeta(bufferAccount, true, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(solana.SysVarClockPubkey, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(upgradeAuthority, false, true),
	}
	return solana.NewInstruction(BPFLoaderUpgradeableProgramID, accounts, data)
}
