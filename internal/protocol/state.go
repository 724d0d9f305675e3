package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/fixedpoint"
)

// ByteReader reads little-endian, borsh-compatible primitives out of raw
// account data, mirroring the teacher repo's bytereader.go but returning
// errors instead of silently zeroing short reads — account decode failures
// here must surface to the inspector, never be swallowed.
type ByteReader struct {
	data   []byte
	offset int
}

func NewByteReader(data []byte) *ByteReader {
	return &ByteReader{data: data}
}

func (br *ByteReader) need(n int) error {
	if br.offset+n > len(br.data) {
		return fmt.Errorf("account data truncated: need %d bytes at offset %d, have %d", n, br.offset, len(br.data))
	}
	return nil
}

func (br *ByteReader) ReadU8() (uint8, error) {
	if err := br.need(1); err != nil {
		return 0, err
	}
	v := br.data[br.offset]
	br.offset++
	return v, nil
}

func (br *ByteReader) ReadBool() (bool, error) {
	v, err := br.ReadU8()
	return v != 0, err
}

func (br *ByteReader) ReadU32() (uint32, error) {
	if err := br.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(br.data[br.offset:])
	br.offset += 4
	return v, nil
}

func (br *ByteReader) ReadU64() (uint64, error) {
	if err := br.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(br.data[br.offset:])
	br.offset += 8
	return v, nil
}

func (br *ByteReader) ReadU128() (fixedpoint.Uint128, error) {
	if err := br.need(16); err != nil {
		return fixedpoint.Uint128{}, err
	}
	low := binary.LittleEndian.Uint64(br.data[br.offset : br.offset+8])
	high := binary.LittleEndian.Uint64(br.data[br.offset+8 : br.offset+16])
	br.offset += 16
	return fixedpoint.Uint128{High: high, Low: low}, nil
}

func (br *ByteReader) ReadPubkey() ([32]byte, error) {
	if err := br.need(32); err != nil {
		return [32]byte{}, err
	}
	var v [32]byte
	copy(v[:], br.data[br.offset:br.offset+32])
	br.offset += 32
	return v, nil
}

func (br *ByteReader) ReadAddress20() ([20]byte, error) {
	if err := br.need(20); err != nil {
		return [20]byte{}, err
	}
	var v [20]byte
	copy(v[:], br.data[br.offset:br.offset+20])
	br.offset += 20
	return v, nil
}

func (br *ByteReader) ReadString() (string, error) {
	length, err := br.ReadU32()
	if err != nil {
		return "", err
	}
	if err := br.need(int(length)); err != nil {
		return "", err
	}
	v := string(br.data[br.offset : br.offset+int(length)])
	br.offset += int(length)
	return v, nil
}

// MailboxState is the decoded layout of a mailbox authority PDA.
type MailboxState struct {
	LocalDomain    uint32
	DefaultISM     [32]byte
	Nonce          uint64
	MaxProtocolFee uint64
	ProtocolFee    uint64
	Owner          [32]byte
}

func DecodeMailboxState(data []byte) (MailboxState, error) {
	br := NewByteReader(data)
	var s MailboxState
	var err error
	if s.LocalDomain, err = br.ReadU32(); err != nil {
		return s, err
	}
	if s.DefaultISM, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	if s.Nonce, err = br.ReadU64(); err != nil {
		return s, err
	}
	if s.MaxProtocolFee, err = br.ReadU64(); err != nil {
		return s, err
	}
	if s.ProtocolFee, err = br.ReadU64(); err != nil {
		return s, err
	}
	if s.Owner, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	return s, nil
}

// IGPAccountState is the decoded layout of an IGP account.
type IGPAccountState struct {
	Owner       [32]byte
	Beneficiary [32]byte
	Salt        [32]byte
}

func DecodeIGPAccountState(data []byte) (IGPAccountState, error) {
	br := NewByteReader(data)
	var s IGPAccountState
	var err error
	if s.Owner, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	if s.Beneficiary, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	if s.Salt, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	return s, nil
}

// MultisigISMDomainDataState is the decoded per-domain validator set.
type MultisigISMDomainDataState struct {
	RemoteDomain uint32
	Validators   [][20]byte
	Threshold    uint8
}

func DecodeMultisigISMDomainDataState(data []byte) (MultisigISMDomainDataState, error) {
	br := NewByteReader(data)
	var s MultisigISMDomainDataState
	var err error
	if s.RemoteDomain, err = br.ReadU32(); err != nil {
		return s, err
	}
	count, err := br.ReadU32()
	if err != nil {
		return s, err
	}
	s.Validators = make([][20]byte, count)
	for i := range s.Validators {
		if s.Validators[i], err = br.ReadAddress20(); err != nil {
			return s, err
		}
	}
	if s.Threshold, err = br.ReadU8(); err != nil {
		return s, err
	}
	return s, nil
}

// WarpRouteStorageState is the decoded warp route storage account: token
// spec metadata plus the enrolled router set.
type WarpRouteStorageState struct {
	MailboxProgramID [32]byte
	Decimals         uint8
	Routers          map[uint32][32]byte
}

func DecodeWarpRouteStorageState(data []byte) (WarpRouteStorageState, error) {
	br := NewByteReader(data)
	var s WarpRouteStorageState
	var err error
	if s.MailboxProgramID, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	if s.Decimals, err = br.ReadU8(); err != nil {
		return s, err
	}
	count, err := br.ReadU32()
	if err != nil {
		return s, err
	}
	s.Routers = make(map[uint32][32]byte, count)
	for i := uint32(0); i < count; i++ {
		domain, err := br.ReadU32()
		if err != nil {
			return s, err
		}
		router, err := br.ReadPubkey()
		if err != nil {
			return s, err
		}
		s.Routers[domain] = router
	}
	return s, nil
}

// HelloWorldStorageState is the decoded HelloWorld example router's storage
// account: its Mailbox/IGP program references plus the enrolled router set.
type HelloWorldStorageState struct {
	MailboxProgramID [32]byte
	IGPProgramID     [32]byte
	Routers          map[uint32][32]byte
}

func DecodeHelloWorldStorageState(data []byte) (HelloWorldStorageState, error) {
	br := NewByteReader(data)
	var s HelloWorldStorageState
	var err error
	if s.MailboxProgramID, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	if s.IGPProgramID, err = br.ReadPubkey(); err != nil {
		return s, err
	}
	count, err := br.ReadU32()
	if err != nil {
		return s, err
	}
	s.Routers = make(map[uint32][32]byte, count)
	for i := uint32(0); i < count; i++ {
		domain, err := br.ReadU32()
		if err != nil {
			return s, err
		}
		router, err := br.ReadPubkey()
		if err != nil {
			return s, err
		}
		s.Routers[domain] = router
	}
	return s, nil
}

// mintDecimalsOffset is the fixed byte offset of the decimals field in an
// SPL Token Mint account: a 36-byte COption<Pubkey> mint authority (4-byte
// tag + 32-byte pubkey, always present regardless of the tag's value),
// followed by an 8-byte supply.
const mintDecimalsOffset = 36 + 8

// DecodeMintDecimals reads the decimals field out of a raw SPL Token Mint
// account, the check used to validate a collateral warp route's existing
// mint against its configured decimals.
func DecodeMintDecimals(data []byte) (uint8, error) {
	if len(data) <= mintDecimalsOffset {
		return 0, fmt.Errorf("mint account data truncated: need at least %d bytes, have %d", mintDecimalsOffset+1, len(data))
	}
	return data[mintDecimalsOffset], nil
}

// ValidatorAnnounceEntryState is the decoded per-validator announce entry.
type ValidatorAnnounceEntryState struct {
	Validator       [20]byte
	StorageLocation string
}

func DecodeValidatorAnnounceEntryState(data []byte) (ValidatorAnnounceEntryState, error) {
	br := NewByteReader(data)
	var s ValidatorAnnounceEntryState
	var err error
	if s.Validator, err = br.ReadAddress20(); err != nil {
		return s, err
	}
	if s.StorageLocation, err = br.ReadString(); err != nil {
		return s, err
	}
	return s, nil
}
