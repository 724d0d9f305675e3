package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

func newValidatorAnnounceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validator-announce",
		Short: "Manage the ValidatorAnnounce registry on one chain",
	}
	cmd.AddCommand(
		newValidatorAnnounceInitCmd(),
		newValidatorAnnounceAnnounceCmd(),
		newValidatorAnnounceQueryCmd(),
	)
	return cmd
}

func newValidatorAnnounceInitCmd() *cobra.Command {
	var chain, programID, mailboxProgramID string
	var localDomain uint32
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a ValidatorAnnounce registry on one chain, idempotently",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.validator-announce.init"); err != nil {
				return err
			}
			vaProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			mailboxID, err := solana.PublicKeyFromBase58(mailboxProgramID)
			if err != nil {
				return fmt.Errorf("invalid --mailbox-program-id: %w", err)
			}
			ops, err := protocol.PlanValidatorAnnounceInit(a.cc, chain, vaProgramID, mailboxID, localDomain, false)
			if err != nil {
				return err
			}
			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun {
				return nil
			}
			return a.store.Merge(environment.CoreProgramIDsPath(chain), environment.ProgramIDsRecord{
				SchemaVersion: environment.CurrentSchemaVersion,
				Programs: map[string]environment.ProgramRecord{
					"validator-announce": {ProgramName: "validator-announce", ProgramID: vaProgramID.String()},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "ValidatorAnnounce program ID")
	cmd.Flags().StringVar(&mailboxProgramID, "mailbox-program-id", "", "Mailbox program ID on this chain")
	cmd.Flags().Uint32Var(&localDomain, "local-domain", 0, "this chain's Hyperlane domain ID")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("mailbox-program-id")
	cmd.MarkFlagRequired("local-domain")
	return cmd
}

func newValidatorAnnounceAnnounceCmd() *cobra.Command {
	var chain, programID, validator, storageLocation, signature string
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Record a validator's off-chain checkpoint storage location",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.validator-announce.announce"); err != nil {
				return err
			}
			vaProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			validatorAddr, err := parseValidatorAddress(validator)
			if err != nil {
				return err
			}
			sig, err := parseECDSASignature(signature)
			if err != nil {
				return err
			}
			entry, _, err := sealevel.DeriveValidatorAnnounceEntry(vaProgramID, validatorAddr)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildValidatorAnnounceAnnounceInstruction(vaProgramID, entry, a.cc.Payer().PublicKey, protocol.ValidatorAnnounceAnnounceArgs{
				Validator:       validatorAddr,
				StorageLocation: storageLocation,
				Signature:       sig,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("validator-announce.announce.%s.%x", chain, validatorAddr[:4]), ix, a.cc.Payer().PublicKey, 30_000,
				fmt.Sprintf("announce storage location for validator 0x%x on %s", validatorAddr, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "ValidatorAnnounce program ID")
	cmd.Flags().StringVar(&validator, "validator", "", "20-byte validator address, hex-encoded")
	cmd.Flags().StringVar(&storageLocation, "storage-location", "", "off-chain checkpoint storage URI")
	cmd.Flags().StringVar(&signature, "signature", "", "65-byte ECDSA signature over the announcement digest, hex-encoded")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("validator")
	cmd.MarkFlagRequired("storage-location")
	cmd.MarkFlagRequired("signature")
	return cmd
}

func newValidatorAnnounceQueryCmd() *cobra.Command {
	var chain, programID, validator string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read back a validator's announced storage location",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			vaProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			validatorAddr, err := parseValidatorAddress(validator)
			if err != nil {
				return err
			}
			summary, err := inspector.Validator(cmd.Context(), a.cc, chain, vaProgramID, validatorAddr)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, summary, nil)
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "ValidatorAnnounce program ID")
	cmd.Flags().StringVar(&validator, "validator", "", "20-byte validator address, hex-encoded")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("validator")
	return cmd
}

func parseValidatorAddress(s string) ([20]byte, error) {
	var addr [20]byte
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil || len(raw) != 20 {
		return addr, fmt.Errorf("--validator must be a 20-byte hex string")
	}
	copy(addr[:], raw)
	return addr, nil
}

func parseECDSASignature(s string) ([65]byte, error) {
	var sig [65]byte
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil || len(raw) != 65 {
		return sig, fmt.Errorf("--signature must be a 65-byte hex string")
	}
	copy(sig[:], raw)
	return sig, nil
}
