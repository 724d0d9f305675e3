package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
)

func newMailboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailbox",
		Short: "Manage a chain's Mailbox program",
	}
	cmd.AddCommand(
		newMailboxInitCmd(),
		newMailboxQueryCmd(),
		newMailboxSendCmd(),
		newMailboxDeliveredCmd(),
		newMailboxTransferOwnershipCmd(),
		newMailboxSetDefaultISMCmd(),
	)
	return cmd
}

func newMailboxInitCmd() *cobra.Command {
	var chain, programID, defaultISM string
	var maxProtocolFee uint64

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a Mailbox on one chain, idempotently",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.mailbox.init"); err != nil {
				return err
			}
			mailboxProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			ism, err := solana.PublicKeyFromBase58(defaultISM)
			if err != nil {
				return fmt.Errorf("invalid --default-ism: %w", err)
			}

			ops, err := protocol.PlanMailboxInit(cmd.Context(), a.cc, chain, mailboxProgramID, ism, maxProtocolFee)
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
					"mailbox": {ProgramName: "mailbox", ProgramID: mailboxProgramID.String()},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "Mailbox program ID")
	cmd.Flags().StringVar(&defaultISM, "default-ism", "", "default ISM program ID")
	cmd.Flags().Uint64Var(&maxProtocolFee, "max-protocol-fee", 0, "maximum protocol fee, in the chain's native lamports")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("default-ism")
	return cmd
}

func newMailboxQueryCmd() *cobra.Command {
	var chain, programID string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read back a Mailbox's on-chain state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			mailboxProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			summary, err := inspector.InspectMailbox(cmd.Context(), a.cc, chain, mailboxProgramID)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, summary, func() {
				inspector.RenderMailboxTable(cmd.OutOrStdout(), []inspector.MailboxSummary{summary})
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "Mailbox program ID")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	return cmd
}

func newMailboxSendCmd() *cobra.Command {
	var chain, programID, recipient, message string
	var destinationDomain uint32
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Dispatch a raw message from a Mailbox to a remote chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.mailbox.send"); err != nil {
				return err
			}
			mailboxProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			recipientBytes, err := parseMailboxRecipient(recipient)
			if err != nil {
				return err
			}
			authority, _, err := pdaForMailboxAuthority(mailboxProgramID)
			if err != nil {
				return err
			}
			payer := a.cc.Payer().PublicKey
			ix, err := protocol.BuildMailboxDispatchInstruction(mailboxProgramID, authority, payer, payer, protocol.MailboxDispatchArgs{
				DestinationDomain: destinationDomain,
				Recipient:         recipientBytes,
				MessageBody:       []byte(message),
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("mailbox.send.%s.%d", chain, destinationDomain), ix, payer, 80_000,
				fmt.Sprintf("dispatch message to domain %d via %s", destinationDomain, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "Mailbox program ID")
	cmd.Flags().Uint32Var(&destinationDomain, "destination-domain", 0, "destination chain's domain ID")
	cmd.Flags().StringVar(&recipient, "recipient", "", "32-byte remote recipient address, hex-encoded")
	cmd.Flags().StringVar(&message, "message", "", "message body")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("destination-domain")
	cmd.MarkFlagRequired("recipient")
	cmd.MarkFlagRequired("message")
	return cmd
}

func parseMailboxRecipient(s string) ([32]byte, error) {
	var recipient [32]byte
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil || len(raw) != 32 {
		return recipient, fmt.Errorf("--recipient must be a 32-byte hex string")
	}
	copy(recipient[:], raw)
	return recipient, nil
}

func newMailboxDeliveredCmd() *cobra.Command {
	var chain, programID, messageID string
	cmd := &cobra.Command{
		Use:   "delivered",
		Short: "Check whether a message has been processed by a Mailbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			mailboxProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			raw, err := hex.DecodeString(trimHexPrefix(messageID))
			if err != nil || len(raw) != 32 {
				return fmt.Errorf("--message-id must be a 32-byte hex string")
			}
			var id [32]byte
			copy(id[:], raw)

			delivered, err := inspector.Delivered(cmd.Context(), a.cc, chain, mailboxProgramID, id)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, map[string]bool{"delivered": delivered}, func() {
				fmt.Fprintln(cmd.OutOrStdout(), delivered)
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "Mailbox program ID")
	cmd.Flags().StringVar(&messageID, "message-id", "", "32-byte message ID, hex-encoded")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("message-id")
	return cmd
}

func newMailboxTransferOwnershipCmd() *cobra.Command {
	var chain, programID, newOwner string
	cmd := &cobra.Command{
		Use:   "transfer-ownership",
		Short: "Transfer ownership of a Mailbox's authority account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.mailbox.transfer-ownership"); err != nil {
				return err
			}
			mailboxProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			owner, err := solana.PublicKeyFromBase58(newOwner)
			if err != nil {
				return fmt.Errorf("invalid --new-owner: %w", err)
			}
			authority, _, err := pdaForMailboxAuthority(mailboxProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildMailboxTransferOwnershipInstruction(mailboxProgramID, authority, a.cc.Payer().PublicKey, protocol.MailboxTransferOwnershipArgs{NewOwner: owner})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, "mailbox.transfer-ownership."+chain, ix, a.cc.Payer().PublicKey, 20_000,
				fmt.Sprintf("transfer mailbox ownership on %s to %s", chain, owner))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "Mailbox program ID")
	cmd.Flags().StringVar(&newOwner, "new-owner", "", "new owner public key")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("new-owner")
	return cmd
}

func newMailboxSetDefaultISMCmd() *cobra.Command {
	var chain, programID, newISM string
	cmd := &cobra.Command{
		Use:   "set-default-ism",
		Short: "Set a Mailbox's default Interchain Security Module",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.mailbox.set-default-ism"); err != nil {
				return err
			}
			mailboxProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			ism, err := solana.PublicKeyFromBase58(newISM)
			if err != nil {
				return fmt.Errorf("invalid --new-ism: %w", err)
			}
			authority, _, err := pdaForMailboxAuthority(mailboxProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildMailboxSetDefaultISMInstruction(mailboxProgramID, authority, a.cc.Payer().PublicKey, protocol.MailboxSetDefaultISMArgs{NewDefaultISM: ism})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, "mailbox.set-default-ism."+chain, ix, a.cc.Payer().PublicKey, 20_000,
				fmt.Sprintf("set default ISM on %s to %s", chain, ism))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "Mailbox program ID")
	cmd.Flags().StringVar(&newISM, "new-ism", "", "new default ISM public key")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("new-ism")
	return cmd
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
