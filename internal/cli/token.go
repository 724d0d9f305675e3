package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Operate a deployed warp route token on one chain",
	}
	cmd.AddCommand(
		newTokenQueryCmd(),
		newTokenTransferRemoteCmd(),
		newTokenTransferRemoteMemoCmd(),
		newTokenEnrollRemoteRouterCmd(),
		newTokenSetDestinationGasCmd(),
	)
	return cmd
}

func newTokenQueryCmd() *cobra.Command {
	var chain, programID string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read back a warp route's token spec and enrolled routers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			warpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			info, err := inspector.WarpTokenInfoForChain(cmd.Context(), a.cc, chain, warpProgramID)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, info, nil)
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "warp route program ID")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	return cmd
}

func newTokenTransferRemoteCmd() *cobra.Command {
	var chain, programID, mailboxProgramID, recipient string
	var destinationDomain uint32
	var amount uint64
	cmd := &cobra.Command{
		Use:   "transfer-remote",
		Short: "Send tokens to a remote chain through the warp route",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.token.transfer-remote"); err != nil {
				return err
			}
			warpProgramID, mailboxID, recipientBytes, err := parseTransferArgs(programID, mailboxProgramID, recipient)
			if err != nil {
				return err
			}
			storage, _, err := sealevel.DeriveWarpRouteStorage(warpProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildWarpRouteTransferRemoteInstruction(warpProgramID, storage, a.cc.Payer().PublicKey, mailboxID, protocol.WarpRouteTransferRemoteArgs{
				DestinationDomain: destinationDomain,
				Recipient:         recipientBytes,
				Amount:            amount,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("token.transfer-remote.%s.%d", chain, destinationDomain), ix, a.cc.Payer().PublicKey, 60_000,
				fmt.Sprintf("transfer %d to domain %d via %s", amount, destinationDomain, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	addTransferFlags(cmd, &chain, &programID, &mailboxProgramID, &recipient, &destinationDomain, &amount)
	return cmd
}

func newTokenTransferRemoteMemoCmd() *cobra.Command {
	var chain, programID, mailboxProgramID, recipient, memo string
	var destinationDomain uint32
	var amount uint64
	cmd := &cobra.Command{
		Use:   "transfer-remote-memo",
		Short: "Send tokens to a remote chain with an attached memo",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.token.transfer-remote-memo"); err != nil {
				return err
			}
			warpProgramID, mailboxID, recipientBytes, err := parseTransferArgs(programID, mailboxProgramID, recipient)
			if err != nil {
				return err
			}
			storage, _, err := sealevel.DeriveWarpRouteStorage(warpProgramID)
			if err != nil {
				return err
			}
			// An empty --memo is a deliberate, valid choice: see
			// BuildWarpRouteTransferRemoteMemoInstruction's doc comment.
			ix, err := protocol.BuildWarpRouteTransferRemoteMemoInstruction(warpProgramID, storage, a.cc.Payer().PublicKey, mailboxID, protocol.WarpRouteTransferRemoteMemoArgs{
				DestinationDomain: destinationDomain,
				Recipient:         recipientBytes,
				Amount:            amount,
				Memo:              memo,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("token.transfer-remote-memo.%s.%d", chain, destinationDomain), ix, a.cc.Payer().PublicKey, 65_000,
				fmt.Sprintf("transfer %d to domain %d via %s with memo %q", amount, destinationDomain, chain, memo))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	addTransferFlags(cmd, &chain, &programID, &mailboxProgramID, &recipient, &destinationDomain, &amount)
	cmd.Flags().StringVar(&memo, "memo", "", "memo attached to the transfer (may be empty)")
	return cmd
}

func newTokenEnrollRemoteRouterCmd() *cobra.Command {
	var chain, programID, remoteRouter string
	var remoteDomain uint32
	cmd := &cobra.Command{
		Use:   "enroll-remote-router",
		Short: "Enroll a remote chain's router address",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.token.enroll-remote-router"); err != nil {
				return err
			}
			warpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			routerBytes, err := decodeBase58To32(remoteRouter)
			if err != nil {
				return fmt.Errorf("invalid --remote-router: %w", err)
			}
			storage, _, err := sealevel.DeriveWarpRouteStorage(warpProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildWarpRouteEnrollRemoteRouterInstruction(warpProgramID, storage, a.cc.Payer().PublicKey, protocol.EnrollRemoteRouterArgs{
				RemoteDomain: remoteDomain,
				Router:       routerBytes,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("token.enroll-remote-router.%s.%d", chain, remoteDomain), ix, a.cc.Payer().PublicKey, 30_000,
				fmt.Sprintf("enroll remote domain %d on %s", remoteDomain, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "warp route program ID")
	cmd.Flags().Uint32Var(&remoteDomain, "remote-domain", 0, "remote chain's domain ID")
	cmd.Flags().StringVar(&remoteRouter, "remote-router", "", "remote router address, base58")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("remote-domain")
	cmd.MarkFlagRequired("remote-router")
	return cmd
}

func newTokenSetDestinationGasCmd() *cobra.Command {
	var chain, programID string
	var remoteDomain uint32
	var gasAmount uint64
	cmd := &cobra.Command{
		Use:   "set-destination-gas",
		Short: "Set the destination gas amount quoted for a remote domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.token.set-destination-gas"); err != nil {
				return err
			}
			warpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			storage, _, err := sealevel.DeriveWarpRouteStorage(warpProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildWarpRouteSetDestinationGasInstruction(warpProgramID, storage, a.cc.Payer().PublicKey, protocol.WarpRouteSetDestinationGasArgs{
				RemoteDomain: remoteDomain,
				GasAmount:    gasAmount,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("token.set-destination-gas.%s.%d", chain, remoteDomain), ix, a.cc.Payer().PublicKey, 25_000,
				fmt.Sprintf("set destination gas for domain %d on %s to %d", remoteDomain, chain, gasAmount))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "warp route program ID")
	cmd.Flags().Uint32Var(&remoteDomain, "remote-domain", 0, "remote chain's domain ID")
	cmd.Flags().Uint64Var(&gasAmount, "gas-amount", 0, "destination gas amount")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("remote-domain")
	return cmd
}

func addTransferFlags(cmd *cobra.Command, chain, programID, mailboxProgramID, recipient *string, destinationDomain *uint32, amount *uint64) {
	cmd.Flags().StringVar(chain, "chain", "", "chain name")
	cmd.Flags().StringVar(programID, "program-id", "", "warp route program ID")
	cmd.Flags().StringVar(mailboxProgramID, "mailbox-program-id", "", "Mailbox program ID on this chain")
	cmd.Flags().Uint32Var(destinationDomain, "destination-domain", 0, "destination chain's domain ID")
	cmd.Flags().StringVar(recipient, "recipient", "", "recipient address on the destination chain, base58")
	cmd.Flags().Uint64Var(amount, "amount", 0, "amount to transfer, in the token's smallest unit")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("mailbox-program-id")
	cmd.MarkFlagRequired("destination-domain")
	cmd.MarkFlagRequired("recipient")
	cmd.MarkFlagRequired("amount")
}

func parseTransferArgs(programID, mailboxProgramID, recipient string) (solana.PublicKey, solana.PublicKey, [32]byte, error) {
	warpProgramID, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, [32]byte{}, fmt.Errorf("invalid --program-id: %w", err)
	}
	mailboxID, err := solana.PublicKeyFromBase58(mailboxProgramID)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, [32]byte{}, fmt.Errorf("invalid --mailbox-program-id: %w", err)
	}
	recipientBytes, err := decodeBase58To32(recipient)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, [32]byte{}, fmt.Errorf("invalid --recipient: %w", err)
	}
	return warpProgramID, mailboxID, recipientBytes, nil
}

func decodeBase58To32(s string) ([32]byte, error) {
	var out [32]byte
	decoded, err := base58.Decode(s)
	if err != nil {
		return out, err
	}
	if len(decoded) > 32 {
		return out, fmt.Errorf("decoded value is %d bytes, want at most 32", len(decoded))
	}
	copy(out[32-len(decoded):], decoded)
	return out, nil
}
