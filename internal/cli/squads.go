package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
)

func newSquadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "squads",
		Short: "Inspect Squads multisig accounts used as program/ISM owners",
	}
	cmd.AddCommand(newSquadsVerifyCmd())
	return cmd
}

func newSquadsVerifyCmd() *cobra.Command {
	var chain, owner string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report whether an owner account looks like a Squads multisig",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			ownerKey, err := solana.PublicKeyFromBase58(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			summary, err := inspector.VerifySquadsMultisig(cmd.Context(), a.cc, chain, ownerKey)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, summary, nil)
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&owner, "owner", "", "owner account to inspect")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("owner")
	return cmd
}
