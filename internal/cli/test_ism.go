package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/deploy"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

func newTestISMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-ism",
		Short: "Manage the always-accept/always-reject test ISM on one chain",
	}
	cmd.AddCommand(
		newTestISMDeployCmd(),
		newTestISMInitCmd(),
		newTestISMSetAcceptCmd(),
	)
	return cmd
}

func newTestISMDeployCmd() *cobra.Command {
	var chain, bytecodePath, keypairPath string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the test ISM program and persist its program ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.test-ism.deploy"); err != nil {
				return err
			}
			artifact, programKey, bufferKey, err := loadDeployArtifact(a.flags.envPath, "testism", bytecodePath, keypairPath)
			if err != nil {
				return err
			}
			ops, err := deploy.PlanUpload(a.cc, chain, artifact, bufferKey)
			if err != nil {
				return err
			}
			finalize := deploy.PlanFinalize(a.cc, chain, artifact, bufferKey, deploy.BPFLoaderUpgradeableProgramID, 2*uint64(len(artifact.Bytecode)), []string{ops[len(ops)-1].Name})
			ops = append(ops, finalize)

			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun {
				return nil
			}
			return a.store.Merge(environment.CoreProgramIDsPath(chain), environment.ProgramIDsRecord{
				SchemaVersion: environment.CurrentSchemaVersion,
				Programs: map[string]environment.ProgramRecord{
					"testism": {ProgramName: "testism", ProgramID: programKey.PublicKey().String(), Sha256OfBytecode: artifact.Sha256Hex()},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&bytecodePath, "bytecode", "", "path to the compiled test ISM program binary")
	cmd.Flags().StringVar(&keypairPath, "program-keypair", "", "path to the program's keypair file (generated if absent)")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("bytecode")
	return cmd
}

func newTestISMInitCmd() *cobra.Command {
	var chain, programID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the test ISM's storage account, idempotently",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.test-ism.init"); err != nil {
				return err
			}
			testISMProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			ops, err := protocol.PlanTestISMInit(cmd.Context(), a.cc, chain, testISMProgramID)
			if err != nil {
				return err
			}
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "test ISM program ID")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	return cmd
}

func newTestISMSetAcceptCmd() *cobra.Command {
	var chain, programID string
	var accept bool
	cmd := &cobra.Command{
		Use:   "set-accept",
		Short: "Set whether the test ISM accepts or rejects every message",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.test-ism.set-accept"); err != nil {
				return err
			}
			testISMProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			storage, _, err := sealevel.DeriveTestISMStorage(testISMProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildTestISMSetAcceptInstruction(testISMProgramID, storage, a.cc.Payer().PublicKey, protocol.TestISMSetAcceptArgs{Accept: accept})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, "test-ism.set-accept."+chain, ix, a.cc.Payer().PublicKey, 15_000,
				fmt.Sprintf("set test ISM accept=%t on %s", accept, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "test ISM program ID")
	cmd.Flags().BoolVar(&accept, "accept", true, "whether the ISM should accept every message")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	return cmd
}
