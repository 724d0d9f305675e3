package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/conductor"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/deploy"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
)

// newCoreCmd implements the core deploy state machine: upload each of the
// four core programs, initialize them in declared order (mailbox, whose
// init already names the multisig ISM program as its default ISM, then
// IGP, then multisig ISM, then the validator announce registry that
// references the mailbox), and persist every program ID in one pass at the
// end. Mailbox, IGP and multisig ISM init each no-op against already
// initialized state; the bytecode upload stages and the validator announce
// init are planned again on every run, so a rerun after a partial failure
// submits them again.
func newCoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "core",
		Short: "Deploy the core Hyperlane programs (mailbox, IGP, multisig ISM, validator announce) on one chain",
	}
	cmd.AddCommand(newCoreDeployCmd())
	return cmd
}

func newCoreDeployCmd() *cobra.Command {
	var chain string
	var mailboxBytecode, igpBytecode, ismBytecode, vaBytecode string
	var owner, beneficiary string
	var maxProtocolFee uint64

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload and initialize the core program set on one chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.core.deploy"); err != nil {
				return err
			}
			ownerKey, err := solana.PublicKeyFromBase58(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			beneficiaryKey, err := solana.PublicKeyFromBase58(beneficiary)
			if err != nil {
				return fmt.Errorf("invalid --beneficiary: %w", err)
			}

			var ops conductor.OperationList
			programIDs := map[string]solana.PublicKey{}
			artifacts := map[string]deploy.Artifact{}

			stages := []struct {
				name string
				path string
			}{
				{"mailbox", mailboxBytecode},
				{"igp", igpBytecode},
				{"multisig-ism-message-id", ismBytecode},
				{"validator-announce", vaBytecode},
			}
			for _, stage := range stages {
				artifact, programKey, bufferKey, err := loadDeployArtifact(a.flags.envPath, stage.name, stage.path, "")
				if err != nil {
					return fmt.Errorf("%s: %w", stage.name, err)
				}
				uploadOps, err := deploy.PlanUpload(a.cc, chain, artifact, bufferKey)
				if err != nil {
					return err
				}
				finalize := deploy.PlanFinalize(a.cc, chain, artifact, bufferKey, deploy.BPFLoaderUpgradeableProgramID, 2*uint64(len(artifact.Bytecode)), []string{uploadOps[len(uploadOps)-1].Name})
				ops = append(ops, uploadOps...)
				ops = append(ops, finalize)
				programIDs[stage.name] = programKey.PublicKey()
				artifacts[stage.name] = artifact
			}

			mailboxInitOps, err := protocol.PlanMailboxInit(cmd.Context(), a.cc, chain, programIDs["mailbox"], programIDs["multisig-ism-message-id"], maxProtocolFee)
			if err != nil {
				return err
			}
			ops = append(ops, mailboxInitOps...)

			var salt [32]byte
			igpInitOps, err := protocol.PlanIGPInit(cmd.Context(), a.cc, chain, programIDs["igp"], ownerKey, beneficiaryKey, salt)
			if err != nil {
				return err
			}
			ops = append(ops, igpInitOps...)

			ismInitOps, err := protocol.PlanMultisigISMInit(cmd.Context(), a.cc, chain, programIDs["multisig-ism-message-id"], ownerKey)
			if err != nil {
				return err
			}
			ops = append(ops, ismInitOps...)

			chainInfo, ok := a.cc.Chain(chain)
			if !ok {
				return fmt.Errorf("unknown chain %q", chain)
			}
			vaInitOps, err := protocol.PlanValidatorAnnounceInit(a.cc, chain, programIDs["validator-announce"], programIDs["mailbox"], chainInfo.Domain, false)
			if err != nil {
				return err
			}
			ops = append(ops, vaInitOps...)

			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun {
				return nil
			}
			for _, stage := range stages {
				programDataAccount, err := deploy.DeriveProgramDataAddress(programIDs[stage.name])
				if err != nil {
					return err
				}
				if err := deploy.VerifyDeployedHash(cmd.Context(), a.cc, chain, programDataAccount, artifacts[stage.name], deploy.ProgramDataHeaderLen); err != nil {
					return err
				}
			}
			records := map[string]environment.ProgramRecord{}
			for name, id := range programIDs {
				records[name] = environment.ProgramRecord{ProgramName: name, ProgramID: id.String()}
			}
			return a.store.Merge(environment.CoreProgramIDsPath(chain), environment.ProgramIDsRecord{
				SchemaVersion: environment.CurrentSchemaVersion,
				Programs:      records,
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&mailboxBytecode, "mailbox-bytecode", "", "path to the compiled mailbox program binary")
	cmd.Flags().StringVar(&igpBytecode, "igp-bytecode", "", "path to the compiled IGP program binary")
	cmd.Flags().StringVar(&ismBytecode, "multisig-ism-bytecode", "", "path to the compiled multisig ISM program binary")
	cmd.Flags().StringVar(&vaBytecode, "validator-announce-bytecode", "", "path to the compiled validator announce program binary")
	cmd.Flags().StringVar(&owner, "owner", "", "owner of the IGP account and multisig ISM access control")
	cmd.Flags().StringVar(&beneficiary, "beneficiary", "", "IGP gas fee beneficiary")
	cmd.Flags().Uint64Var(&maxProtocolFee, "max-protocol-fee", 0, "mailbox's maximum protocol fee, in lamports")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("mailbox-bytecode")
	cmd.MarkFlagRequired("igp-bytecode")
	cmd.MarkFlagRequired("multisig-ism-bytecode")
	cmd.MarkFlagRequired("validator-announce-bytecode")
	cmd.MarkFlagRequired("owner")
	cmd.MarkFlagRequired("beneficiary")
	return cmd
}
