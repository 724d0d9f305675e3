package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/deploy"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
)

func newMultisigISMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multisig-ism-message-id",
		Short: "Manage the message-ID multisig ISM on one chain",
	}
	cmd.AddCommand(
		newMultisigISMDeployCmd(),
		newMultisigISMSetValidatorsCmd(),
		newMultisigISMQueryCmd(),
	)
	return cmd
}

func newMultisigISMDeployCmd() *cobra.Command {
	var chain, bytecodePath, keypairPath, owner, context string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the multisig ISM program and initialize its access-control account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.multisig-ism-message-id.deploy"); err != nil {
				return err
			}
			ownerKey, err := solana.PublicKeyFromBase58(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			artifact, programKey, bufferKey, err := loadDeployArtifact(a.flags.envPath, "multisig-ism-message-id", bytecodePath, keypairPath)
			if err != nil {
				return err
			}
			ops, err := deploy.PlanUpload(a.cc, chain, artifact, bufferKey)
			if err != nil {
				return err
			}
			finalize := deploy.PlanFinalize(a.cc, chain, artifact, bufferKey, deploy.BPFLoaderUpgradeableProgramID, 2*uint64(len(artifact.Bytecode)), []string{ops[len(ops)-1].Name})
			ops = append(ops, finalize)

			initOps, err := protocol.PlanMultisigISMInit(cmd.Context(), a.cc, chain, programKey.PublicKey(), ownerKey)
			if err != nil {
				return err
			}
			for i := range initOps {
				if len(initOps[i].Predecessors) == 0 {
					initOps[i].Predecessors = []string{finalize.Name}
				}
			}
			ops = append(ops, initOps...)

			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun {
				return nil
			}
			return a.store.Merge(environment.MultisigProgramIDsPath(chain, context), environment.ProgramIDsRecord{
				SchemaVersion: environment.CurrentSchemaVersion,
				Programs: map[string]environment.ProgramRecord{
					"multisig-ism-message-id": {ProgramName: "multisig-ism-message-id", ProgramID: programKey.PublicKey().String(), Sha256OfBytecode: artifact.Sha256Hex()},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&bytecodePath, "bytecode", "", "path to the compiled multisig ISM program binary")
	cmd.Flags().StringVar(&keypairPath, "program-keypair", "", "path to the program's keypair file (generated if absent)")
	cmd.Flags().StringVar(&owner, "owner", "", "ISM access-control owner")
	cmd.Flags().StringVar(&context, "context", "default", "deployment context name")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("bytecode")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func newMultisigISMSetValidatorsCmd() *cobra.Command {
	var chain, programID, owner, validatorsCSV, context string
	var remoteDomain uint32
	var threshold uint8
	cmd := &cobra.Command{
		Use:   "set-validators-and-threshold",
		Short: "Set the validator set and signing threshold for a remote domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.multisig-ism-message-id.set-validators-and-threshold"); err != nil {
				return err
			}
			ismProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			ownerKey, err := solana.PublicKeyFromBase58(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			validators, err := parseValidatorList(validatorsCSV)
			if err != nil {
				return err
			}
			ops, err := protocol.PlanMultisigISMSetValidatorsAndThreshold(cmd.Context(), a.cc, chain, ismProgramID, ownerKey, remoteDomain, validators, threshold)
			if err != nil {
				return err
			}
			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun || len(ops) == 0 {
				return nil
			}
			validatorStrings := make([]string, len(validators))
			for i, v := range validators {
				validatorStrings[i] = "0x" + hex.EncodeToString(v[:])
			}
			return a.store.Merge(environment.MultisigConfigPath(chain, context), environment.MultisigConfigFile{
				SchemaVersion: environment.CurrentSchemaVersion,
				RemoteDomains: map[string]environment.MultisigConfig{
					fmt.Sprintf("%d", remoteDomain): {Validators: validatorStrings, Threshold: threshold},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "multisig ISM program ID")
	cmd.Flags().StringVar(&owner, "owner", "", "ISM access-control owner")
	cmd.Flags().Uint32Var(&remoteDomain, "remote-domain", 0, "remote chain's domain ID")
	cmd.Flags().StringVar(&validatorsCSV, "validators", "", "comma-separated list of 20-byte validator addresses, hex-encoded")
	cmd.Flags().Uint8Var(&threshold, "threshold", 0, "signing threshold")
	cmd.Flags().StringVar(&context, "context", "default", "deployment context name")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("owner")
	cmd.MarkFlagRequired("remote-domain")
	cmd.MarkFlagRequired("validators")
	cmd.MarkFlagRequired("threshold")
	return cmd
}

func newMultisigISMQueryCmd() *cobra.Command {
	var chain, programID string
	var remoteDomain uint32
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read back a remote domain's validator set and threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			ismProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			summary, err := inspector.InspectMultisigISM(cmd.Context(), a.cc, chain, ismProgramID, remoteDomain)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, summary, nil)
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "multisig ISM program ID")
	cmd.Flags().Uint32Var(&remoteDomain, "remote-domain", 0, "remote chain's domain ID")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("remote-domain")
	return cmd
}

func parseValidatorList(csv string) ([][20]byte, error) {
	parts := strings.Split(csv, ",")
	out := make([][20]byte, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		raw, err := hex.DecodeString(trimHexPrefix(p))
		if err != nil || len(raw) != 20 {
			return nil, fmt.Errorf("invalid validator address %q: must be a 20-byte hex string", p)
		}
		var addr [20]byte
		copy(addr[:], raw)
		out = append(out, addr)
	}
	return out, nil
}
