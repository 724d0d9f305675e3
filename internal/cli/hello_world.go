package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/deploy"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
)

func newHelloWorldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hello-world",
		Short: "Manage the HelloWorld example router app on one chain",
	}
	cmd.AddCommand(
		newHelloWorldDeployCmd(),
		newHelloWorldQueryCmd(),
		newHelloWorldEnrollRemoteRouterCmd(),
		newHelloWorldSendCmd(),
	)
	return cmd
}

func newHelloWorldDeployCmd() *cobra.Command {
	var chain, bytecodePath, keypairPath, mailboxProgramID, igpProgramID string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the HelloWorld program and initialize its storage account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.hello-world.deploy"); err != nil {
				return err
			}
			mailboxID, err := solana.PublicKeyFromBase58(mailboxProgramID)
			if err != nil {
				return fmt.Errorf("invalid --mailbox-program-id: %w", err)
			}
			igpID, err := solana.PublicKeyFromBase58(igpProgramID)
			if err != nil {
				return fmt.Errorf("invalid --igp-program-id: %w", err)
			}
			artifact, programKey, bufferKey, err := loadDeployArtifact(a.flags.envPath, "helloworld", bytecodePath, keypairPath)
			if err != nil {
				return err
			}
			ops, err := deploy.PlanUpload(a.cc, chain, artifact, bufferKey)
			if err != nil {
				return err
			}
			finalize := deploy.PlanFinalize(a.cc, chain, artifact, bufferKey, deploy.BPFLoaderUpgradeableProgramID, 2*uint64(len(artifact.Bytecode)), []string{ops[len(ops)-1].Name})
			ops = append(ops, finalize)

			initOps, err := protocol.PlanHelloWorldInit(cmd.Context(), a.cc, chain, programKey.PublicKey(), mailboxID, igpID)
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
			programDataAccount, err := deploy.DeriveProgramDataAddress(programKey.PublicKey())
			if err != nil {
				return err
			}
			if err := deploy.VerifyDeployedHash(cmd.Context(), a.cc, chain, programDataAccount, artifact, deploy.ProgramDataHeaderLen); err != nil {
				return err
			}
			return a.store.Merge(environment.WarpRouteProgramIDsPath("helloworld"), environment.WarpRouteProgramIDsFile{
				SchemaVersion: environment.CurrentSchemaVersion,
				RouteName:     "helloworld",
				Programs: map[string]environment.ProgramRecord{
					chain: {ProgramName: "helloworld", ProgramID: programKey.PublicKey().String(), Sha256OfBytecode: artifact.Sha256Hex()},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&bytecodePath, "bytecode", "", "path to the compiled HelloWorld program binary")
	cmd.Flags().StringVar(&keypairPath, "program-keypair", "", "path to the program's keypair file (generated if absent)")
	cmd.Flags().StringVar(&mailboxProgramID, "mailbox-program-id", "", "Mailbox program ID on this chain")
	cmd.Flags().StringVar(&igpProgramID, "igp-program-id", "", "IGP program ID on this chain")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("bytecode")
	cmd.MarkFlagRequired("mailbox-program-id")
	cmd.MarkFlagRequired("igp-program-id")
	return cmd
}

func newHelloWorldQueryCmd() *cobra.Command {
	var chain, programID string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read back a HelloWorld router's wired programs and enrolled routers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			helloWorldProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			info, err := inspector.InspectHelloWorld(cmd.Context(), a.cc, chain, helloWorldProgramID)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, info, nil)
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "HelloWorld program ID")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	return cmd
}

func newHelloWorldEnrollRemoteRouterCmd() *cobra.Command {
	var chain, programID, remoteRouter string
	var remoteDomain uint32
	cmd := &cobra.Command{
		Use:   "enroll-remote-router",
		Short: "Enroll a remote chain's HelloWorld router address",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.hello-world.enroll-remote-router"); err != nil {
				return err
			}
			helloWorldProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			routerBytes, err := decodeBase58To32(remoteRouter)
			if err != nil {
				return fmt.Errorf("invalid --remote-router: %w", err)
			}
			storage, _, err := sealevel.DeriveHelloWorldStorage(helloWorldProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildHelloWorldEnrollRemoteRouterInstruction(helloWorldProgramID, storage, a.cc.Payer().PublicKey, protocol.EnrollRemoteRouterArgs{
				RemoteDomain: remoteDomain,
				Router:       routerBytes,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("hello-world.enroll-remote-router.%s.%d", chain, remoteDomain), ix, a.cc.Payer().PublicKey, 30_000,
				fmt.Sprintf("enroll remote domain %d on %s", remoteDomain, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "HelloWorld program ID")
	cmd.Flags().Uint32Var(&remoteDomain, "remote-domain", 0, "remote chain's domain ID")
	cmd.Flags().StringVar(&remoteRouter, "remote-router", "", "remote router address, base58")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("remote-domain")
	cmd.MarkFlagRequired("remote-router")
	return cmd
}

func newHelloWorldSendCmd() *cobra.Command {
	var chain, programID, mailboxProgramID, message string
	var destinationDomain uint32
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Dispatch a HelloWorld message to a remote chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.hello-world.send"); err != nil {
				return err
			}
			helloWorldProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			mailboxID, err := solana.PublicKeyFromBase58(mailboxProgramID)
			if err != nil {
				return fmt.Errorf("invalid --mailbox-program-id: %w", err)
			}
			storage, _, err := sealevel.DeriveHelloWorldStorage(helloWorldProgramID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildHelloWorldSendInstruction(helloWorldProgramID, storage, a.cc.Payer().PublicKey, mailboxID, protocol.HelloWorldSendArgs{
				DestinationDomain: destinationDomain,
				Message:           message,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("hello-world.send.%s.%d", chain, destinationDomain), ix, a.cc.Payer().PublicKey, 80_000,
				fmt.Sprintf("send %q to domain %d via %s", message, destinationDomain, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "HelloWorld program ID")
	cmd.Flags().StringVar(&mailboxProgramID, "mailbox-program-id", "", "Mailbox program ID on this chain")
	cmd.Flags().Uint32Var(&destinationDomain, "destination-domain", 0, "destination chain's domain ID")
	cmd.Flags().StringVar(&message, "message", "", "message body")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("mailbox-program-id")
	cmd.MarkFlagRequired("destination-domain")
	cmd.MarkFlagRequired("message")
	return cmd
}
