package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/deploy"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/wiring"
)

func newWarpRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warp-route",
		Short: "Deploy and persist a warp route's per-chain token program",
	}
	cmd.AddCommand(newWarpRouteDeployCmd(), newWarpRouteWireCmd())
	return cmd
}

// newWarpRouteWireCmd closes every missing router enrollment across a
// route's deployed chains: it reads back each chain's on-chain router set,
// computes the full N*(N-1) enrollment closure, and applies only the
// missing edges — the second run against an already-wired route submits
// zero transactions.
func newWarpRouteWireCmd() *cobra.Command {
	var routeName string
	var force bool
	cmd := &cobra.Command{
		Use:   "wire",
		Short: "Enroll every deployed chain's router with every other deployed chain on a route",
		RunE: func(cmd *cobra.Command, args []string) error {
			envPath, err := cmd.Root().PersistentFlags().GetString("env")
			if err != nil {
				return err
			}
			store := environment.New(envPath)
			var programIDs environment.WarpRouteProgramIDsFile
			if err := store.Load(environment.WarpRouteProgramIDsPath(routeName), &programIDs); err != nil {
				return err
			}
			if len(programIDs.Programs) < 2 {
				fmt.Fprintln(cmd.OutOrStdout(), "fewer than two chains deployed for this route; nothing to wire")
				return nil
			}

			chains := make([]string, 0, len(programIDs.Programs))
			for chain := range programIDs.Programs {
				chains = append(chains, chain)
			}
			a, err := newApp(cmd, chains...)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.warp-route.wire"); err != nil {
				return err
			}

			endpoints := make([]wiring.RouterEndpoint, 0, len(chains))
			for _, chain := range chains {
				record := programIDs.Programs[chain]
				warpProgramID, err := solana.PublicKeyFromBase58(record.ProgramID)
				if err != nil {
					return fmt.Errorf("invalid program ID %q for chain %q: %w", record.ProgramID, chain, err)
				}
				chainInfo, ok := a.cc.Chain(chain)
				if !ok {
					return fmt.Errorf("unknown chain %q", chain)
				}
				storage, _, err := sealevel.DeriveWarpRouteStorage(warpProgramID)
				if err != nil {
					return err
				}
				info, err := inspector.WarpTokenInfoForChain(cmd.Context(), a.cc, chain, warpProgramID)
				if err != nil {
					return err
				}
				enrolled := make(map[uint32][32]byte, len(info.Routers))
				for domainStr, routerB58 := range info.Routers {
					var domain uint32
					if _, err := fmt.Sscanf(domainStr, "%d", &domain); err != nil {
						return fmt.Errorf("malformed remote domain key %q for chain %q", domainStr, chain)
					}
					router, err := decodeBase58To32(routerB58)
					if err != nil {
						return err
					}
					enrolled[domain] = router
				}
				endpoints = append(endpoints, wiring.RouterEndpoint{
					Chain:           chain,
					Domain:          chainInfo.Domain,
					ProgramID:       warpProgramID,
					StorageKey:      storage,
					EnrolledRouters: enrolled,
				})
			}

			missing := wiring.MissingEnrollments(endpoints)
			ops, err := wiring.PlanEnrollments(a.cc.Payer().PublicKey, missing, force)
			if err != nil {
				return err
			}
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&routeName, "route-name", "", "warp route name")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite routers that are already enrolled to a different address")
	cmd.MarkFlagRequired("route-name")
	return cmd
}

func newWarpRouteDeployCmd() *cobra.Command {
	var chain, routeName, tokenType, bytecodePath, keypairPath, mailboxProgramID string
	var decimals uint8
	var name, symbol, collateralMint, collateralVault, mintKeypairPath string
	var memo bool
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload a warp route program and initialize it as native, synthetic, or collateral",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.warp-route.deploy"); err != nil {
				return err
			}
			mailboxID, err := solana.PublicKeyFromBase58(mailboxProgramID)
			if err != nil {
				return fmt.Errorf("invalid --mailbox-program-id: %w", err)
			}

			artifact, programKey, bufferKey, err := loadDeployArtifact(a.flags.envPath, routeName+"-"+chain, bytecodePath, keypairPath)
			if err != nil {
				return err
			}
			ops, err := deploy.PlanUpload(a.cc, chain, artifact, bufferKey)
			if err != nil {
				return err
			}
			finalize := deploy.PlanFinalize(a.cc, chain, artifact, bufferKey, deploy.BPFLoaderUpgradeableProgramID, 2*uint64(len(artifact.Bytecode)), []string{ops[len(ops)-1].Name})
			ops = append(ops, finalize)

			warpProgramID := programKey.PublicKey()
			storage, _, err := sealevel.DeriveWarpRouteStorage(warpProgramID)
			if err != nil {
				return err
			}

			spec := environment.TokenSpec{Type: tokenType, Decimals: decimals, Memo: memo}

			var initIx solana.Instruction
			switch tokenType {
			case "native":
				initIx, err = protocol.BuildWarpRouteInitNativeInstruction(warpProgramID, storage, a.cc.Payer().PublicKey, protocol.WarpRouteInitNativeArgs{
					MailboxProgramID: mailboxID, Decimals: decimals,
				})
			case "synthetic":
				if mintKeypairPath == "" {
					return fmt.Errorf("--mint-keypair is required for --type synthetic")
				}
				mintKey, loadErr := deploy.LoadKeypair(mintKeypairPath)
				if loadErr != nil {
					return loadErr
				}
				initIx, err = protocol.BuildWarpRouteInitSyntheticInstruction(warpProgramID, storage, mintKey.PublicKey(), a.cc.Payer().PublicKey, protocol.WarpRouteInitSyntheticArgs{
					MailboxProgramID: mailboxID, Decimals: decimals, Name: name, Symbol: symbol,
				})
				spec.Name, spec.Symbol = name, symbol
			case "collateral":
				mint, parseErr := solana.PublicKeyFromBase58(collateralMint)
				if parseErr != nil {
					return fmt.Errorf("invalid --collateral-mint: %w", parseErr)
				}
				vault, parseErr := solana.PublicKeyFromBase58(collateralVault)
				if parseErr != nil {
					return fmt.Errorf("invalid --collateral-vault: %w", parseErr)
				}
				provider, provErr := a.cc.Provider(chain)
				if provErr != nil {
					return provErr
				}
				mintInfo, rpcErr := provider.GetAccountInfo(cmd.Context(), mint)
				if rpcErr != nil {
					return errs.New(errs.KindRpcError, chain, "cli.warp-route.deploy", rpcErr, "failed to read collateral mint %s", mint)
				}
				if mintInfo == nil || mintInfo.Value == nil {
					return errs.New(errs.KindTokenMismatch, chain, "cli.warp-route.deploy", nil, "collateral mint %s does not exist on %s", mint, chain)
				}
				mintDecimals, decodeErr := protocol.DecodeMintDecimals(mintInfo.Value.Data.GetBinary())
				if decodeErr != nil {
					return errs.New(errs.KindProgramError, chain, "cli.warp-route.deploy", decodeErr, "failed to decode collateral mint %s", mint)
				}
				if mintDecimals != decimals {
					return errs.New(errs.KindTokenMismatch, chain, "cli.warp-route.deploy", nil,
						"collateral mint %s has %d decimals, configured --decimals is %d", mint, mintDecimals, decimals)
				}
				ataPayer, _, pdaErr := sealevel.DeriveATAPayer(warpProgramID)
				if pdaErr != nil {
					return pdaErr
				}
				initIx, err = protocol.BuildWarpRouteInitCollateralInstruction(warpProgramID, storage, ataPayer, vault, a.cc.Payer().PublicKey, protocol.WarpRouteInitCollateralArgs{
					MailboxProgramID: mailboxID, CollateralMint: mint,
				})
				spec.Token = mint.String()
			default:
				return fmt.Errorf("--type must be one of native, synthetic, collateral")
			}
			if err != nil {
				return err
			}

			ops = append(ops, conductorSingleOp(chain, fmt.Sprintf("warp-route.%s.init.%s", routeName, chain), initIx, a.cc.Payer().PublicKey, 80_000,
				fmt.Sprintf("initialize %s warp route token on %s", tokenType, chain), []string{finalize.Name}))

			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun {
				return nil
			}
			programDataAccount, err := deploy.DeriveProgramDataAddress(warpProgramID)
			if err != nil {
				return err
			}
			if err := deploy.VerifyDeployedHash(cmd.Context(), a.cc, chain, programDataAccount, artifact, deploy.ProgramDataHeaderLen); err != nil {
				return err
			}
			if err := a.store.Merge(environment.WarpRouteProgramIDsPath(routeName), environment.WarpRouteProgramIDsFile{
				SchemaVersion: environment.CurrentSchemaVersion,
				RouteName:     routeName,
				Programs: map[string]environment.ProgramRecord{
					chain: {ProgramName: routeName, ProgramID: warpProgramID.String(), Sha256OfBytecode: artifact.Sha256Hex()},
				},
			}); err != nil {
				return err
			}
			return a.store.Merge(environment.WarpRouteTokenConfigPath(routeName), environment.TokenConfigFile{
				SchemaVersion: environment.CurrentSchemaVersion,
				RouteName:     routeName,
				Chains:        map[string]environment.TokenSpec{chain: spec},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&routeName, "route-name", "", "warp route name, used as the environment directory key")
	cmd.Flags().StringVar(&tokenType, "type", "", "token type: native, synthetic, or collateral")
	cmd.Flags().StringVar(&bytecodePath, "bytecode", "", "path to the compiled warp route program binary")
	cmd.Flags().StringVar(&keypairPath, "program-keypair", "", "path to the program's keypair file (generated if absent)")
	cmd.Flags().StringVar(&mailboxProgramID, "mailbox-program-id", "", "Mailbox program ID on this chain")
	cmd.Flags().Uint8Var(&decimals, "decimals", 9, "token decimals")
	cmd.Flags().StringVar(&name, "name", "", "token name (synthetic only)")
	cmd.Flags().StringVar(&symbol, "symbol", "", "token symbol (synthetic only)")
	cmd.Flags().StringVar(&mintKeypairPath, "mint-keypair", "", "path to the synthetic token mint's keypair file")
	cmd.Flags().StringVar(&collateralMint, "collateral-mint", "", "existing SPL token mint to wrap (collateral only)")
	cmd.Flags().StringVar(&collateralVault, "collateral-vault", "", "associated token account holding collateral (collateral only)")
	cmd.Flags().BoolVar(&memo, "memo", false, "enable memo-tagged transfers for this route")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("route-name")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("bytecode")
	cmd.MarkFlagRequired("mailbox-program-id")
	return cmd
}
