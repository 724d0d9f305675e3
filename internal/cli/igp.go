package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/deploy"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/inspector"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/protocol"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/sealevel"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/wiring"
)

func newIGPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "igp",
		Short: "Manage the Interchain Gas Paymaster on one chain",
	}
	cmd.AddCommand(
		newIGPDeployProgramCmd(),
		newIGPInitAccountCmd(),
		newIGPQueryCmd(),
		newIGPPayForGasCmd(),
		newIGPClaimCmd(),
		newIGPGasOracleConfigCmd(),
	)
	return cmd
}

func newIGPDeployProgramCmd() *cobra.Command {
	var chain, bytecodePath, keypairPath string
	cmd := &cobra.Command{
		Use:   "deploy-program",
		Short: "Upload the IGP program bytecode and persist its program ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.igp.deploy-program"); err != nil {
				return err
			}
			artifact, programKey, bufferKey, err := loadDeployArtifact(a.flags.envPath, "igp", bytecodePath, keypairPath)
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
					"igp": {ProgramName: "igp", ProgramID: programKey.PublicKey().String(), Sha256OfBytecode: artifact.Sha256Hex()},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&bytecodePath, "bytecode", "", "path to the compiled IGP program binary")
	cmd.Flags().StringVar(&keypairPath, "program-keypair", "", "path to the program's keypair file (generated if absent)")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("bytecode")
	return cmd
}

func newIGPInitAccountCmd() *cobra.Command {
	var chain, programID, owner, beneficiary, context string
	cmd := &cobra.Command{
		Use:   "init-igp-account",
		Short: "Initialize an IGP account on one chain, idempotently",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.igp.init-igp-account"); err != nil {
				return err
			}
			igpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			ownerKey, err := solana.PublicKeyFromBase58(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			beneficiaryKey, err := solana.PublicKeyFromBase58(beneficiary)
			if err != nil {
				return fmt.Errorf("invalid --beneficiary: %w", err)
			}
			var salt [32]byte // zero salt: one IGP account per program, the common case

			igpAccount, _, err := sealevel.DeriveIGPAccount(igpProgramID, salt)
			if err != nil {
				return err
			}
			ops, err := protocol.PlanIGPInit(cmd.Context(), a.cc, chain, igpProgramID, ownerKey, beneficiaryKey, salt)
			if err != nil {
				return err
			}
			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun {
				return nil
			}
			return a.store.Merge(environment.IGPAccountsPath(chain, context), environment.IGPAccountsFile{
				SchemaVersion: environment.CurrentSchemaVersion,
				Accounts: map[string]environment.IGPAccountRecord{
					chain: {
						SchemaVersion:    environment.CurrentSchemaVersion,
						ProgramID:        igpProgramID.String(),
						IGPAccountPubkey: igpAccount.String(),
						ContextName:      context,
						Owner:            ownerKey.String(),
						Beneficiary:      beneficiaryKey.String(),
						PerRemoteDomainGasOracle: map[string]environment.GasOracleConfig{},
						DestinationGasOverheads:  map[string]string{},
					},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "IGP program ID")
	cmd.Flags().StringVar(&owner, "owner", "", "IGP account owner")
	cmd.Flags().StringVar(&beneficiary, "beneficiary", "", "gas fee beneficiary")
	cmd.Flags().StringVar(&context, "context", "default", "deployment context name")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("owner")
	cmd.MarkFlagRequired("beneficiary")
	return cmd
}

func newIGPQueryCmd() *cobra.Command {
	var chain, programID, account string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read back an IGP account's on-chain state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			igpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			igpAccount, err := solana.PublicKeyFromBase58(account)
			if err != nil {
				return fmt.Errorf("invalid --account: %w", err)
			}
			summary, err := inspector.InspectIGP(cmd.Context(), a.cc, chain, igpProgramID, igpAccount)
			if err != nil {
				return err
			}
			return renderQuery(cmd, a, summary, nil)
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "IGP program ID")
	cmd.Flags().StringVar(&account, "account", "", "IGP account address")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("account")
	return cmd
}

func newIGPPayForGasCmd() *cobra.Command {
	var chain, programID, account, messageID string
	var remoteDomain uint32
	var gasAmount uint64
	cmd := &cobra.Command{
		Use:   "pay-for-gas",
		Short: "Pay for gas on behalf of a dispatched message",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.igp.pay-for-gas"); err != nil {
				return err
			}
			igpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			igpAccount, err := solana.PublicKeyFromBase58(account)
			if err != nil {
				return fmt.Errorf("invalid --account: %w", err)
			}
			id, err := parseMessageID(messageID)
			if err != nil {
				return err
			}
			ix, err := protocol.BuildIGPPayForGasInstruction(igpProgramID, igpAccount, a.cc.Payer().PublicKey, protocol.IGPPayForGasArgs{
				MessageID:    id,
				RemoteDomain: remoteDomain,
				GasAmount:    gasAmount,
			})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, fmt.Sprintf("igp.pay-for-gas.%s.%x", chain, id[:4]), ix, a.cc.Payer().PublicKey, 40_000,
				fmt.Sprintf("pay %d gas for message %x on %s", gasAmount, id, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "IGP program ID")
	cmd.Flags().StringVar(&account, "account", "", "IGP account address")
	cmd.Flags().StringVar(&messageID, "message-id", "", "32-byte dispatched message ID, hex-encoded")
	cmd.Flags().Uint32Var(&remoteDomain, "remote-domain", 0, "destination domain the message was sent to")
	cmd.Flags().Uint64Var(&gasAmount, "gas-amount", 0, "gas amount to pay for")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("message-id")
	cmd.MarkFlagRequired("remote-domain")
	cmd.MarkFlagRequired("gas-amount")
	return cmd
}

func newIGPClaimCmd() *cobra.Command {
	var chain, programID, account, beneficiary string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim accumulated gas fees to the beneficiary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.igp.claim"); err != nil {
				return err
			}
			igpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			igpAccount, err := solana.PublicKeyFromBase58(account)
			if err != nil {
				return fmt.Errorf("invalid --account: %w", err)
			}
			beneficiaryKey, err := solana.PublicKeyFromBase58(beneficiary)
			if err != nil {
				return fmt.Errorf("invalid --beneficiary: %w", err)
			}
			ix, err := protocol.BuildIGPClaimInstruction(igpProgramID, igpAccount, beneficiaryKey, protocol.IGPClaimArgs{Amount: amount})
			if err != nil {
				return err
			}
			ops := singleOperation(chain, "igp.claim."+chain, ix, a.cc.Payer().PublicKey, 20_000,
				fmt.Sprintf("claim %d to %s on %s", amount, beneficiaryKey, chain))
			_, err = applyOrDryRun(cmd, a, ops)
			return err
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "IGP program ID")
	cmd.Flags().StringVar(&account, "account", "", "IGP account address")
	cmd.Flags().StringVar(&beneficiary, "beneficiary", "", "beneficiary address")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to claim")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("beneficiary")
	return cmd
}

func newIGPGasOracleConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gas-oracle-config",
		Short: "Get or set per-remote-domain gas oracle configuration",
	}
	cmd.AddCommand(newIGPGasOracleConfigSetCmd(), newIGPGasOracleConfigGetCmd())
	return cmd
}

func newIGPGasOracleConfigSetCmd() *cobra.Command {
	var chain, programID, account string
	var remoteDomain uint32
	var tokenExchangeRate, gasPrice string
	var tokenDecimals uint8
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set one remote domain's gas oracle config and record it in gas-oracle-configs.json (on-chain state is not read first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, chain)
			if err != nil {
				return err
			}
			if err := a.cc.RequireSigner("cli.igp.gas-oracle-config.set"); err != nil {
				return err
			}
			igpProgramID, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			igpAccount, err := solana.PublicKeyFromBase58(account)
			if err != nil {
				return fmt.Errorf("invalid --account: %w", err)
			}
			rate, err := decimalStringTo128(tokenExchangeRate)
			if err != nil {
				return fmt.Errorf("invalid --token-exchange-rate: %w", err)
			}
			price, err := decimalStringTo128(gasPrice)
			if err != nil {
				return fmt.Errorf("invalid --gas-price: %w", err)
			}

			desired := []wiring.GasOracleDesired{{
				Chain: chain, IGPProgramID: igpProgramID, IGPAccount: igpAccount,
				RemoteDomain: remoteDomain, TokenExchangeRate: rate, GasPrice: price, TokenDecimals: tokenDecimals,
			}}
			ops, err := wiring.PlanGasOracleConfig(a.cc.Payer().PublicKey, desired)
			if err != nil {
				return err
			}
			if _, err := applyOrDryRun(cmd, a, ops); err != nil {
				return err
			}
			if a.flags.dryRun || len(ops) == 0 {
				return nil
			}
			return a.store.Merge(environment.GasOracleConfigsPath(), environment.GasOracleConfigsFile{
				SchemaVersion: environment.CurrentSchemaVersion,
				Chains: map[string]map[string]environment.GasOracleConfig{
					chain: {fmt.Sprintf("%d", remoteDomain): {TokenExchangeRate: tokenExchangeRate, GasPrice: gasPrice, TokenDecimals: tokenDecimals}},
				},
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain name")
	cmd.Flags().StringVar(&programID, "program-id", "", "IGP program ID")
	cmd.Flags().StringVar(&account, "account", "", "IGP account address")
	cmd.Flags().Uint32Var(&remoteDomain, "remote-domain", 0, "remote chain's domain ID")
	cmd.Flags().StringVar(&tokenExchangeRate, "token-exchange-rate", "0", "decimal token exchange rate")
	cmd.Flags().StringVar(&gasPrice, "gas-price", "0", "decimal gas price")
	cmd.Flags().Uint8Var(&tokenDecimals, "token-decimals", 9, "remote token decimals")
	cmd.MarkFlagRequired("chain")
	cmd.MarkFlagRequired("program-id")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("remote-domain")
	return cmd
}

func newIGPGasOracleConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the desired gas-oracle-configs.json contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			envPath, err := cmd.Root().PersistentFlags().GetString("env")
			if err != nil {
				return err
			}
			store := environment.New(envPath)
			var file environment.GasOracleConfigsFile
			if err := store.Load(environment.GasOracleConfigsPath(), &file); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(file)
		},
	}
	return cmd
}

// loadDeployArtifact reads a compiled program binary off disk and loads or
// generates the keypair that will own its program ID. A generated keypair
// is written under <envRoot>/keys/<programName>.json so a later invocation
// against the same environment reuses the same program ID.
func loadDeployArtifact(envRoot, programName, bytecodePath, keypairPath string) (deploy.Artifact, solana.PrivateKey, solana.PrivateKey, error) {
	bytecode, err := os.ReadFile(bytecodePath)
	if err != nil {
		return deploy.Artifact{}, nil, nil, fmt.Errorf("failed to read --bytecode %q: %w", bytecodePath, err)
	}
	var programKey solana.PrivateKey
	if keypairPath != "" {
		programKey, err = deploy.LoadKeypair(keypairPath)
	} else {
		keysDir := filepath.Join(envRoot, "keys")
		if mkErr := os.MkdirAll(keysDir, 0o755); mkErr != nil {
			return deploy.Artifact{}, nil, nil, mkErr
		}
		generatedPath := filepath.Join(keysDir, programName+".json")
		if _, statErr := os.Stat(generatedPath); statErr == nil {
			programKey, err = deploy.LoadKeypair(generatedPath)
		} else {
			programKey, err = deploy.GenerateKeypair(generatedPath)
		}
	}
	if err != nil {
		return deploy.Artifact{}, nil, nil, err
	}
	bufferKey := solana.NewWallet().PrivateKey
	artifact := deploy.Artifact{ProgramName: programName, Bytecode: bytecode, ProgramKey: programKey}
	return artifact, programKey, bufferKey, nil
}

func parseMessageID(s string) ([32]byte, error) {
	var id [32]byte
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil || len(raw) != 32 {
		return id, fmt.Errorf("--message-id must be a 32-byte hex string")
	}
	copy(id[:], raw)
	return id, nil
}

func decimalStringTo128(s string) ([16]byte, error) {
	var out [16]byte
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return out, fmt.Errorf("not a decimal integer: %q", s)
	}
	if n.Sign() < 0 {
		return out, fmt.Errorf("must be non-negative: %q", s)
	}
	b := n.Bytes() // big-endian
	if len(b) > 16 {
		return out, fmt.Errorf("value %q overflows u128", s)
	}
	for i, v := range b {
		out[len(b)-1-i] = v // little-endian, matching RemoteGasOracleConfig's wire layout
	}
	return out, nil
}
