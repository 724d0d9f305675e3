// Package cli implements the Command Surface (C9): it maps the CLI command
// taxonomy onto orchestrations over the Chain Context, Environment Store,
// Address Deriver, Program Deployer, Protocol Initializer, Router Wiring
// Engine, Transaction Conductor, and Query/Inspector.
//
// Grounded on the teacher repo's cobra command layout in
// controlplane/telemetry/internal/data/cli (one *cobra.Command builder per
// subject, persistent flags read back via cmd.Root().PersistentFlags(),
// RunE returning wrapped errors) and e2e/internal/devnet/cmd (root command
// composing subcommands via rootCmd.AddCommand).
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/config"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/chaincontext"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/conductor"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/deploy"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/environment"
	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
)

// ExitCode is the process exit status, per the external interfaces exit
// code table.
type ExitCode int

// NewRootCommand builds the `hyperlane` root command and its full subject
// tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hyperlane",
		Short: "Operator toolchain for the Hyperlane Solana-VM protocol stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("env", ".", "path to the environment directory")
	root.PersistentFlags().String("url", "", "override the RPC endpoint for all chains")
	root.PersistentFlags().String("keypair", "", "payer identity: path to a keypair file, or a base58 public key for read-only commands")
	root.PersistentFlags().Uint32("compute-budget", chaincontext.DefaultComputeBudget, "per-transaction compute unit cap")
	root.PersistentFlags().Uint32("heap-size", 0, "per-transaction heap frame bytes")
	root.PersistentFlags().String("config", "", "path to a baseline CLI config file")
	root.PersistentFlags().Bool("require-tx-approval", false, "enable the interactive approval gate before submitting transactions")
	root.PersistentFlags().Bool("dry-run", false, "print the planned operations without submitting any transaction")
	root.PersistentFlags().Bool("json", false, "render query output as JSON instead of a table")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(
		newCoreCmd(),
		newMailboxCmd(),
		newTokenCmd(),
		newIGPCmd(),
		newWarpRouteCmd(),
		newMultisigISMCmd(),
		newValidatorAnnounceCmd(),
		newTestISMCmd(),
		newHelloWorldCmd(),
		newSquadsCmd(),
	)

	return root
}

// Run executes the root command and maps the outcome to an exit code, per
// §6's exit code table.
func Run() ExitCode {
	if err := NewRootCommand().Execute(); err != nil {
		if e, ok := err.(*errs.Error); ok {
			return ExitCode(e.Kind.ExitCode())
		}
		return 1
	}
	return 0
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// appFlags is the parsed form of the global persistent flags, read back
// once per command invocation.
type appFlags struct {
	envPath         string
	url             string
	keypair         string
	computeBudget   uint32
	heapSize        uint32
	configPath      string
	requireApproval bool
	dryRun          bool
	json            bool
	verbose         bool
}

func readAppFlags(cmd *cobra.Command) (appFlags, error) {
	var f appFlags
	var err error
	get := func(name string, dst any) {
		if err != nil {
			return
		}
		switch d := dst.(type) {
		case *string:
			*d, err = cmd.Root().PersistentFlags().GetString(name)
		case *uint32:
			*d, err = cmd.Root().PersistentFlags().GetUint32(name)
		case *bool:
			*d, err = cmd.Root().PersistentFlags().GetBool(name)
		}
	}
	get("env", &f.envPath)
	get("url", &f.url)
	get("keypair", &f.keypair)
	get("compute-budget", &f.computeBudget)
	get("heap-size", &f.heapSize)
	get("config", &f.configPath)
	get("require-tx-approval", &f.requireApproval)
	get("dry-run", &f.dryRun)
	get("json", &f.json)
	get("verbose", &f.verbose)
	if err != nil {
		return appFlags{}, fmt.Errorf("failed to read global flags: %w", err)
	}
	return f, nil
}

// app bundles everything a command handler needs: the resolved chain
// context, the environment store, and the flags that shape plan/apply/
// render behavior.
type app struct {
	flags appFlags
	cc    *chaincontext.Context
	store *environment.Store
	log   *slog.Logger

	baseline *config.Baseline
}

// newApp resolves global flags into a usable app for one command
// invocation. chainNames lists every chain this command will touch, so the
// domain-collision invariant can be checked up front.
func newApp(cmd *cobra.Command, chainNames ...string) (*app, error) {
	flags, err := readAppFlags(cmd)
	if err != nil {
		return nil, err
	}

	baseline, err := config.LoadBaseline(flags.configPath)
	if err != nil {
		return nil, errs.New(errs.KindConfigError, "", "cli.newApp", err, "failed to load baseline config")
	}

	signer, err := resolveSigner(flags.keypair)
	if err != nil {
		return nil, err
	}

	chains := make(map[string]chaincontext.Chain, len(chainNames))
	var descriptors []config.ChainDescriptor
	for _, name := range chainNames {
		d, err := config.Resolve(baseline, name)
		if err != nil {
			return nil, errs.New(errs.KindConfigError, name, "cli.newApp", err, "failed to resolve chain")
		}
		if flags.url != "" {
			d.RPCURL = flags.url
		}
		descriptors = append(descriptors, d)
		chains[name] = chaincontext.Chain{Name: d.Name, URL: d.RPCURL, Domain: d.Domain}
	}
	if err := config.ValidateNoDomainCollision(descriptors); err != nil {
		return nil, errs.New(errs.KindConfigError, "", "cli.newApp", err, "domain collision across chains")
	}

	cc := chaincontext.New(
		signer,
		chains,
		chaincontext.WithComputeBudget(flags.computeBudget),
		chaincontext.WithHeapFrameBytes(flags.heapSize),
		chaincontext.WithApprovalRequired(flags.requireApproval),
	)

	return &app{
		flags:    flags,
		cc:       cc,
		store:    environment.New(flags.envPath),
		log:      newLogger(flags.verbose),
		baseline: baseline,
	}, nil
}

// resolveSigner parses --keypair: a filesystem path loads a signing
// identity, anything that parses as a base58 public key becomes a
// read-only identity, matching the teacher's CLI keypair-or-pubkey
// convention for read-only tooling invocations.
func resolveSigner(keypair string) (chaincontext.Signer, error) {
	if keypair == "" {
		return chaincontext.Signer{}, errs.New(errs.KindNoSigner, "", "cli.resolveSigner", nil, "no --keypair provided")
	}
	if _, err := os.Stat(keypair); err == nil {
		priv, err := deploy.LoadKeypair(keypair)
		if err != nil {
			return chaincontext.Signer{}, errs.New(errs.KindConfigError, "", "cli.resolveSigner", err, "failed to load keypair %q", keypair)
		}
		pub := priv.PublicKey()
		return chaincontext.Signer{PublicKey: pub, PrivateKey: &priv}, nil
	}
	pub, err := solana.PublicKeyFromBase58(keypair)
	if err != nil {
		return chaincontext.Signer{}, errs.New(errs.KindConfigError, "", "cli.resolveSigner", err, "%q is neither a readable keypair file nor a valid public key", keypair)
	}
	return chaincontext.Signer{PublicKey: pub}, nil
}

// applyOrDryRun is the command→handler split from the ambient stack: every
// state-changing command funnels its plan through here, so --dry-run always
// has a uniform meaning (print, don't submit) regardless of which subject
// built the plan.
func applyOrDryRun(cmd *cobra.Command, a *app, ops conductor.OperationList) ([]conductor.Result, error) {
	if len(ops) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to do; environment already matches the desired state")
		return nil, nil
	}

	if a.flags.dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d operation(s) planned (dry run, nothing submitted):\n", len(ops))
		for _, op := range ops {
			fmt.Fprintf(cmd.OutOrStdout(), "  - [%s] %s\n", op.Chain, op.Summary)
		}
		return nil, nil
	}

	if err := a.cc.RequireSigner("cli.applyOrDryRun"); err != nil {
		return nil, err
	}

	lock, err := environment.AcquireLock(a.flags.envPath)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	var approve conductor.ApprovalFunc
	if a.flags.requireApproval {
		approve = conductor.InteractiveApprove(cmd.InOrStdin(), cmd.OutOrStdout())
	} else {
		approve = conductor.AutoApprove(cmd.OutOrStdout())
	}

	return conductor.Submit(cmd.Context(), a.cc, ops, approve)
}

// renderQuery writes v as a table (via renderTable, if non-nil) or as JSON,
// depending on --json, the supplemented output-mode feature shared by every
// query command.
func renderQuery(cmd *cobra.Command, a *app, v any, renderTable func()) error {
	if a.flags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if renderTable != nil {
		renderTable()
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
