package environment

// CurrentSchemaVersion is the schema version written by this tool. Readers
// accept this version and exactly one prior version (PriorSchemaVersion),
// per the "dynamic JSON shapes" design note.
const CurrentSchemaVersion = 2

// PriorSchemaVersion is the single older schema version readers still
// accept.
const PriorSchemaVersion = 1

// ProgramRecord is the data model's program record:
// { program_name, program_id, keypair_path?, deployed_slot?, sha256_of_bytecode? }.
// Lifecycle: created on first deploy, immutable thereafter except upgrades,
// which append to History.
type ProgramRecord struct {
	ProgramName      string            `json:"programName"`
	ProgramID        string            `json:"programId"`
	KeypairPath      string            `json:"keypairPath,omitempty"`
	DeployedSlot     uint64            `json:"deployedSlot,omitempty"`
	Sha256OfBytecode string            `json:"sha256OfBytecode,omitempty"`
	History          []ProgramUpgrade  `json:"history,omitempty"`
}

// ProgramUpgrade records one prior version of a program, appended to a
// ProgramRecord's History on upgrade rather than overwriting it.
type ProgramUpgrade struct {
	DeployedSlot     uint64 `json:"deployedSlot"`
	Sha256OfBytecode string `json:"sha256OfBytecode"`
}

// ProgramIDsRecord is the persisted shape of core/program-ids.json and
// warp-routes/<name>/program-ids.json: a named set of program records.
type ProgramIDsRecord struct {
	SchemaVersion int                      `json:"schemaVersion"`
	Programs      map[string]ProgramRecord `json:"programs"`

	// Unknown is tagged json:"-", so Store.Load never fills it and
	// Store.Merge never writes it. Keys unknown to this schema survive
	// merges because Store.Merge merges the raw JSON objects on disk.
	Unknown map[string]any `json:"-"`
}

// MailboxStateRecord mirrors the data model's mailbox state:
// { program_id, local_domain, default_ism, nonce, tree_root, max_protocol_fee, protocol_fee, owner }.
type MailboxStateRecord struct {
	SchemaVersion   int    `json:"schemaVersion"`
	ProgramID       string `json:"programId"`
	LocalDomain     uint32 `json:"localDomain"`
	DefaultISM      string `json:"defaultIsm"`
	Nonce           uint64 `json:"nonce"`
	TreeRoot        string `json:"treeRoot"`
	MaxProtocolFee  string `json:"maxProtocolFee"`
	ProtocolFee     string `json:"protocolFee"`
	Owner           string `json:"owner"`
}

// GasOracleConfig is the data model's per-(local,remote) gas oracle config.
// Numeric fields are decimal strings since they may exceed 2^53, per the
// external interfaces JSON conventions.
type GasOracleConfig struct {
	TokenExchangeRate string `json:"tokenExchangeRate"`
	GasPrice          string `json:"gasPrice"`
	TokenDecimals     uint8  `json:"tokenDecimals"`
}

// IGPAccountRecord is the data model's IGP account:
// { program_id, igp_account_pubkey, context_name, owner, beneficiary,
//   per_remote_domain_gas_oracle_config, destination_gas_overheads, account_salt? }.
type IGPAccountRecord struct {
	SchemaVersion              int                        `json:"schemaVersion"`
	ProgramID                  string                     `json:"programId"`
	IGPAccountPubkey           string                     `json:"igpAccountPubkey"`
	ContextName                string                     `json:"contextName"`
	Owner                      string                     `json:"owner"`
	Beneficiary                string                     `json:"beneficiary"`
	AccountSalt                string                     `json:"accountSalt,omitempty"`
	PerRemoteDomainGasOracle   map[string]GasOracleConfig `json:"perRemoteDomainGasOracleConfig"`
	DestinationGasOverheads    map[string]string          `json:"destinationGasOverheads"`
}

// IGPAccountsFile is the persisted shape of igp/<context>/igp-accounts.json:
// one IGP account record per local chain.
type IGPAccountsFile struct {
	SchemaVersion int                         `json:"schemaVersion"`
	Accounts      map[string]IGPAccountRecord `json:"accounts"`
}

// MultisigConfig is the data model's multisig ISM config for one remote
// domain: { validators: set of 20-byte addresses, threshold: u8 }.
type MultisigConfig struct {
	Validators []string `json:"validators"`
	Threshold  uint8    `json:"threshold"`
}

// MultisigConfigFile is the persisted shape of
// multisig-ism-message-id/<context>/multisig-config.json: per remote domain,
// keyed by decimal domain ID string.
type MultisigConfigFile struct {
	SchemaVersion int                       `json:"schemaVersion"`
	RemoteDomains map[string]MultisigConfig `json:"remoteDomains"`
}

// TokenSpec is the warp route token spec: exactly one of native, synthetic,
// or collateral, per the external interfaces token config JSON shapes.
type TokenSpec struct {
	Type     string `json:"type"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Token    string `json:"token,omitempty"` // collateral mint, base58
	Memo     bool   `json:"memo,omitempty"`
}

// TokenConfigFile is the persisted shape of
// warp-routes/<name>/token-config.json: one token spec per chain.
type TokenConfigFile struct {
	SchemaVersion int                  `json:"schemaVersion"`
	RouteName     string               `json:"routeName"`
	Chains        map[string]TokenSpec `json:"chains"`
}

// RouterSet is the router set from the data model: remote_domain ->
// 32-byte remote_router_address (base58), for any router-shaped program
// (warp routes, HelloWorld, ICA).
type RouterSet map[string]string

// WarpRouteProgramIDsFile is the persisted shape of
// warp-routes/<name>/program-ids.json: one warp route program per chain,
// plus its enrolled router set.
type WarpRouteProgramIDsFile struct {
	SchemaVersion int                      `json:"schemaVersion"`
	RouteName     string                   `json:"routeName"`
	Programs      map[string]ProgramRecord `json:"programs"`
	Routers       map[string]RouterSet     `json:"routers"`
}

// GasOracleConfigsFile is the persisted shape of the top-level
// gas-oracle-configs.json: the desired configuration, diffed against
// on-chain IGP account state by the router wiring engine (§4.6 step 4).
type GasOracleConfigsFile struct {
	SchemaVersion int                                  `json:"schemaVersion"`
	Chains        map[string]map[string]GasOracleConfig `json:"chains"` // localChain -> remoteDomain -> config
}
