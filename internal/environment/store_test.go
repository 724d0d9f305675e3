package environment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_LoadMissingIsEmptyRecord(t *testing.T) {
	s := New(t.TempDir())

	var rec ProgramIDsRecord
	if err := s.Load(CoreProgramIDsPath("solanatestnet"), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Programs != nil {
		t.Errorf("expected zero-value record for missing file, got %+v", rec)
	}
}

func TestStore_MergeUnionsKeysAndIsIdempotent(t *testing.T) {
	s := New(t.TempDir())
	path := CoreProgramIDsPath("solanatestnet")

	first := ProgramIDsRecord{
		SchemaVersion: CurrentSchemaVersion,
		Programs: map[string]ProgramRecord{
			"mailbox": {ProgramName: "mailbox", ProgramID: "Mailbox1111111111111111111111111111111111"},
		},
	}
	if err := s.Merge(path, first); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}

	second := ProgramIDsRecord{
		SchemaVersion: CurrentSchemaVersion,
		Programs: map[string]ProgramRecord{
			"mailbox": {ProgramName: "mailbox", ProgramID: "Mailbox1111111111111111111111111111111111"},
			"igp":     {ProgramName: "igp", ProgramID: "Igp11111111111111111111111111111111111111"},
		},
	}
	if err := s.Merge(path, second); err != nil {
		t.Fatalf("second merge failed: %v", err)
	}

	var got ProgramIDsRecord
	if err := s.Load(path, &got); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got.Programs) != 2 {
		t.Fatalf("expected 2 programs after merge, got %d: %+v", len(got.Programs), got.Programs)
	}

	before, err := readFile(t, filepath.Join(s.Root, path))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Merge(path, second); err != nil {
		t.Fatalf("repeat merge failed: %v", err)
	}
	after, err := readFile(t, filepath.Join(s.Root, path))
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Errorf("merging identical content twice must be idempotent on disk; before=%q after=%q", before, after)
	}
}

func TestStore_MergePreservesUnknownTopLevelKeys(t *testing.T) {
	s := New(t.TempDir())
	path := GasOracleConfigsPath()

	// Simulate a hand-edited or newer-schema file with an extra top-level
	// key this reader's schema doesn't know about.
	raw := `{"schemaVersion": 1, "chains": {}, "futureFeatureFlag": true}`
	full := filepath.Join(s.Root, path)
	if err := writeFile(t, full, raw); err != nil {
		t.Fatal(err)
	}

	patch := GasOracleConfigsFile{
		SchemaVersion: CurrentSchemaVersion,
		Chains: map[string]map[string]GasOracleConfig{
			"solanatestnet": {"11155111": {TokenExchangeRate: "1000000000", GasPrice: "20000000000", TokenDecimals: 18}},
		},
	}
	if err := s.Merge(path, patch); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	after, err := readFile(t, full)
	if err != nil {
		t.Fatal(err)
	}
	if !contains(after, "futureFeatureFlag") {
		t.Errorf("expected unknown key futureFeatureFlag to be preserved on merge, got: %s", after)
	}
}

func TestStore_MergeAccumulatesDisjointNestedKeys(t *testing.T) {
	s := New(t.TempDir())
	path := WarpRouteTokenConfigPath("usdc")

	// Two separate `warp-route deploy` invocations for different chains on
	// the same route, each only knowing about its own chain, per the
	// accumulation contract: neither call's nested key for its chain
	// should clobber the other's.
	first := TokenConfigFile{
		SchemaVersion: CurrentSchemaVersion,
		RouteName:     "usdc",
		Chains: map[string]TokenSpec{
			"solanatestnet": {Type: "synthetic", Decimals: 6, Name: "USDC", Symbol: "USDC"},
		},
	}
	if err := s.Merge(path, first); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}

	second := TokenConfigFile{
		SchemaVersion: CurrentSchemaVersion,
		RouteName:     "usdc",
		Chains: map[string]TokenSpec{
			"ethereumsepolia": {Type: "collateral", Decimals: 6, Token: "Mint1111111111111111111111111111111111111"},
		},
	}
	if err := s.Merge(path, second); err != nil {
		t.Fatalf("second merge failed: %v", err)
	}

	var got TokenConfigFile
	if err := s.Load(path, &got); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got.Chains) != 2 {
		t.Fatalf("expected both chains to survive accumulation, got %d: %+v", len(got.Chains), got.Chains)
	}
	if _, ok := got.Chains["solanatestnet"]; !ok {
		t.Errorf("solanatestnet entry from the first merge was dropped by the second")
	}
	if _, ok := got.Chains["ethereumsepolia"]; !ok {
		t.Errorf("ethereumsepolia entry from the second merge is missing")
	}
}

func TestStore_MergeAccumulatesDisjointDoublyNestedKeys(t *testing.T) {
	s := New(t.TempDir())
	path := GasOracleConfigsPath()

	// Two `igp gas-oracle-config set` calls against the same chain but
	// different remote domains must both survive: the nested "chains" ->
	// chain -> remote-domain structure needs a two-level recursive merge,
	// not just a top-level key union.
	first := GasOracleConfigsFile{
		SchemaVersion: CurrentSchemaVersion,
		Chains: map[string]map[string]GasOracleConfig{
			"solanatestnet": {"11155111": {TokenExchangeRate: "1000000000", GasPrice: "20000000000", TokenDecimals: 18}},
		},
	}
	if err := s.Merge(path, first); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}

	second := GasOracleConfigsFile{
		SchemaVersion: CurrentSchemaVersion,
		Chains: map[string]map[string]GasOracleConfig{
			"solanatestnet": {"84532": {TokenExchangeRate: "2000000000", GasPrice: "1000000000", TokenDecimals: 18}},
		},
	}
	if err := s.Merge(path, second); err != nil {
		t.Fatalf("second merge failed: %v", err)
	}

	var got GasOracleConfigsFile
	if err := s.Load(path, &got); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	domains := got.Chains["solanatestnet"]
	if len(domains) != 2 {
		t.Fatalf("expected both remote domains to survive accumulation, got %d: %+v", len(domains), domains)
	}
	if _, ok := domains["11155111"]; !ok {
		t.Errorf("remote domain 11155111 from the first merge was dropped by the second")
	}
	if _, ok := domains["84532"]; !ok {
		t.Errorf("remote domain 84532 from the second merge is missing")
	}
}

func TestStore_ListWarpRoutes(t *testing.T) {
	s := New(t.TempDir())

	names, err := s.ListWarpRoutes()
	if err != nil {
		t.Fatalf("unexpected error on missing dir: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no routes, got %v", names)
	}

	if err := s.Merge(WarpRouteProgramIDsPath("wsol"), WarpRouteProgramIDsFile{SchemaVersion: CurrentSchemaVersion, RouteName: "wsol"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Merge(WarpRouteProgramIDsPath("usdc"), WarpRouteProgramIDsFile{SchemaVersion: CurrentSchemaVersion, RouteName: "usdc"}); err != nil {
		t.Fatal(err)
	}

	names, err = s.ListWarpRoutes()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "usdc" || names[1] != "wsol" {
		t.Errorf("expected sorted [usdc wsol], got %v", names)
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func readFile(t *testing.T, path string) (string, error) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeFile(t *testing.T, path, content string) error {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
