package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const libSource = `message Transfer { amount: Int as coins }

fun fee(x: Int): Int {
    return x / 100;
}
`

const mainSource = `import "./lib";

contract Wallet {
    balance: Int = 0;

    receive(msg: Transfer) {
        self.balance += msg.amount - fee(msg.amount);
    }

    get fun total(): Int { return self.balance; }
}
`

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "lib.tact", libSource)
	writeTestFile(t, dir, "main.tact", mainSource)
	return dir
}

func TestRunBasic(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "# Repository Map") {
		t.Error("missing agent context header")
	}
	if !strings.Contains(out, "repo:") {
		t.Error("missing repo: header")
	}
	if !strings.Contains(out, "files[2]") {
		t.Errorf("expected 2 files, got:\n%s", out)
	}
	if !strings.Contains(out, "lib.tact") {
		t.Error("missing lib.tact")
	}
	if !strings.Contains(out, "main.tact") {
		t.Error("missing main.tact")
	}
}

func TestRunRaw(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--raw", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if strings.Contains(out, "# Repository Map") {
		t.Error("--raw should suppress agent context header")
	}
	if !strings.HasPrefix(out, "repo:") {
		t.Errorf("--raw output should start with repo:, got:\n%s", out)
	}
}

func TestRunMaxFiles(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"-n", "1", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "files[1]") {
		t.Errorf("expected 1 file, got:\n%s", out)
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"-V"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "tactguide") {
		t.Errorf("version output: %q", stdout.String())
	}
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "readme.txt", "nothing here")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for no parseable files")
	}
	if !strings.Contains(err.Error(), "no parseable files") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunCache(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cachePath := filepath.Join(t.TempDir(), "test.cache")

	var stdout1, stderr1 bytes.Buffer
	err := run([]string{"--cache", cachePath, dir}, &stdout1, &stderr1)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Cache file should contain raw TOON (no header)
	cacheData, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("cache not created: %v", err)
	}
	if strings.Contains(string(cacheData), "# Repository Map") {
		t.Error("cache file should not contain agent header")
	}

	// Second run should use cache and include header
	var stdout2, stderr2 bytes.Buffer
	err = run([]string{"--cache", cachePath, dir}, &stdout2, &stderr2)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if stdout1.String() != stdout2.String() {
		t.Errorf("cache mismatch:\nfirst:\n%s\nsecond:\n%s", stdout1.String(), stdout2.String())
	}
}

func TestRunCacheRaw(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cachePath := filepath.Join(t.TempDir(), "test.cache")

	var stdout1, stderr1 bytes.Buffer
	if err := run([]string{"--cache", cachePath, dir}, &stdout1, &stderr1); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Second run with --raw should use cache but suppress header
	var stdout2, stderr2 bytes.Buffer
	if err := run([]string{"--raw", "--cache", cachePath, dir}, &stdout2, &stderr2); err != nil {
		t.Fatalf("second run: %v", err)
	}
	out := stdout2.String()
	if strings.Contains(out, "# Repository Map") {
		t.Error("--raw with cache should suppress agent header")
	}
	if !strings.HasPrefix(out, "repo:") {
		t.Errorf("--raw cached output should start with repo:, got:\n%s", out)
	}
}

func TestRunFilteredOutputNotCached(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cachePath := filepath.Join(t.TempDir(), "test.cache")

	var stdout bytes.Buffer
	if err := run([]string{"--symbol", "fee", "--cache", cachePath, dir}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(cachePath); err == nil {
		t.Error("filtered map should not be cached")
	}
}

func TestRunSymbols(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"lib.tact,fee,function,3,",
		"lib.tact,Transfer,message,1,",
		"main.tact,Wallet,contract,3,",
		`main.tact,Wallet.total,method,10,"get fun total(): Int"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing symbol row %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Wallet.balance,field") {
		t.Errorf("fields belong in the members table only:\n%s", out)
	}
}

func TestRunDependencies(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "dependencies[1]") {
		t.Errorf("expected one dependency:\n%s", out)
	}
	if !strings.Contains(out, "main.tact,lib.tact,") {
		t.Errorf("main.tact should depend on lib.tact:\n%s", out)
	}
}

func TestRunCalls(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(stdout.String(), "Wallet.receive(Transfer),fee") {
		t.Errorf("expected call edge from the receiver to fee:\n%s", stdout.String())
	}
}

func TestRunNotADirectory(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{filepath.Join(dir, "lib.tact")}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for a file root")
	}
	if !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-file-size", "100", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	if !strings.Contains(stderr.String(), "main.tact: skipped") {
		t.Errorf("expected a skip warning, got stderr: %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "files[1]") {
		t.Errorf("expected only lib.tact:\n%s", stdout.String())
	}
}

func TestRunSymbolFilter(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--symbol", "fee", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "fee,function") {
		t.Errorf("fee definition should appear in symbols:\n%s", out)
	}
	if !strings.Contains(out, "callsites[") {
		t.Errorf("--symbol output should include callsites table:\n%s", out)
	}
	if strings.Contains(out, "Transfer,message") {
		t.Errorf("unrelated symbols should be dropped:\n%s", out)
	}
}

func TestRunSymbolFilterMembers(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--symbol", "Transfer", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), `lib.tact,Transfer.amount,1,"amount: Int as coins"`) {
		t.Errorf("members table should list the message fields:\n%s", stdout.String())
	}
}

func TestRunSymbolFilterNoMatch(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--symbol", "NoSuchSymbol", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(stdout.String(), "files[0]") {
		t.Errorf("expected empty files table:\n%s", stdout.String())
	}
}

func TestRunFileFilter(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--file", "lib", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "files[1]") || !strings.Contains(out, "  lib.tact,") {
		t.Errorf("only lib.tact should be a file row:\n%s", out)
	}
	if strings.Contains(out, "main.tact,Wallet") {
		t.Errorf("main.tact symbols should be dropped:\n%s", out)
	}
}

func TestRunFullMapNoCallSites(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	if strings.Contains(stdout.String(), "callsites[") {
		t.Errorf("full map output should not include callsites table:\n%s", stdout.String())
	}
}

func TestRunNoTests(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, "tests/wallet.spec.tact", "contract Probe {}\n")

	var all, stderr bytes.Buffer
	if err := run([]string{dir}, &all, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(all.String(), "files[3]") {
		t.Errorf("expected the test contract in the full map:\n%s", all.String())
	}

	var filtered bytes.Buffer
	if err := run([]string{"--no-tests", dir}, &filtered, &stderr); err != nil {
		t.Fatalf("run --no-tests: %v", err)
	}
	if strings.Contains(filtered.String(), "Probe") {
		t.Errorf("--no-tests should drop the test contract:\n%s", filtered.String())
	}
}

func TestRunConfigExclude(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, "legacy/old.tact", "contract Old {}\n")
	writeTestFile(t, dir, "tactguide.yaml", "exclude:\n  - legacy/\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(stdout.String(), "legacy") {
		t.Errorf("excluded directory should be skipped:\n%s", stdout.String())
	}
}

func TestRunConfigStdlib(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	stdlib := t.TempDir()
	writeTestFile(t, stdlib, "libs/ownable.tact", "trait Ownable {\n    owner: Address;\n}\n")
	writeTestFile(t, dir, "main.tact", "import \"@stdlib/ownable\";\n\ncontract Vault with Ownable {\n    owner: Address;\n}\n")
	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	writeTestFile(t, filepath.Dir(cfgPath), "custom.yaml", "stdlib: "+stdlib+"\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config", cfgPath, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "files[1]") {
		t.Errorf("standard library files should stay out of the map:\n%s", out)
	}
	if !strings.Contains(out, "main.tact,Vault,contract") {
		t.Errorf("missing Vault:\n%s", out)
	}
}

func TestRunBadConfig(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, "tactguide.yaml", "no_such_setting: 1\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for an unknown config key")
	}
}

func TestRunLog(t *testing.T) {
	// The debug log is process-wide.
	dir := createSampleRepo(t)
	logPath := filepath.Join(t.TempDir(), "tactguide.log")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--log", logPath, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log not written: %v", err)
	}
	if !strings.Contains(string(data), "[index] workspace") {
		t.Errorf("log = %q", data)
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"flags first", []string{"-n", "5", "."}, []string{"-n", "5", "."}},
		{"positional first", []string{".", "-n", "5"}, []string{"-n", "5", "."}},
		{"mixed", []string{"--symbol", "Wallet", ".", "-n", "5"}, []string{"--symbol", "Wallet", "-n", "5", "."}},
		{"config value", []string{".", "--config", "x.yaml"}, []string{"--config", "x.yaml", "."}},
		{"no flags", []string{"."}, []string{"."}},
		{"no args", nil, nil},
		{"bool flag", []string{"-V"}, []string{"-V"}},
		{"double dash", []string{"-w", "--", "-odd.tact"}, []string{"-w", "--", "-odd.tact"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := reorderArgs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("len: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %q, want %q (full: %v)", i, got[i], tt.want[i], got)
					break
				}
			}
		})
	}
}
