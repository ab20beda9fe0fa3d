package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/tactguide/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "contracts/jetton.tact", "contracts/jetton.tact"},
		{"member name", "Wallet.balance", "Wallet.balance"},
		{"getter", "get fun balance(): Int", `"get fun balance(): Int"`},
		{"receiver", "receive(msg: Transfer)", `"receive(msg: Transfer)"`},
		{"bare receiver", "receive()", "receive()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	rm := &model.RepoMap{
		RepoName: "jetton",
		Root:     "jetton",
		Files: []model.FileInfo{
			{
				Path: "minter.tact",
				Rank: 0.75,
				Tags: []model.Tag{
					{Name: "Minter", Kind: model.Definition, SymbolKind: model.Contract, Line: 3, Signature: "contract Minter"},
					{Name: "Minter.supply", Kind: model.Definition, SymbolKind: model.Field, Line: 4, File: "minter.tact", Signature: "supply: Int"},
					{Name: "fee", Kind: model.Reference, SymbolKind: model.Function, Line: 9, Target: "utils.tact"},
				},
			},
			{
				Path: "utils.tact",
				Rank: 0.25,
				Tags: []model.Tag{
					{Name: "fee", Kind: model.Definition, SymbolKind: model.Function, Line: 1, Signature: "fun fee(): Int"},
				},
			},
		},
		Dependencies: []model.Dependency{
			{Source: "minter.tact", Target: "utils.tact", Symbols: []string{"fee"}},
		},
		Contracts: []model.ContractDep{
			{Source: "Minter", Target: "Wallet", Kinds: []string{"codeOf", "initOf"}, Via: []string{"deploy"}},
		},
	}

	want := strings.Join([]string{
		"repo: jetton",
		"root: jetton",
		"files[2]{path,rank}:",
		"  minter.tact,0.7500",
		"  utils.tact,0.2500",
		// fields and references stay out of the symbols table
		"symbols[2]{file,name,kind,line,signature}:",
		"  minter.tact,Minter,contract,3,contract Minter",
		`  utils.tact,fee,function,1,"fun fee(): Int"`,
		"dependencies[1]{source,target,symbols}:",
		"  minter.tact,utils.tact,fee",
		"calls[0]{caller,callee}:",
		"contracts[1]{source,target,kinds,via}:",
		"  Minter,Wallet,codeOf initOf,deploy",
	}, "\n")
	if got := Encode(rm); got != want {
		t.Errorf("Encode =\n%s\nwant\n%s", got, want)
	}
}

func TestEncodeMembers(t *testing.T) {
	t.Parallel()

	rm := &model.RepoMap{
		RepoName: "r",
		Root:     "r",
		Members: []model.Tag{
			{Name: "Wallet.balance", File: "wallet.tact", Line: 7, Signature: "balance: Int as coins"},
		},
	}
	got := Encode(rm)
	if !strings.Contains(got, "members[1]{file,name,line,signature}:\n  wallet.tact,Wallet.balance,7,\"balance: Int as coins\"") {
		t.Errorf("members table missing:\n%s", got)
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(&model.RepoMap{RepoName: "empty", Root: "empty"})
	for _, want := range []string{"files[0]{path,rank}:", "symbols[0]{file,name,kind,line,signature}:"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q, got:\n%s", want, got)
		}
	}
	for _, absent := range []string{"members[", "callsites[", "contracts["} {
		if strings.Contains(got, absent) {
			t.Errorf("empty map printed %q:\n%s", absent, got)
		}
	}
}
