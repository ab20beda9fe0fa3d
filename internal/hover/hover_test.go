package hover

import (
	"fmt"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/phobologic/tactguide/internal/imports"
	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/parse"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/resolve"
	"github.com/phobologic/tactguide/internal/syntax"
)

const source = `// Moves coins.
message(0x7362d09c) Transfer { amount: Int as coins }

trait Ownable { owner: Address; }

contract Counter(owner: Address) with Ownable {
    const FEE: Int = 10;
    count: Int as uint32 = 0;

    receive(msg: Transfer) {
        let total = self.count + msg.amount;
        dump(total);
    }

    get fun current(): Int { return self.count; }
    get(0x1234) fun custom(): Int { return 1; }
}
`

func setup(t *testing.T) (*resolve.Session, *psi.File) {
	t.Helper()
	idx := index.New("", "file:///w/")
	f := psi.NewFile("file:///w/main.tact", parse.Source([]byte(source), 1))
	idx.AddFile(f)
	s, err := resolve.NewSession(idx, imports.Resolver{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return s, f
}

func at(t *testing.T, f *psi.File, marked string) psi.Node {
	t.Helper()
	bar := strings.Index(marked, "|")
	plain := marked[:bar] + marked[bar+1:]
	i := strings.Index(source, plain)
	if i < 0 {
		t.Fatalf("%q not in source", plain)
	}
	return psi.Wrap(syntax.NodeAt(f.Tree.Root, uint32(i+bar)), f)
}

func TestHover(t *testing.T) {
	t.Parallel()
	s, f := setup(t)
	tests := []struct {
		name   string
		marked string
		want   []string
	}{
		{"message", "msg: |Transfer", []string{
			"```tact\nmessage(0x7362d09c) Transfer {\n    amount: Int as coins;\n}\n```",
			"Opcode: `0x7362d09c`",
			"Moves coins.",
		}},
		{"storage variable", "self.|count +", []string{"contract Counter\ncount: Int as uint32 = 0"}},
		{"contract parameter", "|owner: Address) with", []string{"contract Counter\nowner: Address"}},
		{"constant", "const |FEE", []string{"contract Counter\nconst FEE: Int = 10"}},
		{"getter", "fun |current", []string{
			"get fun current(): Int",
			fmt.Sprintf("Method ID: `0x%x`", ComputeMethodID("current")),
		}},
		{"explicit getter id", "fun |custom", []string{"get(0x1234) fun custom(): Int", "Method ID: `0x1234`"}},
		{"local", "dump(|total)", []string{"let total: Int = self.count + msg.amount"}},
		{"receiver parameter", "msg.|amount", []string{"message Transfer\namount: Int as coins"}},
		{"contract", "contract |Counter", []string{
			"contract Counter with Ownable {",
			"    owner: Address;",
			"    receive(msg: Transfer);",
			"    get fun current(): Int;",
		}},
		{"built-in", "|dump(total)", []string{"fun dump(arg: Int)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Hover(s, at(t, f, tt.marked))
			if h == nil {
				t.Fatal("no hover")
			}
			mc, ok := h.Contents.(protocol.MarkupContent)
			if !ok || mc.Kind != protocol.MarkupKindMarkdown {
				t.Fatalf("contents %#v", h.Contents)
			}
			for _, w := range tt.want {
				if !strings.Contains(mc.Value, w) {
					t.Errorf("hover missing %q:\n%s", w, mc.Value)
				}
			}
		})
	}
}

func TestHoverNothing(t *testing.T) {
	t.Parallel()
	s, f := setup(t)
	if h := Hover(s, at(t, f, "= |0;")); h != nil {
		t.Errorf("hover on a literal: %+v", h)
	}
}

func TestMethodID(t *testing.T) {
	t.Parallel()
	if got := crc16([]byte("123456789")); got != 0x31c3 {
		t.Errorf("crc16 check value = %#x, want 0x31c3", got)
	}
	tests := []struct {
		name string
		want uint32
	}{
		{"seqno", 85143},
		{"get_public_key", 78748},
	}
	for _, tt := range tests {
		if got := ComputeMethodID(tt.name); got != tt.want {
			t.Errorf("ComputeMethodID(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
