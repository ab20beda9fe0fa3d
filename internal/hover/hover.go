// Package hover renders declarations as markdown for hover requests.
package hover

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/phobologic/tactguide/internal/deps"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/resolve"
)

const fence = "```"

// Hover returns the hover for the node under the cursor, nil when it
// names nothing.
func Hover(s *resolve.Session, n psi.Node) *protocol.Hover {
	d := s.Resolve(n)
	if d == nil {
		return nil
	}
	md := Markdown(s, d)
	if md == "" {
		return nil
	}
	r := n.Range()
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: md},
		Range:    &r,
	}
}

// Markdown renders d as a tact code block followed by its notes and doc
// comment.
func Markdown(s *resolve.Session, d psi.Decl) string {
	sig, notes := render(s, d)
	if sig == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(fence + "tact\n" + sig + "\n" + fence + "\n")
	for _, n := range notes {
		b.WriteString("\n" + n + "\n")
	}
	if doc := d.Named().Documentation(); doc != "" {
		b.WriteString("\n" + doc + "\n")
	}
	return b.String()
}

// render returns the signature and any notes shown under it.
func render(s *resolve.Session, d psi.Decl) (string, []string) {
	switch d := d.(type) {
	case *psi.Fun:
		sig := d.Signature()
		for _, p := range []string{"AnyStruct_", "AnyMessage_"} {
			sig = strings.Replace(sig, "fun "+p, "fun ", 1)
		}
		if d.IsGetter() {
			return ownerLine(d.Owner()) + sig, []string{"Method ID: `" + MethodID(d) + "`"}
		}
		return ownerLine(d.Owner()) + sig, nil
	case *psi.Constant:
		return ownerLine(d.Owner()) + constant(d), nil
	case *psi.Field:
		return ownerLine(d.Owner()) + field(d), nil
	case *psi.Struct:
		return "struct " + d.Name() + fieldBlock(d.Fields()), nil
	case *psi.Message:
		head := "message"
		var notes []string
		if op := d.Opcode(); op != "" {
			head += "(" + op + ")"
			notes = append(notes, "Opcode: `"+op+"`")
		}
		return head + " " + d.Name() + fieldBlock(d.Fields()), notes
	case *psi.Contract:
		var notes []string
		if sum := deps.Summary(s, d); sum != "" {
			notes = append(notes, sum)
		}
		return "contract " + d.Name() + with(s, d) + members(d), notes
	case *psi.Trait:
		return "trait " + d.Name() + with(s, d) + members(d), nil
	case *psi.Primitive:
		return "primitive " + d.Name(), nil
	case *psi.InitFunction:
		return ownerLine(d.Owner()) + d.Signature(), nil
	case *psi.MessageFunction:
		return ownerLine(d.Owner()) + handler(d), nil
	case *psi.Var:
		return variable(s, d), nil
	}
	return "", nil
}

// ownerLine names the declaring contract, trait, struct or message.
func ownerLine(o psi.Decl) string {
	if o == nil {
		return ""
	}
	return o.Kind() + " " + o.Name() + "\n"
}

func constant(c *psi.Constant) string {
	var b strings.Builder
	for _, a := range c.Attributes() {
		b.WriteString(a + " ")
	}
	b.WriteString("const " + c.Name())
	if t := c.TypeNode(); !t.IsNil() {
		b.WriteString(": " + psi.TypeText(t))
	}
	if v := c.Value(); !v.IsNil() {
		b.WriteString(" = " + v.Content())
	}
	return b.String()
}

func field(f *psi.Field) string {
	text := f.Name() + ": " + psi.TypeText(f.TypeNode())
	if tlb := f.TLB(); !tlb.IsNil() {
		text += " " + tlb.Content()
	}
	if v := f.Default(); !v.IsNil() {
		text += " = " + v.Content()
	}
	return text
}

func fieldBlock(fields []*psi.Field) string {
	if len(fields) == 0 {
		return " {}"
	}
	var b strings.Builder
	b.WriteString(" {\n")
	for _, f := range fields {
		b.WriteString("    " + field(f) + ";\n")
	}
	b.WriteString("}")
	return b.String()
}

func with(s *resolve.Session, o psi.StorageOwner) string {
	var names []string
	for _, t := range s.InheritedTraits(o) {
		if t.Name() != "BaseTrait" {
			names = append(names, t.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	return " with " + strings.Join(names, ", ")
}

// members lists the own fields, init, handlers and getters of o.
func members(o psi.StorageOwner) string {
	var lines []string
	for _, f := range o.OwnFields() {
		lines = append(lines, field(f)+";")
	}
	for _, c := range o.OwnConstants() {
		lines = append(lines, constant(c)+";")
	}
	if init := o.InitFunction(); init != nil {
		lines = append(lines, init.Signature()+";")
	}
	for _, m := range o.MessageFunctions() {
		lines = append(lines, handler(m)+";")
	}
	for _, f := range o.OwnMethods() {
		if f.IsGetter() {
			lines = append(lines, f.Signature()+";")
		}
	}
	if len(lines) == 0 {
		return " {}"
	}
	return " {\n    " + strings.Join(lines, "\n    ") + "\n}"
}

func handler(m *psi.MessageFunction) string {
	p := m.Parameter()
	switch {
	case p.IsNil():
		return m.Kind() + "()"
	case p.Type() == "parameter":
		return m.Kind() + "(" + p.Field("name").Content() + ": " + psi.TypeText(p.Field("type")) + ")"
	default:
		return m.Kind() + "(" + p.Content() + ")"
	}
}

func variable(s *resolve.Session, v *psi.Var) string {
	typeName := "unknown"
	if t := s.TypeOfDecl(v); t != nil {
		typeName = t.QualifiedName()
	}
	switch {
	case v.IsParameter():
		return v.Name() + ": " + typeName
	case v.ParentNode().Type() == "catch_clause":
		return "catch(" + v.Name() + ")"
	}
	text := "let " + v.Name() + ": " + typeName
	if val := v.Value(); !val.IsNil() {
		text += " = " + val.Content()
	}
	return text
}

// MethodID returns the id of a get method in hex: the explicit
// `get(id)` value, or the CRC-16 of the name with bit 16 set.
func MethodID(f *psi.Fun) string {
	if id := f.GetterID(); !id.IsNil() {
		return id.Content()
	}
	return fmt.Sprintf("0x%x", ComputeMethodID(f.Name()))
}

// ComputeMethodID derives the method id the compiler assigns to name.
func ComputeMethodID(name string) uint32 {
	return uint32(crc16([]byte(name)))&0xffff | 0x10000
}

// crc16 is CRC-16/XMODEM: polynomial 0x1021, zero initial value.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
