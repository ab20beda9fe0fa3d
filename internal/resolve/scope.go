package resolve

import (
	"strings"

	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/syntax"
	"github.com/phobologic/tactguide/internal/types"
)

// State travels with a candidate walk.
type State struct {
	// Completion collects every candidate instead of stopping at the
	// first match.
	Completion bool
	// SearchName overrides the name a candidate must carry.
	SearchName string
	// Prefix is prepended to completion labels, e.g. "self.".
	Prefix string
}

func (st State) searching(name string) State {
	st.SearchName = name
	return st
}

func (st State) prefixed(p string) State {
	st.Prefix = p
	return st
}

// Processor receives candidates. Returning syntax.Stop ends the walk.
type Processor func(d psi.Decl, st State) syntax.Action

const (
	anyStructPrefix  = "AnyStruct_"
	anyMessagePrefix = "AnyMessage_"
)

// declarationNames are the parents whose name field is a definition site.
var declarationNames = map[string]bool{
	"field": true, "parameter": true, "storage_variable": true,
	"let_statement": true, "trait": true, "struct": true, "message": true,
	"contract": true, "primitive": true, "global_function": true,
	"asm_function": true, "native_function": true, "storage_function": true,
	"storage_constant": true, "global_constant": true,
}

// functionLike have parameters visible in their bodies.
var functionLike = map[string]bool{
	"global_function": true, "storage_function": true, "asm_function": true,
	"native_function": true, "init_function": true, "receive_function": true,
	"external_function": true, "bounced_function": true,
}

// Resolve returns the declaration n refers to, or nil. A node that is a
// declaration itself resolves to that declaration.
func (s *Session) Resolve(n psi.Node) psi.Decl {
	if n.IsNil() || n.StartByte() == n.EndByte() {
		return nil
	}
	switch n.Type() {
	case "identifier", "type_identifier", "self", "init":
	default:
		return psi.DeclOf(n)
	}
	return cached(s.decls, s.resolving, n, func() psi.Decl { return s.resolve(n) })
}

func (s *Session) resolve(n psi.Node) psi.Decl {
	parent := n.ParentNode()
	if parent.IsNil() || parent.Type() == "tlb_serialization" {
		return nil
	}
	if d := definitionSite(n, parent); d != nil {
		return d
	}
	var found psi.Decl
	s.ProcessVariants(n, State{}, func(d psi.Decl, st State) syntax.Action {
		if matches(d, n, st) {
			found = d
			return syntax.Stop
		}
		return syntax.Continue
	})
	return found
}

// matches is the single-result filter applied to every candidate.
func matches(d psi.Decl, n psi.Node, st State) bool {
	if d.Named().Equal(n) {
		return true
	}
	if st.SearchName == "init" {
		_, ok := d.(*psi.InitFunction)
		return ok
	}
	want := st.SearchName
	if want == "" {
		want = n.Content()
	}
	return d.Name() == want
}

// definitionSite returns the declaration when n is its name.
func definitionSite(n, parent psi.Node) psi.Decl {
	switch parent.Type() {
	case "init_function":
		if syntax.Equal(parent.Child(0), n.Node) {
			return psi.DeclOf(parent)
		}
		return nil
	case "foreach_statement":
		if parent.Field("key").Equal(n) || parent.Field("value").Equal(n) {
			return psi.DeclOf(n)
		}
		return nil
	case "catch_clause":
		if parent.Field("name").Equal(n) {
			return psi.DeclOf(n)
		}
		return nil
	case "destruct_bind":
		bind := parent.Field("bind")
		if bind.Equal(n) || bind.IsNil() && parent.Field("name").Equal(n) {
			return psi.DeclOf(parent)
		}
		return nil
	}
	if !declarationNames[parent.Type()] {
		return nil
	}
	nameField := "name"
	if parent.Type() == "primitive" {
		nameField = "type"
	}
	if parent.Field(nameField).Equal(n) {
		return psi.DeclOf(parent)
	}
	return nil
}

// ProcessVariants feeds every declaration n could refer to, in priority
// order, to proc. It returns false if proc stopped the walk.
func (s *Session) ProcessVariants(n psi.Node, st State, proc Processor) bool {
	if q := qualifier(n); !q.IsNil() {
		return s.processQualified(q, n, st, proc)
	}
	return s.processUnqualified(n, st, proc)
}

// qualifier returns the object of a member access whose name is n.
func qualifier(n psi.Node) psi.Node {
	parent := n.ParentNode()
	if parent.IsNil() {
		return psi.Node{}
	}
	switch parent.Type() {
	case "field_access_expression", "method_call_expression":
		if parent.Field("name").Equal(n) {
			return parent.Field("object")
		}
	}
	return psi.Node{}
}

func (s *Session) processQualified(q, n psi.Node, st State, proc Processor) bool {
	qt := s.TypeOf(q)
	if qt == nil {
		return true
	}
	methodRef := n.ParentNode().Type() == "method_call_expression"

	// Foo.fromCell(...) on a type name goes to the synthetic functions.
	if prefix := staticPrefix(qt); prefix != "" && (q.Type() == "identifier" || q.Type() == "type_identifier") {
		switch s.Resolve(q).(type) {
		case *psi.Struct, *psi.Message:
			for _, name := range []string{"fromCell", "fromSlice", "opcode"} {
				f := s.stubFun(prefix + name)
				if f == nil {
					continue
				}
				if proc(f, st.searching(prefix+n.Content())) == syntax.Stop {
					return false
				}
			}
			return true
		}
	}

	if b, ok := qt.(*types.BouncedTy); ok {
		return s.processType(b.Inner, methodRef, st, proc)
	}
	if o, ok := qt.(*types.OptionTy); ok {
		if !s.processType(o.Inner, methodRef, st, proc) {
			return false
		}
		return s.processType(o, methodRef, st, proc)
	}
	if !s.processType(qt, methodRef, st, proc) {
		return false
	}
	if methodRef || st.Completion {
		if prefix := staticPrefix(qt); prefix != "" {
			receiver := types.Primitive(strings.TrimSuffix(prefix, "_"), nil)
			if !s.processTypeMethods(receiver, st, proc) {
				return false
			}
		}
	}
	return s.processTypeMethods(&types.OptionTy{Inner: qt}, st, proc)
}

func staticPrefix(t types.Ty) string {
	switch t.(type) {
	case *types.StructTy:
		return anyStructPrefix
	case *types.MessageTy:
		return anyMessagePrefix
	}
	return ""
}

func (s *Session) stubFun(name string) *psi.Fun {
	f, _ := s.Index.Stubs.ElementByName(index.Funs, name).(*psi.Fun)
	return f
}

// processType offers the members of t, then the extension functions
// declared for it. Storage owners put methods first for calls.
func (s *Session) processType(t types.Ty, methodRef bool, st State, proc Processor) bool {
	if o := types.StorageAnchor(t); o != nil {
		fields := func() bool { return eachDecl(s.Fields(o), st, proc) }
		consts := func() bool { return eachDecl(s.Constants(o), st, proc) }
		methods := func() bool { return eachDecl(s.Methods(o), st, proc) }
		order := []func() bool{fields, consts, methods}
		if methodRef {
			order = []func() bool{methods, fields, consts}
		}
		for _, step := range order {
			if !step() {
				return false
			}
		}
	} else if o := types.FieldsAnchor(t); o != nil {
		if !eachDecl(o.Fields(), st, proc) {
			return false
		}
	}
	return s.processTypeMethods(t, st, proc)
}

func eachDecl[D psi.Decl](ds []D, st State, proc Processor) bool {
	for _, d := range ds {
		if proc(d, st) == syntax.Stop {
			return false
		}
	}
	return true
}

// processTypeMethods offers every function whose self parameter accepts t.
func (s *Session) processTypeMethods(t types.Ty, st State, proc Processor) bool {
	return s.Index.ProcessElementsByKind(index.Funs, func(d psi.Decl) syntax.Action {
		f, ok := d.(*psi.Fun)
		if !ok || !f.WithSelf() || !selfTypeMatches(f.SelfType(), t) {
			return syntax.Continue
		}
		return proc(f, st)
	})
}

// selfTypeMatches compares a self parameter's type annotation with t.
func selfTypeMatches(typeNode psi.Node, t types.Ty) bool {
	if typeNode.IsNil() {
		return false
	}
	if typeNode.Type() == "map_type" {
		_, ok := t.(*types.MapTy)
		return ok
	}
	if psi.IsOptional(typeNode) {
		o, ok := t.(*types.OptionTy)
		return ok && o.Inner.QualifiedName() == typeNode.Content()
	}
	return t.QualifiedName() == typeNode.Content()
}

func (s *Session) processUnqualified(n psi.Node, st State, proc Processor) bool {
	name := n.Content()
	if name == "" || name == "_" {
		return true
	}
	if n.Type() == "self" {
		owner := psi.Wrap(syntax.ParentOfType(n.Node, "contract", "trait"), n.File)
		if owner.IsNil() {
			return s.processSelfExtension(n, st, proc)
		}
		d := psi.DeclOf(owner)
		return proc(d, st.searching(d.Name())) != syntax.Stop
	}
	if st.Completion && !s.processSelfMembers(n, st, proc) {
		return false
	}

	parent := n.ParentNode()
	switch parent.Type() {
	case "instance_argument":
		if parent.Field("name").Equal(n) && (!parent.Field("value").IsNil() || nextIs(n, ":")) {
			inst := parent.ParentNode().ParentNode()
			invariant(inst.Type() == "instance_expression", parent, "instance argument outside an instance expression")
			return s.processTypeFields(inst.Field("name"), st, proc)
		}
	case "destruct_bind":
		if parent.Field("name").Equal(n) && (!parent.Field("bind").IsNil() || st.Completion) {
			stmt := psi.Wrap(syntax.ParentOfType(parent.Node, "destruct_statement"), n.File)
			invariant(!stmt.IsNil(), parent, "destructuring bind outside a destruct statement")
			return s.processTypeFields(stmt.Field("name"), st, proc)
		}
	case "initOf":
		if parent.Field("name").Equal(n) && !st.Completion {
			return s.processInitOf(n, st, proc)
		}
	case "asm_arrangement", "asm_arrangement_args":
		fn := psi.Wrap(syntax.ParentOfType(n.Node, "asm_function"), n.File)
		invariant(!fn.IsNil(), parent, "asm arrangement outside an asm function")
		return eachDecl(psi.DeclOf(fn).(*psi.Fun).Parameters(), st, proc)
	case "static_call_expression":
		if parent.Field("name").Equal(n) {
			return s.processAllEntities(n, st, proc)
		}
	}
	if !s.processBlock(n, st, proc) {
		return false
	}
	// Completion offered the members up front with a self. prefix.
	if !st.Completion && !s.processSelfMembers(n, st, proc) {
		return false
	}
	return s.processAllEntities(n, st, proc)
}

func nextIs(n psi.Node, text string) bool {
	next := syntax.NextSibling(n.Node)
	return next != nil && next.Type() == text
}

// processTypeFields offers the fields of the struct or message named by
// typeName.
func (s *Session) processTypeFields(typeName psi.Node, st State, proc Processor) bool {
	if typeName.IsNil() {
		return true
	}
	o, ok := s.Resolve(typeName).(psi.FieldsOwner)
	if !ok {
		return true
	}
	return eachDecl(o.Fields(), st, proc)
}

// processInitOf offers the init of the named contract, or the contract
// itself when it has no explicit init.
func (s *Session) processInitOf(n psi.Node, st State, proc Processor) bool {
	c, ok := s.Index.ElementByName(index.Contracts, n.Content()).(*psi.Contract)
	if !ok {
		return true
	}
	if init := c.InitFunction(); init != nil {
		return proc(init, st.searching("init")) != syntax.Stop
	}
	return proc(c, st.searching(c.Name())) != syntax.Stop
}

// processSelfMembers offers the members reachable through self from
// inside a contract or trait function, or an extension function.
func (s *Session) processSelfMembers(n psi.Node, st State, proc Processor) bool {
	owner := psi.Wrap(syntax.ParentOfType(n.Node, "contract", "trait"), n.File)
	if owner.IsNil() {
		return s.processSelfExtension(n, st.prefixed("self."), proc)
	}
	if syntax.ParentOfType(n.Node, "function_body") == nil {
		return true
	}
	o := psi.DeclOf(owner).(psi.StorageOwner)
	st = st.prefixed("self.")
	return eachDecl(s.Fields(o), st, proc) &&
		eachDecl(s.Constants(o), st, proc) &&
		eachDecl(s.Methods(o), st, proc)
}

// processSelfExtension handles self inside `extends fun f(self: T)`.
func (s *Session) processSelfExtension(n psi.Node, st State, proc Processor) bool {
	fn := psi.Wrap(syntax.ParentOfType(n.Node, "global_function"), n.File)
	if fn.IsNil() {
		return true
	}
	f := psi.DeclOf(fn).(*psi.Fun)
	if !f.WithSelf() {
		return true
	}
	self := f.Parameters()[0]
	if n.Type() == "self" {
		return proc(self, st.searching("self")) != syntax.Stop
	}
	t := s.TypeOf(f.SelfType())
	if t == nil {
		return true
	}
	return s.processType(t, false, st, proc)
}

// processBlock walks outward from n offering local bindings: lets and
// destructuring binds of statements before the one holding n, foreach and
// catch variables, then function parameters.
func (s *Session) processBlock(n psi.Node, st State, proc Processor) bool {
	prev := n.Node
	for cur := n.Parent(); cur != nil; prev, cur = cur, cur.Parent() {
		switch typ := cur.Type(); {
		case typ == "block_statement" || typ == "function_body":
			if !s.processStatementsBefore(psi.Wrap(cur, n.File), prev, st, proc) {
				return false
			}
		case typ == "foreach_statement":
			if !syntax.Equal(cur.ChildByFieldName("body"), prev) {
				continue
			}
			for _, f := range []string{"value", "key"} {
				if id := cur.ChildByFieldName(f); id != nil {
					if proc(psi.DeclOf(psi.Wrap(id, n.File)), st) == syntax.Stop {
						return false
					}
				}
			}
		case typ == "catch_clause":
			if !syntax.Equal(cur.ChildByFieldName("body"), prev) {
				continue
			}
			if id := cur.ChildByFieldName("name"); id != nil {
				if proc(psi.DeclOf(psi.Wrap(id, n.File)), st) == syntax.Stop {
					return false
				}
			}
		case functionLike[typ]:
			if !s.processParameters(psi.Wrap(cur, n.File), st, proc) {
				return false
			}
		}
	}
	return true
}

// processStatementsBefore offers the bindings of block statements that
// precede stop, nearest first.
func (s *Session) processStatementsBefore(block psi.Node, stop syntax.Node, st State, proc Processor) bool {
	end := block.ChildCount()
	for i := 0; i < block.ChildCount(); i++ {
		if syntax.Equal(block.Child(i), stop) {
			end = i
			break
		}
	}
	for i := end - 1; i >= 0; i-- {
		c := block.Wrap(block.Child(i))
		switch c.Type() {
		case "let_statement":
			if proc(psi.DeclOf(c), st) == syntax.Stop {
				return false
			}
		case "destruct_statement":
			binds := c.ChildByFieldName("binds")
			if binds == nil {
				continue
			}
			for _, b := range syntax.ChildrenOfType(binds, "destruct_bind") {
				if proc(psi.DeclOf(c.Wrap(b)), st) == syntax.Stop {
					return false
				}
			}
		}
	}
	return true
}

func (s *Session) processParameters(fn psi.Node, st State, proc Processor) bool {
	if p := fn.Field("parameter"); !p.IsNil() {
		if p.Type() != "parameter" {
			return true
		}
		return proc(psi.DeclOf(p), st) != syntax.Stop
	}
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return true
	}
	for _, p := range syntax.ChildrenOfType(list, "parameter") {
		if proc(psi.DeclOf(fn.Wrap(p)), st) == syntax.Stop {
			return false
		}
	}
	return true
}

// processAllEntities offers top-level declarations: the current file,
// its direct imports, the overload pick for built-ins, the standard
// library, the stubs, then transitive imports.
func (s *Session) processAllEntities(n psi.Node, st State, proc Processor) bool {
	if st.Completion {
		return s.processAllForCompletion(n.File, st, proc)
	}
	current := s.fileIndex(n.File)
	if !processFileIndex(current, st, proc) {
		return false
	}
	visited := map[string]bool{n.File.URI: true}
	direct := s.importedFiles(n.File)
	for _, fi := range direct {
		visited[fi.File.URI] = true
		if !processFileIndex(fi, st, proc) {
			return false
		}
	}
	if !s.processOverload(n, st, proc) {
		return false
	}
	for _, r := range []*index.Root{s.Index.Stdlib, s.Index.Stubs} {
		for _, fi := range r.Files() {
			visited[fi.File.URI] = true
			if !processFileIndex(fi, st, proc) {
				return false
			}
		}
	}
	queue := direct
	for len(queue) > 0 {
		fi := queue[0]
		queue = queue[1:]
		for _, next := range s.importedFiles(fi.File) {
			if visited[next.File.URI] {
				continue
			}
			visited[next.File.URI] = true
			if !processFileIndex(next, st, proc) {
				return false
			}
			queue = append(queue, next)
		}
	}
	return true
}

func (s *Session) processAllForCompletion(f *psi.File, st State, proc Processor) bool {
	keep := func(d psi.Decl) bool {
		fn, ok := d.(*psi.Fun)
		if !ok {
			return true
		}
		name := fn.Name()
		return !fn.WithSelf() && !strings.HasPrefix(name, anyStructPrefix) && !strings.HasPrefix(name, anyMessagePrefix)
	}
	filtered := func(d psi.Decl, st State) syntax.Action {
		if !keep(d) {
			return syntax.Continue
		}
		return proc(d, st)
	}
	if !processFileIndex(index.NewFileIndex(f), st, filtered) {
		return false
	}
	for _, fi := range s.Index.Files() {
		if fi.File.URI == f.URI {
			continue
		}
		if !processFileIndex(fi, st, filtered) {
			return false
		}
	}
	return true
}

func processFileIndex(fi *index.FileIndex, st State, proc Processor) bool {
	if fi == nil {
		return true
	}
	for _, k := range index.Kinds {
		ok := fi.ProcessElementsByKind(k, func(d psi.Decl) syntax.Action { return proc(d, st) })
		if !ok {
			return false
		}
	}
	return true
}

// fileIndex returns the indexed view of f, or a fresh one when f is not
// the indexed revision.
func (s *Session) fileIndex(f *psi.File) *index.FileIndex {
	if fi := s.Index.FindFile(f.URI); fi != nil && fi.File.Revision() == f.Revision() {
		return fi
	}
	return index.NewFileIndex(f)
}

// importedFiles returns the indexed files f imports directly.
func (s *Session) importedFiles(f *psi.File) []*index.FileIndex {
	var out []*index.FileIndex
	for _, imp := range f.Imports() {
		path := s.Imports.Resolve(f.Path(), imp.Library)
		if path == "" {
			continue
		}
		if fi := s.Index.FindFile(psi.PathToURI(path)); fi != nil {
			out = append(out, fi)
		}
	}
	return out
}

// processOverload picks among same-named built-in functions by the type
// of the first call argument, falling back to the first declared
// overload.
func (s *Session) processOverload(n psi.Node, st State, proc Processor) bool {
	call := n.ParentNode()
	if call.Type() != "static_call_expression" || !call.Field("name").Equal(n) {
		return true
	}
	var overloads []*psi.Fun
	for _, r := range []*index.Root{s.Index.Stdlib, s.Index.Stubs} {
		r.ProcessElementsByKind(index.Funs, func(d psi.Decl) syntax.Action {
			if f, ok := d.(*psi.Fun); ok && f.Name() == n.Content() {
				overloads = append(overloads, f)
			}
			return syntax.Continue
		})
	}
	if len(overloads) < 2 {
		return true
	}
	chosen := overloads[0]
	if args := psi.Arguments(call); len(args) > 0 {
		if at := s.TypeOf(args[0]); at != nil {
			for _, f := range overloads {
				params := f.Parameters()
				if len(params) > 0 && psi.TypeText(params[0].TypeNode()) == at.QualifiedName() {
					chosen = f
					break
				}
			}
		}
	}
	return proc(chosen, st) != syntax.Stop
}
