package workspace

import (
	"path/filepath"

	"github.com/phobologic/tactguide/internal/deps"
	"github.com/phobologic/tactguide/internal/graph"
	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/model"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/syntax"
)

// Map builds the workspace map: every workspace file with its
// declarations and resolved references, the file graph ranked with
// PageRank, the call graph and the contract dependencies.
func (w *Workspace) Map(withCallSites bool) (*model.RepoMap, error) {
	return request(w, "map", func() (*model.RepoMap, error) {
		var files []model.FileInfo
		var contracts []model.ContractDep
		for _, r := range w.session.Index.Roots() {
			for _, fi := range r.Files() {
				info := model.FileInfo{Path: w.rel(fi.File.URI), Language: "tact"}
				info.Tags = append(w.definitions(fi.File), w.references(fi.File)...)
				files = append(files, info)
				fi.ProcessElementsByKind(index.Contracts, func(d psi.Decl) syntax.Action {
					if c, ok := d.(*psi.Contract); ok {
						contracts = append(contracts, contractDeps(w, c)...)
					}
					return syntax.Continue
				})
			}
		}

		rm := &model.RepoMap{
			RepoName:  filepath.Base(w.Root),
			Root:      filepath.Base(w.Root),
			Contracts: contracts,
		}
		rm.Dependencies = graph.BuildGraph(files)
		graph.Rank(files, rm.Dependencies)
		rm.Files = files
		rm.CallEdges = graph.BuildCallGraph(files)
		if withCallSites {
			rm.CallSites = graph.BuildCallSites(files)
		}
		return rm, nil
	})
}

func contractDeps(w *Workspace, c *psi.Contract) []model.ContractDep {
	var out []model.ContractDep
	for _, d := range deps.Contract(w.session, c) {
		out = append(out, model.ContractDep{
			Source: c.Name(),
			Target: d.Target.Name(),
			Kinds:  d.Kinds,
			Via:    d.CallPath,
		})
	}
	return out
}

// rel returns uri as a path relative to the workspace root, or the full
// path for files elsewhere.
func (w *Workspace) rel(uri string) string {
	path := psi.URIToPath(uri)
	if path == "" {
		return uri
	}
	if rel, err := filepath.Rel(w.Root, path); err == nil {
		return rel
	}
	return path
}

func line(n syntax.Node) int {
	return int(n.StartPoint().Row) + 1
}

// definitions returns the top-level declarations of f and the members
// of its contracts, traits, structs and messages.
func (w *Workspace) definitions(f *psi.File) []model.Tag {
	var tags []model.Tag
	def := func(d psi.Decl, kind model.SymbolKind, sig string) {
		id := d.NameIdentifier()
		if id == nil {
			return
		}
		tags = append(tags, model.Tag{
			Name:       qualifiedName(d),
			Kind:       model.Definition,
			SymbolKind: kind,
			Line:       line(id),
			File:       w.rel(f.URI),
			Signature:  sig,
		})
	}
	fields := func(fs []*psi.Field) {
		for _, fd := range fs {
			def(fd, model.Field, fieldText(fd))
		}
	}
	storage := func(o psi.StorageOwner) {
		fields(o.OwnFields())
		for _, c := range o.OwnConstants() {
			def(c, model.Constant, "const "+c.Name())
		}
		if init := o.InitFunction(); init != nil {
			def(init, model.Method, init.Signature())
		}
		for _, m := range o.MessageFunctions() {
			def(m, model.Method, handlerName(m))
		}
		for _, fn := range o.OwnMethods() {
			def(fn, model.Method, fn.Signature())
		}
	}

	root := f.Root()
	for _, c := range syntax.NamedChildren(root.Node) {
		switch d := psi.DeclOf(root.Wrap(c)).(type) {
		case *psi.Contract:
			def(d, model.Contract, "contract "+d.Name())
			storage(d)
		case *psi.Trait:
			def(d, model.Trait, "trait "+d.Name())
			storage(d)
		case *psi.Struct:
			def(d, model.Struct, "struct "+d.Name())
			fields(d.Fields())
		case *psi.Message:
			sig := "message " + d.Name()
			if op := d.Opcode(); op != "" {
				sig = "message(" + op + ") " + d.Name()
			}
			def(d, model.Message, sig)
			fields(d.Fields())
		case *psi.Fun:
			def(d, model.Function, d.Signature())
		case *psi.Constant:
			def(d, model.Constant, "const "+d.Name())
		case *psi.Primitive:
			def(d, model.Primitive, "primitive "+d.Name())
		}
	}
	return tags
}

// references resolves every identifier of f and keeps those naming a
// declaration outside the function they appear in: types, functions,
// methods and constants.
func (w *Workspace) references(f *psi.File) []model.Tag {
	var tags []model.Tag
	root := f.Root()
	syntax.Walk(root.Node, func(n syntax.Node) syntax.Action {
		switch n.Type() {
		case "identifier", "type_identifier":
		default:
			return syntax.Continue
		}
		ref := root.Wrap(n)
		d := w.session.Resolve(ref)
		if init, ok := d.(*psi.InitFunction); ok {
			// initOf resolves to the init of the contract it deploys.
			if o := init.Owner(); o != nil && n.Content() == o.Name() {
				d = o
			}
		}
		kind, ok := symbolKind(d)
		if !ok || syntax.Equal(n, d.NameIdentifier()) {
			return syntax.SkipChildren
		}
		tag := model.Tag{
			Name:       qualifiedName(d),
			Kind:       model.Reference,
			SymbolKind: kind,
			Line:       line(n),
			File:       w.rel(f.URI),
		}
		if uri := d.Named().File.URI; uri != index.StubsURI {
			tag.Target = w.rel(uri)
		}
		if fn := syntax.ParentOfType(n, functionLike...); fn != nil {
			if enc := psi.DeclOf(root.Wrap(fn)); enc != nil {
				tag.Enclosing = qualifiedName(enc)
			}
		}
		tags = append(tags, tag)
		return syntax.SkipChildren
	})
	return tags
}

var functionLike = []string{
	"global_function", "storage_function", "asm_function", "native_function",
	"init_function", "receive_function", "external_function", "bounced_function",
}

func symbolKind(d psi.Decl) (model.SymbolKind, bool) {
	switch d := d.(type) {
	case *psi.Contract:
		return model.Contract, true
	case *psi.Trait:
		return model.Trait, true
	case *psi.Struct:
		return model.Struct, true
	case *psi.Message:
		return model.Message, true
	case *psi.Primitive:
		return model.Primitive, true
	case *psi.Constant:
		return model.Constant, true
	case *psi.Fun:
		if d.Owner() != nil {
			return model.Method, true
		}
		return model.Function, true
	}
	return "", false
}

// qualifiedName prefixes members with their owner: Wallet.balance,
// Wallet.init, Wallet.receive(Transfer).
func qualifiedName(d psi.Decl) string {
	var owner psi.Decl
	name := d.Name()
	switch d := d.(type) {
	case *psi.Fun:
		if o := d.Owner(); o != nil {
			owner = o
		}
	case *psi.Constant:
		if o := d.Owner(); o != nil {
			owner = o
		}
	case *psi.Field:
		owner = d.Owner()
	case *psi.InitFunction:
		if o := d.Owner(); o != nil {
			owner = o
		}
		name = "init"
	case *psi.MessageFunction:
		if o := d.Owner(); o != nil {
			owner = o
		}
		name = handlerName(d)
	}
	if owner == nil {
		return name
	}
	return owner.Name() + "." + name
}

// handlerName renders a receiver by what it accepts: receive(),
// receive(Transfer), receive("stop").
func handlerName(m *psi.MessageFunction) string {
	p := m.Parameter()
	switch {
	case p.IsNil():
		return m.Kind() + "()"
	case p.Type() == "parameter":
		return m.Kind() + "(" + psi.TypeText(p.Field("type")) + ")"
	default:
		return m.Kind() + "(" + p.Content() + ")"
	}
}

func fieldText(f *psi.Field) string {
	text := f.Name() + ": " + psi.TypeText(f.TypeNode())
	if tlb := f.TLB(); !tlb.IsNil() {
		text += " " + tlb.Content()
	}
	return text
}
