package syntax

// Elem is an in-memory syntax node. Trees of Elems are produced by the
// native parser and are immutable once Finish has been called on the root.
type Elem struct {
	typ      string
	named    bool
	start    uint32
	end      uint32
	startPt  Point
	endPt    Point
	parent   *Elem
	children []*Elem
	fields   []string
	src      *[]byte
}

// NewElem creates a detached node.
func NewElem(typ string, named bool) *Elem {
	return &Elem{typ: typ, named: named}
}

// SetSpan sets the byte and point span of e.
func (e *Elem) SetSpan(start, end uint32, startPt, endPt Point) {
	e.start, e.end = start, end
	e.startPt, e.endPt = startPt, endPt
}

// Append adds c as the last child of e under field (may be empty).
func (e *Elem) Append(field string, c *Elem) {
	c.parent = e
	e.children = append(e.children, c)
	e.fields = append(e.fields, field)
}

// TakeLeading detaches the run of leading children of type typ and
// returns them.
func (e *Elem) TakeLeading(typ string) []*Elem {
	n := 0
	for n < len(e.children) && e.children[n].typ == typ {
		n++
	}
	if n == 0 || n == len(e.children) {
		return nil
	}
	out := e.children[:n:n]
	e.children = e.children[n:]
	e.fields = e.fields[n:]
	for _, c := range out {
		c.parent = nil
	}
	return out
}

// Fit sets the span of every node that has children to run from its first
// child to its last. Leaves keep the span given to SetSpan.
func (e *Elem) Fit() {
	if len(e.children) == 0 {
		return
	}
	for _, c := range e.children {
		c.Fit()
	}
	first, last := e.children[0], e.children[len(e.children)-1]
	e.start, e.startPt = first.start, first.startPt
	e.end, e.endPt = last.end, last.endPt
}

// Finish attaches the source text to every node of the tree rooted at e
// and returns the tree.
func (e *Elem) Finish(src []byte, revision uint64) *Tree {
	shared := &src
	var attach func(*Elem)
	attach = func(n *Elem) {
		n.src = shared
		for _, c := range n.children {
			attach(c)
		}
	}
	attach(e)
	return &Tree{Root: e, Source: src, Revision: revision}
}

func (e *Elem) Type() string      { return e.typ }
func (e *Elem) IsNamed() bool     { return e.named }
func (e *Elem) StartByte() uint32 { return e.start }
func (e *Elem) EndByte() uint32   { return e.end }
func (e *Elem) StartPoint() Point { return e.startPt }
func (e *Elem) EndPoint() Point   { return e.endPt }
func (e *Elem) ChildCount() int   { return len(e.children) }

func (e *Elem) ID() ID {
	return ID{Start: e.start, End: e.end, Type: e.typ}
}

func (e *Elem) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Elem) Child(i int) Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

func (e *Elem) ChildByFieldName(name string) Node {
	for i, f := range e.fields {
		if f == name {
			return e.children[i]
		}
	}
	return nil
}

func (e *Elem) FieldNameForChild(i int) string {
	if i < 0 || i >= len(e.fields) {
		return ""
	}
	return e.fields[i]
}

func (e *Elem) Content() string {
	if e.src == nil {
		return ""
	}
	return string((*e.src)[e.start:e.end])
}
