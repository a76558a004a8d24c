package newver

// Kind identifies the type of a document Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "null"
	}
}

// Node is a value in a parsed JSON, YAML or TOML document. Mappings keep
// their members in document order.
type Node struct {
	Kind Kind

	// Scalar is the literal text of bool, number and string nodes.
	Scalar string

	// Items holds the elements of a sequence.
	Items []*Node

	// Members holds the entries of a mapping.
	Members []*Member

	// native carries codec detail, such as a YAML quoting style or where a
	// TOML value sat in its source.
	native any
}

// Member is a key/value entry of a mapping node.
type Member struct {
	Key   string
	Value *Node
}

func NewNull() *Node { return &Node{Kind: KindNull} }

func NewBool(b bool) *Node {
	if b {
		return &Node{Kind: KindBool, Scalar: "true"}
	}
	return &Node{Kind: KindBool, Scalar: "false"}
}

// NewNumber returns a number node holding the literal text lit.
func NewNumber(lit string) *Node { return &Node{Kind: KindNumber, Scalar: lit} }

func NewString(s string) *Node { return &Node{Kind: KindString, Scalar: s} }

func NewSequence(items ...*Node) *Node { return &Node{Kind: KindSequence, Items: items} }

func NewMapping() *Node { return &Node{Kind: KindMapping} }

// Get returns the value stored under key when n is a mapping.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set stores v under key, replacing an existing member in place or
// appending a new one. It panics if n is not a mapping.
func (n *Node) Set(key string, v *Node) {
	if n.Kind != KindMapping {
		panic("newver: Set on " + n.Kind.String() + " node")
	}
	for _, m := range n.Members {
		if m.Key == key {
			m.Value = v
			return
		}
	}
	n.Members = append(n.Members, &Member{Key: key, Value: v})
}

// Index returns the i-th element when n is a sequence.
func (n *Node) Index(i int) (*Node, bool) {
	if n == nil || n.Kind != KindSequence || i < 0 || i >= len(n.Items) {
		return nil, false
	}
	return n.Items[i], true
}

// Text returns the literal text of a scalar node.
func (n *Node) Text() (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case KindBool, KindNumber, KindString:
		return n.Scalar, true
	}
	return "", false
}

// Equal reports whether two trees hold the same data. Mapping member order
// is not significant.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindNull:
		return true
	case KindSequence:
		if len(n.Items) != len(o.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(n.Members) != len(o.Members) {
			return false
		}
		for _, m := range n.Members {
			ov, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return n.Scalar == o.Scalar
	}
}

// SetString turns n into a string node holding s. Presentation hints kept
// from the source document, such as a YAML quoting style, survive.
func (n *Node) SetString(s string) {
	n.Kind = KindString
	n.Scalar = s
	n.Items = nil
	n.Members = nil
	if p, ok := n.native.(presentation); ok {
		n.native = p.forString()
	} else {
		n.native = nil
	}
}

// presentation marks native values that only describe how a scalar was
// written, not what it holds.
type presentation interface {
	// forString returns the presentation to keep once the scalar holds a string.
	forString() presentation
}
