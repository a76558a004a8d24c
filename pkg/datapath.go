package newver

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a DataPath: a mapping key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a segment addressing a mapping member.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns a segment addressing a sequence element.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

// DataPath addresses a field inside a document tree.
type DataPath []Segment

func (p DataPath) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case seg.IsIndex:
			fmt.Fprintf(&b, "[%d]", seg.Index)
		case seg.Key == "" || strings.ContainsAny(seg.Key, ".[]"):
			fmt.Fprintf(&b, "[%q]", seg.Key)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		}
	}
	return b.String()
}

// ParsePath parses an expression such as "a.b[0].c[2].v": dot separated
// identifiers, each optionally followed by one or more [N] indexes.
func ParsePath(expr string) (DataPath, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPath)
	}

	var path DataPath
	for _, part := range strings.Split(expr, ".") {
		ident, rest, hasIndex := strings.Cut(part, "[")
		if ident == "" {
			return nil, fmt.Errorf("%w: %q: empty identifier", ErrInvalidPath, expr)
		}
		if strings.Contains(ident, "]") {
			return nil, fmt.Errorf("%w: %q: unexpected ']' in %q", ErrInvalidPath, expr, ident)
		}
		path = append(path, Key(ident))

		// rest is what follows an opening '['.
		for hasIndex {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: %q: missing ']'", ErrInvalidPath, expr)
			}
			i, err := strconv.Atoi(rest[:end])
			if err != nil || i < 0 {
				return nil, fmt.Errorf("%w: %q: index %q is not a non-negative integer", ErrInvalidPath, expr, rest[:end])
			}
			path = append(path, Index(i))
			rest = rest[end+1:]
			if rest == "" {
				break
			}
			if rest[0] != '[' {
				return nil, fmt.Errorf("%w: %q: unexpected %q after index", ErrInvalidPath, expr, rest)
			}
			rest = rest[1:]
		}
	}
	return path, nil
}

// GetPath returns the node addressed by path, if present.
func GetPath(root *Node, path DataPath) (*Node, bool) {
	cur := root
	for _, seg := range path {
		var ok bool
		if seg.IsIndex {
			cur, ok = cur.Index(seg.Index)
		} else {
			cur, ok = cur.Get(seg.Key)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// SetPath stores value at path. Missing or null intermediates are created:
// a mapping when the next segment is a key, a sequence when it is an index.
// Sequences shorter than an index are extended with nulls. A scalar
// standing where a container is needed is an error.
func SetPath(root *Node, path DataPath, value *Node) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	cur := root
	for i, seg := range path {
		if err := checkContainer(cur, seg, path[:i]); err != nil {
			return err
		}

		var slot **Node
		if seg.IsIndex {
			for len(cur.Items) <= seg.Index {
				cur.Items = append(cur.Items, NewNull())
			}
			slot = &cur.Items[seg.Index]
		} else {
			slot = memberSlot(cur, seg.Key)
		}

		if i == len(path)-1 {
			assign(slot, value)
			return nil
		}

		if *slot == nil || (*slot).Kind == KindNull {
			if path[i+1].IsIndex {
				*slot = NewSequence()
			} else {
				*slot = NewMapping()
			}
		}
		cur = *slot
	}
	return nil
}

// memberSlot returns the value slot of key in mapping n, adding an empty
// member when key is missing.
func memberSlot(n *Node, key string) **Node {
	for _, m := range n.Members {
		if m.Key == key {
			return &m.Value
		}
	}
	m := &Member{Key: key}
	n.Members = append(n.Members, m)
	return &m.Value
}

func checkContainer(n *Node, seg Segment, at DataPath) error {
	want := KindMapping
	if seg.IsIndex {
		want = KindSequence
	}
	if n == nil || n.Kind != want {
		where := at.String()
		if where == "" {
			where = "document root"
		}
		got := "nothing"
		if n != nil {
			got = n.Kind.String()
		}
		return fmt.Errorf("%w: %s is a %s, expected a %s", ErrPathConflict, where, got, want)
	}
	return nil
}

// assign writes value into slot. A string written over an existing scalar
// updates the scalar in place so its presentation survives.
func assign(slot **Node, value *Node) {
	if old := *slot; old != nil && value != nil && value.Kind == KindString {
		switch old.Kind {
		case KindBool, KindNumber, KindString:
			old.SetString(value.Scalar)
			return
		}
	}
	*slot = value
}
