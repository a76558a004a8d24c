package newver

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// tomlSource is the text a TOML tree was decoded from. It is kept on the
// root so that encoding can edit the original in place.
type tomlSource []byte

// tomlScalar records where a scalar sits in its source and how it was
// written.
type tomlScalar struct {
	span    unstable.Range
	literal bool // single quoted string
	raw     bool // date or time, written back as is
}

func (s tomlScalar) forString() presentation {
	return tomlScalar{span: s.span, literal: s.literal}
}

// tomlInline marks a mapping written as an inline table.
type tomlInline struct{}

// decodeTOML builds the tree from the parser's expressions so tables and
// keys keep their document order. Unmarshal runs first because the
// expression parser accepts duplicate keys and redefined tables.
func decodeTOML(data []byte) (*Node, error) {
	var check map[string]any
	if err := toml.Unmarshal(data, &check); err != nil {
		return nil, err
	}

	root := NewMapping()
	root.native = tomlSource(bytes.Clone(data))
	table := root

	var p unstable.Parser
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		var err error
		switch e.Kind {
		case unstable.Table:
			table, err = tomlTable(root, tomlKeys(e.Key()), false)
		case unstable.ArrayTable:
			table, err = tomlTable(root, tomlKeys(e.Key()), true)
		case unstable.KeyValue:
			err = tomlKeyValue(&p, table, e)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return root, nil
}

func tomlKeys(it unstable.Iterator) []string {
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Node().Data))
	}
	return keys
}

// tomlTable returns the table a [header] or [[header]] opens, creating the
// tables on the way.
func tomlTable(root *Node, keys []string, array bool) (*Node, error) {
	n := root
	for i, k := range keys {
		last := i == len(keys)-1
		child, ok := n.Get(k)
		if !ok {
			if last && array {
				child = NewSequence()
			} else {
				child = NewMapping()
			}
			n.Set(k, child)
		}
		if last && array {
			if child.Kind != KindSequence {
				return nil, fmt.Errorf("%q is not an array of tables", strings.Join(keys, "."))
			}
			item := NewMapping()
			child.Items = append(child.Items, item)
			return item, nil
		}
		var err error
		if n, err = tomlDescend(child, keys[:i+1]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// tomlDescend resolves the table a key names. A key naming an array of
// tables refers to its last element.
func tomlDescend(n *Node, keys []string) (*Node, error) {
	switch n.Kind {
	case KindMapping:
		return n, nil
	case KindSequence:
		if len(n.Items) > 0 && n.Items[len(n.Items)-1].Kind == KindMapping {
			return n.Items[len(n.Items)-1], nil
		}
	}
	return nil, fmt.Errorf("%q is not a table", strings.Join(keys, "."))
}

func tomlKeyValue(p *unstable.Parser, table *Node, e *unstable.Node) error {
	keys := tomlKeys(e.Key())
	n := table
	for i, k := range keys[:len(keys)-1] {
		child, ok := n.Get(k)
		if !ok {
			child = NewMapping()
			n.Set(k, child)
		}
		var err error
		if n, err = tomlDescend(child, keys[:i+1]); err != nil {
			return err
		}
	}
	v, err := tomlValue(p, e.Value())
	if err != nil {
		return err
	}
	n.Set(keys[len(keys)-1], v)
	return nil
}

func tomlValue(p *unstable.Parser, v *unstable.Node) (*Node, error) {
	switch v.Kind {
	case unstable.String:
		literal := p.Raw(v.Raw)[0] == '\''
		return &Node{Kind: KindString, Scalar: string(v.Data), native: tomlScalar{span: v.Raw, literal: literal}}, nil
	case unstable.Bool:
		n := NewBool(string(v.Data) == "true")
		n.native = tomlScalar{span: p.Range(v.Data)}
		return n, nil
	case unstable.Integer, unstable.Float:
		return &Node{Kind: KindNumber, Scalar: string(v.Data), native: tomlScalar{span: v.Raw}}, nil
	case unstable.LocalDate, unstable.LocalTime, unstable.LocalDateTime, unstable.DateTime:
		return &Node{Kind: KindString, Scalar: string(v.Data), native: tomlScalar{span: p.Range(v.Data), raw: true}}, nil
	case unstable.Array:
		n := NewSequence()
		it := v.Children()
		for it.Next() {
			if it.Node().Kind == unstable.Comment {
				continue
			}
			item, err := tomlValue(p, it.Node())
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, item)
		}
		return n, nil
	case unstable.InlineTable:
		n := NewMapping()
		n.native = tomlInline{}
		it := v.Children()
		for it.Next() {
			if err := tomlKeyValue(p, n, it.Node()); err != nil {
				return nil, err
			}
		}
		return n, nil
	}
	return nil, fmt.Errorf("unexpected %s value", v.Kind)
}

// encodeTOML rewrites the changed scalars of the source text when the tree
// still has the shape it was decoded with, so comments and layout survive.
// Any other tree is written out table by table in member order.
func encodeTOML(root *Node) ([]byte, error) {
	if src, ok := root.native.(tomlSource); ok {
		if out, ok := spliceTOML(src, root); ok {
			return out, nil
		}
	}
	var w tomlWriter
	if err := w.table(nil, root, false); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

type tomlEdit struct {
	span unstable.Range
	text string
}

func spliceTOML(src tomlSource, root *Node) ([]byte, bool) {
	orig, err := decodeTOML(src)
	if err != nil {
		return nil, false
	}
	var edits []tomlEdit
	if !tomlEdits(root, orig, &edits) {
		return nil, false
	}
	slices.SortFunc(edits, func(a, b tomlEdit) int { return cmp.Compare(a.span.Offset, b.span.Offset) })

	var buf bytes.Buffer
	last := 0
	for _, e := range edits {
		start := int(e.span.Offset)
		buf.Write(src[last:start])
		buf.WriteString(e.text)
		last = start + int(e.span.Length)
	}
	buf.Write(src[last:])
	return buf.Bytes(), true
}

// tomlEdits walks n alongside the tree decoded from its source and collects
// a replacement for every scalar that changed. It reports false when the
// shapes differ.
func tomlEdits(n, orig *Node, edits *[]tomlEdit) bool {
	if n == nil {
		return false
	}
	switch orig.Kind {
	case KindMapping:
		if n.Kind != KindMapping || len(n.Members) != len(orig.Members) {
			return false
		}
		for i, m := range n.Members {
			om := orig.Members[i]
			if m.Key != om.Key || !tomlEdits(m.Value, om.Value, edits) {
				return false
			}
		}
		return true
	case KindSequence:
		if n.Kind != KindSequence || len(n.Items) != len(orig.Items) {
			return false
		}
		for i := range n.Items {
			if !tomlEdits(n.Items[i], orig.Items[i], edits) {
				return false
			}
		}
		return true
	}

	switch n.Kind {
	case KindBool, KindNumber, KindString:
	default:
		return false
	}
	if n.Kind == orig.Kind && n.Scalar == orig.Scalar && tomlRaw(n) == tomlRaw(orig) {
		return true
	}
	s, ok := orig.native.(tomlScalar)
	if !ok {
		return false
	}
	text, err := tomlInlineValue(n)
	if err != nil {
		return false
	}
	*edits = append(*edits, tomlEdit{span: s.span, text: text})
	return true
}

func tomlRaw(n *Node) bool {
	s, ok := n.native.(tomlScalar)
	return ok && s.raw
}

type tomlWriter struct {
	buf bytes.Buffer
}

// table writes the plain keys of n under its header, then its tables and
// arrays of tables. The header is left out when only tables follow it.
func (w *tomlWriter) table(path []string, n *Node, array bool) error {
	var plain, nested []*Member
	for _, m := range n.Members {
		switch {
		case m.Value == nil || m.Value.Kind == KindNull:
			// TOML has no null.
		case tomlIsTable(m.Value) || tomlIsTableArray(m.Value):
			nested = append(nested, m)
		default:
			plain = append(plain, m)
		}
	}

	if len(path) > 0 && (array || len(plain) > 0 || len(nested) == 0) {
		if w.buf.Len() > 0 {
			w.buf.WriteByte('\n')
		}
		if array {
			fmt.Fprintf(&w.buf, "[[%s]]\n", tomlKeyPath(path))
		} else {
			fmt.Fprintf(&w.buf, "[%s]\n", tomlKeyPath(path))
		}
	}
	for _, m := range plain {
		v, err := tomlInlineValue(m.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", tomlKeyPath(append(slices.Clip(path), m.Key)), err)
		}
		fmt.Fprintf(&w.buf, "%s = %s\n", tomlKey(m.Key), v)
	}
	for _, m := range nested {
		sub := append(slices.Clip(path), m.Key)
		if m.Value.Kind == KindMapping {
			if err := w.table(sub, m.Value, false); err != nil {
				return err
			}
			continue
		}
		for _, item := range m.Value.Items {
			if item.Kind == KindNull {
				// Padding left by SetPath.
				item = NewMapping()
			}
			if err := w.table(sub, item, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func tomlIsTable(n *Node) bool {
	if n.Kind != KindMapping {
		return false
	}
	_, inline := n.native.(tomlInline)
	return !inline
}

// tomlIsTableArray reports whether n is written as [[header]] sections:
// a sequence of tables, possibly padded with nulls.
func tomlIsTableArray(n *Node) bool {
	if n.Kind != KindSequence {
		return false
	}
	tables := 0
	for _, item := range n.Items {
		switch {
		case item.Kind == KindNull:
		case tomlIsTable(item):
			tables++
		default:
			return false
		}
	}
	return tables > 0
}

func tomlInlineValue(n *Node) (string, error) {
	switch n.Kind {
	case KindBool, KindNumber:
		return n.Scalar, nil
	case KindString:
		s, _ := n.native.(tomlScalar)
		switch {
		case s.raw:
			return n.Scalar, nil
		case s.literal && tomlLiteralSafe(n.Scalar):
			return "'" + n.Scalar + "'", nil
		}
		return tomlQuote(n.Scalar), nil
	case KindSequence:
		parts := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			v, err := tomlInlineValue(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, v)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case KindMapping:
		parts := make([]string, 0, len(n.Members))
		for _, m := range n.Members {
			if m.Value == nil || m.Value.Kind == KindNull {
				continue
			}
			v, err := tomlInlineValue(m.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, tomlKey(m.Key)+" = "+v)
		}
		if len(parts) == 0 {
			return "{}", nil
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	}
	return "", fmt.Errorf("%w: TOML arrays cannot hold an empty value", ErrPathConflict)
}

func tomlKey(k string) string {
	if k == "" {
		return `""`
	}
	for _, r := range k {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return tomlQuote(k)
		}
	}
	return k
}

func tomlKeyPath(path []string) string {
	keys := make([]string, len(path))
	for i, k := range path {
		keys[i] = tomlKey(k)
	}
	return strings.Join(keys, ".")
}

func tomlLiteralSafe(s string) bool {
	for _, r := range s {
		if r == '\'' || r == 0x7f || (r < 0x20 && r != '\t') {
			return false
		}
	}
	return true
}

func tomlQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
