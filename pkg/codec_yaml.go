package newver

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlScalar remembers how a YAML scalar was written so that re-encoding
// keeps its tag and quoting style.
type yamlScalar struct {
	tag   string
	style yaml.Style
}

func (s yamlScalar) forString() presentation {
	return yamlScalar{tag: "!!str", style: s.style}
}

func decodeYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("document is empty")
	}
	return fromYAML(doc.Content[0])
}

func fromYAML(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.MappingNode:
		n := NewMapping()
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: only scalar mapping keys are supported", k.Line)
			}
			v, err := fromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.Set(k.Value, v)
		}
		return n, nil
	case yaml.SequenceNode:
		n := NewSequence()
		for _, item := range y.Content {
			v, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, v)
		}
		return n, nil
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.ScalarNode:
		var n *Node
		switch y.ShortTag() {
		case "!!null":
			n = NewNull()
		case "!!bool":
			n = &Node{Kind: KindBool, Scalar: y.Value}
		case "!!int", "!!float":
			n = NewNumber(y.Value)
		default:
			n = NewString(y.Value)
		}
		n.native = yamlScalar{tag: y.Tag, style: y.Style}
		return n, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", y.Line)
}

func encodeYAML(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(root)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toYAML(n *Node) *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}

	switch n.Kind {
	case KindMapping:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range n.Members {
			y.Content = append(y.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				toYAML(m.Value),
			)
		}
		return y
	case KindSequence:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			y.Content = append(y.Content, toYAML(item))
		}
		return y
	}

	y := &yaml.Node{Kind: yaml.ScalarNode, Value: n.Scalar}
	if hint, ok := n.native.(yamlScalar); ok {
		y.Tag = hint.tag
		y.Style = hint.style
		if n.Kind == KindString && y.ShortTag() != "!!str" && y.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) == 0 {
			// Plain scalars such as timestamps keep their resolved tag.
			return y
		}
	}
	switch n.Kind {
	case KindNull:
		y.Tag, y.Value = "!!null", "null"
	case KindBool:
		y.Tag = "!!bool"
	case KindNumber:
		// An empty tag lets the encoder write the literal as is.
		y.Tag = ""
	case KindString:
		y.Tag = "!!str"
	}
	return y
}
