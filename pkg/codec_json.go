package newver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// decodeJSON reads a JSON document token by token so that object members
// keep their order and numbers keep their literal text.
func decodeJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return root, nil
}

func readJSONValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := NewMapping()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				n.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := NewSequence()
			for dec.More() {
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// encodeJSON writes n with two-space indentation.
func encodeJSON(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, n, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n *Node, depth int) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool, KindNumber:
		buf.WriteString(n.Scalar)
	case KindString:
		s, err := quoteJSON(n.Scalar)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case KindSequence:
		if len(n.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Items {
			indentJSON(buf, depth+1)
			if err := writeJSON(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indentJSON(buf, depth)
		buf.WriteByte(']')
	case KindMapping:
		if len(n.Members) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, m := range n.Members {
			indentJSON(buf, depth+1)
			key, err := quoteJSON(m.Key)
			if err != nil {
				return err
			}
			buf.WriteString(key)
			buf.WriteString(": ")
			if err := writeJSON(buf, m.Value, depth+1); err != nil {
				return err
			}
			if i < len(n.Members)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indentJSON(buf, depth)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown node kind %d", n.Kind)
	}
	return nil
}

func indentJSON(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat("  ", depth))
}

func quoteJSON(s string) (string, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
