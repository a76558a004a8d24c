package newver

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a manifest file format.
type Format int

const (
	FormatJSON Format = iota + 1
	FormatYAML
	FormatTOML
	// FormatModule is a Go-style module file, rewritten as text.
	FormatModule
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatModule:
		return "module"
	default:
		return "unknown"
	}
}

// FormatForPath picks the format of a file from its name.
func FormatForPath(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	if base == "go.mod" || strings.HasSuffix(base, ".mod") {
		return FormatModule, nil
	}
	switch filepath.Ext(base) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, &DetailError{
		Type:     "unsupported file type",
		Message:  fmt.Sprintf("don't know how to update %q", filepath.Base(path)),
		Location: path,
		Hint:     "supported files are .json, .yaml, .yml, .toml and go.mod",
		Cause:    ErrUnsupportedFileType,
	}
}

// Decode parses data into a document tree. YAML and TOML documents must
// decode to a mapping.
func Decode(f Format, data []byte) (*Node, error) {
	var (
		root *Node
		err  error
	)
	switch f {
	case FormatJSON:
		root, err = decodeJSON(data)
	case FormatYAML:
		root, err = decodeYAML(data)
	case FormatTOML:
		root, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s documents have no tree form", ErrUnsupportedFileType, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if f != FormatJSON && root.Kind != KindMapping {
		return nil, fmt.Errorf("%w: %s document is a %s, not a mapping", ErrParse, f, root.Kind)
	}
	return root, nil
}

// Encode serializes a document tree. The output ends with exactly one
// newline.
func Encode(f Format, root *Node) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch f {
	case FormatJSON:
		out, err = encodeJSON(root)
	case FormatYAML:
		out, err = encodeYAML(root)
	case FormatTOML:
		out, err = encodeTOML(root)
	default:
		return nil, fmt.Errorf("%w: %s documents have no tree form", ErrUnsupportedFileType, f)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", f, err)
	}
	return withTrailingNewline(out), nil
}

func withTrailingNewline(b []byte) []byte {
	b = bytes.TrimRight(b, "\r\n")
	return append(b, '\n')
}
