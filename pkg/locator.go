package newver

import (
	"fmt"
	"path/filepath"
	"slices"
)

// versionRule is a known location of a manifest's version field.
type versionRule struct {
	manifest string
	path     DataPath
}

// versionRules are tried in order and the first match wins, so a document
// with both "version" and "package.version" resolves to "version".
var versionRules = []versionRule{
	{manifest: "package.json, snapcraft.yaml", path: DataPath{Key("version")}},
	{manifest: "Go-style capitalized", path: DataPath{Key("Version")}},
	{manifest: "Cargo.toml", path: DataPath{Key("package"), Key("version")}},
	{manifest: "wails.json", path: DataPath{Key("info"), Key("productVersion")}},
	{manifest: "nested info", path: DataPath{Key("info"), Key("version")}},
}

// matches reports whether the rule's field exists as a scalar under a
// mapping parent.
func (r versionRule) matches(root *Node) bool {
	parent, ok := GetPath(root, r.path[:len(r.path)-1])
	if !ok || parent.Kind != KindMapping {
		return false
	}
	field, ok := parent.Get(r.path[len(r.path)-1].Key)
	if !ok || field == nil {
		return false
	}
	return field.Kind != KindMapping && field.Kind != KindSequence
}

// FieldRef is a located version field in a document.
type FieldRef struct {
	Path DataPath
	root *Node
}

// Current returns the field's current value, or "" when it holds no scalar.
func (f FieldRef) Current() string {
	n, ok := GetPath(f.root, f.Path)
	if !ok {
		return ""
	}
	s, _ := n.Text()
	return s
}

// Set writes version into the field.
func (f FieldRef) Set(version string) error {
	return SetPath(f.root, f.Path, NewString(version))
}

// LocateVersion searches root for a version field in the well-known
// manifest locations.
func LocateVersion(root *Node) (FieldRef, error) {
	for _, rule := range versionRules {
		if rule.matches(root) {
			return FieldRef{Path: rule.path, root: root}, nil
		}
	}
	return FieldRef{}, ErrFieldNotFound
}

// FieldAt returns a reference to the field at path, whether or not it exists yet.
func FieldAt(root *Node, path DataPath) FieldRef {
	return FieldRef{Path: path, root: root}
}

// lockRootPackage is the entry of the project itself in a package-lock.json.
var lockRootPackage = DataPath{Key("packages"), Key("")}

// isPackageLock reports whether a document is shaped like an npm lock file.
func isPackageLock(name string, root *Node) bool {
	if filepath.Base(name) == "package-lock.json" {
		return true
	}
	_, ok := root.Get("lockfileVersion")
	return ok
}

// setLockRootVersion updates packages[""].version in a package-lock.json.
// A lock file without that field yields ErrSecondaryFieldNotFound.
func setLockRootVersion(root *Node, version string) error {
	pkg, ok := GetPath(root, lockRootPackage)
	if !ok || pkg.Kind != KindMapping {
		return fmt.Errorf("%w: %s is missing", ErrSecondaryFieldNotFound, lockRootPackage)
	}
	if _, ok := pkg.Get("version"); !ok {
		return fmt.Errorf("%w: %s has no version", ErrSecondaryFieldNotFound, lockRootPackage)
	}
	return SetPath(root, append(slices.Clone(lockRootPackage), Key("version")), NewString(version))
}
