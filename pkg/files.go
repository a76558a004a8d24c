package newver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFiles are the manifests looked for when no files are given.
var DefaultFiles = []string{
	"package.json",
	"package-lock.json",
	"Cargo.toml",
	"snapcraft.yaml",
	"wails.json",
	"go.mod",
}

// TargetFile is a file whose version will be updated.
type TargetFile struct {
	// Name is the file as given by the user, or the default file name.
	Name string

	// Path is the absolute path of the file.
	Path string

	// DataPath addresses the version field explicitly. When nil the field
	// is searched for.
	DataPath DataPath
}

// CollectFiles resolves the files to update relative to dir. With no files
// given, the DefaultFiles that exist are used and finding none is an error.
// Given files must all exist. dataPaths pair positionally with files; an
// empty entry means the version field is searched for.
func CollectFiles(dir string, files, dataPaths []string) ([]TargetFile, error) {
	if len(dataPaths) > len(files) {
		return nil, fmt.Errorf("%w: %d data paths given for %d files", ErrInvalidPath, len(dataPaths), len(files))
	}

	if len(files) == 0 {
		var found []TargetFile
		for _, name := range DefaultFiles {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				found = append(found, TargetFile{Name: name, Path: path})
			}
		}
		if len(found) == 0 {
			return nil, &DetailError{
				Type:     "no files found",
				Message:  "none of " + strings.Join(DefaultFiles, ", ") + " exist",
				Location: dir,
				Hint:     "use --files to specify the files to update",
				Cause:    ErrNoCandidateFiles,
			}
		}
		return found, nil
	}

	targets := make([]TargetFile, 0, len(files))
	for i, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &DetailError{
					Type:     "file not found",
					Message:  fmt.Sprintf("%q does not exist", name),
					Location: path,
					Cause:    ErrFileNotFound,
				}
			}
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}

		t := TargetFile{Name: name, Path: path}
		if i < len(dataPaths) && strings.TrimSpace(dataPaths[i]) != "" {
			dp, err := ParsePath(dataPaths[i])
			if err != nil {
				return nil, err
			}
			t.DataPath = dp
		}
		targets = append(targets, t)
	}
	return targets, nil
}
