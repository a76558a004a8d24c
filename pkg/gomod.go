package newver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// moduleLine matches a module declaration with an optional trailing
// version: "module example.com/m" or "module example.com/m/v2 v2.0.0".
var moduleLine = regexp.MustCompile(`(?m)^module[ \t]+(\S+)(?:[ \t]+v(\d\S*))?`)

// ModuleRewriter updates the version of a module declaration and keeps the
// major version suffix of the module path in step with it.
type ModuleRewriter struct {
	Prompter         Prompter
	IgnoreRegression bool
	Logger           *log.Logger
}

// Rewrite returns contents with the module declaration set to newVersion.
// changed is false when there is no module declaration, the version is
// already current, or the user declined the change.
func (r ModuleRewriter) Rewrite(ctx context.Context, contents []byte, newVersion, label string) (updated []byte, changed bool, err error) {
	loc := moduleLine.FindSubmatchIndex(contents)
	if loc == nil {
		return contents, false, nil
	}
	path := string(contents[loc[2]:loc[3]])

	if loc[4] < 0 {
		r.validate(path, newVersion, label)
		return splice(contents, loc[3], loc[3], " v"+newVersion), true, nil
	}

	current := string(contents[loc[4]:loc[5]])
	curMajor, newMajor := majorOf(current), majorOf(newVersion)

	if newMajor < curMajor && !r.IgnoreRegression {
		ok, err := r.Prompter.Confirm(ctx, fmt.Sprintf("%s: moving module %s back from major version %d to %d. Continue?", label, path, curMajor, newMajor))
		if err != nil || !ok {
			return contents, false, err
		}
	}
	ok, err := ConfirmUpdate(ctx, r.Prompter, r.IgnoreRegression, current, newVersion, label)
	if err != nil || !ok {
		return contents, false, err
	}

	newPath := path
	if (newMajor >= 2 && newMajor > curMajor) || newMajor < curMajor {
		newPath = pathForMajor(path, newMajor)
	}
	r.validate(newPath, newVersion, label)

	// Splice the later span first so the earlier offsets stay valid.
	updated = splice(contents, loc[4], loc[5], newVersion)
	updated = splice(updated, loc[2], loc[3], newPath)
	return updated, true, nil
}

// pathForMajor returns path with its major version suffix set for major.
// Majors below 2 carry no suffix, except gopkg.in style ".vN" paths.
func pathForMajor(path string, major int) string {
	prefix, pathMajor, ok := module.SplitPathVersion(path)
	if !ok {
		prefix, pathMajor = path, ""
	}
	if strings.HasPrefix(pathMajor, ".") || strings.HasPrefix(prefix, "gopkg.in/") {
		return prefix + ".v" + strconv.Itoa(major)
	}
	if major < 2 {
		return prefix
	}
	return prefix + "/v" + strconv.Itoa(major)
}

// validate warns about declarations the go command would not accept.
func (r ModuleRewriter) validate(path, version, label string) {
	if r.Logger == nil {
		return
	}
	if err := module.CheckPath(path); err != nil {
		r.Logger.Warn("module path is not a valid Go module path", "file", label, "path", path, "err", err)
	}
	if !semver.IsValid("v" + version) {
		r.Logger.Warn("version is not a valid Go module version", "file", label, "version", version)
	}
}

func splice(b []byte, start, end int, s string) []byte {
	out := make([]byte, 0, len(b)-(end-start)+len(s))
	out = append(out, b[:start]...)
	out = append(out, s...)
	return append(out, b[end:]...)
}
