// Package newver provides a library for setting a project's version across
// its manifest files.
//
// It provides functionalities for:
//   - Validating and comparing version strings segment by segment (numerically, not lexically).
//   - Locating the version field of JSON, YAML and TOML manifests (package.json, package-lock.json,
//     Cargo.toml, snapcraft.yaml, wails.json, ...) or addressing it with an explicit data path
//     such as "tool.metadata.version" or "a[0].b.version".
//   - Rewriting Go-style module declarations ("module example.com/m/v2 v2.1.0"), keeping the
//     major version suffix of the module path in step with the version.
//   - Asking for confirmation before a file moves to a lower version.
//   - Integrating with Git to stage the changed files, commit them with the message
//     "update version to X" (optionally with a conventional commit prefix), tag the commit
//     with "vX", and push the commit and tag.
//
// This library is used by the newver command-line tool and can be used as a programmatic
// API. Interactive questions and git invocations go through the Prompter and CommandRunner
// interfaces, so both can be replaced.
//
// Usage Example:
//
//	import (
//	    "context"
//	    "log"
//
//	    newver "github.com/bcomnes/newver/pkg"
//	)
//
//	func main() {
//	    no := false
//	    res, err := newver.Run(context.Background(), "1.4.0", newver.Options{
//	        Files:  []string{"package.json", "Cargo.toml"},
//	        Commit: &no,
//	    })
//	    if err != nil {
//	        log.Fatalf("version update failed: %v", err)
//	    }
//	    log.Println("updated:", res.ChangedNames())
//	}
//
// For additional details and API documentation, see https://pkg.go.dev/github.com/bcomnes/newver.
package newver
