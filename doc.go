// Package main implements the newver CLI tool.
//
// The newver tool sets a project's version in all of its manifest files at
// once, then optionally stages the changed files, commits them, tags the
// commit with the new version (prefixed with "v") and pushes the commit and
// tag to origin.
//
// Command Usage:
//
//	newver [flags] <version>
//
// The version must look like 1.2.3, with an optional fourth number (1.2.3.4)
// and an optional pre-release suffix (1.2.3-beta.1). A leading "v" is dropped.
//
// Flags:
//
//	-c, --commit:            Create a commit. Asked interactively when not given.
//	-t, --tag:               Tag the commit with v<version>. Implies --commit.
//	-p, --push:              Push the commit and tag to origin. Implies --commit.
//	-x, --prefix:            Conventional commit prefix, e.g. "chore".
//	-f, --files:             File to update. May be repeated. Without it, the default
//	                         manifests that exist in the working directory are updated.
//	-d, --data-paths:        Path of the version field in the --files entry at the same
//	                         position, e.g. "tool.poetry.version" or "apps[0].version".
//	                         An empty value (-d "") searches that file as usual.
//	-i, --ignore-regression: Don't ask before setting a lower version.
//	-n, --dry-run:           Report what would change without writing files or running git.
//	-q, --quiet:             Only print errors.
//	    --verbose:           Print debug output.
//	    --config:            Config file. Defaults to .newver.{yaml,json,toml}.
//	    --version:           Displays the version of the newver CLI tool and exits.
//
// Boolean flags take an explicit value with "=": --commit=false.
//
// Every flag can also be set with a NEWVER_ environment variable (NEWVER_PREFIX,
// NEWVER_DATA_PATHS, ...) or a key of the same name in the config file.
//
// Examples:
//
//	# Update package.json, Cargo.toml, go.mod, ... and ask about git
//	newver 1.2.3
//
//	# Update, commit, tag and push without asking
//	newver 2.0.0 --commit --tag --push --prefix chore
//
//	# Update a version nested somewhere unusual
//	newver 1.2.3 -f pyproject.toml -d tool.poetry.version
//
//	# Move a Go module to its next major version (module example.com/m/v3 v3.0.0)
//	newver 3.0.0 -f go.mod --commit=false
//
// For the library API, see the documentation of the "pkg" package.
package main
