// Package main implements a CLI tool to set the version in a project's
// manifest files, then stage, commit, tag and push the change using git.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	newver "github.com/bcomnes/newver/pkg"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, a ...any) error {
	return &ExitError{Code: ExitUsageError, Err: fmt.Errorf(format, a...)}
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

const longHelp = `Sets the version in a project's manifest files and optionally commits, tags and pushes the change.

Without --files, these files are updated when they exist:
  package.json, package-lock.json, Cargo.toml, snapcraft.yaml, wails.json, go.mod

The version field is found automatically ("version", "Version", "package.version",
"info.productVersion" or "info.version"), or addressed with --data-paths, which pairs
each path with the --files entry at the same position.

For go.mod, the module declaration carries the version ("module example.com/m v1.2.3")
and the module path gets a /vN suffix when moving to a major version of 2 or more.

Setting a lower version than the current one asks for confirmation unless
--ignore-regression is given. --commit, --tag and --push are asked about when not
given; --tag and --push imply --commit.

Settings can also come from NEWVER_* environment variables or a .newver.yaml,
.newver.json or .newver.toml file in the working directory.`

const examples = `  newver 1.2.3
  newver v2.0.0 --commit --tag --push --prefix chore
  newver 1.2.3 --commit=false -f package.json -f Cargo.toml
  newver 1.2.3 -f pyproject.toml -d tool.poetry.version
  newver 1.2.3 --dry-run`

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "newver <version>",
		Short:   "Set the version of a project's manifest files",
		Long:    longHelp,
		Example: examples,
		Version: Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError("<version> positional argument is required")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNewver(cmd, v, args[0])
		},
	}
	cmd.SetVersionTemplate("newver CLI version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsageError, Err: err}
	})

	flags := cmd.Flags()
	flags.BoolP("commit", "c", false, "create a commit")
	flags.BoolP("tag", "t", false, "tag the new commit (implies --commit)")
	flags.BoolP("push", "p", false, "push the new commit and tag (implies --commit)")
	flags.StringP("prefix", "x", "", "conventional commit prefix, e.g. chore")
	flags.StringArrayP("files", "f", nil, "file to update the version in, may be repeated")
	flags.StringArrayP("data-paths", "d", nil, "path of the version field in the --files entry at the same position, e.g. tool.version; empty means search")
	flags.BoolP("ignore-regression", "i", false, "don't ask before setting a lower version")
	flags.BoolP("quiet", "q", false, "only print errors")
	flags.BoolP("dry-run", "n", false, "show what would change without writing files or running git")
	flags.Bool("verbose", false, "print debug output")
	flags.String("config", "", "config file (default: .newver.{yaml,json,toml} in the working directory)")

	return cmd
}

func runNewver(cmd *cobra.Command, v *viper.Viper, version string) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}

	logger := newver.NewLogger(cmd.ErrOrStderr(), cfg.Quiet, cfg.Verbose)
	logger.Debug("newver started", "version", Version, "config", v.ConfigFileUsed())

	res, err := newver.Run(cmd.Context(), version, newver.Options{
		Dir:              cfg.Dir,
		Files:            cfg.Files,
		DataPaths:        cfg.DataPaths,
		Commit:           cfg.Commit,
		Tag:              cfg.Tag,
		Push:             cfg.Push,
		Prefix:           cfg.Prefix,
		IgnoreRegression: cfg.IgnoreRegression,
		DryRun:           cfg.DryRun,
		Logger:           logger,
	})
	if err != nil {
		if errors.Is(err, newver.ErrInvalidVersion) || errors.Is(err, newver.ErrInvalidPath) {
			return &ExitError{Code: ExitUsageError, Err: err}
		}
		return err
	}

	if !cfg.Quiet {
		printSummary(cmd.OutOrStdout(), res)
	}
	return nil
}

// printSummary lists exactly which files were (or would be) touched.
func printSummary(w io.Writer, res newver.Result) {
	if len(res.Changed) == 0 {
		return
	}
	if res.DryRun {
		fmt.Fprintln(w, "Dry run complete, no files were modified.")
	} else {
		fmt.Fprintln(w, "Version update successful!")
	}
	fmt.Fprintf(w, "New Version: %s\n", res.NewVersion)

	if res.DryRun {
		fmt.Fprintln(w, "Files that would be updated:")
	} else {
		fmt.Fprintln(w, "Files updated:")
	}
	for _, f := range res.Files {
		if f.Status == newver.StatusUpdated {
			fmt.Fprintf(w, "  %s (%s)\n", f.File.Name, f.Field)
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		code := ExitGeneralError
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(code)
	}
}
