package newver

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures a run. The zero value updates the default manifests in
// the current directory, asks before each git step, and talks to the
// terminal.
type Options struct {
	// Dir is the project directory. Empty means the current directory.
	Dir string

	// Files to update. Empty means the DefaultFiles that exist.
	Files []string

	// DataPaths pair positionally with Files and address the version field
	// explicitly, e.g. "tool.metadata.version". Empty entries mean search.
	DataPaths []string

	// Commit, Tag and Push are asked about interactively when nil. Tag and
	// Push imply Commit.
	Commit *bool
	Tag    *bool
	Push   *bool

	// Prefix is a conventional commit prefix, e.g. "chore".
	Prefix string

	// IgnoreRegression skips the confirmation before moving to a lower version.
	IgnoreRegression bool

	// DryRun reports what would change without writing files or running git.
	DryRun bool

	Logger   *log.Logger
	Prompter Prompter
	Runner   CommandRunner
}

// FileStatus is the outcome of updating one file.
type FileStatus string

const (
	StatusUpdated   FileStatus = "updated"
	StatusUnchanged FileStatus = "unchanged"
	StatusSkipped   FileStatus = "skipped"
	StatusDeclined  FileStatus = "declined"
)

// FileResult describes what happened to one file.
type FileResult struct {
	File       TargetFile
	Status     FileStatus
	Field      string // Location of the version field, "module" for module files.
	OldVersion string

	// Warning holds a non-fatal problem, such as ErrFieldNotFound.
	Warning error
}

// Result holds metadata about a run.
type Result struct {
	NewVersion string
	DryRun     bool
	Files      []FileResult

	// Changed lists the files that were (or, in a dry run, would be) written.
	Changed []TargetFile

	Committed bool
	Tagged    bool
	Pushed    bool
}

// ChangedNames returns the names of the changed files.
func (r Result) ChangedNames() []string {
	names := make([]string, len(r.Changed))
	for i, t := range r.Changed {
		names[i] = t.Name
	}
	return names
}

// Run sets version in every target file, then commits, tags and pushes the
// changed files as configured. Files are processed one at a time in order.
// The first fatal error stops the run; files written before it stay written.
func Run(ctx context.Context, version string, opts Options) (Result, error) {
	newVersion, err := ParseVersion(version)
	if err != nil {
		return Result{}, err
	}
	opts, err = opts.withDefaults()
	if err != nil {
		return Result{}, err
	}

	res := Result{NewVersion: newVersion, DryRun: opts.DryRun}
	opts.Logger.Info("Updating version to " + StyleVersion.Render(newVersion))

	targets, err := CollectFiles(opts.Dir, opts.Files, opts.DataPaths)
	if err != nil {
		return res, err
	}

	u := updater{opts: opts, version: newVersion}
	for _, t := range targets {
		fr, err := u.updateFile(ctx, t)
		if err != nil {
			return res, err
		}
		res.Files = append(res.Files, fr)
		if fr.Status == StatusUpdated {
			res.Changed = append(res.Changed, t)
		}
	}

	if len(res.Changed) == 0 {
		opts.Logger.Info("No files changed")
		return res, nil
	}
	if opts.DryRun {
		return res, nil
	}
	return res, u.publish(ctx, &res)
}

// DryRun runs the update pipeline, confirmations included, without
// writing any file or running git.
func DryRun(ctx context.Context, version string, opts Options) (Result, error) {
	opts.DryRun = true
	return Run(ctx, version, opts)
}

func (o Options) withDefaults() (Options, error) {
	if o.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return o, fmt.Errorf("getting working directory: %w", err)
		}
		o.Dir = wd
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	if o.Prompter == nil {
		o.Prompter = NewTerminalPrompter()
	}
	if o.Runner == nil {
		o.Runner = ExecRunner{Dir: o.Dir}
	}
	if o.Commit == nil && (isTrue(o.Tag) || isTrue(o.Push)) {
		yes := true
		o.Commit = &yes
	}
	return o, nil
}

func isTrue(b *bool) bool { return b != nil && *b }

type updater struct {
	opts    Options
	version string
}

func (u updater) updateFile(ctx context.Context, t TargetFile) (FileResult, error) {
	fr := FileResult{File: t}

	format, err := FormatForPath(t.Path)
	if err != nil {
		return fr, err
	}
	info, err := os.Stat(t.Path)
	if err != nil {
		return fr, fmt.Errorf("%w: %s: %w", ErrParse, t.Name, err)
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return fr, fmt.Errorf("%w: %s: %w", ErrParse, t.Name, err)
	}

	if format == FormatModule {
		return u.updateModule(ctx, t, data, info.Mode())
	}

	root, err := Decode(format, data)
	if err != nil {
		return fr, &DetailError{Type: "cannot parse file", Message: err.Error(), Location: t.Path, Cause: err}
	}

	searched := t.DataPath == nil
	var field FieldRef
	if searched {
		field, err = LocateVersion(root)
		if err != nil {
			u.opts.Logger.Warn("No version field found, skipping", "file", t.Name)
			fr.Status, fr.Warning = StatusSkipped, fmt.Errorf("%s: %w", t.Name, err)
			return fr, nil
		}
	} else {
		field = FieldAt(root, t.DataPath)
	}
	fr.Field = field.Path.String()
	fr.OldVersion = field.Current()

	// The new document is built before asking, so a path that cannot be
	// written fails without a prompt.
	if err := field.Set(u.version); err != nil {
		return fr, fmt.Errorf("%s: %w", t.Name, err)
	}
	var lockErr error
	if searched && isPackageLock(t.Name, root) {
		lockErr = setLockRootVersion(root, u.version)
	}
	out, err := Encode(format, root)
	if err != nil {
		return fr, fmt.Errorf("%s: %w", t.Name, err)
	}

	if fr.OldVersion != "" {
		ok, err := ConfirmUpdate(ctx, u.opts.Prompter, u.opts.IgnoreRegression, fr.OldVersion, u.version, t.Name)
		if err != nil {
			return fr, err
		}
		if !ok {
			fr.Status = u.notUpdated(t, fr.OldVersion)
			return fr, nil
		}
	}

	if lockErr != nil {
		u.opts.Logger.Error("Error updating package-lock.json", "file", t.Name, "err", lockErr)
		fr.Warning = fmt.Errorf("%s: %w", t.Name, lockErr)
	}
	if err := u.write(t, out, info.Mode()); err != nil {
		return fr, err
	}

	fr.Status = StatusUpdated
	u.opts.Logger.Info(StyleFile.Render(t.Name)+" updated", "field", fr.Field, "from", fr.OldVersion, "to", u.version)
	return fr, nil
}

func (u updater) updateModule(ctx context.Context, t TargetFile, data []byte, mode os.FileMode) (FileResult, error) {
	fr := FileResult{File: t, Field: "module"}

	loc := moduleLine.FindSubmatchIndex(data)
	if loc == nil {
		u.opts.Logger.Warn("No module declaration found, skipping", "file", t.Name)
		fr.Status = StatusSkipped
		return fr, nil
	}
	if loc[4] >= 0 {
		fr.OldVersion = string(data[loc[4]:loc[5]])
	}

	rw := ModuleRewriter{
		Prompter:         u.opts.Prompter,
		IgnoreRegression: u.opts.IgnoreRegression,
		Logger:           u.opts.Logger,
	}
	out, changed, err := rw.Rewrite(ctx, data, u.version, t.Name)
	if err != nil {
		return fr, err
	}
	if !changed {
		fr.Status = u.notUpdated(t, fr.OldVersion)
		return fr, nil
	}
	if err := u.write(t, out, mode); err != nil {
		return fr, err
	}

	fr.Status = StatusUpdated
	u.opts.Logger.Info(StyleFile.Render(t.Name)+" updated", "field", fr.Field, "from", fr.OldVersion, "to", u.version)
	return fr, nil
}

func (u updater) notUpdated(t TargetFile, old string) FileStatus {
	if normalizeVersion(old) == u.version {
		u.opts.Logger.Info(StyleFile.Render(t.Name)+" is already at "+StyleVersion.Render(u.version))
		return StatusUnchanged
	}
	u.opts.Logger.Info(StyleFile.Render(t.Name)+" left unchanged", "version", old)
	return StatusDeclined
}

func (u updater) write(t TargetFile, out []byte, mode os.FileMode) error {
	if u.opts.DryRun {
		u.opts.Logger.Debug("dry run, not writing", "file", t.Name)
		return nil
	}
	if err := os.WriteFile(t.Path, out, mode.Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", t.Name, err)
	}
	return nil
}

// publish runs the commit, tag and push steps for the changed files.
func (u updater) publish(ctx context.Context, res *Result) error {
	git := Git{Runner: u.opts.Runner, Logger: u.opts.Logger}

	commit, err := u.decide(ctx, u.opts.Commit, "Create commit?")
	if err != nil || !commit {
		return err
	}
	if err := git.Check(ctx); err != nil {
		return err
	}
	if err := git.Commit(ctx, u.version, res.ChangedNames(), u.opts.Prefix); err != nil {
		return err
	}
	res.Committed = true

	tag, err := u.decide(ctx, u.opts.Tag, "Create tag?")
	if err != nil {
		return err
	}
	if tag {
		if err := git.Tag(ctx, u.version); err != nil {
			return err
		}
		res.Tagged = true
	}

	push, err := u.decide(ctx, u.opts.Push, "Push to origin?")
	if err != nil || !push {
		return err
	}
	if err := git.Push(ctx); err != nil {
		return err
	}
	if tag {
		if err := git.PushTag(ctx, u.version); err != nil {
			return err
		}
	}
	res.Pushed = true
	return nil
}

// decide returns the flag's value when set, and asks otherwise.
func (u updater) decide(ctx context.Context, flag *bool, question string) (bool, error) {
	if flag != nil {
		return *flag, nil
	}
	ok, err := u.opts.Prompter.Confirm(ctx, question)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Warnings returns the non-fatal problems recorded for the run.
func (r Result) Warnings() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Warning != nil {
			errs = append(errs, f.Warning)
		}
	}
	return errs
}
