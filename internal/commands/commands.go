// Package commands installs the task manager's slash-command files into the
// editor's commands directory and removes them again.
package commands

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/rs/zerolog"

	"github.com/boshu2/taskmcp/embedded"
	"github.com/boshu2/taskmcp/internal/storage"
	"github.com/boshu2/taskmcp/internal/worker"
)

// Action is what happened to one command file.
type Action string

const (
	ActionInstalled Action = "installed"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionRemoved   Action = "removed"
	ActionMissing   Action = "missing"
)

// FileResult reports one command file.
type FileResult struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Action Action `json:"action"`
}

// Report summarizes an install or remove run.
type Report struct {
	Dir        string       `json:"dir"`
	Files      []FileResult `json:"files"`
	DirRemoved bool         `json:"dir_removed,omitempty"`
}

// Count returns the number of files with action a.
func (r Report) Count(a Action) int {
	n := 0
	for _, f := range r.Files {
		if f.Action == a {
			n++
		}
	}
	return n
}

const sourceDir = "commands"

// Installer manages the command files in one directory.
type Installer struct {
	dest   *storage.FileStorage
	source fs.FS
	pool   *worker.Pool[string, FileResult]
}

// Option configures an Installer.
type Option func(*Installer)

// WithSource replaces the embedded command files. Files are read from the
// "commands" directory of src.
func WithSource(src fs.FS) Option {
	return func(i *Installer) {
		if src != nil {
			i.source = src
		}
	}
}

// NewInstaller creates an Installer targeting dir.
func NewInstaller(dir string, opts ...Option) *Installer {
	i := &Installer{
		dest:   storage.NewFileStorage(storage.WithBaseDir(dir)),
		source: embedded.CommandsFS,
		pool:   worker.NewPool[string, FileResult](4),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Dir returns the target directory.
func (i *Installer) Dir() string {
	return i.dest.BaseDir()
}

// Names lists the command files shipped with the binary, sorted.
func (i *Installer) Names() ([]string, error) {
	entries, err := fs.ReadDir(i.source, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("list command files: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Install writes every command file whose content differs from the
// installed copy.
func (i *Installer) Install(ctx context.Context) (Report, error) {
	names, err := i.Names()
	if err != nil {
		return Report{}, err
	}
	if err := i.dest.Init(); err != nil {
		return Report{}, err
	}

	results := i.pool.Process(ctx, names, i.installOne)
	return i.report(ctx, results)
}

func (i *Installer) installOne(_ context.Context, name string) (FileResult, error) {
	want, err := fs.ReadFile(i.source, path.Join(sourceDir, name))
	if err != nil {
		return FileResult{}, fmt.Errorf("read embedded %s: %w", name, err)
	}

	res := FileResult{Name: name, Path: i.dest.Path(name), Action: ActionInstalled}
	have, err := i.dest.ReadFile(name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return FileResult{}, err
	case len(have) > 0 && sameContent(have, want):
		res.Action = ActionUnchanged
		return res, nil
	default:
		res.Action = ActionUpdated
	}

	if err := i.dest.WriteFile(name, want); err != nil {
		return FileResult{}, err
	}
	return res, nil
}

// Remove deletes the command files and the directory when nothing else is
// left in it. Files that are already gone are reported, not treated as errors.
func (i *Installer) Remove(ctx context.Context) (Report, error) {
	names, err := i.Names()
	if err != nil {
		return Report{}, err
	}

	results := i.pool.Process(ctx, names, i.removeOne)
	report, err := i.report(ctx, results)
	if err != nil {
		return report, err
	}

	entries, err := os.ReadDir(i.dest.BaseDir())
	if err == nil && len(entries) == 0 {
		if err := os.Remove(i.dest.BaseDir()); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", i.dest.BaseDir()).Msg("remove commands directory")
		} else {
			report.DirRemoved = true
		}
	}
	return report, nil
}

func (i *Installer) removeOne(_ context.Context, name string) (FileResult, error) {
	res := FileResult{Name: name, Path: i.dest.Path(name), Action: ActionRemoved}
	if !i.dest.Exists(name) {
		res.Action = ActionMissing
		return res, nil
	}
	if err := i.dest.Remove(name); err != nil {
		return FileResult{}, err
	}
	return res, nil
}

func (i *Installer) report(ctx context.Context, results []worker.Result[FileResult]) (Report, error) {
	report := Report{Dir: i.dest.BaseDir()}
	if err := worker.FirstError(results); err != nil {
		return report, err
	}
	for _, r := range results {
		report.Files = append(report.Files, r.Value)
		zerolog.Ctx(ctx).Debug().Str("file", r.Value.Name).Str("action", string(r.Value.Action)).Msg("command file")
	}
	return report, nil
}

func sameContent(a, b []byte) bool {
	ha := sha256.Sum256(a)
	hb := sha256.Sum256(b)
	return bytes.Equal(ha[:], hb[:])
}
