package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/boshu2/taskmcp/embedded"
)

func TestNames_Embedded(t *testing.T) {
	names, err := NewInstaller(t.TempDir()).Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	want := []string{
		"task-clean.md", "task-complete.md", "task-new.md", "task-plan.md",
		"task-resume.md", "task-start.md", "task-status.md",
	}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestInstall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".claude", "commands")
	inst := NewInstaller(dir)
	ctx := context.Background()

	report, err := inst.Install(ctx)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if got := report.Count(ActionInstalled); got != 7 {
		t.Errorf("installed = %d, want 7", got)
	}

	want, _ := embedded.CommandsFS.ReadFile("commands/task-new.md")
	got, err := os.ReadFile(filepath.Join(dir, "task-new.md"))
	if err != nil {
		t.Fatalf("read installed file: %v", err)
	}
	if string(got) != string(want) {
		t.Error("installed task-new.md differs from embedded copy")
	}

	// Second run skips identical files and rewrites changed ones.
	if err := os.WriteFile(filepath.Join(dir, "task-plan.md"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	report, err = inst.Install(ctx)
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if report.Count(ActionUnchanged) != 6 || report.Count(ActionUpdated) != 1 {
		t.Errorf("second Install() = %+v", report.Files)
	}
}

func TestRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "commands")
	inst := NewInstaller(dir)
	ctx := context.Background()

	if _, err := inst.Install(ctx); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "task-status.md")); err != nil {
		t.Fatal(err)
	}

	report, err := inst.Remove(ctx)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if report.Count(ActionRemoved) != 6 || report.Count(ActionMissing) != 1 {
		t.Errorf("Remove() = %+v", report.Files)
	}
	if !report.DirRemoved {
		t.Error("empty directory should be removed")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("directory still exists: %v", err)
	}
}

func TestRemove_KeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	inst := NewInstaller(dir)
	ctx := context.Background()

	if _, err := inst.Install(ctx); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mine.md"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := inst.Remove(ctx)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if report.DirRemoved {
		t.Error("directory with other files must be kept")
	}
	if _, err := os.Stat(filepath.Join(dir, "mine.md")); err != nil {
		t.Errorf("foreign file removed: %v", err)
	}
}

func TestWithSource(t *testing.T) {
	src := fstest.MapFS{
		"commands/one.md":    {Data: []byte("1")},
		"commands/notes.txt": {Data: []byte("skip")},
	}
	inst := NewInstaller(t.TempDir(), WithSource(src))

	names, err := inst.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "one.md" {
		t.Errorf("Names() = %v, want [one.md]", names)
	}
}
