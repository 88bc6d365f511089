package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDiscoverScriptFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.ps1", "hello")
	writeFile(t, dir, "lib/util.psm1", "function helper { }")
	writeFile(t, dir, "tools/run.sh", "run() { :; }")
	// Unregistered extension should be ignored
	writeFile(t, dir, "readme.txt", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.ps1", "secret")

	entries, err := scan(dir, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []fileEntry{
		{Path: filepath.Join("lib", "util.psm1"), Language: "powershell"},
		{Path: "main.ps1", Language: "powershell"},
		{Path: filepath.Join("tools", "run.sh"), Language: "bash"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v, want %+v", entries, want)
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.ps1", "x")
	writeFile(t, dir, "node_modules/pkg.ps1", "x")
	writeFile(t, dir, "vendor/lib.ps1", "x")
	writeFile(t, dir, ".hidden/secret.ps1", "x")

	entries, err := scan(dir, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
	}
	if entries[0].Path != "main.ps1" {
		t.Errorf("expected main.ps1, got %q", entries[0].Path)
	}
}

func TestDiscoverModuleSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "Modules/Deploy/Deploy.psm1", "x")
	writeFile(t, dir, "build.ps1", "x")

	entries, err := scan(dir, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []fileEntry{
		{Path: filepath.Join("Modules", "Deploy", "Deploy.psm1"), Language: "powershell"},
		{Path: "build.ps1", Language: "powershell"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v, want %+v", entries, want)
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n*.tmp.ps1\n")
	writeFile(t, dir, "keep.ps1", "x")
	writeFile(t, dir, "scratch.tmp.ps1", "x")
	writeFile(t, dir, "generated/out.ps1", "x")

	entries, err := scan(dir, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "keep.ps1" {
		t.Errorf("entries = %+v, want only keep.ps1", entries)
	}
}

func TestDiscoverExcludeAndExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "deploy.ps1", "x")
	writeFile(t, dir, "deploy.Tests.ps1", "x")
	writeFile(t, dir, "legacy/old.ps1", "x")
	writeFile(t, dir, "profile.psrc", "x")

	entries, err := scan(dir, Options{
		Extensions: map[string]string{".psrc": "powershell"},
		Exclude:    []string{"*.Tests.ps1", "legacy"},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []fileEntry{
		{Path: "deploy.ps1", Language: "powershell"},
		{Path: "profile.psrc", Language: "powershell"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v, want %+v", entries, want)
	}
}

func TestDiscoverInvalidExclude(t *testing.T) {
	t.Parallel()

	if _, err := scan(t.TempDir(), Options{Exclude: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "scripts/b.ps1", "x")
	writeFile(t, dir, "scripts/a.ps1", "x")
	writeFile(t, dir, "entry.txt", "x")

	entry := filepath.Join(dir, "entry.txt")
	missing := filepath.Join(dir, "missing.ps1")
	scripts := filepath.Join(dir, "scripts")

	got, err := Inputs([]string{entry, scripts, missing}, Options{})
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}

	want := []string{
		entry,
		filepath.Join(scripts, "a.ps1"),
		filepath.Join(scripts, "b.ps1"),
		missing,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Inputs = %v, want %v", got, want)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.ps1", "x")

	err := os.Symlink(filepath.Join(dir, "real.ps1"), filepath.Join(dir, "link.ps1"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := scan(dir, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %d", len(entries))
	}
	if entries[0].Path != "real.ps1" {
		t.Errorf("expected real.ps1, got %q", entries[0].Path)
	}
}

// scan compiles opts and lists the script files under root.
func scan(root string, opts Options) ([]fileEntry, error) {
	excludes, err := compile(opts.Exclude)
	if err != nil {
		return nil, err
	}
	return files(root, opts.Extensions, excludes)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
