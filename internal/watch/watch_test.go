package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan []string, want string) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case paths := <-ch:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-timeout:
			t.Fatalf("timed out waiting for change to %s", want)
		}
	}
}

func TestWatcherReportsScriptChanges(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan []string, 8)
	isScript := func(p string) bool { return strings.HasSuffix(p, ".ps1") }
	w, err := New(50*time.Millisecond, []string{"*.Tests.ps1", "skip"}, isScript, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{dir}); err != nil {
		t.Fatal(err)
	}

	script := filepath.Join(dir, "deploy.ps1")
	if err := os.WriteFile(script, []byte("deploy"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changed, script)

	// Excluded and non-matching files stay quiet.
	for _, name := range []string{"deploy.Tests.ps1", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	quiet := time.After(300 * time.Millisecond)
	for done := false; !done; {
		select {
		case paths := <-changed:
			for _, p := range paths {
				if p != script {
					t.Errorf("unexpected change report for %s", p)
				}
			}
		case <-quiet:
			done = true
		}
	}

	// New directories are picked up.
	sub := filepath.Join(dir, "lib")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	nested := filepath.Join(sub, "util.ps1")
	if err := os.WriteFile(nested, []byte("util"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changed, nested)
}

func TestWatcherFileInput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.ps1")
	if err := os.WriteFile(script, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 8)
	w, err := New(50*time.Millisecond, nil, nil, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{script, filepath.Join(dir, "missing.ps1")}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(script, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changed, script)
}

func TestNewInvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(time.Millisecond, []string{"[broken"}, nil, nil, func([]string) {}); err == nil {
		t.Error("expected error for invalid exclude pattern")
	}
}
