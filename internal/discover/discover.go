// Package discover expands command-line inputs into the script files to scan.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/scriptgraph/internal/lang"
)

// fileEntry represents a discovered script file.
type fileEntry struct {
	Path     string // Relative to the scanned directory
	Language string
}

// Options controls directory expansion.
type Options struct {
	// Extensions maps extra file extensions to dialect names.
	Extensions map[string]string
	// Exclude holds glob patterns matched against the slash-separated
	// relative path and the base name of each candidate.
	Exclude []string
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"vendor":       {},
	"build":        {},
	"dist":         {},
	"bin":          {},
	"obj":          {},
}

// Inputs expands paths into the ordered list of scripts to scan. Files are
// kept as given, even when their extension is unknown or they do not exist,
// so that the caller can report them. Directories are replaced by their
// script files in sorted order.
func Inputs(paths []string, opts Options) ([]string, error) {
	excludes, err := compile(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := files(p, opts.Extensions, excludes)
		if err != nil {
			return nil, fmt.Errorf("discovering %s: %w", p, err)
		}
		for _, e := range entries {
			out = append(out, filepath.Join(p, e.Path))
		}
	}
	return out, nil
}

// files discovers script files under root in sorted order.
func files(root string, extensions map[string]string, excludes []glob.Glob) ([]fileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []fileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if rel, err := filepath.Rel(root, path); err == nil && excluded(excludes, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if excluded(excludes, rel) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		langName := extensions[ext]
		if langName == "" {
			langName = lang.ForExtension(ext)
		}
		if langName == "" {
			return nil
		}

		results = append(results, fileEntry{Path: rel, Language: langName})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func excluded(globs []glob.Glob, rel string) bool {
	slashed := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, g := range globs {
		if g.Match(slashed) || g.Match(base) {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
