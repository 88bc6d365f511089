// Package include resolves dot-source targets against the including file.
package include

import (
	"path/filepath"
	"strings"
)

// scriptRootVars name the including script's own directory.
var scriptRootVars = []string{"$PSScriptRoot", "${PSScriptRoot}"}

// Resolve returns the path to load for destPath as written in sourcePath.
// Absolute targets are returned unchanged; relative ones are joined to the
// directory of sourcePath. No I/O is performed.
func Resolve(sourcePath, destPath string) string {
	if filepath.IsAbs(destPath) {
		return destPath
	}
	return filepath.Join(filepath.Dir(sourcePath), destPath)
}

// Clean normalizes a raw include target before it is resolved: matching
// quotes are stripped, backslashes become the OS separator, and a leading
// script-root variable is dropped since Resolve already anchors relative
// paths at the including file's directory.
func Clean(target string) string {
	target = strings.TrimSpace(target)
	if len(target) >= 2 && (target[0] == '"' || target[0] == '\'') && target[len(target)-1] == target[0] {
		target = target[1 : len(target)-1]
	}
	target = strings.ReplaceAll(target, `\`, "/")

	for _, v := range scriptRootVars {
		if len(target) >= len(v) && strings.EqualFold(target[:len(v)], v) {
			target = strings.TrimLeft(target[len(v):], "/")
			if target == "" {
				target = "."
			}
			break
		}
	}
	return filepath.FromSlash(target)
}
