// Package project locates the directory a tier invocation is scoped to.
//
// Credentials are stored per (API host, project root), so two checkouts
// logged in against the same host never share a token.
package project

import (
	"os"
	"path/filepath"
	"sync"
)

// Markers are the entries whose presence identifies a project root:
// version-control directories, dependency manifests and lockfiles, and
// build-tool configuration.
var Markers = []string{
	".git",
	".hg",
	".svn",
	"package.json",
	"node_modules",
	"go.mod",
	"go.sum",
	"tsconfig.json",
	"Cargo.toml",
	"pyproject.toml",
	"Gemfile",
}

// Locate walks upward from startDir looking for the closest directory that
// contains one of Markers.
//
// The walk stops at upperBound (which is never itself inspected) or at the
// filesystem root. When no marker is found, startDir is returned. A start
// directory equal to upperBound is its own project root.
func Locate(startDir, upperBound string) string {
	start := filepath.Clean(startDir)
	top := filepath.Clean(upperBound)

	if start == top {
		return start
	}

	for dir := start; ; {
		if dir == top {
			return start
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		if hasMarker(dir) {
			return dir
		}
		dir = parent
	}
}

func hasMarker(dir string) bool {
	for _, name := range Markers {
		if _, err := os.Lstat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Locator resolves the project root for the current process exactly once.
type Locator struct {
	WorkingDir func() (string, error)
	HomeDir    func() (string, error)

	once sync.Once
	root string
	err  error
}

// NewLocator returns a Locator bound to the process working and home
// directories.
func NewLocator() *Locator {
	return &Locator{WorkingDir: os.Getwd, HomeDir: os.UserHomeDir}
}

// Root returns the project root. The first call computes it; later calls
// return the same value even if the filesystem changed in between.
func (l *Locator) Root() (string, error) {
	l.once.Do(func() {
		l.root, l.err = l.locate()
	})
	return l.root, l.err
}

func (l *Locator) locate() (string, error) {
	wd, err := l.WorkingDir()
	if err != nil {
		return "", err
	}
	wd, err = filepath.Abs(wd)
	if err != nil {
		return "", err
	}

	top := wd
	if l.HomeDir != nil {
		if home, err := l.HomeDir(); err == nil && home != "" {
			if abs, err := filepath.Abs(home); err == nil {
				top = abs
			}
		}
	}
	return Locate(wd, top), nil
}
