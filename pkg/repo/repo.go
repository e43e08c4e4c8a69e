// Package repo locates a repository's object store on disk.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gitinspect/pkg/object"
)

// ErrNotARepository is returned when no object store can be found.
var ErrNotARepository = errors.New("not a git repository")

// Repo is an opened repository.
type Repo struct {
	RootDir string // working tree root; equals GitDir for bare stores
	GitDir  string // directory holding objects/
	DB      *object.Database
}

// Open searches path and its parents for a .git directory (or a .git file
// pointing at one) and opens its object database. A bare store, a directory
// that itself holds objects/ and HEAD, is accepted as well.
func Open(path string, opts ...object.Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir, ok, err := dotGit(cur)
		if err != nil {
			return nil, err
		}
		if ok {
			return openAt(cur, gitDir, opts)
		}
		if isGitDir(cur) {
			return openAt(cur, cur, opts)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w (or any parent up to /)", abs, ErrNotARepository)
		}
		cur = parent
	}
}

// OpenGitDir opens gitDir directly, without discovery.
func OpenGitDir(gitDir string, opts ...object.Option) (*Repo, error) {
	abs, err := filepath.Abs(gitDir)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}
	info, err := os.Stat(filepath.Join(abs, "objects"))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open %s: %w: no objects directory", abs, ErrNotARepository)
	}
	return openAt(abs, abs, opts)
}

func openAt(root, gitDir string, opts []object.Option) (*Repo, error) {
	db, err := object.NewDatabase(gitDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", gitDir, err)
	}
	return &Repo{RootDir: root, GitDir: gitDir, DB: db}, nil
}

// dotGit resolves dir/.git, following a "gitdir: <path>" file.
func dotGit(dir string) (string, bool, error) {
	p := filepath.Join(dir, ".git")
	info, err := os.Stat(p)
	if err != nil {
		return "", false, nil
	}
	if info.IsDir() {
		return p, true, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return "", false, fmt.Errorf("open: read %s: %w", p, err)
	}
	line := strings.TrimSpace(string(data))
	target, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok {
		return "", false, fmt.Errorf("open: %s: %w: malformed gitdir file", p, ErrNotARepository)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target), true, nil
}

func isGitDir(dir string) bool {
	objects, err := os.Stat(filepath.Join(dir, "objects"))
	if err != nil || !objects.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, "HEAD"))
	return err == nil
}
