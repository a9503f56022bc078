// Package sandbox provides the temporary working-directory lifecycle a
// bench executes within: fixture copy-in, cwd capture/restore.
package sandbox

import (
	"io"
	"os"
	"path/filepath"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/utils"
)

// Fixture describes one file or directory to copy into the sandbox before
// a bench runs, resolved against the project root.
type Fixture struct {
	// Source is relative to the project root.
	Source string
	// Dest is relative to the sandbox root; empty means the basename of Source.
	Dest string
	// FollowSymlinks controls whether symlinks in Source are followed or
	// copied as links.
	FollowSymlinks bool
}

// Sandbox is a temporary working directory scoped to one bench.
type Sandbox struct {
	root       string
	previousWD string
	logger     utils.Logger
}

// Setup captures the current working directory, creates a fresh temp
// directory, copies the configured fixtures into it resolved against
// projectRoot, and changes into it.
func Setup(projectRoot string, fixtures []Fixture, logger utils.Logger) (*Sandbox, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeSandboxError, "failed to capture current working directory", err)
	}

	dir, err := os.MkdirTemp("", ".tmp")
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeSandboxError, "failed to create sandbox directory", err)
	}

	sb := &Sandbox{root: dir, previousWD: prev, logger: logger}

	for _, fx := range fixtures {
		if err := sb.copyFixture(projectRoot, fx); err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}
	}

	if err := os.Chdir(dir); err != nil {
		_ = os.RemoveAll(dir)
		return nil, apperr.Wrap(apperr.CodeSandboxError, "failed to change into sandbox directory", err)
	}

	return sb, nil
}

// Root returns the sandbox's temporary directory path.
func (s *Sandbox) Root() string { return s.root }

func (s *Sandbox) copyFixture(projectRoot string, fx Fixture) error {
	src := filepath.Join(projectRoot, fx.Source)
	dest := fx.Dest
	if dest == "" {
		dest = filepath.Base(fx.Source)
	}
	dest = filepath.Join(s.root, dest)

	info, err := os.Lstat(src)
	if err != nil {
		return apperr.Wrap(apperr.CodeSandboxError, "failed to stat fixture "+fx.Source, err)
	}

	if info.Mode()&os.ModeSymlink != 0 && !fx.FollowSymlinks {
		target, err := os.Readlink(src)
		if err != nil {
			return apperr.Wrap(apperr.CodeSandboxError, "failed to read fixture symlink "+fx.Source, err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return apperr.Wrap(apperr.CodeSandboxError, "failed to create fixture parent directory", err)
		}
		if err := os.Symlink(target, dest); err != nil {
			return apperr.Wrap(apperr.CodeSandboxError, "failed to create fixture symlink", err)
		}
		return nil
	}

	if info.IsDir() {
		return copyDir(src, dest)
	}
	return copyFile(src, dest, info.Mode())
}

func copyDir(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dest string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return apperr.Wrap(apperr.CodeSandboxError, "failed to create fixture parent directory", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return apperr.Wrap(apperr.CodeSandboxError, "failed to open fixture source", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return apperr.Wrap(apperr.CodeSandboxError, "failed to create fixture destination", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return apperr.Wrap(apperr.CodeSandboxError, "failed to copy fixture", err)
	}
	return nil
}

// Reset restores the working directory captured at Setup and removes the
// temp directory. It always restores the working directory, even when
// removal fails; removal failures are logged, not propagated.
func (s *Sandbox) Reset() error {
	err := os.Chdir(s.previousWD)
	if err != nil {
		err = apperr.Wrap(apperr.CodeSandboxError, "failed to restore previous working directory", err)
	}

	if rmErr := os.RemoveAll(s.root); rmErr != nil && s.logger != nil {
		s.logger.Warn("failed to remove sandbox directory %s: %v", s.root, rmErr)
	}

	return err
}
