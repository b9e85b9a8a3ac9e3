// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

package keygen

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Sentinel errors for the locator. Both are fatal to the application; there
// is no retry path without the external tool.
var (
	ErrNotFound   = errors.New("age-keygen executable not found")
	ErrPermission = errors.New("age-keygen is not executable")
)

// ExecutableName returns the platform-specific name of the age-keygen tool.
func ExecutableName() string {
	if runtime.GOOS == "windows" {
		return "age-keygen.exe"
	}
	return "age-keygen"
}

// Locate resolves the absolute path of the age-keygen executable. Search
// order, first match wins: the current working directory, the directory of
// the running binary (bundled case), then the system search path. On POSIX
// the resolved file is granted owner-execute permission if it lacks one.
// Called once at startup; the result is passed explicitly into every Runner.
func Locate() (string, error) {
	name := ExecutableName()

	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", name, err)
		}
		return abs, ensureExecutable(abs)
	}

	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, ensureExecutable(candidate)
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", path, err)
		}
		return abs, ensureExecutable(abs)
	}

	return "", ErrNotFound
}

// ensureExecutable grants owner-execute permission when the file has no
// execute bit set. Windows has no meaningful execute bit, so it is a no-op
// there. A chmod failure is reported as ErrPermission; callers treat it as
// fatal for the whole session.
func ensureExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPermission, path, err)
	}
	if fi.Mode().Perm()&0111 != 0 {
		return nil
	}
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPermission, path, err)
	}
	return nil
}
