package keygen

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// chdir stands in for t.Chdir, which needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
}

// placeStub creates an executable age-keygen stand-in inside dir.
func placeStub(t *testing.T, dir string, perm os.FileMode) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("locator tests rely on POSIX permissions")
	}
	path := filepath.Join(dir, ExecutableName())
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), perm); err != nil {
		t.Fatalf("writing stub: %v", err)
	}
	return path
}

func TestLocateFindsWorkingDirectoryFirst(t *testing.T) {
	cwd := t.TempDir()
	placeStub(t, cwd, 0755)
	chdir(t, cwd)

	// A PATH candidate exists too; the working directory must win.
	pathDir := t.TempDir()
	placeStub(t, pathDir, 0755)
	t.Setenv("PATH", pathDir)

	got, err := Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(cwd, ExecutableName()))
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Errorf("Locate = %q, want %q", got, want)
	}
}

func TestLocateFallsBackToSearchPath(t *testing.T) {
	chdir(t, t.TempDir())

	pathDir := t.TempDir()
	want := placeStub(t, pathDir, 0755)
	t.Setenv("PATH", pathDir)

	got, err := Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	wantResolved, _ := filepath.EvalSymlinks(want)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("Locate = %q, want %q", got, want)
	}
}

func TestLocateNotFound(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PATH", t.TempDir())

	_, err := Locate()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLocateGrantsExecutePermission(t *testing.T) {
	cwd := t.TempDir()
	path := placeStub(t, cwd, 0644)
	chdir(t, cwd)

	if _, err := Locate(); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if fi.Mode().Perm()&0100 == 0 {
		t.Errorf("owner-execute bit not set, mode = %v", fi.Mode().Perm())
	}
}

func TestEnsureExecutableKeepsExistingBits(t *testing.T) {
	dir := t.TempDir()
	path := placeStub(t, dir, 0755)

	if err := ensureExecutable(path); err != nil {
		t.Fatalf("ensureExecutable failed: %v", err)
	}
	fi, _ := os.Stat(path)
	if fi.Mode().Perm() != 0755 {
		t.Errorf("mode changed to %v, want 0755 untouched", fi.Mode().Perm())
	}
}
