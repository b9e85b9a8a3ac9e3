package keygen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeStub writes a shell script standing in for age-keygen and returns its
// path. Tests using stubs are skipped on Windows.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "age-keygen")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}
	return path
}

func TestGenerateSuccessWithCommentForm(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "derived")
	stub := writeStub(t, `
if [ "$1" = "-y" ]; then
  touch `+marker+`
  echo age1derived
  exit 0
fi
echo "# created: 2026-01-01T00:00:00Z"
echo "# public key: age1xyz"
echo "AGE-SECRET-KEY-1ABCDEF"
`)

	pair, err := NewRunner(stub).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if pair.Private != "AGE-SECRET-KEY-1ABCDEF" {
		t.Errorf("private key = %q", pair.Private)
	}
	if pair.Public != "age1xyz" {
		t.Errorf("public key = %q", pair.Public)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("secondary derivation ran even though the output contained a public key")
	}
}

func TestGenerateSuccessWithRawPublicLine(t *testing.T) {
	stub := writeStub(t, `
echo "AGE-SECRET-KEY-1ABCDEF"
echo "age1rawline"
`)

	pair, err := NewRunner(stub).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if pair.Public != "age1rawline" {
		t.Errorf("public key = %q", pair.Public)
	}
}

func TestGenerateDerivesWhenPublicMissing(t *testing.T) {
	stub := writeStub(t, `
if [ "$1" = "-y" ]; then
  read key
  echo "age1-derived-for-$key"
  exit 0
fi
echo "AGE-SECRET-KEY-1TEST"
`)

	pair, err := NewRunner(stub).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := "age1-derived-for-AGE-SECRET-KEY-1TEST"
	if pair.Public != want {
		t.Errorf("public key = %q, want %q", pair.Public, want)
	}
}

func TestGenerateDeriveFailureStillSucceeds(t *testing.T) {
	stub := writeStub(t, `
if [ "$1" = "-y" ]; then
  echo "derive broke" >&2
  exit 1
fi
echo "AGE-SECRET-KEY-1TEST"
`)

	pair, err := NewRunner(stub).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed, want degraded success: %v", err)
	}
	if pair.Private != "AGE-SECRET-KEY-1TEST" {
		t.Errorf("private key = %q", pair.Private)
	}
	// The derivation failure is swallowed; the placeholder stands in.
	if pair.Public != "Unable to derive Public Key" {
		t.Errorf("public key = %q, want the placeholder", pair.Public)
	}
}

func TestGenerateDeriveEmptyOutputUsesPlaceholder(t *testing.T) {
	stub := writeStub(t, `
if [ "$1" = "-y" ]; then
  exit 0
fi
echo "AGE-SECRET-KEY-1TEST"
`)

	pair, err := NewRunner(stub).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if pair.Public != "Unable to derive Public Key" {
		t.Errorf("public key = %q, want the placeholder", pair.Public)
	}
}

func TestGenerateNoPrivateKey(t *testing.T) {
	stub := writeStub(t, `
echo "no keys here"
echo "# public key: age1xyz"
`)

	_, err := NewRunner(stub).Generate(context.Background())
	var genErr *GenError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenError, got %v", err)
	}
	if genErr.Kind != ErrNoPrivateKey {
		t.Errorf("kind = %v, want ErrNoPrivateKey", genErr.Kind)
	}
}

func TestGenerateToolFailureCapturesStderr(t *testing.T) {
	stub := writeStub(t, `
echo "boom: disk on fire" >&2
exit 3
`)

	_, err := NewRunner(stub).Generate(context.Background())
	var genErr *GenError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenError, got %v", err)
	}
	if genErr.Kind != ErrToolFailed {
		t.Errorf("kind = %v, want ErrToolFailed", genErr.Kind)
	}
	if !strings.Contains(genErr.Detail, "boom: disk on fire") {
		t.Errorf("detail %q does not contain captured stderr", genErr.Detail)
	}
	if !strings.Contains(genErr.Message(), "boom: disk on fire") {
		t.Errorf("message %q does not contain captured stderr", genErr.Message())
	}
}

func TestGenerateTimeout(t *testing.T) {
	stub := writeStub(t, `sleep 5`)

	r := NewRunner(stub)
	r.RunTimeout = 200 * time.Millisecond
	_, err := r.Generate(context.Background())

	var genErr *GenError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenError, got %v", err)
	}
	if genErr.Kind != ErrTimeout {
		t.Errorf("kind = %v, want ErrTimeout", genErr.Kind)
	}
}

func TestGenerateSpawnFailure(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := r.Generate(context.Background())

	var genErr *GenError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenError, got %v", err)
	}
	if genErr.Kind != ErrUnexpected {
		t.Errorf("kind = %v, want ErrUnexpected", genErr.Kind)
	}
}

func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var got []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatal("timed out waiting for events")
		}
	}
}

func TestStartEventOrdering(t *testing.T) {
	stub := writeStub(t, `
echo "# public key: age1xyz"
echo "AGE-SECRET-KEY-1ABCDEF"
`)

	got := collectEvents(t, NewRunner(stub).Start())

	wantStages := []Stage{StageInitializing, StageRunning, StageExtractingPublicKey, StageDone}
	var stages []Stage
	for _, ev := range got {
		if p, ok := ev.(ProgressEvent); ok {
			stages = append(stages, p.Stage)
		}
	}
	if len(stages) != len(wantStages) {
		t.Fatalf("progress stages = %v, want %v", stages, wantStages)
	}
	for i := range wantStages {
		if stages[i] != wantStages[i] {
			t.Fatalf("progress stages = %v, want %v", stages, wantStages)
		}
	}

	if _, ok := got[0].(StartedEvent); !ok {
		t.Errorf("first event = %T, want StartedEvent", got[0])
	}
	last := got[len(got)-1]
	done, ok := last.(DoneEvent)
	if !ok {
		t.Fatalf("last event = %T, want DoneEvent", last)
	}
	if !strings.HasPrefix(done.Pair.Private, PrivateKeyPrefix) {
		t.Errorf("private key %q lacks the identity prefix", done.Pair.Private)
	}
	if done.Pair.Public == "" {
		t.Error("public key is empty on success")
	}
}

func TestStartEventOrderingWithDerivation(t *testing.T) {
	stub := writeStub(t, `
if [ "$1" = "-y" ]; then
  echo age1derived
  exit 0
fi
echo "AGE-SECRET-KEY-1ABCDEF"
`)

	got := collectEvents(t, NewRunner(stub).Start())

	var stages []Stage
	for _, ev := range got {
		if p, ok := ev.(ProgressEvent); ok {
			stages = append(stages, p.Stage)
		}
	}
	found := false
	for _, s := range stages {
		if s == StageExportingPublicKey {
			found = true
		}
	}
	if !found {
		t.Errorf("derivation path did not report StageExportingPublicKey, stages = %v", stages)
	}
}

func TestStartFailureEventIsTerminal(t *testing.T) {
	stub := writeStub(t, `exit 1`)

	got := collectEvents(t, NewRunner(stub).Start())
	if len(got) == 0 {
		t.Fatal("no events received")
	}
	last := got[len(got)-1]
	failed, ok := last.(FailedEvent)
	if !ok {
		t.Fatalf("last event = %T, want FailedEvent", last)
	}
	if failed.Err.Kind != ErrToolFailed {
		t.Errorf("kind = %v, want ErrToolFailed", failed.Err.Kind)
	}
}

func TestScanPublicKey(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"raw line", "AGE-SECRET-KEY-1X\nage1abc\n", "age1abc"},
		{"comment form", "# public key: age1abc\nAGE-SECRET-KEY-1X\n", "age1abc"},
		{"comment wins on earlier line", "# public key: age1first\nage1second\n", "age1first"},
		{"raw wins on earlier line", "age1first\n# public key: age1second\n", "age1first"},
		{"empty comment stops the scan", "# public key:\nage1later\n", ""},
		{"nothing", "no keys at all\n", ""},
		{"whitespace around lines", "   age1padded   \n", "age1padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scanPublicKey(tt.output); got != tt.want {
				t.Errorf("scanPublicKey(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestFirstLineWithPrefix(t *testing.T) {
	out := "# created\n  AGE-SECRET-KEY-1TRIMMED  \nAGE-SECRET-KEY-2SECOND\n"
	if got := firstLineWithPrefix(out, PrivateKeyPrefix); got != "AGE-SECRET-KEY-1TRIMMED" {
		t.Errorf("firstLineWithPrefix = %q", got)
	}
	if got := firstLineWithPrefix("nothing", PrivateKeyPrefix); got != "" {
		t.Errorf("firstLineWithPrefix on miss = %q, want empty", got)
	}
}
