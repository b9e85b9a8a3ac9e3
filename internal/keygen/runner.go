// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

package keygen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/toeirei/agekey/internal/i18n"
	"github.com/toeirei/agekey/internal/logging"
)

// Default invocation timeouts.
const (
	DefaultRunTimeout    = 30 * time.Second
	DefaultDeriveTimeout = 10 * time.Second
)

// Runner performs one key-generation attempt against the external tool. A
// Runner is single-use: construct a fresh one per attempt. The executable
// path is read-only shared state; everything else is owned by the worker
// goroutine for the duration of the attempt.
type Runner struct {
	// Path is the absolute path of the age-keygen executable.
	Path string
	// RunTimeout bounds the primary invocation.
	RunTimeout time.Duration
	// DeriveTimeout bounds the secondary -y invocation.
	DeriveTimeout time.Duration
}

// NewRunner returns a Runner for the given executable with default timeouts.
func NewRunner(path string) *Runner {
	return &Runner{
		Path:          path,
		RunTimeout:    DefaultRunTimeout,
		DeriveTimeout: DefaultDeriveTimeout,
	}
}

// Start launches the attempt on its own goroutine and returns the event
// channel. Events arrive in the fixed state-machine order; the terminal
// DoneEvent or FailedEvent is always last, and the channel is closed after
// it. There is no way to abort an attempt once started.
func (r *Runner) Start() <-chan Event {
	events := make(chan Event, 8)
	go func() {
		defer close(events)
		emit := func(ev Event) { events <- ev }
		pair, genErr := r.generate(context.Background(), emit)
		if genErr != nil {
			emit(FailedEvent{Err: genErr})
			return
		}
		emit(DoneEvent{Pair: pair})
	}()
	return events
}

// Generate runs the attempt synchronously. It backs the headless CLI path;
// the TUI uses Start instead.
func (r *Runner) Generate(ctx context.Context) (KeyPair, error) {
	pair, genErr := r.generate(ctx, func(Event) {})
	if genErr != nil {
		return KeyPair{}, genErr
	}
	return pair, nil
}

// generate implements the state machine: run the tool, extract the private
// key, extract or derive the public key.
func (r *Runner) generate(ctx context.Context, emit func(Event)) (KeyPair, *GenError) {
	emit(StartedEvent{})
	emit(ProgressEvent{Stage: StageInitializing})
	emit(ProgressEvent{Stage: StageRunning})

	output, genErr := r.runPrimary(ctx)
	if genErr != nil {
		return KeyPair{}, genErr
	}

	private := firstLineWithPrefix(output, PrivateKeyPrefix)
	if private == "" {
		return KeyPair{}, &GenError{Kind: ErrNoPrivateKey}
	}

	emit(ProgressEvent{Stage: StageExtractingPublicKey})
	public := scanPublicKey(output)

	if public == "" {
		emit(ProgressEvent{Stage: StageExportingPublicKey})
		public = r.derivePublicKey(ctx, private)
	}

	emit(ProgressEvent{Stage: StageDone})
	return KeyPair{Private: private, Public: public}, nil
}

// runPrimary invokes age-keygen with no arguments and returns its combined
// stdout and stderr.
func (r *Runner) runPrimary(ctx context.Context) (string, *GenError) {
	runCtx, cancel := context.WithTimeout(ctx, r.RunTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.Path)
	// Stderr is captured twice: interleaved with stdout for key extraction,
	// and alone for error reporting.
	var combined, stderr bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = io.MultiWriter(&combined, &stderr)

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return "", &GenError{Kind: ErrTimeout, Err: runCtx.Err()}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &GenError{
				Kind:   ErrToolFailed,
				Detail: strings.TrimSpace(stderr.String()),
				Err:    err,
			}
		}
		return "", &GenError{Kind: ErrUnexpected, Detail: err.Error(), Err: err}
	}
	return combined.String(), nil
}

// derivePublicKey recovers the recipient key by feeding the identity into
// `age-keygen -y`. A failed or empty derivation does not fail the attempt:
// the caller gets a localized placeholder instead of a public key.
func (r *Runner) derivePublicKey(ctx context.Context, private string) string {
	deriveCtx, cancel := context.WithTimeout(ctx, r.DeriveTimeout)
	defer cancel()

	cmd := exec.CommandContext(deriveCtx, r.Path, "-y")
	cmd.Stdin = strings.NewReader(private)
	out, err := cmd.Output()
	if err != nil {
		logging.Debugf("public key derivation failed: %v", err)
		return i18n.T("error.derive_failed")
	}
	public := strings.TrimSpace(string(out))
	if public == "" {
		logging.Debugf("public key derivation produced no output")
		return i18n.T("error.derive_failed")
	}
	return public
}

// firstLineWithPrefix returns the first trimmed line of output starting with
// prefix, or "".
func firstLineWithPrefix(output, prefix string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

// scanPublicKey finds the recipient key in the tool's output. Each line is
// checked against both forms before moving on: a raw "age1..." line wins, a
// "# public key: <value>" comment yields its value. A comment line with an
// empty value ends the scan with no result, which sends the caller down the
// derivation path.
func scanPublicKey(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, PublicKeyPrefix) {
			return line
		}
		if strings.HasPrefix(line, publicKeyComment) {
			return strings.TrimSpace(strings.TrimPrefix(line, publicKeyComment))
		}
	}
	return ""
}
