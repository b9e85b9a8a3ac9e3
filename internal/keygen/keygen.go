// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package keygen locates the external age-keygen executable and runs it to
// produce key pairs. The interesting contract lives in Runner: one background
// generation attempt with ordered progress events and a classified error
// taxonomy. Nothing in this package touches UI state; all cross-goroutine
// communication goes through the event channel returned by Start.
package keygen

import (
	"fmt"

	"github.com/toeirei/agekey/internal/i18n"
)

// Textual markers in age-keygen output.
const (
	// PrivateKeyPrefix starts every age identity (private key) line.
	PrivateKeyPrefix = "AGE-SECRET-KEY-"
	// PublicKeyPrefix starts every age recipient (public key) line.
	PublicKeyPrefix = "age1"
	// publicKeyComment is the comment form age-keygen prints above the
	// identity, e.g. "# public key: age1...".
	publicKeyComment = "# public key:"
)

// KeyPair is one generated identity/recipient pair. Immutable once produced;
// the UI holds it only for display and export.
type KeyPair struct {
	Private string
	Public  string
}

// ErrorKind classifies a failed generation attempt. The kinds are mutually
// exclusive and each maps to a distinct user-facing message.
type ErrorKind int

const (
	// ErrUnexpected covers anything not matched below, e.g. the executable
	// could not be spawned at all.
	ErrUnexpected ErrorKind = iota
	// ErrTimeout means the primary invocation exceeded its deadline.
	ErrTimeout
	// ErrToolFailed means the primary invocation exited non-zero.
	ErrToolFailed
	// ErrNoPrivateKey means the output contained no recognizable private key.
	ErrNoPrivateKey
)

// GenError is the failure result of one generation attempt.
type GenError struct {
	Kind ErrorKind
	// Detail carries kind-specific context: captured stderr for
	// ErrToolFailed, the spawn error text for ErrUnexpected.
	Detail string
	Err    error
}

// Error implements the error interface with a stable, non-localized text.
func (e *GenError) Error() string {
	switch e.Kind {
	case ErrTimeout:
		return "age-keygen timed out"
	case ErrToolFailed:
		return fmt.Sprintf("age-keygen exited with an error: %s", e.Detail)
	case ErrNoPrivateKey:
		return "no private key in age-keygen output"
	default:
		if e.Err != nil {
			return fmt.Sprintf("age-keygen invocation failed: %v", e.Err)
		}
		return "age-keygen invocation failed"
	}
}

func (e *GenError) Unwrap() error { return e.Err }

// Message returns the localized, user-facing text for this failure.
func (e *GenError) Message() string {
	switch e.Kind {
	case ErrTimeout:
		return i18n.T("error.timeout")
	case ErrToolFailed:
		detail := e.Detail
		if detail == "" {
			detail = "unknown output"
		}
		return i18n.T("error.tool_failed", detail)
	case ErrNoPrivateKey:
		return i18n.T("error.no_private_key")
	default:
		return i18n.T("error.unexpected", e.Err)
	}
}

// Stage identifies a step of the generation state machine. Progress events
// carry the stage that is about to run; the sequence is fixed.
type Stage int

const (
	StageInitializing Stage = iota
	StageRunning
	StageExtractingPublicKey
	StageExportingPublicKey
	StageDone
)

// String returns a stable identifier, mainly for logs and tests.
func (s Stage) String() string {
	switch s {
	case StageInitializing:
		return "initializing"
	case StageRunning:
		return "running"
	case StageExtractingPublicKey:
		return "extracting-public-key"
	case StageExportingPublicKey:
		return "exporting-public-key"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Message returns the localized progress text for this stage.
func (s Stage) Message() string {
	switch s {
	case StageInitializing:
		return i18n.T("status.initializing")
	case StageRunning:
		return i18n.T("status.running")
	case StageExtractingPublicKey:
		return i18n.T("status.extracting_public")
	case StageExportingPublicKey:
		return i18n.T("status.exporting_public")
	case StageDone:
		return i18n.T("status.done")
	default:
		return ""
	}
}

// Event is a notification from a running generation attempt. Events arrive in
// a fixed order; a DoneEvent or FailedEvent is always last, after which the
// channel is closed.
type Event interface{ isEvent() }

// StartedEvent signals that the attempt has begun.
type StartedEvent struct{}

// ProgressEvent reports the stage the attempt is entering.
type ProgressEvent struct{ Stage Stage }

// DoneEvent is the terminal success event.
type DoneEvent struct{ Pair KeyPair }

// FailedEvent is the terminal failure event.
type FailedEvent struct{ Err *GenError }

func (StartedEvent) isEvent()  {}
func (ProgressEvent) isEvent() {}
func (DoneEvent) isEvent()     {}
func (FailedEvent) isEvent()   {}
