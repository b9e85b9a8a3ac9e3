// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"os"
	"runtime"
)

// WritePrivateKeyFile writes an identity to `filename` using a secure default
// file mode. On Unix-like systems this uses 0600. On Windows, where POSIX
// permissions are not meaningful, it falls back to 0644 for compatibility.
func WritePrivateKeyFile(filename string, content []byte) error {
	perm := os.FileMode(0600)
	if runtime.GOOS == "windows" {
		perm = 0644
	}
	return os.WriteFile(filename, content, perm)
}

// WritePublicKeyFile writes a recipient key to `filename` with default
// permissions; public keys are meant to be shared.
func WritePublicKeyFile(filename string, content []byte) error {
	return os.WriteFile(filename, content, 0644)
}
