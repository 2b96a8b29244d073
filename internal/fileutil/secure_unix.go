//go:build !windows

// Package fileutil provides cross-platform helpers for writing files that
// should be readable only by the current user, such as config files holding
// API keys. On Unix the Secure* helpers are plain os.* wrappers and do not
// protect against symlink traversal or TOCTOU races. On Windows, owner-only
// modes (perm & 0077 == 0) additionally set a DACL restricting access to the
// current user.
package fileutil

import "os"

// SecureWriteFile writes data to the named file, creating it if necessary.
func SecureWriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// SecureMkdirAll creates a directory path and all parents that do not yet exist.
func SecureMkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
