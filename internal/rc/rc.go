// Package rc holds the flat error-code registry shared by the page-file
// collaborator and the buffer pool. There is no exception channel:
// callers compare against these sentinels with errors.Is.
package rc

import "errors"

var (
	// ErrFileNotFound is returned when the page file could not be opened.
	ErrFileNotFound = errors.New("rc: file not found")

	// ErrFileHandleNotInit is returned by any operation on a pool whose
	// management state is absent (never initialized, or already shut down).
	ErrFileHandleNotInit = errors.New("rc: file handle not initialized")

	// ErrReadNonExistingPage covers: a nil handle, a negative page number
	// to pin, an operation on a page that is not currently resident, or an
	// unpin that would take a fix-count below zero.
	ErrReadNonExistingPage = errors.New("rc: read of non-existing page")

	// ErrWriteFailed covers allocation failure at init and a pin that
	// cannot proceed because every frame is pinned.
	ErrWriteFailed = errors.New("rc: write failed")
)
