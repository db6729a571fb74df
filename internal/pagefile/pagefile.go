// Package pagefile implements the page-file collaborator consumed by the
// buffer pool: a single page-addressable file on disk, opened once and
// read/written in fixed-size blocks.
package pagefile

import (
	"fmt"
	"os"

	"github.com/pnathan/storagepool/internal/rc"
)

// PageFile is a single file treated as an array of fixed-size pages.
// It is not safe for concurrent use by multiple goroutines without an
// external lock; the buffer pool's concurrency guard serializes all
// access to it.
type PageFile struct {
	f        *os.File
	pageSize int
}

// Open opens an existing page file. A missing file is reported as
// rc.ErrFileNotFound, matching spec.md's initBufferPool contract.
func Open(name string, pageSize int) (*PageFile, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o600)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rc.ErrFileNotFound
		}
		return nil, fmt.Errorf("pagefile: open %s: %w", name, err)
	}
	return &PageFile{f: f, pageSize: pageSize}, nil
}

// Create opens an existing page file or creates an empty one. Used by
// callers (the demo, tests) that want to bootstrap a fresh pool file
// rather than require one to pre-exist.
func Create(name string, pageSize int) (*PageFile, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("pagefile: create %s: %w", name, err)
	}
	return &PageFile{f: f, pageSize: pageSize}, nil
}

// Close closes the underlying file handle.
func (pf *PageFile) Close() error {
	if err := pf.f.Close(); err != nil {
		return fmt.Errorf("pagefile: close: %w", err)
	}
	return nil
}

// TotalPages returns the number of whole pages currently backed by the
// file, based on its current size.
func (pf *PageFile) TotalPages() (int, error) {
	info, err := pf.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("pagefile: stat: %w", err)
	}
	return int(info.Size() / int64(pf.pageSize)), nil
}

// EnsureCapacity extends the file to at least numPages pages, zero-filling
// the newly addressed region. It never shrinks the file.
func (pf *PageFile) EnsureCapacity(numPages int) error {
	needed := int64(numPages) * int64(pf.pageSize)
	info, err := pf.f.Stat()
	if err != nil {
		return fmt.Errorf("pagefile: stat: %w", err)
	}
	if info.Size() >= needed {
		return nil
	}
	if err := pf.f.Truncate(needed); err != nil {
		return fmt.Errorf("pagefile: extend to %d pages: %w", numPages, err)
	}
	return nil
}

// ReadBlock reads exactly pageSize bytes of page pageNum into dest.
func (pf *PageFile) ReadBlock(pageNum int, dest []byte) error {
	if len(dest) != pf.pageSize {
		return fmt.Errorf("pagefile: dest length %d != page size %d", len(dest), pf.pageSize)
	}
	offset := int64(pageNum) * int64(pf.pageSize)
	n, err := pf.f.ReadAt(dest, offset)
	if err != nil && n < len(dest) {
		return fmt.Errorf("pagefile: read page %d: %w", pageNum, err)
	}
	return nil
}

// WriteBlock writes exactly pageSize bytes from src to page pageNum.
func (pf *PageFile) WriteBlock(pageNum int, src []byte) error {
	if len(src) != pf.pageSize {
		return fmt.Errorf("pagefile: src length %d != page size %d", len(src), pf.pageSize)
	}
	offset := int64(pageNum) * int64(pf.pageSize)
	if _, err := pf.f.WriteAt(src, offset); err != nil {
		return fmt.Errorf("pagefile: write page %d: %w", pageNum, err)
	}
	return nil
}
