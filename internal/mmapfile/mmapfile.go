// Package mmapfile memory-maps a file read-only for zero-copy access,
// falling back to a 16-byte-aligned heap copy when the mapping does not
// satisfy an alignment requirement.
//
// Grounded on the raw syscall.Mmap/unsafe-slice-overlay pattern used by
// the fslm reference model loader, adapted to the safer
// golang.org/x/sys/unix wrapper used throughout this module's loader.
package mmapfile

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// File is a memory-mapped, read-only file.
type File struct {
	f      *os.File
	data   []byte
	copied bool // true if data is a heap copy, not a live mapping
}

// Open maps path read-only. The returned File must be Close'd.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	size := info.Size()
	if size == 0 {
		return &File{f: f, data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &File{f: f, data: data}, nil
}

// Bytes returns the mapped content.
func (m *File) Bytes() []byte { return m.data }

// Realign copies the current mapping into a 16-byte-aligned heap buffer
// and releases the original mapping. Called by the archive loader when
// the mapping's base address fails its alignment check, before any
// decoding (rare, but not impossible depending on kernel/page size).
func (m *File) Realign() error {
	if m.copied {
		return nil
	}
	aligned := make([]byte, len(m.data)+16)
	// Round the usable start up to a 16-byte boundary within aligned.
	base := uintptr(unsafe.Pointer(&aligned[0]))
	off := (16 - (base % 16)) % 16
	copy(aligned[off:], m.data)
	if err := unix.Munmap(m.data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	m.data = aligned[off : off+len(m.data)]
	m.copied = true
	return nil
}

// Close unmaps (or releases) the file content and closes the descriptor.
func (m *File) Close() error {
	var err error
	if !m.copied && m.data != nil {
		err = unix.Munmap(m.data)
	}
	if cerr := m.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
