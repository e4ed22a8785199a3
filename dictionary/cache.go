package dictionary

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"syscall"
)

const cacheAppDir = "vibrato-rkyv"

// metadataFingerprint computes the SHA-256 of a deterministic encoding of
// info's metadata (spec §4.5): on POSIX, device id, inode, size,
// mtime-seconds, mtime-nanoseconds, each little-endian 8-byte fields, in
// that order. Output as lowercase hex.
func metadataFingerprint(info os.FileInfo) string {
	var buf [40]byte
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(st.Dev))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(st.Ino))
		binary.LittleEndian.PutUint64(buf[16:24], uint64(info.Size()))
		binary.LittleEndian.PutUint64(buf[24:32], uint64(st.Mtim.Sec))
		binary.LittleEndian.PutUint64(buf[32:40], uint64(st.Mtim.Nsec))
	} else {
		// Platforms without syscall.Stat_t: hash size and mtime at the
		// same offsets, with the device and inode fields zero-filled.
		// File type, read-only flag and ctime are not included.
		binary.LittleEndian.PutUint64(buf[16:24], uint64(info.Size()))
		mt := info.ModTime()
		binary.LittleEndian.PutUint64(buf[24:32], uint64(mt.Unix()))
		binary.LittleEndian.PutUint64(buf[32:40], uint64(mt.Nanosecond()))
	}
	sum := sha256.Sum256(buf[:])
	return hex.EncodeToString(sum[:])
}

// proofPaths returns the two locations a proof file may live in: the
// dictionary's sibling .cache/ directory, and the user-wide cache dir.
func proofPaths(dictPath, fingerprint string) (sibling, userWide string) {
	dir := filepath.Dir(dictPath)
	sibling = filepath.Join(dir, ".cache", fingerprint+".sha256")
	if ucd, err := os.UserCacheDir(); err == nil {
		userWide = filepath.Join(ucd, cacheAppDir, fingerprint+".sha256")
	}
	return sibling, userWide
}

// hasProof reports whether a proof file exists for fingerprint, checking
// the sibling cache directory before the user-wide one.
func hasProof(dictPath, fingerprint string) bool {
	sibling, userWide := proofPaths(dictPath, fingerprint)
	if _, err := os.Stat(sibling); err == nil {
		return true
	}
	if userWide != "" {
		if _, err := os.Stat(userWide); err == nil {
			return true
		}
	}
	return false
}

// writeProof creates an empty proof file in the user-wide cache dir.
// Concurrent writers may race to create the same file; last writer wins,
// and the file's mere existence (not its content) is the proof, so this
// is advisory and safe to race.
func writeProof(dictPath, fingerprint string) error {
	_, userWide := proofPaths(dictPath, fingerprint)
	if userWide == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(userWide), 0o755); err != nil {
		return errIO("create cache dir", err)
	}
	f, err := os.Create(userWide)
	if err != nil {
		return errIO("create proof file", err)
	}
	return f.Close()
}
