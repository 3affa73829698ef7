package project

import (
	"crypto/sha256"
)

// Digest is a fixed 256-bit hash over file contents.
type Digest [32]byte

// HashBytes digests a single byte slice.
func HashBytes(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// Combine builds a package digest: H( content || dep1 || dep2 ... ).
// The dependency order must be deterministic; callers pass digests in
// sorted alias order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
