package object

import (
	"encoding/hex"
	"fmt"
)

const (
	// SHA1HexSize is the length of a hex-encoded SHA-1 object name.
	SHA1HexSize = 40
	// SHA256HexSize is the length of a hex-encoded SHA-256 object name.
	SHA256HexSize = 64
)

// Hash is a lowercase hex-encoded object name. The first two characters
// name the fan-out directory under objects/, the rest name the file.
type Hash string

// ParseHash validates s as a full-length object name.
func ParseHash(s string) (Hash, error) {
	if len(s) != SHA1HexSize && len(s) != SHA256HexSize {
		return "", fmt.Errorf("%w: %q: length %d", ErrInvalidHash, s, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidHash, s)
		}
	}
	return Hash(s), nil
}

// Prefix returns the fan-out directory name.
func (h Hash) Prefix() string { return string(h[:2]) }

// Suffix returns the file name inside the fan-out directory.
func (h Hash) Suffix() string { return string(h[2:]) }

func (h Hash) String() string { return string(h) }

// Short returns the first 8 characters, or the whole hash if shorter.
func (h Hash) Short() string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}

// rawSize is the width in bytes of a binary hash of the same algorithm
// as h. Anything that is not a SHA-256 name is treated as SHA-1.
func (h Hash) rawSize() int {
	if len(h) == SHA256HexSize {
		return SHA256HexSize / 2
	}
	return SHA1HexSize / 2
}

// hashFromRaw hex-encodes a binary object name.
func hashFromRaw(raw []byte) Hash {
	return Hash(hex.EncodeToString(raw))
}
