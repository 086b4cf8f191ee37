package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// RawHashLen is the length of a SHA-1 digest in bytes. The hex form used
// by Hash is twice as long.
const RawHashLen = sha1.Size

// HashBytes computes the raw SHA-1 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the envelope "type len\0content". This
// is the object's identity: identical kind and content always produce the
// same hash.
func HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := sha1.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// Raw decodes the hex hash into its 20-byte binary form, as stored inside
// tree entries and the index file.
func (h Hash) Raw() ([]byte, error) {
	if len(h) != 2*RawHashLen {
		return nil, fmt.Errorf("hash %q: want %d hex characters, have %d", h, 2*RawHashLen, len(h))
	}
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("hash %q: %w", h, err)
	}
	return raw, nil
}

// HashFromRaw converts a 20-byte binary digest into its hex Hash form.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != RawHashLen {
		return "", fmt.Errorf("raw hash: want %d bytes, have %d", RawHashLen, len(raw))
	}
	return Hash(hex.EncodeToString(raw)), nil
}
