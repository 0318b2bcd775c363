package namemap

import (
	"fmt"

	"github.com/spaolacci/murmur3"
	"github.com/ugorji/go/codec"
)

// Hasher fingerprints an ordered sequence of mappings. Each mapping is
// encoded as canonical JSON and fed into a 128-bit murmur3 hash, so two runs
// producing the same mappings in the same order share a fingerprint.
type Hasher struct {
	h   murmur3.Hash128
	enc *codec.Encoder
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	h := murmur3.New128()
	handle := &codec.JsonHandle{}
	handle.Canonical = true
	return &Hasher{h: h, enc: codec.NewEncoder(h, handle)}
}

// Add feeds one mapping into the fingerprint.
func (h *Hasher) Add(m Mapping) error {
	return h.enc.Encode(m)
}

// Sum returns the hex digest of everything added so far.
func (h *Hasher) Sum() string {
	return fmt.Sprintf("%x", h.h.Sum(nil))
}

// Fingerprint hashes a complete mapping sequence.
func Fingerprint(mappings []Mapping) (string, error) {
	h := NewHasher()
	for _, m := range mappings {
		if err := h.Add(m); err != nil {
			return "", err
		}
	}
	return h.Sum(), nil
}
