package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Digest accumulates a SHA-256 checksum of everything written to it.
type Digest struct {
	h hash.Hash
}

// NewDigest returns an empty SHA-256 digest.
func NewDigest() *Digest { return &Digest{h: sha256.New()} }

func (d *Digest) Write(p []byte) (int, error) { return d.h.Write(p) }

// Hex returns the lowercase hex encoding of the checksum so far.
func (d *Digest) Hex() string { return hex.EncodeToString(d.h.Sum(nil)) }
