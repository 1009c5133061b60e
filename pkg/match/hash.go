package match

import (
	"fmt"
	"strings"
)

// HashVariant selects the window hash used by Rabin-Karp.
type HashVariant int

const (
	// HashModular is the polynomial hash sum(c_i * d^(m-1-i)) mod q.
	HashModular HashVariant = iota

	// HashAdditive sums CharWeight over the window. Every anagram of the
	// pattern collides with it, as does any window of non-letters when the
	// pattern has no letters, so verification runs far more often than with
	// HashModular.
	HashAdditive
)

const (
	DefaultBase    = 256
	DefaultModulus = 101

	maxBase    = 1 << 16
	maxModulus = 1 << 31
)

func (v HashVariant) String() string {
	switch v {
	case HashModular:
		return "modular"
	case HashAdditive:
		return "additive"
	default:
		return fmt.Sprintf("HashVariant(%d)", int(v))
	}
}

// ParseHashVariant parses "modular" or "additive".
func ParseHashVariant(s string) (HashVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "modular", "polynomial", "":
		return HashModular, nil
	case "additive", "weight", "sum":
		return HashAdditive, nil
	}
	return HashModular, &InvalidInputError{Field: "hash variant", Reason: fmt.Sprintf("unknown variant %q", s)}
}

// HashConfig configures the Rabin-Karp window hash.
// Base and Modulus only apply to HashModular.
type HashConfig struct {
	Variant HashVariant
	Base    int64
	Modulus int64
}

// DefaultHashConfig is the modular hash with radix 256 and modulus 101.
func DefaultHashConfig() HashConfig {
	return HashConfig{Variant: HashModular, Base: DefaultBase, Modulus: DefaultModulus}
}

// Validate keeps the modular arithmetic inside int64:
// |d * (t - c*h)| < 2^16 * 256 * 2^31.
func (c HashConfig) Validate() error {
	switch c.Variant {
	case HashAdditive:
		return nil
	case HashModular:
		if c.Base < 2 || c.Base > maxBase {
			return &InvalidInputError{Field: "hash base", Reason: fmt.Sprintf("%d not in [2, %d]", c.Base, maxBase)}
		}
		if c.Modulus < 2 || c.Modulus >= maxModulus {
			return &InvalidInputError{Field: "hash modulus", Reason: fmt.Sprintf("%d not in [2, %d)", c.Modulus, int64(maxModulus))}
		}
		return nil
	}
	return &InvalidInputError{Field: "hash variant", Reason: c.Variant.String()}
}

func (c HashConfig) String() string {
	if c.Variant == HashAdditive {
		return "additive"
	}
	return fmt.Sprintf("modular(d=%d,q=%d)", c.Base, c.Modulus)
}

// Hash computes the hash of s from scratch.
func (c HashConfig) Hash(s string) int64 {
	var h int64
	if c.Variant == HashAdditive {
		for i := 0; i < len(s); i++ {
			h += int64(CharWeight(s[i]))
		}
		return h
	}
	for i := 0; i < len(s); i++ {
		h = (c.Base*h + int64(s[i])) % c.Modulus
	}
	return h
}

// RollingHash holds the hash of a fixed-width window and slides it one byte
// at a time in O(1).
type RollingHash struct {
	cfg   HashConfig
	width int
	pow   int64 // d^(width-1) mod q
	sum   int64
	ops   int
}

// NewRollingHash hashes the initial window. The preprocessing cost is
// available through Ops: width-1 multiplications for d^(width-1) plus one
// Horner step per byte for the modular variant, one addition per byte for the
// additive variant.
func NewRollingHash(cfg HashConfig, window string) *RollingHash {
	r := &RollingHash{cfg: cfg, width: len(window), pow: 1}
	if cfg.Variant == HashModular {
		for i := 0; i < r.width-1; i++ {
			r.pow = (r.pow * cfg.Base) % cfg.Modulus
			r.ops++
		}
	}
	r.sum = cfg.Hash(window)
	r.ops += r.width
	return r
}

// Sum returns the hash of the current window.
func (r *RollingHash) Sum() int64 {
	return r.sum
}

// Ops returns the number of operations spent building the initial state.
func (r *RollingHash) Ops() int {
	return r.ops
}

// Width returns the window size.
func (r *RollingHash) Width() int {
	return r.width
}

// Roll drops out from the front of the window and appends in at the back.
func (r *RollingHash) Roll(out, in byte) {
	if r.cfg.Variant == HashAdditive {
		r.sum += int64(CharWeight(in) - CharWeight(out))
		return
	}
	q := r.cfg.Modulus
	t := (r.cfg.Base*(r.sum-int64(out)*r.pow) + int64(in)) % q
	// Go's % keeps the dividend's sign
	if t < 0 {
		t += q
	}
	r.sum = t
}
