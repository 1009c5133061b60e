package match

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharWeight(t *testing.T) {
	assert.Equal(t, 1, CharWeight('a'))
	assert.Equal(t, 1, CharWeight('A'))
	assert.Equal(t, 26, CharWeight('z'))
	assert.Equal(t, 26, CharWeight('Z'))
	assert.Equal(t, 3, CharWeight('c'))
	assert.Equal(t, 0, CharWeight('0'))
	assert.Equal(t, 0, CharWeight(' '))
	assert.Equal(t, 0, CharWeight('@'))
	assert.Equal(t, 0, CharWeight(0xff))
}

func TestModularHashKnownValues(t *testing.T) {
	cfg := DefaultHashConfig()
	// 256 = 54 (mod 101)
	assert.Equal(t, int64(90), cfg.Hash("abc"))
	assert.Equal(t, int64(28), cfg.Hash("bca"))
	assert.Equal(t, int64(9), cfg.Hash("cab"))
	assert.Equal(t, int64(0), cfg.Hash(""))
}

// The rolling hash must equal a from-scratch hash at every slide position.
func TestRollingHashMatchesDirect(t *testing.T) {
	configs := []HashConfig{
		DefaultHashConfig(),
		{Variant: HashModular, Base: 31, Modulus: 1_000_000_007},
		{Variant: HashModular, Base: 65536, Modulus: 2147483647},
		{Variant: HashModular, Base: 2, Modulus: 3},
		{Variant: HashAdditive},
	}
	r := rand.New(rand.NewPCG(3, 5))

	for _, cfg := range configs {
		t.Run(cfg.String(), func(t *testing.T) {
			require.NoError(t, cfg.Validate())
			for iter := 0; iter < 200; iter++ {
				text := randString(r, "abcXYZ019 \xff", 1+r.IntN(64))
				m := 1 + r.IntN(len(text))

				rh := NewRollingHash(cfg, text[:m])
				require.Equal(t, cfg.Hash(text[:m]), rh.Sum())
				for i := 0; i+m < len(text); i++ {
					rh.Roll(text[i], text[i+m])
					require.Equal(t, cfg.Hash(text[i+1:i+1+m]), rh.Sum(), "text %q m %d i %d", text, m, i+1)
					if cfg.Variant == HashModular {
						require.GreaterOrEqual(t, rh.Sum(), int64(0))
						require.Less(t, rh.Sum(), cfg.Modulus)
					}
				}
			}
		})
	}
}

// Dropping a large byte from a small hash drives the intermediate negative;
// the result must still land in [0, q).
func TestRollingHashNegativeCorrection(t *testing.T) {
	cfg := DefaultHashConfig()
	rh := NewRollingHash(cfg, "\xff\x01\x01")
	rh.Roll(0xff, 0x01)
	assert.Equal(t, cfg.Hash("\x01\x01\x01"), rh.Sum())
	assert.Equal(t, int64(42), rh.Sum())
}

func TestRollingHashOps(t *testing.T) {
	assert.Equal(t, 2+3, NewRollingHash(DefaultHashConfig(), "abc").Ops())
	assert.Equal(t, 3, NewRollingHash(HashConfig{Variant: HashAdditive}, "abc").Ops())
	assert.Equal(t, 3, NewRollingHash(DefaultHashConfig(), "abc").Width())
}

func TestAdditiveHashCollidesOnAnagrams(t *testing.T) {
	cfg := HashConfig{Variant: HashAdditive}
	assert.Equal(t, cfg.Hash("abc"), cfg.Hash("cab"))
	assert.Equal(t, cfg.Hash("abc"), cfg.Hash("CBA"))
	assert.Equal(t, int64(6), cfg.Hash("abc"))
	assert.Equal(t, cfg.Hash("123"), cfg.Hash("..."))

	// collisions cost verification work but never produce false matches
	res, err := NewRabinKarp(cfg).Search("cbacbaabc", "abc")
	require.NoError(t, err)
	assert.Equal(t, []int{6}, res.Matches)

	modular, err := NewRabinKarp(DefaultHashConfig()).Search("cbacbaabc", "abc")
	require.NoError(t, err)
	assert.Greater(t, res.Ops, modular.Ops)
}

func TestHashConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultHashConfig().Validate())
	assert.NoError(t, HashConfig{Variant: HashAdditive}.Validate())

	for _, cfg := range []HashConfig{
		{Variant: HashModular, Base: 1, Modulus: 101},
		{Variant: HashModular, Base: 1 << 17, Modulus: 101},
		{Variant: HashModular, Base: 256, Modulus: 1},
		{Variant: HashModular, Base: 256, Modulus: 1 << 31},
		{Variant: HashVariant(9)},
	} {
		err := cfg.Validate()
		assert.Error(t, err, cfg.String())
		assert.True(t, IsInvalidInput(err))
	}
}

func TestParseHashVariant(t *testing.T) {
	v, err := ParseHashVariant("Modular")
	require.NoError(t, err)
	assert.Equal(t, HashModular, v)

	v, err = ParseHashVariant("additive")
	require.NoError(t, err)
	assert.Equal(t, HashAdditive, v)

	_, err = ParseHashVariant("crc32")
	assert.True(t, IsInvalidInput(err))
}
