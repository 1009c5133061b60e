package match

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchScenarios(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		pattern     string
		want        []int
	}{
		{"single occurrence after partial matches", "ABABDABACDABABCABAB", "ABABCABAB", []int{10}},
		{"repeated near matches", "AAAAAAAAAB", "AAAAB", []int{5}},
		{"back to back", "abcabcabc", "abc", []int{0, 3, 6}},
		{"overlapping", "aaaa", "aa", []int{0, 1, 2}},
		{"overlapping border", "abababab", "abab", []int{0, 2, 4}},
		{"no occurrence", "abcdef", "xyz", []int{}},
		{"single byte", "banana", "a", []int{1, 3, 5}},
		{"whole text", "needle", "needle", []int{0}},
		{"same length, different", "needle", "needlf", []int{}},
		{"case sensitive", "Hello hello", "hello", []int{6}},
		{"non-letters", "1+1=2, 1+1=2", "1=2", []int{2, 9}},
	}

	for _, tc := range testCases {
		for _, m := range allMatchers(DefaultHashConfig()) {
			t.Run(tc.description+"/"+m.Algorithm().String(), func(t *testing.T) {
				res, err := m.Search(tc.text, tc.pattern)
				require.NoError(t, err)
				assert.Equal(t, tc.want, res.Matches)
				assert.GreaterOrEqual(t, res.ElapsedMicros, 0.0)
			})
		}
	}
}

func TestSearchOps(t *testing.T) {
	testCases := []struct {
		text, pattern           string
		naive, kmp, rabinKarp int
	}{
		// KMP: 7 for the LPS table plus 15 comparisons
		{"AAAAAAAAAB", "AAAAB", 30, 22, 20},
		// Rabin-Karp: 2 for d^(m-1), 3 Horner steps, 7 windows, 3 hits verified
		{"abcabcabc", "abc", 13, 11, 21},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			naive, err := NewNaive().Search(tc.text, tc.pattern)
			require.NoError(t, err)
			kmp, err := NewKMP().Search(tc.text, tc.pattern)
			require.NoError(t, err)
			rk, err := NewRabinKarp(DefaultHashConfig()).Search(tc.text, tc.pattern)
			require.NoError(t, err)

			assert.Equal(t, tc.naive, naive.Ops)
			assert.Equal(t, tc.kmp, kmp.Ops)
			assert.Equal(t, tc.rabinKarp, rk.Ops)
		})
	}
}

func TestNaiveCostsMoreThanKMPOnNearMatches(t *testing.T) {
	naive, err := NewNaive().Search("AAAAAAAAAB", "AAAAB")
	require.NoError(t, err)
	kmp, err := NewKMP().Search("AAAAAAAAAB", "AAAAB")
	require.NoError(t, err)

	assert.Equal(t, []int{5}, naive.Matches)
	assert.Equal(t, []int{5}, kmp.Matches)
	assert.Greater(t, naive.Ops, kmp.Ops)
}

func TestSearchEmptyPattern(t *testing.T) {
	for _, m := range allMatchers(DefaultHashConfig()) {
		t.Run(m.Algorithm().String(), func(t *testing.T) {
			_, err := m.Search("xyz", "")
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err))

			var ie *InvalidInputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, "pattern", ie.Field)

			_, err = m.Trace("xyz", "")
			assert.True(t, IsInvalidInput(err))
		})
	}
}

func TestSearchPatternLongerThanText(t *testing.T) {
	for _, m := range allMatchers(DefaultHashConfig()) {
		t.Run(m.Algorithm().String(), func(t *testing.T) {
			for _, text := range []string{"", "ab"} {
				res, err := m.Search(text, "abc")
				require.NoError(t, err)
				assert.NotNil(t, res.Matches)
				assert.Empty(t, res.Matches)
				assert.Zero(t, res.Ops)
				assert.Zero(t, res.ElapsedMicros)
			}
		})
	}
}

func TestSearchEqualLength(t *testing.T) {
	for _, m := range allMatchers(DefaultHashConfig()) {
		res, err := m.Search("abc", "abc")
		require.NoError(t, err)
		assert.Equal(t, []int{0}, res.Matches, m.Algorithm().String())

		res, err = m.Search("abc", "abd")
		require.NoError(t, err)
		assert.Empty(t, res.Matches, m.Algorithm().String())
	}
}

// All three algorithms, with both hash variants, must agree with each other
// and with the reference on random input.
func TestCrossAlgorithmAgreement(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	alphabets := []string{"ab", "abc", "aA", "xyz01", "\x00\xff"}
	configs := []HashConfig{
		DefaultHashConfig(),
		{Variant: HashAdditive},
		{Variant: HashModular, Base: 2, Modulus: 2},
	}

	for iter := 0; iter < 1000; iter++ {
		alphabet := alphabets[iter%len(alphabets)]
		text := randString(r, alphabet, 1+r.IntN(40))
		pattern := randString(r, alphabet, 1+r.IntN(6))
		want := occurrences(text, pattern)

		naive, err := NewNaive().Search(text, pattern)
		require.NoError(t, err)
		kmp, err := NewKMP().Search(text, pattern)
		require.NoError(t, err)
		require.Equal(t, want, naive.Matches, "naive text %q pattern %q", text, pattern)
		require.Equal(t, want, kmp.Matches, "kmp text %q pattern %q", text, pattern)

		for _, cfg := range configs {
			rk, err := NewRabinKarp(cfg).Search(text, pattern)
			require.NoError(t, err)
			require.Equal(t, want, rk.Matches, "%s text %q pattern %q", cfg, text, pattern)
		}

		// KMP stays linear
		if len(pattern) <= len(text) {
			require.LessOrEqual(t, kmp.Ops, 2*len(text)+2*len(pattern))
		}
	}
}

func TestSearchIdempotent(t *testing.T) {
	text, pattern := "ABABDABACDABABCABAB", "AB"
	for _, m := range allMatchers(DefaultHashConfig()) {
		first, err := m.Search(text, pattern)
		require.NoError(t, err)
		second, err := m.Search(text, pattern)
		require.NoError(t, err)
		assert.Equal(t, first.Matches, second.Matches)
		assert.Equal(t, first.Ops, second.Ops)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for name, want := range map[string]Algorithm{
		"naive":      Naive,
		"KMP":        KMP,
		"rabinKarp":  RabinKarp,
		"rabin-karp": RabinKarp,
		" rk ":       RabinKarp,
	} {
		got, err := ParseAlgorithm(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseAlgorithm("boyer-moore")
	assert.True(t, IsInvalidInput(err))

	for _, alg := range Algorithms {
		got, err := ParseAlgorithm(alg.String())
		require.NoError(t, err)
		assert.Equal(t, alg, got)
	}
}

func TestNew(t *testing.T) {
	for _, alg := range Algorithms {
		m, err := New(alg, DefaultHashConfig())
		require.NoError(t, err)
		assert.Equal(t, alg, m.Algorithm())
	}

	_, err := New(RabinKarp, HashConfig{Variant: HashModular, Base: 0, Modulus: 101})
	assert.True(t, IsInvalidInput(err))

	_, err = New(Algorithm(7), DefaultHashConfig())
	assert.Error(t, err)
}

func BenchmarkSearch(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	text := randString(r, "ab", 1<<14)
	pattern := randString(r, "ab", 12)

	for _, m := range allMatchers(DefaultHashConfig()) {
		b.Run(m.Algorithm().String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := m.Search(text, pattern); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
