package match

import (
	"math/rand/v2"
	"strings"
)

// occurrences is the reference answer: every i where text[i:] starts with pattern.
func occurrences(text, pattern string) []int {
	out := []int{}
	for i := 0; i+len(pattern) <= len(text); i++ {
		if strings.HasPrefix(text[i:], pattern) {
			out = append(out, i)
		}
	}
	return out
}

func randString(r *rand.Rand, alphabet string, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[r.IntN(len(alphabet))])
	}
	return sb.String()
}

func allMatchers(cfg HashConfig) []Matcher {
	return []Matcher{NewNaive(), NewKMP(), NewRabinKarp(cfg)}
}
