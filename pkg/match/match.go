/*
Package match implements the three single-pattern substring search strategies
served by seekbench: naive (brute force), Knuth-Morris-Pratt and Rabin-Karp.

Every matcher reports the start offsets of all (possibly overlapping)
occurrences, the wall-clock time spent and an operation count. Operations are
the units of work that make the strategies comparable: character comparisons,
LPS table comparisons and rolling-hash updates. Bookkeeping is never counted.

# Searching

	m, _ := match.New(match.KMP, match.DefaultHashConfig())
	res, err := m.Search("abcabcabc", "abc")
	// res.Matches == []int{0, 3, 6}

An empty pattern is rejected with an *InvalidInputError. A pattern longer than
the text is not an error: the result is empty, with zero time and zero ops.

# Tracing

Trace returns a pull-based Tracer that yields one Step per call to Next. The
sequence always starts with an init step and ends with a finished step, and is
identical for identical input, so consumers may cache it and scrub through it
in either direction.

	tr, _ := m.Trace("abcabcabc", "abc")
	for step := range tr.All() {
		fmt.Println(step.State, step.TextIndex, step.PatternIndex)
	}

Characters are bytes: indices are byte offsets into the Go string.
*/
package match

import (
	"fmt"
	"strings"
	"time"
)

// Algorithm names one of the closed set of search strategies.
type Algorithm int

const (
	Naive Algorithm = iota
	KMP
	RabinKarp
)

// Algorithms lists every strategy in the order the benchmark runs them.
var Algorithms = []Algorithm{Naive, KMP, RabinKarp}

func (a Algorithm) String() string {
	switch a {
	case Naive:
		return "naive"
	case KMP:
		return "kmp"
	case RabinKarp:
		return "rabinKarp"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm accepts the wire names plus a few common spellings.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "naive", "brute", "bruteforce", "brute-force":
		return Naive, nil
	case "kmp", "knuth-morris-pratt":
		return KMP, nil
	case "rabinkarp", "rabin-karp", "rabin_karp", "rk":
		return RabinKarp, nil
	}
	return Naive, &InvalidInputError{Field: "algorithm", Reason: fmt.Sprintf("unknown algorithm %q", name)}
}

// Matcher is implemented once per Algorithm.
type Matcher interface {
	// Algorithm reports which strategy this matcher implements.
	Algorithm() Algorithm

	// Search returns every occurrence of pattern in text.
	Search(text, pattern string) (MatchResult, error)

	// Trace returns a step-by-step replay of the same search.
	Trace(text, pattern string) (*Tracer, error)
}

// MatchResult is the outcome of a single Search call.
type MatchResult struct {
	Matches       []int   `json:"matches" msgpack:"matches"`
	ElapsedMicros float64 `json:"time" msgpack:"time"`
	Ops           int     `json:"steps" msgpack:"steps"`
}

// New returns the matcher for alg. cfg is only used by RabinKarp.
func New(alg Algorithm, cfg HashConfig) (Matcher, error) {
	switch alg {
	case Naive:
		return NewNaive(), nil
	case KMP:
		return NewKMP(), nil
	case RabinKarp:
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return NewRabinKarp(cfg), nil
	}
	return nil, &InvalidInputError{Field: "algorithm", Reason: alg.String() + " is not supported"}
}

func emptyResult() MatchResult {
	return MatchResult{Matches: []int{}}
}

// runnable validates the input contract shared by all matchers.
// It returns false when there is nothing to search for (m > n).
func runnable(text, pattern string) (bool, error) {
	if pattern == "" {
		return false, errEmptyPattern
	}
	return len(pattern) <= len(text), nil
}

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}
