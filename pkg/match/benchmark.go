package match

import (
	"fmt"
	"slices"
)

// Report holds one MatchResult per algorithm, all computed over the same
// (text, pattern).
type Report struct {
	Naive     MatchResult `json:"naive" msgpack:"naive"`
	KMP       MatchResult `json:"kmp" msgpack:"kmp"`
	RabinKarp MatchResult `json:"rabinKarp" msgpack:"rabinKarp"`
}

// Get returns the result for alg.
func (r Report) Get(alg Algorithm) MatchResult {
	switch alg {
	case KMP:
		return r.KMP
	case RabinKarp:
		return r.RabinKarp
	}
	return r.Naive
}

func (r *Report) set(alg Algorithm, res MatchResult) {
	switch alg {
	case Naive:
		r.Naive = res
	case KMP:
		r.KMP = res
	case RabinKarp:
		r.RabinKarp = res
	}
}

// Agree reports whether all three algorithms found the same matches.
func (r Report) Agree() bool {
	return slices.Equal(r.Naive.Matches, r.KMP.Matches) &&
		slices.Equal(r.Naive.Matches, r.RabinKarp.Matches)
}

// Runner runs every algorithm over the same input, one after another, so the
// timings are not perturbed by each other.
type Runner struct {
	matchers []Matcher
}

// NewRunner validates cfg and prepares the three matchers.
func NewRunner(cfg HashConfig) (*Runner, error) {
	r := &Runner{}
	for _, alg := range Algorithms {
		m, err := New(alg, cfg)
		if err != nil {
			return nil, err
		}
		r.matchers = append(r.matchers, m)
	}
	return r, nil
}

// Compare fails with an *InvalidInputError when text or pattern is empty,
// so callers can tell a malformed request from a search without matches.
func (r *Runner) Compare(text, pattern string) (Report, error) {
	var report Report
	if text == "" {
		return report, errEmptyText
	}
	if pattern == "" {
		return report, errEmptyPattern
	}
	for _, m := range r.matchers {
		res, err := m.Search(text, pattern)
		if err != nil {
			return Report{}, fmt.Errorf("%s: %w", m.Algorithm(), err)
		}
		report.set(m.Algorithm(), res)
	}
	return report, nil
}
