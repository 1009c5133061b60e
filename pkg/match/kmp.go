package match

import (
	"fmt"
	"slices"
	"time"
)

// KMPMatcher is Knuth-Morris-Pratt: on a mismatch after a partial match the
// pattern cursor falls back through the LPS table and the text cursor never
// moves backwards, for O(n+m) comparisons in total.
type KMPMatcher struct{}

// NewKMP returns the Knuth-Morris-Pratt matcher.
func NewKMP() *KMPMatcher {
	return &KMPMatcher{}
}

func (*KMPMatcher) Algorithm() Algorithm { return KMP }

// Search counts the LPS construction plus one operation per comparison of
// text[t] against pattern[p]. Overlapping occurrences are reported.
func (*KMPMatcher) Search(text, pattern string) (MatchResult, error) {
	ok, err := runnable(text, pattern)
	if err != nil {
		return MatchResult{}, err
	}
	res := emptyResult()
	if !ok {
		return res, nil
	}

	n, m := len(text), len(pattern)
	start := time.Now()
	lps, ops := BuildLPS(pattern)
	t, p := 0, 0
	for t < n {
		ops++
		switch {
		case text[t] == pattern[p]:
			t++
			p++
			if p == m {
				res.Matches = append(res.Matches, t-m)
				p = lps[p-1]
			}
		case p != 0:
			p = lps[p-1]
		default:
			t++
		}
	}
	res.Ops = ops
	res.ElapsedMicros = micros(time.Since(start))
	return res, nil
}

func (*KMPMatcher) Trace(text, pattern string) (*Tracer, error) {
	ok, err := runnable(text, pattern)
	if err != nil {
		return nil, err
	}
	tr := &kmpTrace{text: text, pattern: pattern, run: ok}
	if ok {
		tr.lps, tr.ops = BuildLPS(pattern)
	}
	return newTracer(KMP, tr), nil
}

type kmpTrace struct {
	text, pattern string
	run           bool
	lps           []int
	t, p, ops     int
	phase         tracePhase
}

func (k *kmpTrace) aux() *Aux {
	return &Aux{LPS: slices.Clone(k.lps)}
}

func (k *kmpTrace) step() (Step, bool) {
	m := len(k.pattern)
	switch k.phase {
	case phaseInit:
		if !k.run {
			k.phase = phaseFinish
			return initStep(fmt.Sprintf("KMP search: pattern length %d exceeds text length %d", m, len(k.text)), 0, nil), true
		}
		k.phase = phaseCompare
		return initStep(fmt.Sprintf("LPS table for %q: %v", k.pattern, k.lps), k.ops, k.aux()), true

	case phaseCompare:
		if k.t >= len(k.text) {
			k.phase = phaseDone
			return finishedStep(k.ops), true
		}
		a, b := k.text[k.t], k.pattern[k.p]
		k.ops++
		s := Step{TextIndex: k.t, PatternIndex: k.p, State: compareState(a == b), Ops: k.ops}
		switch {
		case a == b:
			s.Message = fmt.Sprintf("Match at text %d, pattern %d: %q", k.t, k.p, a)
			k.t++
			k.p++
			if k.p == m {
				k.phase = phaseFound
			}
		case k.p != 0:
			s.Message = fmt.Sprintf("Mismatch at text %d, pattern %d: %q != %q", k.t, k.p, a, b)
			k.phase = phaseShift
		default:
			s.Message = fmt.Sprintf("Mismatch at text %d: %q != %q, advancing text", k.t, a, b)
			k.t++
		}
		return s, true

	case phaseFound:
		start := k.t - m
		k.p = k.lps[m-1]
		k.phase = phaseCompare
		return Step{
			TextIndex:    start,
			PatternIndex: m - 1,
			State:        StateFound,
			Message:      fmt.Sprintf("Pattern found at index %d", start),
			Ops:          k.ops,
		}, true

	case phaseShift:
		from := k.p
		k.p = k.lps[from-1]
		k.phase = phaseCompare
		return Step{
			TextIndex:    k.t,
			PatternIndex: from,
			State:        StateShift,
			Message:      fmt.Sprintf("Mismatch after partial match: pattern index %d falls back to lps[%d] = %d", from, from-1, k.p),
			Ops:          k.ops,
			Aux:          k.aux(),
		}, true

	case phaseFinish:
		k.phase = phaseDone
		return finishedStep(k.ops), true
	}
	return Step{}, false
}
