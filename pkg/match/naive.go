package match

import (
	"fmt"
	"time"
)

// NaiveMatcher tries every alignment and compares left to right, stopping at
// the first mismatch. O(n*m) comparisons in the worst case, no preprocessing.
type NaiveMatcher struct{}

// NewNaive returns the brute-force matcher.
func NewNaive() *NaiveMatcher {
	return &NaiveMatcher{}
}

func (*NaiveMatcher) Algorithm() Algorithm { return Naive }

// Search counts one operation per character comparison.
func (*NaiveMatcher) Search(text, pattern string) (MatchResult, error) {
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
	for i := 0; i <= n-m; i++ {
		j := 0
		for ; j < m; j++ {
			res.Ops++
			if text[i+j] != pattern[j] {
				break
			}
		}
		if j == m {
			res.Matches = append(res.Matches, i)
		}
	}
	res.ElapsedMicros = micros(time.Since(start))
	return res, nil
}

func (*NaiveMatcher) Trace(text, pattern string) (*Tracer, error) {
	ok, err := runnable(text, pattern)
	if err != nil {
		return nil, err
	}
	return newTracer(Naive, &naiveTrace{text: text, pattern: pattern, run: ok}), nil
}

type naiveTrace struct {
	text, pattern string
	run           bool
	i, j, ops     int
	phase         tracePhase
}

func (t *naiveTrace) step() (Step, bool) {
	n, m := len(t.text), len(t.pattern)
	switch t.phase {
	case phaseInit:
		t.phase = phaseFinish
		if t.run {
			t.phase = phaseWindow
		}
		return initStep(fmt.Sprintf("Naive search: text length %d, pattern length %d", n, m), 0, nil), true

	case phaseWindow:
		t.j = 0
		t.phase = phaseCompare
		return Step{
			TextIndex:    t.i,
			PatternIndex: 0,
			State:        StateWindow,
			Message:      fmt.Sprintf("Checking window at index %d", t.i),
			Ops:          t.ops,
		}, true

	case phaseCompare:
		ti, pi := t.i+t.j, t.j
		a, b := t.text[ti], t.pattern[pi]
		t.ops++
		s := Step{TextIndex: ti, PatternIndex: pi, State: compareState(a == b), Ops: t.ops}
		if a == b {
			s.Message = fmt.Sprintf("Compare: %q == %q", a, b)
			t.j++
			if t.j == m {
				t.phase = phaseFound
			}
		} else {
			s.Message = fmt.Sprintf("Mismatch: %q != %q", a, b)
			t.nextWindow()
		}
		return s, true

	case phaseFound:
		s := Step{
			TextIndex:    t.i,
			PatternIndex: m - 1,
			State:        StateFound,
			Message:      fmt.Sprintf("Pattern found starting at index %d", t.i),
			Ops:          t.ops,
		}
		t.nextWindow()
		return s, true

	case phaseFinish:
		t.phase = phaseDone
		return finishedStep(t.ops), true
	}
	return Step{}, false
}

func (t *naiveTrace) nextWindow() {
	t.i++
	if t.i > len(t.text)-len(t.pattern) {
		t.phase = phaseFinish
		return
	}
	t.phase = phaseWindow
}
