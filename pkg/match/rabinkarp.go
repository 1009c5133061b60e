package match

import (
	"fmt"
	"time"
)

// RabinKarpMatcher compares a rolling hash of each text window against the
// pattern hash and verifies candidates character by character, since equal
// hashes never imply equal strings.
type RabinKarpMatcher struct {
	cfg HashConfig
}

// NewRabinKarp returns a Rabin-Karp matcher using cfg. The caller is expected
// to have validated cfg; New does so.
func NewRabinKarp(cfg HashConfig) *RabinKarpMatcher {
	return &RabinKarpMatcher{cfg: cfg}
}

func (*RabinKarpMatcher) Algorithm() Algorithm { return RabinKarp }

// HashConfig returns the hash configuration in use.
func (r *RabinKarpMatcher) HashConfig() HashConfig { return r.cfg }

// Search counts the rolling-hash preprocessing, one operation per window for
// the hash comparison and one per verification comparison.
func (r *RabinKarpMatcher) Search(text, pattern string) (MatchResult, error) {
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
	ph := r.cfg.Hash(pattern)
	rh := NewRollingHash(r.cfg, text[:m])
	ops := rh.Ops()
	for i := 0; i <= n-m; i++ {
		ops++
		if ph == rh.Sum() {
			j := 0
			for ; j < m; j++ {
				ops++
				if text[i+j] != pattern[j] {
					break
				}
			}
			if j == m {
				res.Matches = append(res.Matches, i)
			}
		}
		if i < n-m {
			rh.Roll(text[i], text[i+m])
		}
	}
	res.Ops = ops
	res.ElapsedMicros = micros(time.Since(start))
	return res, nil
}

func (r *RabinKarpMatcher) Trace(text, pattern string) (*Tracer, error) {
	ok, err := runnable(text, pattern)
	if err != nil {
		return nil, err
	}
	tr := &rabinKarpTrace{text: text, pattern: pattern, cfg: r.cfg, run: ok}
	if ok {
		tr.ph = r.cfg.Hash(pattern)
		tr.rh = NewRollingHash(r.cfg, text[:len(pattern)])
		tr.ops = tr.rh.Ops()
	}
	return newTracer(RabinKarp, tr), nil
}

type rabinKarpTrace struct {
	text, pattern string
	cfg           HashConfig
	run           bool
	ph            int64
	rh            *RollingHash
	i, j, ops     int
	phase         tracePhase
}

func (r *rabinKarpTrace) aux() *Aux {
	return &Aux{Hashes: &HashPair{Pattern: r.ph, Window: r.rh.Sum()}}
}

func (r *rabinKarpTrace) step() (Step, bool) {
	m := len(r.pattern)
	switch r.phase {
	case phaseInit:
		if !r.run {
			r.phase = phaseFinish
			return initStep(fmt.Sprintf("Rabin-Karp search: pattern length %d exceeds text length %d", m, len(r.text)), 0, nil), true
		}
		r.phase = phaseWindow
		return initStep(fmt.Sprintf("Hash %s: pattern %d, first window %d", r.cfg, r.ph, r.rh.Sum()), r.ops, r.aux()), true

	case phaseWindow:
		r.ops++
		r.phase = phaseHash
		return Step{
			TextIndex:    r.i,
			PatternIndex: 0,
			State:        StateWindow,
			Message:      fmt.Sprintf("Checking hash: P(%d) vs T(%d)", r.ph, r.rh.Sum()),
			Ops:          r.ops,
			Aux:          r.aux(),
		}, true

	case phaseHash:
		s := Step{TextIndex: r.i, PatternIndex: 0, Ops: r.ops}
		if r.ph == r.rh.Sum() {
			s.State = StateHashMatch
			s.Message = "Hash match, verifying characters"
			r.j = 0
			r.phase = phaseCompare
			return s, true
		}
		s.State = StateHashMismatch
		s.Message = "Hash mismatch, sliding window"
		r.nextWindow()
		return s, true

	case phaseCompare:
		ti, pi := r.i+r.j, r.j
		a, b := r.text[ti], r.pattern[pi]
		r.ops++
		s := Step{TextIndex: ti, PatternIndex: pi, State: compareState(a == b), Ops: r.ops}
		if a == b {
			s.Message = fmt.Sprintf("Character match: %q", a)
			r.j++
			if r.j == m {
				r.phase = phaseFound
			}
		} else {
			s.Message = fmt.Sprintf("Character mismatch: %q != %q (spurious hit)", a, b)
			r.nextWindow()
		}
		return s, true

	case phaseFound:
		s := Step{
			TextIndex:    r.i,
			PatternIndex: 0,
			State:        StateFound,
			Message:      fmt.Sprintf("Pattern found at %d", r.i),
			Ops:          r.ops,
		}
		r.nextWindow()
		return s, true

	case phaseFinish:
		r.phase = phaseDone
		return finishedStep(r.ops), true
	}
	return Step{}, false
}

// nextWindow rolls the hash forward, or finishes after the last window.
func (r *rabinKarpTrace) nextWindow() {
	last := len(r.text) - len(r.pattern)
	if r.i < last {
		r.rh.Roll(r.text[r.i], r.text[r.i+len(r.pattern)])
	}
	r.i++
	if r.i > last {
		r.phase = phaseFinish
		return
	}
	r.phase = phaseWindow
}
