package match

import (
	"iter"
	"slices"
)

// StateTag classifies a Step.
type StateTag string

const (
	StateInit         StateTag = "init"
	StateWindow       StateTag = "window"
	StateMatch        StateTag = "match"
	StateMismatch     StateTag = "mismatch"
	StateShift        StateTag = "shift"
	StateHashMatch    StateTag = "hash-match"
	StateHashMismatch StateTag = "hash-mismatch"
	StateFound        StateTag = "found"
	StateFinished     StateTag = "finished"
)

// Step is one frame of an algorithm replay. TextIndex and PatternIndex are -1
// when the step does not point at a character. Ops is the cumulative
// operation count when the step was emitted.
type Step struct {
	TextIndex    int      `json:"textIndex" msgpack:"ti"`
	PatternIndex int      `json:"patternIndex" msgpack:"pi"`
	State        StateTag `json:"state" msgpack:"st"`
	Message      string   `json:"message" msgpack:"m"`
	Ops          int      `json:"ops" msgpack:"o"`
	Aux          *Aux     `json:"aux,omitempty" msgpack:"x,omitempty"`
}

// Aux carries algorithm specific state: the LPS table for KMP, the hash
// pair for Rabin-Karp. Each step owns its copy.
type Aux struct {
	LPS    []int     `json:"lps,omitempty" msgpack:"lps,omitempty"`
	Hashes *HashPair `json:"hashes,omitempty" msgpack:"h,omitempty"`
}

// HashPair is the pattern hash next to the current window hash.
type HashPair struct {
	Pattern int64 `json:"pattern" msgpack:"p"`
	Window  int64 `json:"window" msgpack:"w"`
}

// stepper is the per-algorithm state machine behind a Tracer. It reports
// false once it has emitted its finished step.
type stepper interface {
	step() (Step, bool)
}

// Tracer yields the steps of one search, one per call to Next. The algorithm
// state lives in the tracer between calls and nothing runs unless a step is
// pulled. A Tracer is not safe for concurrent use.
type Tracer struct {
	alg     Algorithm
	src     stepper
	emitted int
	done    bool
}

func newTracer(alg Algorithm, src stepper) *Tracer {
	return &Tracer{alg: alg, src: src}
}

// Algorithm reports which strategy is being traced.
func (t *Tracer) Algorithm() Algorithm {
	return t.alg
}

// Next returns the next step. After the finished step it returns false.
func (t *Tracer) Next() (Step, bool) {
	if t.done {
		return Step{}, false
	}
	s, ok := t.src.step()
	if !ok {
		t.done = true
		return Step{}, false
	}
	if s.State == StateFinished {
		t.done = true
	}
	t.emitted++
	return s, true
}

// Done reports whether the finished step has been pulled.
func (t *Tracer) Done() bool {
	return t.done
}

// Emitted returns how many steps have been pulled so far.
func (t *Tracer) Emitted() int {
	return t.emitted
}

// All yields the remaining steps.
func (t *Tracer) All() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for {
			s, ok := t.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}

// Collect drains the tracer. The result can be indexed freely for scrubbing.
func (t *Tracer) Collect() []Step {
	return slices.Collect(t.All())
}

// CollectN drains at most limit steps. It reports false when the trace had
// more steps than limit.
func (t *Tracer) CollectN(limit int) ([]Step, bool) {
	var steps []Step
	for len(steps) < limit {
		s, ok := t.Next()
		if !ok {
			return steps, true
		}
		steps = append(steps, s)
	}
	return steps, t.done
}

// Trace is a convenience for New(alg, cfg) followed by Trace.
func Trace(alg Algorithm, cfg HashConfig, text, pattern string) (*Tracer, error) {
	m, err := New(alg, cfg)
	if err != nil {
		return nil, err
	}
	return m.Trace(text, pattern)
}

type tracePhase int

const (
	phaseInit tracePhase = iota
	phaseWindow
	phaseHash
	phaseCompare
	phaseShift
	phaseFound
	phaseFinish
	phaseDone
)

func initStep(msg string, ops int, aux *Aux) Step {
	return Step{TextIndex: -1, PatternIndex: -1, State: StateInit, Message: msg, Ops: ops, Aux: aux}
}

func finishedStep(ops int) Step {
	return Step{TextIndex: -1, PatternIndex: -1, State: StateFinished, Message: "Search completed", Ops: ops}
}

func compareState(ok bool) StateTag {
	if ok {
		return StateMatch
	}
	return StateMismatch
}
