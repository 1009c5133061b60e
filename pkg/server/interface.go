/*
Package server exposes the matchers over msgpack IPC and over HTTP.

# IPC

The IPC server reads msgpack maps from stdin and writes one msgpack map per
request to stdout. Logs go to stderr so they never interleave with responses.
Every request carries an id, echoed back, and an action.

Compare the three algorithms over one input:

	{"id": "c1", "action": "compare", "t": "abcabcabc", "p": "abc"}

	{"id": "c1", "naive": {"matches": [0, 3, 6], "time": 1.2, "steps": 13},
	 "kmp": {...}, "rabinKarp": {...}, "ok": true, "t": 31}

Fetch a page of a trace. Traces are materialized once and cached, so paging
back and forth is cheap:

	{"id": "t1", "action": "trace", "a": "naive", "t": "abcabcabc", "p": "abc", "f": 0, "n": 50}

	{"id": "t1", "k": "naive/-/3:abcabcabcabc", "total": 25, "f": 0, "s": [{"ti": -1, "pi": -1, "st": "init", ...}]}

Change the Rabin-Karp hash. The config file is rewritten and cached
Rabin-Karp traces are dropped:

	{"id": "h1", "action": "config", "variant": "additive"}
	{"id": "h2", "action": "config", "variant": "modular", "base": 256, "modulus": 101}

Failures come back as {"id", "e", "c"} where c is 400 for bad input, 404 for
an unknown action, 413 when a limit is exceeded and 500 otherwise.

# HTTP

The HTTP server serves the same operations as JSON:

	POST /api/compare  {"text": "...", "pattern": "..."}
	POST /api/trace    {"text": "...", "pattern": "...", "algorithm": "kmp", "from": 0, "count": 50}
	GET  /health
*/
package server

import (
	"github.com/bastiangx/seekbench/pkg/match"
)

// Request actions.
const (
	ActionCompare = "compare"
	ActionTrace   = "trace"
	ActionConfig  = "config"
	ActionHealth  = "health"
)

// Request is the single envelope for every IPC action. Fields that an
// action does not use are ignored.
type Request struct {
	ID        string `msgpack:"id"`
	Action    string `msgpack:"action"`
	Text      string `msgpack:"t,omitempty"`
	Pattern   string `msgpack:"p,omitempty"`
	Algorithm string `msgpack:"a,omitempty"`
	From      int    `msgpack:"f,omitempty"`
	Count     int    `msgpack:"n,omitempty"`

	// config only; nil keeps the current value
	Variant *string `msgpack:"variant,omitempty"`
	Base    *int    `msgpack:"base,omitempty"`
	Modulus *int    `msgpack:"modulus,omitempty"`
}

// CompareResponse holds the three results plus the total time in microseconds.
type CompareResponse struct {
	ID        string            `msgpack:"id"`
	Naive     match.MatchResult `msgpack:"naive"`
	KMP       match.MatchResult `msgpack:"kmp"`
	RabinKarp match.MatchResult `msgpack:"rabinKarp"`
	Agree     bool              `msgpack:"ok"`
	TimeTaken int64             `msgpack:"t"`
}

// TraceResponse is one page of a cached trace.
type TraceResponse struct {
	ID    string       `msgpack:"id"`
	Key   string       `msgpack:"k"`
	Total int          `msgpack:"total"`
	From  int          `msgpack:"f"`
	Steps []match.Step `msgpack:"s"`
}

// ConfigResponse reports the hash now in effect.
type ConfigResponse struct {
	ID          string `msgpack:"id"`
	Status      string `msgpack:"status"`
	Hash        string `msgpack:"hash"`
	Invalidated int    `msgpack:"invalidated"`
}

// StatusResponse answers health checks and announces readiness.
type StatusResponse struct {
	ID     string         `msgpack:"id,omitempty"`
	Status string         `msgpack:"status"`
	Cache  map[string]int `msgpack:"cache,omitempty"`
}

// ErrorResponse holds basic error information for any failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
