package server

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/bastiangx/seekbench/pkg/config"
	"github.com/bastiangx/seekbench/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// runIPC feeds values to a fresh IPC loop and returns the raw responses,
// minus the ready message.
func runIPC(t *testing.T, srv *Server, in *bytes.Buffer, out *bytes.Buffer, reqs ...any) []msgpack.RawMessage {
	t.Helper()
	enc := msgpack.NewEncoder(in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)

	var resps []msgpack.RawMessage
	for out.Len() > 0 {
		raw, err := dec.DecodeRaw()
		require.NoError(t, err)
		resps = append(resps, raw)
	}
	require.Len(t, resps, len(reqs))
	return resps
}

func newTestServer(t *testing.T, cfg *config.Config, configPath string) (*Server, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	in, out := &bytes.Buffer{}, &bytes.Buffer{}
	srv, err := NewServerWithIO(cfg, configPath, in, out)
	require.NoError(t, err)
	return srv, in, out
}

func decodeAs[T any](t *testing.T, raw msgpack.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, msgpack.Unmarshal(raw, &v))
	return v
}

func TestIPCCompare(t *testing.T) {
	srv, in, out := newTestServer(t, config.DefaultConfig(), "")
	resps := runIPC(t, srv, in, out,
		Request{ID: "c1", Action: ActionCompare, Text: "abcabcabc", Pattern: "abc"},
		Request{ID: "c2", Action: ActionCompare, Text: "ab", Pattern: "abc"},
	)

	first := decodeAs[CompareResponse](t, resps[0])
	assert.Equal(t, "c1", first.ID)
	assert.True(t, first.Agree)
	assert.Equal(t, []int{0, 3, 6}, first.Naive.Matches)
	assert.Equal(t, []int{0, 3, 6}, first.KMP.Matches)
	assert.Equal(t, []int{0, 3, 6}, first.RabinKarp.Matches)
	assert.Equal(t, 13, first.Naive.Ops)
	assert.Equal(t, 11, first.KMP.Ops)
	assert.Equal(t, 21, first.RabinKarp.Ops)

	// pattern longer than text is not an error
	second := decodeAs[CompareResponse](t, resps[1])
	assert.Equal(t, "c2", second.ID)
	assert.Empty(t, second.Naive.Matches)
	assert.Zero(t, second.KMP.Ops)
}

func TestIPCErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxTextLen = 8
	cfg.Server.MaxPatternLen = 3
	srv, in, out := newTestServer(t, cfg, "")

	resps := runIPC(t, srv, in, out,
		Request{ID: "e1", Action: ActionCompare, Text: "abc", Pattern: ""},
		Request{ID: "e2", Action: ActionCompare, Text: "", Pattern: "a"},
		Request{ID: "e3", Action: "complete"},
		Request{ID: "e4", Action: ActionCompare, Text: "abcabcabc", Pattern: "a"},
		Request{ID: "e5", Action: ActionCompare, Text: "abc", Pattern: "abcd"},
		Request{ID: "e6", Action: ActionTrace, Algorithm: "boyer-moore", Text: "abc", Pattern: "a"},
		42,
		Request{ID: "h1", Action: ActionHealth},
	)

	codes := map[string]int{"e1": 400, "e2": 400, "e3": 404, "e4": 413, "e5": 413, "e6": 400}
	for i, id := range []string{"e1", "e2", "e3", "e4", "e5", "e6"} {
		e := decodeAs[ErrorResponse](t, resps[i])
		assert.Equal(t, id, e.ID)
		assert.Equal(t, codes[id], e.Code, "request %s: %s", id, e.Error)
		assert.NotEmpty(t, e.Error)
	}

	malformed := decodeAs[ErrorResponse](t, resps[6])
	assert.Equal(t, 400, malformed.Code)

	// the loop keeps going after a malformed request
	health := decodeAs[StatusResponse](t, resps[7])
	assert.Equal(t, "h1", health.ID)
	assert.Equal(t, "ok", health.Status)
}

func TestIPCTracePaging(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Trace.PageSize = 8
	srv, in, out := newTestServer(t, cfg, "")

	resps := runIPC(t, srv, in, out,
		Request{ID: "t1", Action: ActionTrace, Algorithm: "naive", Text: "abcabcabc", Pattern: "abc", From: 0, Count: 5},
		Request{ID: "t2", Action: ActionTrace, Algorithm: "naive", Text: "abcabcabc", Pattern: "abc", From: 20, Count: 8},
		Request{ID: "t3", Action: ActionTrace, Algorithm: "naive", Text: "abcabcabc", Pattern: "abc", From: 0, Count: 100},
		Request{ID: "t4", Action: ActionTrace, Algorithm: "naive", Text: "abcabcabc", Pattern: "abc", From: 30},
		Request{ID: "h1", Action: ActionHealth},
	)

	first := decodeAs[TraceResponse](t, resps[0])
	assert.Equal(t, "naive/-/3:abcabcabcabc", first.Key)
	assert.Equal(t, 25, first.Total)
	require.Len(t, first.Steps, 5)
	assert.Equal(t, match.StateInit, first.Steps[0].State)

	tail := decodeAs[TraceResponse](t, resps[1])
	assert.Equal(t, 20, tail.From)
	require.Len(t, tail.Steps, 5)
	assert.Equal(t, match.StateFinished, tail.Steps[4].State)
	assert.Equal(t, 13, tail.Steps[4].Ops)

	capped := decodeAs[TraceResponse](t, resps[2])
	assert.Len(t, capped.Steps, 8)

	past := decodeAs[TraceResponse](t, resps[3])
	assert.Empty(t, past.Steps)
	assert.Equal(t, 25, past.Total)

	// one materialization served all four pages
	health := decodeAs[StatusResponse](t, resps[4])
	assert.Equal(t, 1, health.Cache["cachedTraces"])
	assert.Equal(t, 3, health.Cache["cacheHits"])
}

func TestIPCTraceTooLong(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Trace.MaxSteps = 10
	srv, in, out := newTestServer(t, cfg, "")

	resps := runIPC(t, srv, in, out,
		Request{ID: "t1", Action: ActionTrace, Algorithm: "kmp", Text: "abcabcabc", Pattern: "abc"},
		Request{ID: "t2", Action: ActionTrace, Algorithm: "kmp", Text: "ab", Pattern: "abc"},
	)

	e := decodeAs[ErrorResponse](t, resps[0])
	assert.Equal(t, 413, e.Code)

	// init and finished only
	short := decodeAs[TraceResponse](t, resps[1])
	assert.Equal(t, 2, short.Total)
}

func TestIPCConfigUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seekbench.toml")
	cfg, err := config.InitConfig(path)
	require.NoError(t, err)
	srv, in, out := newTestServer(t, cfg, path)

	resps := runIPC(t, srv, in, out,
		Request{ID: "t1", Action: ActionTrace, Algorithm: "rk", Text: "cbacbaabc", Pattern: "abc"},
		Request{ID: "t2", Action: ActionTrace, Algorithm: "kmp", Text: "cbacbaabc", Pattern: "abc"},
		Request{ID: "h1", Action: ActionConfig, Variant: strPtr("additive")},
		Request{ID: "c1", Action: ActionCompare, Text: "cbacbaabc", Pattern: "abc"},
		Request{ID: "h2", Action: ActionConfig, Variant: strPtr("modular"), Base: intPtr(1)},
		Request{ID: "h3", Action: ActionConfig, Variant: strPtr("crc32")},
	)

	updated := decodeAs[ConfigResponse](t, resps[2])
	assert.Equal(t, "ok", updated.Status)
	assert.Equal(t, "additive", updated.Hash)
	assert.Equal(t, 1, updated.Invalidated)

	compare := decodeAs[CompareResponse](t, resps[3])
	assert.Equal(t, []int{6}, compare.RabinKarp.Matches)
	assert.Equal(t, 18, compare.RabinKarp.Ops)

	for _, raw := range resps[4:] {
		e := decodeAs[ErrorResponse](t, raw)
		assert.Equal(t, 400, e.Code, e.Error)
	}

	assert.Equal(t, "additive", srv.Config().Hash.Variant)
	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "additive", saved.Hash.Variant)
}

func TestReloadEvery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seekbench.toml")
	cfg, err := config.InitConfig(path)
	require.NoError(t, err)
	cfg.Server.ReloadEvery = 2
	srv, _, _ := newTestServer(t, cfg, path)

	onDisk := config.DefaultConfig()
	onDisk.Server.ReloadEvery = 2
	onDisk.Hash.Variant = "additive"
	require.NoError(t, config.SaveConfig(onDisk, path))

	srv.Handle(Request{ID: "1", Action: ActionHealth})
	assert.Equal(t, "modular", srv.Config().Hash.Variant)

	srv.Handle(Request{ID: "2", Action: ActionHealth})
	assert.Equal(t, "additive", srv.Config().Hash.Variant)

	report, err := srv.Compare("cbacbaabc", "abc")
	require.NoError(t, err)
	assert.Equal(t, 18, report.RabinKarp.Ops)
}

func TestNewServerRejectsBadHash(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Hash.Modulus = 1
	_, err := NewServerWithIO(cfg, "", &bytes.Buffer{}, &bytes.Buffer{})
	assert.True(t, match.IsInvalidInput(err))
}
