package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/seekbench/internal/logger"
	"github.com/bastiangx/seekbench/pkg/config"
	"github.com/bastiangx/seekbench/pkg/match"
	"github.com/bastiangx/seekbench/pkg/replay"
	charmlog "github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// LimitError reports an input longer than the configured maximum.
type LimitError struct {
	Field string
	Len   int
	Max   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s length %d exceeds maximum of %d", e.Field, e.Len, e.Max)
}

// Server handles compare, trace and config requests. The IPC loop and the
// HTTP handlers share one Server; it is safe for concurrent use.
type Server struct {
	mu           sync.RWMutex
	config       *config.Config
	configPath   string
	runner       *match.Runner
	hash         match.HashConfig
	requestCount int

	cache  *replay.Cache
	reader io.Reader
	writer io.Writer
	log    *charmlog.Logger
}

// NewServer creates a server using stdin/stdout for IPC. An empty
// configPath disables reloading and saving.
func NewServer(cfg *config.Config, configPath string) (*Server, error) {
	return NewServerWithIO(cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO is NewServer with explicit streams.
func NewServerWithIO(cfg *config.Config, configPath string, r io.Reader, w io.Writer) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	hash, err := cfg.MatchHash()
	if err != nil {
		return nil, err
	}
	runner, err := match.NewRunner(hash)
	if err != nil {
		return nil, err
	}
	return &Server{
		config:     cfg,
		configPath: configPath,
		runner:     runner,
		hash:       hash,
		cache:      replay.NewCache(cfg.Trace.CacheEntries, cfg.Trace.MaxSteps),
		reader:     r,
		writer:     w,
		log:        logger.New("server"),
	}, nil
}

// Start answers requests until the input stream ends. A request that
// cannot be decoded gets a 400 and the loop moves on to the next one.
func (s *Server) Start() error {
	s.log.Debug("Starting IPC server")
	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	enc := msgpack.NewEncoder(s.writer)

	if err := enc.Encode(StatusResponse{Status: "ready"}); err != nil {
		return fmt.Errorf("writing ready message: %w", err)
	}

	for {
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Input closed, stopping IPC server")
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}

		var req Request
		var resp any
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Warnf("Malformed request: %v", err)
			resp = ErrorResponse{Error: "Invalid msgpack request", Code: http.StatusBadRequest}
		} else {
			resp = s.Handle(req)
		}

		if err := enc.Encode(resp); err != nil {
			s.log.Errorf("Writing response: %v", err)
			return err
		}
	}
}

// Handle dispatches one request and returns the value to encode.
func (s *Server) Handle(req Request) any {
	s.countRequest()
	s.log.Debug("Handling request", "id", req.ID, "action", req.Action)

	switch req.Action {
	case ActionCompare:
		start := time.Now()
		report, err := s.Compare(req.Text, req.Pattern)
		if err != nil {
			return s.errorResponse(req.ID, err)
		}
		return CompareResponse{
			ID:        req.ID,
			Naive:     report.Naive,
			KMP:       report.KMP,
			RabinKarp: report.RabinKarp,
			Agree:     report.Agree(),
			TimeTaken: time.Since(start).Microseconds(),
		}

	case ActionTrace:
		page, err := s.TracePage(req.Algorithm, req.Text, req.Pattern, req.From, req.Count)
		if err != nil {
			return s.errorResponse(req.ID, err)
		}
		return TraceResponse{ID: req.ID, Key: page.Key, Total: page.Total, From: page.From, Steps: page.Steps}

	case ActionConfig:
		hash, dropped, err := s.UpdateHash(req.Variant, req.Base, req.Modulus)
		if err != nil {
			return s.errorResponse(req.ID, err)
		}
		return ConfigResponse{ID: req.ID, Status: "ok", Hash: hash.String(), Invalidated: dropped}

	case ActionHealth:
		return StatusResponse{ID: req.ID, Status: "ok", Cache: s.cache.Stats()}
	}

	return ErrorResponse{ID: req.ID, Error: fmt.Sprintf("Unknown action: %q", req.Action), Code: http.StatusNotFound}
}

// Compare runs all three algorithms after checking the length limits.
func (s *Server) Compare(text, pattern string) (match.Report, error) {
	if err := s.checkLimits(text, pattern); err != nil {
		return match.Report{}, err
	}
	s.mu.RLock()
	runner := s.runner
	s.mu.RUnlock()

	return runner.Compare(text, pattern)
}

// TracePage returns count steps of the named algorithm's trace starting at
// from. A non-positive count means one full page; larger counts are capped
// at the page size.
func (s *Server) TracePage(algorithm, text, pattern string, from, count int) (replay.Page, error) {
	alg, err := match.ParseAlgorithm(algorithm)
	if err != nil {
		return replay.Page{}, err
	}
	if err := s.checkLimits(text, pattern); err != nil {
		return replay.Page{}, err
	}

	s.mu.RLock()
	hash := s.hash
	pageSize := s.config.Trace.PageSize
	s.mu.RUnlock()

	if pageSize > 0 && (count <= 0 || count > pageSize) {
		count = pageSize
	}
	return s.cache.Page(replay.Key{Algorithm: alg, Hash: hash, Text: text, Pattern: pattern}, from, count)
}

// UpdateHash switches the Rabin-Karp hash, persists it and drops the cached
// Rabin-Karp traces. It returns the hash now in effect and the number of
// traces dropped. On error nothing changes.
func (s *Server) UpdateHash(variant *string, base, modulus *int) (match.HashConfig, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.config
	if err := next.UpdateHash(s.configPath, variant, base, modulus); err != nil {
		return s.hash, 0, err
	}
	dropped, err := s.applyConfig(&next)
	if err != nil {
		return s.hash, 0, err
	}
	s.log.Infof("Hash set to %s, dropped %d cached traces", s.hash, dropped)
	return s.hash, dropped, nil
}

// applyConfig swaps in cfg, rebuilding the runner when the hash differs.
// Callers hold s.mu.
func (s *Server) applyConfig(cfg *config.Config) (int, error) {
	hash, err := cfg.MatchHash()
	if err != nil {
		return 0, err
	}
	s.config = cfg
	if hash == s.hash {
		return 0, nil
	}
	runner, err := match.NewRunner(hash)
	if err != nil {
		return 0, err
	}
	s.runner = runner
	s.hash = hash
	return s.cache.InvalidateAlgorithm(match.RabinKarp), nil
}

// countRequest bumps the request counter and reloads the config file every
// reload_every requests.
func (s *Server) countRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requestCount++
	every := s.config.Server.ReloadEvery
	if s.configPath == "" || every <= 0 || s.requestCount%every != 0 {
		return
	}

	s.log.Debugf("Reloading config after %d requests", s.requestCount)
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.log.Warnf("Config reload failed, keeping current settings: %v", err)
		return
	}
	if _, err := s.applyConfig(cfg); err != nil {
		s.log.Warnf("Reloaded config rejected: %v", err)
	}
}

func (s *Server) checkLimits(text, pattern string) error {
	s.mu.RLock()
	limits := s.config.Server
	s.mu.RUnlock()

	if limits.MaxTextLen > 0 && len(text) > limits.MaxTextLen {
		return &LimitError{Field: "text", Len: len(text), Max: limits.MaxTextLen}
	}
	if limits.MaxPatternLen > 0 && len(pattern) > limits.MaxPatternLen {
		return &LimitError{Field: "pattern", Len: len(pattern), Max: limits.MaxPatternLen}
	}
	return nil
}

// Config returns a copy of the config in effect.
func (s *Server) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

func (s *Server) errorResponse(id string, err error) ErrorResponse {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		s.log.Errorf("Request %s failed: %v", id, err)
	} else {
		s.log.Debug("Request rejected", "id", id, "err", err)
	}
	return ErrorResponse{ID: id, Error: err.Error(), Code: code}
}

// statusCode maps an error to the code sent back to clients.
func statusCode(err error) int {
	var le *LimitError
	switch {
	case errors.As(err, &le), errors.Is(err, replay.ErrTraceTooLong):
		return http.StatusRequestEntityTooLarge
	case match.IsInvalidInput(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
