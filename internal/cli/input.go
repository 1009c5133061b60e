// Package cli runs the matchers from the terminal, for DBG and for comparing
// algorithms by hand.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/seekbench/pkg/config"
	"github.com/bastiangx/seekbench/pkg/match"
	"github.com/charmbracelet/log"
)

// InputHandler reads (text, pattern) pairs from stdin and prints the
// comparison table, plus an optional trace of one algorithm.
type InputHandler struct {
	runner        *match.Runner
	hash          match.HashConfig
	algorithm     match.Algorithm
	showTrace     bool
	maxTraceRows  int
	maxTextLen    int
	maxPatternLen int
	requestCount  int

	in  io.Reader
	out io.Writer
}

// NewInputHandler builds a handler from the [cli], [hash] and [server]
// config sections.
func NewInputHandler(cfg *config.Config) (*InputHandler, error) {
	hash, err := cfg.MatchHash()
	if err != nil {
		return nil, err
	}
	runner, err := match.NewRunner(hash)
	if err != nil {
		return nil, err
	}
	alg, err := match.ParseAlgorithm(cfg.CLI.DefaultAlgorithm)
	if err != nil {
		log.Warnf("Unknown default_algorithm %q, tracing kmp", cfg.CLI.DefaultAlgorithm)
		alg = match.KMP
	}
	return &InputHandler{
		runner:        runner,
		hash:          hash,
		algorithm:     alg,
		showTrace:     cfg.CLI.ShowTrace,
		maxTraceRows:  cfg.CLI.MaxTraceRows,
		maxTextLen:    cfg.Server.MaxTextLen,
		maxPatternLen: cfg.Server.MaxPatternLen,
		in:            os.Stdin,
		out:           os.Stdout,
	}, nil
}

// SetTrace selects the algorithm whose trace is printed after each table.
func (h *InputHandler) SetTrace(alg match.Algorithm, show bool) {
	h.algorithm = alg
	h.showTrace = show
}

// SetIO replaces stdin and stdout.
func (h *InputHandler) SetIO(in io.Reader, out io.Writer) {
	h.in = in
	h.out = out
}

// Start begins the interface loop.
// It prompts for a text, then a pattern, and prints the results. An empty
// text line re-prompts. The loop ends cleanly when stdin is closed.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, "seekbench CLI [BETA]")
	fmt.Fprintln(h.out, "enter a text, then a pattern (Ctrl+C to exit):")
	reader := bufio.NewReader(h.in)

	for {
		text, err := prompt(h.out, reader, "text> ")
		if err != nil {
			return eofIsDone(err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pattern, err := prompt(h.out, reader, "pattern> ")
		if err != nil {
			return eofIsDone(err)
		}
		if err := h.RunOnce(text, pattern); err != nil {
			log.Error(err)
		}
	}
}

// RunOnce compares the three algorithms over one input and prints the table.
func (h *InputHandler) RunOnce(text, pattern string) error {
	h.requestCount++

	if h.maxTextLen > 0 && len(text) > h.maxTextLen {
		return fmt.Errorf("text too long: %d bytes (max %d)", len(text), h.maxTextLen)
	}
	if h.maxPatternLen > 0 && len(pattern) > h.maxPatternLen {
		return fmt.Errorf("pattern too long: %d bytes (max %d)", len(pattern), h.maxPatternLen)
	}

	start := time.Now()
	log.Debug("Processing request", "n", len(text), "m", len(pattern), "hash", h.hash)
	report, err := h.runner.Compare(text, pattern)
	if err != nil {
		return err
	}
	log.Debugf("Took [ %v ] for request #%d", time.Since(start), h.requestCount)

	fmt.Fprintln(h.out, renderReport(report))
	if !report.Agree() {
		log.Warn("Algorithms disagree on the match positions")
	}

	if !h.showTrace {
		return nil
	}
	tr, err := match.Trace(h.algorithm, h.hash, text, pattern)
	if err != nil {
		return err
	}
	steps, complete := tr.CollectN(h.rowLimit())
	rest := 0
	if !complete {
		for range tr.All() {
			rest++
		}
	}
	fmt.Fprintf(h.out, "%s trace (%s)\n", h.algorithm, describeHash(h.algorithm, h.hash))
	fmt.Fprintln(h.out, renderTrace(steps, text, pattern))
	if rest > 0 {
		fmt.Fprintf(h.out, "... %d more steps\n", rest)
	}
	return nil
}

func (h *InputHandler) rowLimit() int {
	if h.maxTraceRows <= 0 {
		return 64
	}
	return h.maxTraceRows
}

func describeHash(alg match.Algorithm, hash match.HashConfig) string {
	if alg != match.RabinKarp {
		return "no hash"
	}
	return hash.String()
}

// prompt writes p and reads one line without its line ending. Whitespace
// inside the line is kept, patterns may contain spaces.
func prompt(out io.Writer, r *bufio.Reader, p string) (string, error) {
	fmt.Fprint(out, p)
	line, err := r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func eofIsDone(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
