package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bastiangx/seekbench/internal/utils"
	"github.com/bastiangx/seekbench/pkg/match"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// maxMatchesWidth bounds the match list column.
const maxMatchesWidth = 48

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"})

	stateColors = map[match.StateTag]lipgloss.AdaptiveColor{
		match.StateMatch:        {Light: "#286983", Dark: "#9ccfd8"},
		match.StateHashMatch:    {Light: "#286983", Dark: "#9ccfd8"},
		match.StateMismatch:     {Light: "#b4637a", Dark: "#eb6f92"},
		match.StateHashMismatch: {Light: "#b4637a", Dark: "#eb6f92"},
		match.StateShift:        {Light: "#ea9d34", Dark: "#f6c177"},
		match.StateFound:        {Light: "#56949f", Dark: "#31748f"},
	}
)

// renderReport prints one row per algorithm.
func renderReport(r match.Report) string {
	rows := make([][]string, 0, len(match.Algorithms))
	for _, alg := range match.Algorithms {
		res := r.Get(alg)
		rows = append(rows, []string{
			alg.String(),
			strconv.Itoa(len(res.Matches)),
			formatMatches(res.Matches),
			utils.FormatWithCommas(res.Ops),
			utils.FormatMicros(res.ElapsedMicros),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ALGORITHM", "COUNT", "MATCHES", "OPS", "TIME").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// renderTrace prints steps with the characters under comparison.
func renderTrace(steps []match.Step, text, pattern string) string {
	rows := make([][]string, 0, len(steps))
	for i, s := range steps {
		rows = append(rows, []string{
			strconv.Itoa(i),
			string(s.State),
			index(s.TextIndex),
			index(s.PatternIndex),
			compared(s, text, pattern),
			strconv.Itoa(s.Ops),
			formatAux(s.Aux),
			s.Message,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "STATE", "T", "P", "CHARS", "OPS", "AUX", "MESSAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row < len(steps) {
				if c, ok := stateColors[steps[row].State]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})
	return t.Render()
}

func index(i int) string {
	if i < 0 {
		return "-"
	}
	return strconv.Itoa(i)
}

// compared shows text[ti] against pattern[pi] when both indices are valid.
func compared(s match.Step, text, pattern string) string {
	ti, pi := s.TextIndex, s.PatternIndex
	if ti < 0 || ti >= len(text) || pi < 0 || pi >= len(pattern) {
		return ""
	}
	return utils.VisibleByte(text[ti]) + "/" + utils.VisibleByte(pattern[pi])
}

func formatAux(a *match.Aux) string {
	switch {
	case a == nil:
		return ""
	case a.Hashes != nil:
		return fmt.Sprintf("p=%d w=%d", a.Hashes.Pattern, a.Hashes.Window)
	case a.LPS != nil:
		return utils.Truncate(formatInts(a.LPS), maxMatchesWidth)
	}
	return ""
}

func formatMatches(ms []int) string {
	if len(ms) == 0 {
		return "-"
	}
	return utils.Truncate(formatInts(ms), maxMatchesWidth)
}

func formatInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
