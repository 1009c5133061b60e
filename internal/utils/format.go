package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatWithCommas renders n with thousands separators: 1234567 -> "1,234,567".
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte(s[i])
	}
	return sign + sb.String()
}

// FormatMicros renders a microsecond duration with a unit suited to its size.
func FormatMicros(us float64) string {
	switch {
	case us < 1:
		return fmt.Sprintf("%.0fns", us*1e3)
	case us < 1e3:
		return fmt.Sprintf("%.2fµs", us)
	case us < 1e6:
		return fmt.Sprintf("%.2fms", us/1e3)
	default:
		return fmt.Sprintf("%.2fs", us/1e6)
	}
}

// VisibleByte renders a single byte so that whitespace and control bytes
// stay one readable cell wide in terminal output.
func VisibleByte(c byte) string {
	switch {
	case c == ' ':
		return "·"
	case c == '\t':
		return "→"
	case c == '\n':
		return "↵"
	case c < 0x20 || c == 0x7f:
		return "?"
	case c >= 0x80:
		return "¤"
	}
	return string(c)
}

// Truncate shortens s to at most n bytes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
