package match

// BuildLPS computes the longest-proper-prefix-which-is-also-suffix table of
// pattern. lps[i] is the length of the longest proper prefix of pattern[:i+1]
// that is also a suffix of it, so lps[0] == 0 and lps[i] <= i.
//
// ops counts one comparison of pattern[i] against pattern[length] per loop
// iteration, including the iterations that only fall back.
func BuildLPS(pattern string) (lps []int, ops int) {
	m := len(pattern)
	lps = make([]int, m)
	length := 0
	for i := 1; i < m; {
		ops++
		switch {
		case pattern[i] == pattern[length]:
			length++
			lps[i] = length
			i++
		case length != 0:
			// no write and no advance: retry i against a shorter border
			length = lps[length-1]
		default:
			lps[i] = 0
			i++
		}
	}
	return lps, ops
}
