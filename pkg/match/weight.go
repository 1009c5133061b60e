package match

// CharWeight maps an ASCII letter to its 1-based position in the alphabet,
// ignoring case. Every other byte weighs 0.
func CharWeight(c byte) int {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 1
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 1
	}
	return 0
}
