package chunk

// DefaultMaxLen is the per-message ceiling of the chat transport.
const DefaultMaxLen = 4000

// Split cuts text into consecutive segments of at most maxLen runes, in order
// and without overlap. Words may be cut; UTF-8 sequences never are.
func Split(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}
	out := make([]string, 0, (len(runes)+maxLen-1)/maxLen)
	for start := 0; start < len(runes); start += maxLen {
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
