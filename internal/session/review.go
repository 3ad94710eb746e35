package session

// defaultScore is used when the review text contains no standalone numeric
// score.
const defaultScore = 70

// ExtractScore pulls the overall score out of free-form review text: the
// first standalone run of one to three ASCII digits, where standalone means
// the neighbouring characters are not letters, digits, or underscores. Longer
// digit runs (like years) and digits embedded in identifiers are skipped.
// Returns defaultScore (70) when no such run exists. Never fails.
func ExtractScore(text string) int {
	runes := []rune(text)
	n := len(runes)

	for i := 0; i < n; i++ {
		if !isDigit(runes[i]) {
			continue
		}
		// Left neighbour must be a word boundary.
		if i > 0 && isWordRune(runes[i-1]) {
			// Inside a word (e.g. "v2"); skip the whole digit run.
			for i < n && isDigit(runes[i]) {
				i++
			}
			continue
		}
		j := i
		for j < n && isDigit(runes[j]) {
			j++
		}
		runLen := j - i
		boundedRight := j >= n || !isWordRune(runes[j])
		if runLen <= 3 && boundedRight {
			score := 0
			for _, r := range runes[i:j] {
				score = score*10 + int(r-'0')
			}
			return score
		}
		i = j - 1
	}
	return defaultScore
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isWordRune mirrors regexp \w for the boundary check: ASCII letters, digits,
// and underscore.
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}
