package matching

// levenshtein computes the edit distance between two strings using two
// rolling rows, iterating the shorter string in the inner loop.
func levenshtein(a, b string) int {
	aRunes := []rune(a)
	bRunes := []rune(b)
	if len(aRunes) == 0 {
		return len(bRunes)
	}
	if len(bRunes) == 0 {
		return len(aRunes)
	}
	if len(aRunes) > len(bRunes) {
		aRunes, bRunes = bRunes, aRunes
	}

	prev := make([]int, len(aRunes)+1)
	curr := make([]int, len(aRunes)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(bRunes); j++ {
		curr[0] = j
		for i := 1; i <= len(aRunes); i++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}
			curr[i] = min3(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(aRunes)]
}

// Similarity returns a normalized edit-distance score in [0,1]:
// (maxLen - levenshtein(a,b)) / maxLen, with two empty strings scoring 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
