package dispatch

// levenshtein returns the edit distance between a and b, compared by rune.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// suggest returns the registered name closest to name, or "" when nothing is
// within three edits.
func suggest(name string, available []string) string {
	best, bestDist := "", -1
	for _, candidate := range available {
		if d := levenshtein(name, candidate); bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		return best
	}
	return ""
}
