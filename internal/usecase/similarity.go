package usecase

import "math"

// similarityRatio computes a normalized similarity score between two strings
// on a 0-100 scale. It uses indel edit distance (substitutions counted as a
// delete plus an insert) normalized by the combined length, matching the
// classic fuzzy-ratio definition. Deterministic and symmetric.
func similarityRatio(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	lensum := len(r1) + len(r2)
	if lensum == 0 {
		return 100
	}

	dist := indelDistance(r1, r2)
	return int(math.Round(100 * float64(lensum-dist) / float64(lensum)))
}

// indelDistance is the edit distance where a substitution costs 2
// (delete + insert). Two-row dynamic programming for space efficiency.
func indelDistance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	n := len(r2)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 2
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution as delete+insert
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
