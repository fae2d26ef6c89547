package normalization

// SimilarityRatio measures how alike two strings are as a value in [0, 1].
// It is the classic sequence-matcher ratio: 2*M/T where M is the total
// length of matching blocks and T the combined length of both inputs.
func SimilarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	matched := matchingBlocksLen([]rune(a), []rune(b))
	return 2.0 * float64(matched) / float64(len([]rune(a))+len([]rune(b)))
}

// matchingBlocksLen sums the lengths of matching blocks found by
// recursively taking the longest common substring and matching the
// pieces to its left and right.
func matchingBlocksLen(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlocksLen(a[:ai], b[:bi])
	total += matchingBlocksLen(a[ai+size:], b[bi+size:])
	return total
}

func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	// j2len[j] holds the length of the match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := range a {
		next := make(map[int]int)
		for j := range b {
			if a[i] == b[j] {
				k := j2len[j-1] + 1
				next[j] = k
				if k > bestSize {
					bestA = i - k + 1
					bestB = j - k + 1
					bestSize = k
				}
			}
		}
		j2len = next
	}
	return bestA, bestB, bestSize
}
