package grading

// Distance returns the Levenshtein edit distance between a and b: the
// minimum number of single-rune insertions, deletions, and substitutions
// needed to turn one into the other. Transpositions are not a distinct
// operation ("ab" -> "ba" costs 2, not 1); the TooClose tolerance in the
// grader depends on that exact definition.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	// Keep the DP row over the shorter string.
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		prevDiag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			sub := prevDiag + cost
			del := row[j] + 1
			ins := row[j-1] + 1

			best := sub
			if del < best {
				best = del
			}
			if ins < best {
				best = ins
			}
			prevDiag = row[j]
			row[j] = best
		}
	}
	return row[len(rb)]
}
