package align

// containmentBoost inflates the overlap score when most of the smaller word
// set is covered by the larger one, so a short utterance that restates a
// claim's core words still matches.
const containmentBoost = 1.2

// Similarity scores word overlap between two normalized texts in [0, 1].
// The base score is the intersection-over-union of the word sets; when the
// smaller set is largely contained in the larger one the coverage ratio,
// boosted and capped at 1.0, takes over.
func Similarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	overlap := 0
	for w := range setA {
		if setB[w] {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}

	union := len(setA) + len(setB) - overlap
	base := float64(overlap) / float64(union)

	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	boosted := float64(overlap) / float64(smaller) * containmentBoost
	if boosted > 1 {
		boosted = 1
	}

	if boosted > base {
		return boosted
	}
	return base
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range splitWords(text) {
		set[w] = true
	}
	return set
}
