package quiz

// streakThreshold is the number of same-outcome answers that moves the difficulty band.
const streakThreshold = 2

// adjustDifficulty applies the band transition rule after an answer has been scored.
// It returns the new band and the (possibly reset) streak counters.
func adjustDifficulty(current Difficulty, consecutiveCorrect, consecutiveIncorrect int) (Difficulty, int, int) {
	idx := current.rank()
	if idx < 0 {
		return current, consecutiveCorrect, consecutiveIncorrect
	}

	if consecutiveCorrect >= streakThreshold && idx < len(difficultyOrder)-1 {
		return difficultyOrder[idx+1], 0, consecutiveIncorrect
	}
	if consecutiveIncorrect >= streakThreshold && idx > 0 {
		return difficultyOrder[idx-1], consecutiveCorrect, 0
	}
	return current, consecutiveCorrect, consecutiveIncorrect
}

// selectNext picks the index of the next question to present, or -1 when every question is answered.
// Ties resolve to the first match in slice order, so the shuffle supplies the randomness.
func selectNext(questions []Question, answered map[string]bool, current Difficulty) int {
	find := func(match func(Question) bool) int {
		for i, q := range questions {
			if !answered[q.ID] && match(q) {
				return i
			}
		}
		return -1
	}

	if idx := find(func(q Question) bool { return q.Difficulty == current }); idx >= 0 {
		return idx
	}
	for _, d := range difficultyOrder {
		if idx := find(func(q Question) bool { return q.Difficulty == d }); idx >= 0 {
			return idx
		}
	}
	return find(func(Question) bool { return true })
}
