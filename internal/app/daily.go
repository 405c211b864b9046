package app

import (
	"hash/fnv"
	"math/rand"
	"time"

	"the-pub/internal/domain"
)

// DayKey formats the UTC date used to partition daily question sets.
func DayKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}

// DailyPick selects the day's question subset for a game mode. The shuffle
// is seeded from (gameMode, UTC date), so every player sees the same set on
// a given day regardless of which instance or cache served them.
func DailyPick(gameMode string, day time.Time, questions []domain.Question, size int) []domain.Question {
	h := fnv.New64a()
	h.Write([]byte(gameMode + "|" + DayKey(day)))
	rnd := rand.New(rand.NewSource(int64(h.Sum64())))

	picked := make([]domain.Question, len(questions))
	copy(picked, questions)
	rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	if size <= 0 || size >= len(picked) {
		return picked
	}
	return picked[:size]
}
