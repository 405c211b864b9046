package domain

import "time"

// Game mode keys. Each mode keeps its own question bank and score partition.
const (
	ModeTrivia       = "trivia"
	ModePlayerGuess  = "player-guess"
	ModeCollegeGuess = "college-guess"
	ModeRideTheBus   = "ride-the-bus"
)

// KnownGameMode reports whether mode names one of the shipped games.
func KnownGameMode(mode string) bool {
	switch mode {
	case ModeTrivia, ModePlayerGuess, ModeCollegeGuess, ModeRideTheBus:
		return true
	}
	return false
}

// Question is one known-answer prompt inside a game mode's bank.
type Question struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
	Points int    `json:"points"` // defaults to 1 if zero
}

// QuestionBank holds every question available for one game mode.
type QuestionBank struct {
	GameMode  string     `json:"gameMode"`
	Questions []Question `json:"questions"`
}

// ScoreRecord captures one finished game session. Records are append-only
// and never mutated after the write.
type ScoreRecord struct {
	UserID         string    `json:"userId"`
	GameMode       string    `json:"gameMode"`
	Score          int       `json:"score"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	PlayedAt       time.Time `json:"playedAt"`
}

// AverageSummary is the derived per-(user, mode) statistics document. It is
// upserted whole on every new record and always reconstructible from the
// full ScoreRecord set.
type AverageSummary struct {
	UserID       string    `json:"userId"`
	GameMode     string    `json:"gameMode"`
	AverageScore float64   `json:"averageScore"`
	GamesPlayed  int       `json:"gamesPlayed"`
	LastUpdated  time.Time `json:"lastUpdated"`
}
