// Package grading decides whether a free-text guess satisfies a known-answer
// question. It tolerates small typos (bounded edit distance) and, in fuzzy
// mode, partial phrasing such as answering a full name with just the surname.
// All functions are pure; there is nothing to construct and nothing can fail.
package grading

import (
	"strings"
	"unicode"
)

// Mode selects how lenient the comparison is.
type Mode int

const (
	// ExactOrFuzzyWord accepts an exact match or any single-word overlap
	// between guess and answer. Used for most short-answer trivia.
	ExactOrFuzzyWord Mode = iota
	// FullStringOnly compares whole strings only. Used where word overlap
	// would be too lenient, e.g. identifying a person from an image.
	FullStringOnly
)

// Outcome is the grading verdict for one guess.
type Outcome string

const (
	// Correct means the guess satisfies the answer.
	Correct Outcome = "correct"
	// TooClose means the guess is within two edits of the answer; callers
	// should prompt a retry without consuming the attempt.
	TooClose Outcome = "tooClose"
	// Incorrect means the guess is wrong.
	Incorrect Outcome = "incorrect"
)

// Result carries the verdict plus the edit distance that produced it. The
// distance is diagnostic only; nothing persists a Result.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	Distance int     `json:"distance"`
}

// tooCloseMax bounds the typo tolerance for the TooClose verdict.
const tooCloseMax = 2

// Grade compares guess against the canonical answer under mode. Comparisons
// are case-insensitive and any run of whitespace separates words. An empty
// guess is never Correct or TooClose.
func Grade(guess, canonicalAnswer string, mode Mode) Result {
	return grade(guess, canonicalAnswer, mode, false)
}

// GradeNormalized is the institution-name variant of Grade: before any
// comparison, every token of both strings is stripped of non-alphanumeric
// runes and a trailing "st"/"st." token is expanded to "state", so that
// "Florida St" matches "Florida State".
func GradeNormalized(guess, canonicalAnswer string, mode Mode) Result {
	return grade(guess, canonicalAnswer, mode, true)
}

func grade(guess, canonicalAnswer string, mode Mode, expandAbbrev bool) Result {
	g := normalize(guess)
	a := normalize(canonicalAnswer)
	if expandAbbrev {
		g = expandTokens(g)
		a = expandTokens(a)
	}

	if g != "" && g == a {
		return Result{Outcome: Correct}
	}

	if mode == ExactOrFuzzyWord && g != "" && wordsOverlap(g, a) {
		return Result{Outcome: Correct}
	}

	d := Distance(g, a)
	if g != "" && d <= tooCloseMax {
		return Result{Outcome: TooClose, Distance: d}
	}
	return Result{Outcome: Incorrect, Distance: d}
}

// normalize lowercases and collapses every whitespace run to one space, so
// spacing quirks never count as edits.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// wordsOverlap reports whether any guess token equals any answer token. The
// check is bidirectional by construction, so a surname guess matches a
// "first last" answer and vice versa.
func wordsOverlap(guess, answer string) bool {
	answerWords := strings.Fields(answer)
	for _, gw := range strings.Fields(guess) {
		for _, aw := range answerWords {
			if gw == aw {
				return true
			}
		}
	}
	return false
}

// expandTokens rewrites each whitespace-separated token: non-alphanumeric
// runes are dropped, then "st" becomes "state". Input is already lowercased.
func expandTokens(s string) string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		token := stripNonAlnum(f)
		if token == "" {
			continue
		}
		if token == "st" {
			token = "state"
		}
		out = append(out, token)
	}
	return strings.Join(out, " ")
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
