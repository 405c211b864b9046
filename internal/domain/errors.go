package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session ID is unknown.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionFinished is returned on actions against a finished session.
	ErrSessionFinished = errors.New("game session already finished")
	// ErrUnknownGameMode indicates an unrecognized game mode key.
	ErrUnknownGameMode = errors.New("unknown game mode")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionAnswered indicates the question was already consumed.
	ErrQuestionAnswered = errors.New("question already answered")
	// ErrEmptyGuess is returned when a blank guess reaches submission.
	ErrEmptyGuess = errors.New("guess must not be empty")
	// ErrSummaryNotFound indicates no average has been recorded yet.
	ErrSummaryNotFound = errors.New("average summary not found")
)
