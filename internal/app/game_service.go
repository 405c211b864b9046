package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"the-pub/internal/domain"
	"the-pub/internal/grading"
)

// QuestionRepository serves the day's question set for a game mode
// (from cache/backing store).
type QuestionRepository interface {
	DailyQuestions(ctx context.Context, gameMode string) ([]domain.Question, error)
}

// GameService runs game sessions: it hands out the daily questions, grades
// guesses, and on finish turns the session into a score record.
type GameService struct {
	questions QuestionRepository
	scores    *ScoreService
	now       func() time.Time
	newID     func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewGameService(questions QuestionRepository, scores *ScoreService) *GameService {
	return NewGameServiceWithClock(questions, scores, time.Now)
}

// NewGameServiceWithClock allows deterministic timestamps in tests.
func NewGameServiceWithClock(questions QuestionRepository, scores *ScoreService, now func() time.Time) *GameService {
	return &GameService{
		questions: questions,
		scores:    scores,
		now:       now,
		newID:     uuid.NewString,
		sessions:  make(map[string]*Session),
	}
}

// Start opens a session for one player in the given game mode. Players
// cannot start sessions for unknown modes or modes whose bank fails to load.
func (s *GameService) Start(ctx context.Context, gameMode string, identity domain.Identity) (*Session, error) {
	if !domain.KnownGameMode(gameMode) {
		return nil, domain.ErrUnknownGameMode
	}
	questions, err := s.questions.DailyQuestions(ctx, gameMode)
	if err != nil {
		return nil, err
	}

	session := newSession(s.newID(), gameMode, identity, questions, s.now)
	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()
	return session, nil
}

// Session looks up an open session by ID.
func (s *GameService) Session(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// SubmitGuess grades one guess. It returns the grading result, the points
// awarded for this guess, and the session's running total.
func (s *GameService) SubmitGuess(_ context.Context, sessionID, questionID, guess string) (grading.Result, int, int, error) {
	session, ok := s.Session(sessionID)
	if !ok {
		return grading.Result{}, 0, 0, domain.ErrSessionNotFound
	}
	return session.submitGuess(questionID, guess)
}

// Finish closes the session and records its score. The player's own score
// record is always returned; the refreshed average summary is nil when the
// persistence cycle failed (score history is best-effort, never blocking).
func (s *GameService) Finish(ctx context.Context, sessionID string) (domain.ScoreRecord, *domain.AverageSummary, error) {
	session, ok := s.Session(sessionID)
	if !ok {
		return domain.ScoreRecord{}, nil, domain.ErrSessionNotFound
	}
	record, err := session.finish()
	if err != nil {
		return domain.ScoreRecord{}, nil, err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	summary := s.scores.Record(ctx, record)
	return record, summary, nil
}

// Abandon drops a session without recording a score, e.g. when the player
// disconnects mid-game.
func (s *GameService) Abandon(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Session is one player's playthrough of a game mode.
type Session struct {
	id        string
	gameMode  string
	identity  domain.Identity
	gradeMode grading.Mode
	normalize bool
	startedAt time.Time
	now       func() time.Time

	mu        sync.Mutex
	questions []domain.Question
	answered  map[string]bool
	score     int
	finished  bool
}

func newSession(id, gameMode string, identity domain.Identity, questions []domain.Question, now func() time.Time) *Session {
	gradeMode, normalize := gradingFor(gameMode)
	return &Session{
		id:        id,
		gameMode:  gameMode,
		identity:  identity,
		gradeMode: gradeMode,
		normalize: normalize,
		startedAt: now(),
		now:       now,
		questions: questions,
		answered:  make(map[string]bool),
	}
}

// gradingFor maps a game mode to its comparison rules. College guessing
// matches institution names, so it gets the strict mode plus abbreviation
// normalization ("Fla St" style answers); the rest take fuzzy word matching.
func gradingFor(gameMode string) (grading.Mode, bool) {
	if gameMode == domain.ModeCollegeGuess {
		return grading.FullStringOnly, true
	}
	return grading.ExactOrFuzzyWord, false
}

func (s *Session) ID() string                { return s.id }
func (s *Session) GameMode() string          { return s.gameMode }
func (s *Session) Identity() domain.Identity { return s.identity }

// Questions returns a copy of the session's question set.
func (s *Session) Questions() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Score returns the running total.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) submitGuess(questionID, guess string) (grading.Result, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return grading.Result{}, 0, 0, domain.ErrSessionFinished
	}

	var question *domain.Question
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			question = &s.questions[i]
			break
		}
	}
	if question == nil {
		return grading.Result{}, 0, 0, domain.ErrQuestionNotFound
	}
	if s.answered[questionID] {
		return grading.Result{}, 0, 0, domain.ErrQuestionAnswered
	}
	// The grader itself only weakly discourages empty strings; reject them
	// here so a blank submit never reaches grading.
	if strings.TrimSpace(guess) == "" {
		return grading.Result{}, 0, 0, domain.ErrEmptyGuess
	}

	var result grading.Result
	if s.normalize {
		result = grading.GradeNormalized(guess, question.Answer, s.gradeMode)
	} else {
		result = grading.Grade(guess, question.Answer, s.gradeMode)
	}

	awarded := 0
	switch result.Outcome {
	case grading.Correct:
		awarded = question.Points
		if awarded == 0 {
			awarded = 1
		}
		s.score += awarded
		s.answered[questionID] = true
	case grading.Incorrect:
		s.answered[questionID] = true
	case grading.TooClose:
		// Attempt not consumed; the player retries the same question.
	}
	return result, awarded, s.score, nil
}

// finish seals the session and produces its score record.
func (s *Session) finish() (domain.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return domain.ScoreRecord{}, domain.ErrSessionFinished
	}
	s.finished = true

	now := s.now()
	return domain.ScoreRecord{
		UserID:         s.identity.UserID,
		GameMode:       s.gameMode,
		Score:          s.score,
		ElapsedSeconds: int(now.Sub(s.startedAt) / time.Second),
		PlayedAt:       now,
	}, nil
}
