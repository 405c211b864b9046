package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"the-pub/internal/app"
	"the-pub/internal/domain"
)

// QuestionLoader fetches a game mode's full question bank from a backing
// store (e.g., document DB).
type QuestionLoader interface {
	LoadBank(ctx context.Context, gameMode string) (domain.QuestionBank, error)
}

// QuestionRepository serves the deterministic daily pick for each game mode,
// caching it with TTL to avoid repeated bank loads.
type QuestionRepository struct {
	loader   QuestionLoader
	ttl      time.Duration
	pickSize int
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPick
}

type cachedPick struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration, pickSize int) *QuestionRepository {
	return &QuestionRepository{
		loader:   loader,
		ttl:      ttl,
		pickSize: pickSize,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:    make(map[string]cachedPick),
	}
}

func (r *QuestionRepository) DailyQuestions(ctx context.Context, gameMode string) ([]domain.Question, error) {
	now := r.clock()
	key := gameMode + "|" + app.DayKey(now)

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		bank, err := r.loader.LoadBank(ctx, gameMode)
		if err != nil {
			return nil, err
		}
		picked := app.DailyPick(gameMode, now, bank.Questions, r.pickSize)

		r.mu.Lock()
		r.cache[key] = cachedPick{
			questions: picked,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return picked, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader is a simple loader backed by an in-memory map
// (useful for tests/demos).
type StaticQuestionLoader struct {
	banks map[string]domain.QuestionBank
}

func NewStaticQuestionLoader(banks map[string]domain.QuestionBank) *StaticQuestionLoader {
	return &StaticQuestionLoader{banks: banks}
}

func (l *StaticQuestionLoader) LoadBank(_ context.Context, gameMode string) (domain.QuestionBank, error) {
	if bank, ok := l.banks[gameMode]; ok {
		return bank, nil
	}
	return domain.QuestionBank{}, domain.ErrBankNotFound
}
