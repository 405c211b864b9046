package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"the-pub/internal/app"
	"the-pub/internal/domain"
)

// QuestionLoader fetches a game mode's full question bank from a backing
// store (e.g., document DB).
type QuestionLoader interface {
	LoadBank(ctx context.Context, gameMode string) (domain.QuestionBank, error)
}

// QuestionRepository caches each day's question pick in Redis and falls back
// to the loader on cache miss. The pick is stored as:
//
//	SET questions:{gameMode}:{YYYY-MM-DD} {json array}
//
// Because the key carries the UTC date and the pick itself is seeded by
// (gameMode, date), every instance that fills the cache writes the same set.
type QuestionRepository struct {
	client   *redis.Client
	loader   QuestionLoader
	ttl      time.Duration
	pickSize int
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration, pickSize int) *QuestionRepository {
	return &QuestionRepository{
		client:   client,
		loader:   loader,
		ttl:      ttl,
		pickSize: pickSize,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) DailyQuestions(ctx context.Context, gameMode string) ([]domain.Question, error) {
	key := r.dailyKey(gameMode, r.clock())

	if questions, ok := r.cached(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.cached(ctx, key); ok {
			return questions, nil
		}

		bank, err := r.loader.LoadBank(ctx, gameMode)
		if err != nil {
			return nil, err
		}
		picked := app.DailyPick(gameMode, r.clock(), bank.Questions, r.pickSize)

		if data, err := json.Marshal(picked); err == nil {
			// Best effort: the pick is deterministic, so a lost write only
			// costs a reload.
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return picked, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (r *QuestionRepository) dailyKey(gameMode string, now time.Time) string {
	return "questions:" + gameMode + ":" + app.DayKey(now)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
