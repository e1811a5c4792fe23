package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-duel-service/internal/domain"
	"quiz-duel-service/internal/infra/memory"
)

// QuestionBank caches stored questions in Redis (hash per question) and falls back to a
// loader on cache miss.
// Layout: HSET quiz:question:{id} prompt .. answer .. correctKey .. a .. b .. c .. d ..
type QuestionBank struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	key := b.key(id)

	fields, err := b.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return questionFromHash(id, fields), nil
	}

	result, err, _ := b.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := b.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return questionFromHash(id, fields), nil
		}

		q, err := b.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		ttl := b.ttlWithJitter()
		pipe := b.client.Pipeline()
		pipe.HSet(ctx, key, questionToHash(q))
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (b *QuestionBank) key(id string) string {
	return "quiz:question:" + id
}

func questionToHash(q domain.Question) map[string]interface{} {
	fields := map[string]interface{}{
		"prompt":     q.Prompt,
		"answer":     q.Answer,
		"correctKey": q.CorrectKey,
	}
	if q.Options != nil {
		fields["a"] = q.Options.A
		fields["b"] = q.Options.B
		fields["c"] = q.Options.C
		fields["d"] = q.Options.D
	}
	return fields
}

func questionFromHash(id string, fields map[string]string) domain.Question {
	q := domain.Question{
		ID:         id,
		Prompt:     fields["prompt"],
		Answer:     fields["answer"],
		CorrectKey: fields["correctKey"],
	}
	if _, ok := fields["a"]; ok {
		q.Options = &domain.Options{
			A: fields["a"],
			B: fields["b"],
			C: fields["c"],
			D: fields["d"],
		}
	}
	return q
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
