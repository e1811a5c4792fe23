package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-duel-service/internal/domain"
	"quiz-duel-service/internal/infra/memory"
)

func TestQuestionBankCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader(map[string]domain.Question{
			"planets": sampleQuestion(),
		}),
	}
	bank := NewQuestionBank(newClient(mr), loader, time.Minute)

	q, err := bank.GetQuestion(context.Background(), "planets")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:question:planets") {
		t.Fatalf("expected question hash in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := bank.GetQuestion(context.Background(), "planets")
	if err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Prompt != q.Prompt || cached.CorrectKey != "b" || cached.Options == nil || cached.Options.B != "Mars" {
		t.Fatalf("cached question differs: %+v", cached)
	}
}

func TestQuestionBankFreeTextRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	bank := NewQuestionBank(newClient(mr), memory.NewStaticQuestionLoader(map[string]domain.Question{
		"capital": {ID: "capital", Prompt: "Capital of Italy?", Answer: "Rome"},
	}), time.Minute)

	_, _ = bank.GetQuestion(context.Background(), "capital")
	q, err := bank.GetQuestion(context.Background(), "capital")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.Options != nil || q.Answer != "Rome" {
		t.Fatalf("expected free-text question, got %+v", q)
	}
}

func TestQuestionBankMissingQuestion(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	bank := NewQuestionBank(newClient(mr), memory.NewStaticQuestionLoader(nil), time.Minute)
	if _, err := bank.GetQuestion(context.Background(), "nope"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if mr.Exists("quiz:question:nope") {
		t.Fatalf("expected nothing cached for a missing question")
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestion(ctx context.Context, id string) (domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestion(ctx, id)
}

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:     "planets",
		Prompt: "Which planet is known as the red planet?",
		Options: &domain.Options{
			A: "Venus",
			B: "Mars",
			C: "Jupiter",
			D: "Mercury",
		},
		CorrectKey: "b",
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
