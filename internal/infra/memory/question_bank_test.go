package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"quiz-duel-service/internal/domain"
)

func TestQuestionBankCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string]domain.Question{
			"capital-fr": sampleQuestion(),
		}),
	}
	bank := NewQuestionBank(loader, time.Minute)

	q, err := bank.GetQuestion(context.Background(), "capital-fr")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.Answer != "Paris" {
		t.Fatalf("unexpected question %+v", q)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}

	if _, err := bank.GetQuestion(context.Background(), "capital-fr"); err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
}

func TestQuestionBankExpires(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string]domain.Question{
			"capital-fr": sampleQuestion(),
		}),
	}
	bank := NewQuestionBank(loader, time.Minute)
	now := time.Now()
	bank.clock = func() time.Time { return now }

	if _, err := bank.GetQuestion(context.Background(), "capital-fr"); err != nil {
		t.Fatalf("get question: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := bank.GetQuestion(context.Background(), "capital-fr"); err != nil {
		t.Fatalf("get question after expiry: %v", err)
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls.Load())
	}
}

func TestQuestionBankMissing(t *testing.T) {
	bank := NewQuestionBank(NewStaticQuestionLoader(nil), time.Minute)

	_, err := bank.GetQuestion(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuestionLoader
	calls atomic.Int32
}

func (l *countingLoader) LoadQuestion(ctx context.Context, id string) (domain.Question, error) {
	l.calls.Add(1)
	return l.QuestionLoader.LoadQuestion(ctx, id)
}

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:     "capital-fr",
		Prompt: "What is the capital of France?",
		Answer: "Paris",
	}
}
