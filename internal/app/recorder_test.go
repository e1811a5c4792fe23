package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quiz-duel-service/internal/domain"
)

type memoryArchive struct {
	mu      sync.Mutex
	records []domain.RoundRecord
	fail    bool
}

func (a *memoryArchive) Save(_ context.Context, rec domain.RoundRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("archive down")
	}
	a.records = append(a.records, rec)
	return nil
}

func (a *memoryArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

func TestRecorderSavesQueuedRecords(t *testing.T) {
	archive := &memoryArchive{}
	rec := NewRecorder(archive, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = rec.Run(ctx)
		close(done)
	}()

	assert.True(t, rec.Enqueue(domain.RoundRecord{RoomCode: "AAAAAA"}))
	assert.True(t, rec.Enqueue(domain.RoundRecord{RoomCode: "BBBBBB"}))
	assert.Eventually(t, func() bool { return archive.count() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRecorderDropsWhenFullAndFlushesOnStop(t *testing.T) {
	archive := &memoryArchive{}
	rec := NewRecorder(archive, 2)

	assert.True(t, rec.Enqueue(domain.RoundRecord{RoomCode: "A"}))
	assert.True(t, rec.Enqueue(domain.RoundRecord{RoomCode: "B"}))
	assert.False(t, rec.Enqueue(domain.RoundRecord{RoomCode: "C"}), "queue is full without a consumer")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, rec.Run(ctx))
	assert.Equal(t, 2, archive.count())
}

func TestRecorderSurvivesArchiveErrors(t *testing.T) {
	archive := &memoryArchive{fail: true}
	rec := NewRecorder(archive, 2)
	rec.Enqueue(domain.RoundRecord{RoomCode: "A"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, rec.Run(ctx))
	assert.Zero(t, archive.count())
}
