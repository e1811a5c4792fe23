package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quiz-duel-service/internal/domain"
)

// DefaultArchiveBuffer is the number of resolved rounds queued before records are dropped.
const DefaultArchiveBuffer = 64

// RoundArchive stores resolved rounds (Postgres, etc).
type RoundArchive interface {
	Save(ctx context.Context, record domain.RoundRecord) error
}

// NopArchive discards every record.
type NopArchive struct{}

func (NopArchive) Save(context.Context, domain.RoundRecord) error { return nil }

// Recorder moves round records off the coordinator goroutine so slow archive
// writes never happen inside the serialized section.
type Recorder struct {
	archive RoundArchive
	queue   chan domain.RoundRecord
	logger  zerolog.Logger
}

func NewRecorder(archive RoundArchive, buffer int) *Recorder {
	if archive == nil {
		archive = NopArchive{}
	}
	if buffer <= 0 {
		buffer = DefaultArchiveBuffer
	}
	return &Recorder{
		archive: archive,
		queue:   make(chan domain.RoundRecord, buffer),
		logger:  log.With().Str("module", "app.recorder").Logger(),
	}
}

// Enqueue never blocks; it reports false when the record had to be dropped.
func (r *Recorder) Enqueue(record domain.RoundRecord) bool {
	select {
	case r.queue <- record:
		return true
	default:
		r.logger.Warn().Str("room", record.RoomCode).Msg("archive queue full, round record dropped")
		return false
	}
}

// Run saves queued records until ctx is canceled, then flushes what is already buffered.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case rec := <-r.queue:
			r.save(ctx, rec)
		case <-ctx.Done():
			r.flush()
			return nil
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case rec := <-r.queue:
			r.save(ctx, rec)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, rec domain.RoundRecord) {
	if err := r.archive.Save(ctx, rec); err != nil {
		r.logger.Error().Err(err).Str("room", rec.RoomCode).Msg("archive round")
	}
}
