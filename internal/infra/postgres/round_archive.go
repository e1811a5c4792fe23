package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-duel-service/internal/domain"
)

// RoundArchive appends resolved rounds to the rounds table.
type RoundArchive struct {
	pool *pgxpool.Pool
}

func NewRoundArchive(pool *pgxpool.Pool) *RoundArchive {
	return &RoundArchive{pool: pool}
}

func (a *RoundArchive) Save(ctx context.Context, rec domain.RoundRecord) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO rounds (room_code, question, correct_answer, winner, elapsed_ms, published_at, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.RoomCode, rec.Question, rec.CorrectAnswer, rec.Winner,
		rec.Elapsed.Milliseconds(), rec.PublishedAt, rec.ResolvedAt)
	if err != nil {
		return fmt.Errorf("archive round: %w", err)
	}
	return nil
}

// CountRounds returns how many rounds were archived for a room.
func (a *RoundArchive) CountRounds(ctx context.Context, roomCode string) (int, error) {
	var n int
	err := a.pool.QueryRow(ctx, `SELECT count(*) FROM rounds WHERE room_code=$1`, roomCode).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rounds: %w", err)
	}
	return n, nil
}
