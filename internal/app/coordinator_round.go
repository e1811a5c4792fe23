package app

import (
	"quiz-duel-service/internal/domain"
)

// rankingSnapshotSize is how many entries round-ended carries.
const rankingSnapshotSize = 5

func (c *Coordinator) publishQuestion(connID string, in domain.QuestionInput) ([]domain.Outbound, error) {
	_, room, err := c.ownership(connID)
	if err != nil {
		return nil, err
	}
	question, answer, err := ValidateQuestion(in)
	if err != nil {
		return nil, err
	}

	room.Round.Publish(question, answer, c.now())

	c.logger.Info().Str("room", room.Code).Str("mode", string(answer.Mode)).Msg("question published")
	return []domain.Outbound{
		domain.Multicast(room, domain.EventQuestionPublished, room.Round.Public()),
		domain.Multicast(room, domain.EventRoundStarted, struct{}{}),
	}, nil
}

// submitAnswer resolves the race: the first correct answer observed while the round is
// Active wins, everything after it finds the round Resolved.
func (c *Coordinator) submitAnswer(connID, answer string) ([]domain.Outbound, error) {
	p, ok := c.roster.Get(connID)
	if !ok {
		return nil, domain.ErrUnidentified
	}
	if p.Role.IsOwner() {
		return nil, domain.ErrOwnerCannotAnswer
	}
	room, err := c.rooms.Lookup(p.RoomCode)
	if err != nil {
		return nil, err
	}
	if !room.Round.IsActive() {
		return nil, domain.ErrRoundNotActive
	}
	answer, err = ValidateAnswer(answer)
	if err != nil {
		return nil, err
	}

	if !room.Round.Matches(answer) {
		c.logger.Debug().Str("room", room.Code).Str("player", p.Name).Msg("incorrect answer")
		return []domain.Outbound{
			domain.Unicast(connID, domain.EventAnswerIncorrect, domain.AnswerIncorrectPayload{SubmittedText: answer}),
			domain.Unicast(room.OwnerID, domain.EventAnswerAttempt, domain.AnswerAttemptPayload{Name: p.Name, At: c.now()}),
		}, nil
	}

	if !room.Round.TryResolve(p.Name, c.now()) {
		// Lost the race: not scored, no reply.
		return nil, nil
	}
	winner, _ := c.roster.IncrementScore(connID)

	ranking := c.roster.Ranking(room.Code)
	if len(ranking) > rankingSnapshotSize {
		ranking = ranking[:rankingSnapshotSize]
	}
	round := room.Round
	c.archive(room.Code, round)

	c.logger.Info().Str("room", room.Code).Str("winner", p.Name).Dur("elapsed", round.Elapsed()).Msg("round resolved")
	return []domain.Outbound{
		domain.Multicast(room, domain.EventRoundEnded, domain.RoundEndedPayload{
			Winner:        p.Name,
			CorrectAnswer: round.Answer.Display,
			Question:      round.Question,
			ElapsedMs:     round.Elapsed().Milliseconds(),
			Ranking:       ranking,
		}),
		domain.Unicast(connID, domain.EventAnswerCorrect, domain.AnswerCorrectPayload{
			Score:        winner.Score,
			CorrectCount: winner.CorrectCount,
		}),
	}, nil
}

func (c *Coordinator) resetRound(connID string) ([]domain.Outbound, error) {
	owner, room, err := c.ownership(connID)
	if err != nil {
		return nil, err
	}
	room.Round.Reset()
	n := c.roster.ResetStats(room.Code)

	c.logger.Info().Str("room", room.Code).Str("owner", owner.Name).Int("players", n).Msg("game reset")
	return []domain.Outbound{
		domain.Multicast(room, domain.EventGameReset, struct{}{}),
	}, nil
}

func (c *Coordinator) ranking(connID string) ([]domain.Outbound, error) {
	p, room, err := c.membership(connID)
	if err != nil {
		return nil, err
	}
	ranking := c.roster.Ranking(room.Code)
	return []domain.Outbound{
		domain.Unicast(connID, domain.EventRankingUpdated, domain.RankingPayload{
			Ranking:  ranking,
			Position: c.roster.Position(room.Code, p.ConnID),
			Total:    len(ranking),
		}),
	}, nil
}

func (c *Coordinator) report(connID string, in domain.ReportInput) ([]domain.Outbound, error) {
	p, room, err := c.membership(connID)
	if err != nil {
		return nil, err
	}
	if p.Role.IsOwner() {
		return nil, domain.ErrNoPermission
	}
	reason := Sanitize(in.Reason)
	if reason == "" {
		reason = "unspecified"
	}

	c.logger.Info().Str("room", room.Code).Str("player", p.Name).Str("reason", reason).Msg("report sent")
	return []domain.Outbound{
		domain.Unicast(room.OwnerID, domain.EventReportReceived, domain.ReportReceivedPayload{
			ReportedBy: p.Name,
			Reason:     reason,
			Details:    Sanitize(in.Details),
			At:         c.now(),
		}),
		domain.Unicast(connID, domain.EventReportSent, struct{}{}),
	}, nil
}

func (c *Coordinator) archive(code string, round domain.Round) {
	if c.archiver == nil {
		return
	}
	c.archiver.Enqueue(domain.RoundRecord{
		RoomCode:      code,
		Question:      round.Question,
		CorrectAnswer: round.Answer.Display,
		Winner:        round.Winner,
		Elapsed:       round.Elapsed(),
		PublishedAt:   round.PublishedAt,
		ResolvedAt:    round.ResolvedAt,
	})
}
