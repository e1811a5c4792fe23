package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quiz-duel-service/internal/domain"
)

// ErrCoordinatorStopped is returned when events arrive after Run has exited.
var ErrCoordinatorStopped = errors.New("coordinator stopped")

const (
	// DefaultReserveTimeout bounds each call to the CodeReserver.
	DefaultReserveTimeout = 2 * time.Second
	maxReserveAttempts    = 5
)

// QuestionBank loads stored questions (from cache/backing store).
type QuestionBank interface {
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
}

// Archiver accepts resolved rounds without blocking.
type Archiver interface {
	Enqueue(record domain.RoundRecord) bool
}

// Dispatcher hands outbound messages to connections. It is called from the Run goroutine
// and must not block.
type Dispatcher interface {
	Dispatch(out []domain.Outbound)
}

type op struct {
	connID string
	name   string
	fn     func() ([]domain.Outbound, error)
	reply  chan []domain.Outbound
}

// Coordinator contains the room/round use cases.
//
// Every inbound event, disconnect and sweep becomes an op executed to completion by the
// goroutine running Run. Registry and Roster are only touched from inside an op.
// Outbound messages are dispatched before the next op starts. Network calls (question
// bank, code reservation, archiving) never run inside an op.
//
// Handlers validate before they mutate. A recovered panic is reported as error-internal
// and nothing is rolled back.
type Coordinator struct {
	rooms          *Registry
	roster         *Roster
	bank           QuestionBank
	archiver       Archiver
	dispatcher     Dispatcher
	reserver       CodeReserver
	reserveTimeout time.Duration
	now            func() time.Time
	logger         zerolog.Logger

	ops  chan op
	done chan struct{}
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

func WithQuestionBank(bank QuestionBank) Option {
	return func(c *Coordinator) { c.bank = bank }
}

func WithArchiver(a Archiver) Option {
	return func(c *Coordinator) { c.archiver = a }
}

func WithDispatcher(d Dispatcher) Option {
	return func(c *Coordinator) { c.dispatcher = d }
}

// WithCodeReserver claims room codes across instances. timeout bounds each call; zero
// means DefaultReserveTimeout.
func WithCodeReserver(r CodeReserver, timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.reserver = r
		if timeout > 0 {
			c.reserveTimeout = timeout
		}
	}
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func NewCoordinator(rooms *Registry, roster *Roster, opts ...Option) *Coordinator {
	c := &Coordinator{
		rooms:          rooms,
		roster:         roster,
		now:            time.Now,
		reserveTimeout: DefaultReserveTimeout,
		logger:         log.With().Str("module", "app.coordinator").Logger(),
		ops:            make(chan op),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes events until ctx is canceled.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case o := <-c.ops:
			out := c.apply(o)
			if c.dispatcher != nil && len(out) > 0 {
				c.dispatcher.Dispatch(out)
			}
			o.reply <- out
		}
	}
}

// apply runs one op. Errors and panics become an error event for the triggering connection.
func (c *Coordinator) apply(o op) (out []domain.Outbound) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error().Str("event", o.name).Str("conn", o.connID).Interface("panic", rec).Msg("handler panicked")
			out = c.errorReply(o.connID, fmt.Errorf("%w: %v", domain.ErrInternal, rec))
		}
	}()
	out, err := o.fn()
	if err != nil {
		c.logger.Debug().Err(err).Str("event", o.name).Str("conn", o.connID).Msg("event rejected")
		return c.errorReply(o.connID, err)
	}
	return out
}

func (c *Coordinator) errorReply(connID string, err error) []domain.Outbound {
	if connID == "" {
		return nil
	}
	typ, payload := domain.ErrorEvent(err)
	return []domain.Outbound{domain.Unicast(connID, typ, payload)}
}

// exec hands fn to the Run goroutine and waits for the resulting messages.
func (c *Coordinator) exec(ctx context.Context, connID, name string, fn func() ([]domain.Outbound, error)) ([]domain.Outbound, error) {
	o := op{connID: connID, name: name, fn: fn, reply: make(chan []domain.Outbound, 1)}
	select {
	case c.ops <- o:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrCoordinatorStopped
	}
	select {
	case out := <-o.reply:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CreateRoom registers the sender as owner of a new room. With a CodeReserver the code is
// claimed before entering the serialized section; a claim the room ends up not using is
// released again.
func (c *Coordinator) CreateRoom(ctx context.Context, connID, ownerName string) ([]domain.Outbound, error) {
	reserved := c.reserveCode(ctx, connID, ownerName)
	var used string
	out, err := c.exec(ctx, connID, string(domain.EventCreateRoom), func() ([]domain.Outbound, error) {
		out, room, err := c.createRoom(connID, ownerName, reserved)
		if room != nil {
			used = room.Code
		}
		return out, err
	})
	if err == nil && reserved != "" && reserved != used {
		c.releaseCode(reserved)
	}
	return out, err
}

// JoinRoom registers the sender as a player of an existing room.
func (c *Coordinator) JoinRoom(ctx context.Context, connID, name, code string) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, string(domain.EventJoinRoom), func() ([]domain.Outbound, error) {
		return c.joinRoom(connID, name, code)
	})
}

// PublishQuestion starts a round. Stored questions are resolved before entering the
// serialized section.
func (c *Coordinator) PublishQuestion(ctx context.Context, connID string, in domain.QuestionInput) ([]domain.Outbound, error) {
	var loadErr error
	if in.QuestionID != "" {
		in, loadErr = c.resolveStored(ctx, in.QuestionID)
	}
	return c.exec(ctx, connID, string(domain.EventPublishQuestion), func() ([]domain.Outbound, error) {
		if loadErr != nil {
			if _, _, err := c.ownership(connID); err != nil {
				return nil, err
			}
			return nil, loadErr
		}
		return c.publishQuestion(connID, in)
	})
}

// SubmitAnswer races the sender's answer against every other player's.
func (c *Coordinator) SubmitAnswer(ctx context.Context, connID, answer string) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, string(domain.EventSubmitAnswer), func() ([]domain.Outbound, error) {
		return c.submitAnswer(connID, answer)
	})
}

// ResetRound clears the round and the players' stats.
func (c *Coordinator) ResetRound(ctx context.Context, connID string) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, string(domain.EventResetRound), func() ([]domain.Outbound, error) {
		return c.resetRound(connID)
	})
}

func (c *Coordinator) RoomInfo(ctx context.Context, connID string) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, string(domain.EventGetRoomInfo), func() ([]domain.Outbound, error) {
		return c.roomInfo(connID)
	})
}

func (c *Coordinator) Ranking(ctx context.Context, connID string) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, string(domain.EventGetRanking), func() ([]domain.Outbound, error) {
		return c.ranking(connID)
	})
}

func (c *Coordinator) SystemStats(ctx context.Context, connID string) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, string(domain.EventGetStats), func() ([]domain.Outbound, error) {
		return c.systemStats(connID)
	})
}

func (c *Coordinator) Report(ctx context.Context, connID string, in domain.ReportInput) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, string(domain.EventReport), func() ([]domain.Outbound, error) {
		return c.report(connID, in)
	})
}

// Disconnect tears down everything the connection owned.
func (c *Coordinator) Disconnect(ctx context.Context, connID string) ([]domain.Outbound, error) {
	return c.exec(ctx, connID, "disconnect", func() ([]domain.Outbound, error) {
		return c.disconnect(connID), nil
	})
}

// Sweep closes rooms that are empty and older than the registry TTL.
func (c *Coordinator) Sweep(ctx context.Context) ([]domain.Outbound, error) {
	return c.exec(ctx, "", "sweep", func() ([]domain.Outbound, error) {
		return c.sweep(), nil
	})
}

// Stats snapshots the registry.
func (c *Coordinator) Stats(ctx context.Context) (domain.Stats, domain.RosterStats, error) {
	var (
		rooms  domain.Stats
		roster domain.RosterStats
	)
	_, err := c.exec(ctx, "", "stats", func() ([]domain.Outbound, error) {
		rooms = c.rooms.Stats()
		roster = c.roster.Stats()
		return nil, nil
	})
	return rooms, roster, err
}

// reserveCode claims a candidate code. It returns "" when there is no reserver, the name
// would be rejected anyway, or the reserver is unreachable; the registry then falls back to
// local uniqueness.
func (c *Coordinator) reserveCode(ctx context.Context, connID, ownerName string) string {
	if c.reserver == nil {
		return ""
	}
	if _, err := ValidateName(ownerName); err != nil {
		return ""
	}
	for i := 0; i < maxReserveAttempts; i++ {
		code := c.rooms.NextCode()
		rctx, cancel := context.WithTimeout(ctx, c.reserveTimeout)
		ok, err := c.reserver.Reserve(rctx, code, connID)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Str("room", code).Msg("reserve room code, using local uniqueness")
			return ""
		}
		if ok {
			return code
		}
	}
	c.logger.Warn().Int("attempts", maxReserveAttempts).Msg("no free room code reserved, using local uniqueness")
	return ""
}

// releaseCode drops a claim in the background so the caller never waits on the reserver.
func (c *Coordinator) releaseCode(code string) {
	if c.reserver == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.reserveTimeout)
		defer cancel()
		if err := c.reserver.Release(ctx, code); err != nil {
			c.logger.Warn().Err(err).Str("room", code).Msg("release room code")
		}
	}()
}

// refreshCodes extends the claims of every live room.
func (c *Coordinator) refreshCodes(ctx context.Context) error {
	if c.reserver == nil {
		return nil
	}
	var codes []string
	if _, err := c.exec(ctx, "", "live-codes", func() ([]domain.Outbound, error) {
		codes = c.rooms.Codes()
		return nil, nil
	}); err != nil {
		return err
	}
	if len(codes) == 0 {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, c.reserveTimeout)
	defer cancel()
	if err := c.reserver.Refresh(rctx, codes); err != nil {
		c.logger.Warn().Err(err).Int("rooms", len(codes)).Msg("refresh room codes")
	}
	return nil
}

func (c *Coordinator) resolveStored(ctx context.Context, id string) (domain.QuestionInput, error) {
	if c.bank == nil {
		return domain.QuestionInput{}, domain.ErrQuestionNotFound
	}
	q, err := c.bank.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return domain.QuestionInput{}, err
		}
		c.logger.Error().Err(err).Str("question", id).Msg("load stored question")
		return domain.QuestionInput{}, fmt.Errorf("%w: load question", domain.ErrInternal)
	}
	return domain.QuestionInput{
		Question:   q.Prompt,
		Options:    q.Options,
		CorrectKey: q.CorrectKey,
		Answer:     q.Answer,
	}, nil
}
