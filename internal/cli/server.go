package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-duel-service/internal/app"
	"quiz-duel-service/internal/config"
	"quiz-duel-service/internal/domain"
	"quiz-duel-service/internal/infra/memory"
	"quiz-duel-service/internal/infra/postgres"
	redisstore "quiz-duel-service/internal/infra/redis"
	"quiz-duel-service/internal/logging"
	transport "quiz-duel-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz duel server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func setupLogging(cfg config.Config) {
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg)
	logger := log.With().Str("module", "cli.start").Logger()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	var archive app.RoundArchive = app.NopArchive{}
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
		archive = postgres.NewRoundArchive(pool)
	}

	recorder := app.NewRecorder(archive, cfg.ArchiveBuffer())
	hub := transport.NewHub()
	opts := []app.Option{
		app.WithArchiver(recorder),
		app.WithDispatcher(hub),
	}
	if redisClient != nil {
		if cfg.MaintenanceInterval() >= cfg.RedisTTL() {
			logger.Warn().
				Dur("interval", cfg.MaintenanceInterval()).
				Dur("ttl", cfg.RedisTTL()).
				Msg("maintenance interval is not below redis ttl, live room codes may expire")
		}
		opts = append(opts,
			app.WithQuestionBank(redisstore.NewQuestionBank(redisClient, loader, cfg.QuestionTTL())),
			app.WithCodeReserver(redisstore.NewCodeReservations(redisClient, cfg.RedisTTL()), 0),
		)
	} else {
		opts = append(opts, app.WithQuestionBank(memory.NewQuestionBank(loader, cfg.QuestionTTL())))
	}

	coord := app.NewCoordinator(
		app.NewRegistry(memory.NewRoomStore(), app.WithRoomTTL(cfg.RoomTTL())),
		app.NewRoster(),
		opts...,
	)

	server := &http.Server{
		Addr:         ":" + cfg.ListenPort(portFlag),
		Handler:      transport.NewRouter(transport.NewWSHandler(coord, hub), coord, transport.Info{Name: serviceName, Version: version}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return coord.Run(gctx) })
	g.Go(func() error { return recorder.Run(gctx) })
	g.Go(func() error { return coord.Maintain(gctx, cfg.MaintenanceInterval()) })
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("starting quiz duel service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sampleQuestions seeds the question bank when no Postgres is configured.
func sampleQuestions() map[string]domain.Question {
	return map[string]domain.Question{
		"red-planet": {
			ID:     "red-planet",
			Prompt: "Which planet is known as the red planet?",
			Options: &domain.Options{
				A: "Venus",
				B: "Mars",
				C: "Jupiter",
				D: "Mercury",
			},
			CorrectKey: "b",
		},
		"capital-fr": {
			ID:     "capital-fr",
			Prompt: "What is the capital of France?",
			Answer: "Paris",
		},
		"two-plus-two": {
			ID:     "two-plus-two",
			Prompt: "What is 2 + 2?",
			Answer: "4",
		},
	}
}
