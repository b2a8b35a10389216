package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/config"
	"campus-quiz-service/internal/domain"
	"campus-quiz-service/internal/infra/memory"
	pginfra "campus-quiz-service/internal/infra/postgres"
	redisinfra "campus-quiz-service/internal/infra/redis"
	transport "campus-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	var sink app.ResultSink = memory.NewResultSink()
	var members app.MembershipOracle = memory.NewStaticMembership(sampleMemberships())
	if pool != nil {
		store := pginfra.NewQuizStore(pool)
		loader = store
		sink = store
		members = pginfra.NewMembershipOracle(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes app.QuizRepository
	if redisClient != nil {
		quizzes = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizzes = memory.NewQuizRepository(loader, quizTTL)
	}

	var liveness app.Liveness
	if redisClient != nil {
		liveness = redisinfra.NewLiveness(redisClient, config.Duration(cfg.Redis.TTL, 10*time.Minute))
	}

	hub := transport.NewHub()
	registry := app.NewRegistry(hub, sink, app.RegistryConfig{
		AdvancePause: config.Duration(cfg.Engine.AdvancePause, 3*time.Second),
		Liveness:     liveness,
	})
	engine := app.NewEngine(registry, quizzes, members)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(engine, hub).ServeWS)
	mux.HandleFunc("POST /quizzes/{id}/start", transport.NewStartHandler(engine).Start)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes and sampleMemberships let the engine run without Postgres;
// production deployments read both from the collaborator's database.
func sampleQuizzes() map[string]domain.QuizDefinition {
	return map[string]domain.QuizDefinition{
		"quiz-1": {
			ID:        "quiz-1",
			Title:     "Orientation trivia",
			GroupID:   "group-1",
			CreatorID: "user-1",
			Status:    domain.StatusDraft,
			Questions: []domain.Question{
				{
					Text:             "What is 2 + 2?",
					Options:          []string{"3", "4", "5"},
					CorrectOption:    1,
					TimeLimitSeconds: 15,
				},
				{
					Text:             "Which planet is closest to the sun?",
					Options:          []string{"Venus", "Mercury"},
					CorrectOption:    1,
					TimeLimitSeconds: 10,
				},
			},
		},
	}
}

func sampleMemberships() map[string][]string {
	return map[string][]string{
		"group-1": {"user-1", "user-2", "user-3"},
	}
}
