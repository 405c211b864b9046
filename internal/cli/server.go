package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"the-pub/internal/app"
	"the-pub/internal/config"
	"the-pub/internal/domain"
	"the-pub/internal/infra/memory"
	pginfra "the-pub/internal/infra/postgres"
	redisinfra "the-pub/internal/infra/redis"
	transport "the-pub/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleBanks())
	if pool != nil {
		loader = pginfra.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, time.Hour)
	dailySize := cfg.Questions.DailySize
	if dailySize == 0 {
		dailySize = 10
	}
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisinfra.NewQuestionRepository(redisClient, loader, questionTTL, dailySize)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL, dailySize)
	}

	var scoreStore app.ScoreStore
	if pool != nil {
		scoreStore = pginfra.NewScoreStore(pool)
	} else {
		scoreStore = memory.NewScoreStore()
	}
	if redisClient != nil {
		scoreStore = redisinfra.NewSummaryCache(scoreStore, redisClient, redisTTL)
	}

	gameService := app.NewGameService(questionRepo, app.NewScoreService(scoreStore))
	wsHandler := transport.NewWSHandler(gameService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting the-pub on :%s", finalPort)
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

// sampleBanks provides a minimal question set per game mode; swap the loader
// for the Postgres-backed one in production.
func sampleBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		domain.ModeTrivia: {
			GameMode: domain.ModeTrivia,
			Questions: []domain.Question{
				{ID: "t1", Prompt: "Who won Super Bowl LIV?", Answer: "Kansas City Chiefs", Points: 5},
				{ID: "t2", Prompt: "Which team plays at Lambeau Field?", Answer: "Green Bay Packers", Points: 5},
				{ID: "t3", Prompt: "How many points is a safety?", Answer: "2", Points: 5},
			},
		},
		domain.ModePlayerGuess: {
			GameMode: domain.ModePlayerGuess,
			Questions: []domain.Question{
				{ID: "p1", Prompt: "Chiefs starting QB?", Answer: "Patrick Mahomes", Points: 5},
				{ID: "p2", Prompt: "Bills starting QB?", Answer: "Josh Allen", Points: 5},
			},
		},
		domain.ModeCollegeGuess: {
			GameMode: domain.ModeCollegeGuess,
			Questions: []domain.Question{
				{ID: "c1", Prompt: "Where did Jameis Winston play in college?", Answer: "Florida State", Points: 5},
				{ID: "c2", Prompt: "Where did Derrick Henry play in college?", Answer: "Alabama", Points: 5},
			},
		},
		domain.ModeRideTheBus: {
			GameMode: domain.ModeRideTheBus,
			Questions: []domain.Question{
				{ID: "r1", Prompt: "Name the team with the most Super Bowl wins", Answer: "Pittsburgh Steelers", Points: 5},
				{ID: "r2", Prompt: "Name the NFC team in Super Bowl LVIII", Answer: "San Francisco 49ers", Points: 5},
			},
		},
	}
}
