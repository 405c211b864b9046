package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"the-pub/internal/app"
	"the-pub/internal/domain"
	"the-pub/internal/grading"
	pginfra "the-pub/internal/infra/postgres"
	pgmigrations "the-pub/internal/infra/postgres/migrations"
	redisinfra "the-pub/internal/infra/redis"
)

func TestGameSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, sampleBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	questionRepo := redisinfra.NewQuestionRepository(redisClient, pginfra.NewQuestionLoader(pool), 5*time.Minute, 0)
	scoreStore := redisinfra.NewSummaryCache(pginfra.NewScoreStore(pool), redisClient, 5*time.Minute)
	scoreService := app.NewScoreService(scoreStore)
	service := app.NewGameService(questionRepo, scoreService)

	// First session: one correct answer.
	session, err := service.Start(ctx, domain.ModeTrivia, domain.Authenticated("u1"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res, awarded, _, err := service.SubmitGuess(ctx, session.ID(), "q1", "Chiefs")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Outcome != grading.Correct || awarded != 5 {
		t.Fatalf("expected correct for 5 points, got %v awarded=%d", res.Outcome, awarded)
	}
	record, summary, err := service.Finish(ctx, session.ID())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if record.Score != 5 {
		t.Fatalf("expected score 5, got %d", record.Score)
	}
	if summary == nil || summary.GamesPlayed != 1 || summary.AverageScore != 5 {
		t.Fatalf("expected first summary 5/1, got %+v", summary)
	}

	// Second session: no correct answers; the average halves.
	session, err = service.Start(ctx, domain.ModeTrivia, domain.Authenticated("u1"))
	if err != nil {
		t.Fatalf("start 2: %v", err)
	}
	if _, _, _, err := service.SubmitGuess(ctx, session.ID(), "q1", "Raiders"); err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	_, summary, err = service.Finish(ctx, session.ID())
	if err != nil {
		t.Fatalf("finish 2: %v", err)
	}
	if summary == nil || summary.GamesPlayed != 2 || summary.AverageScore != 2.5 {
		t.Fatalf("expected summary 2.5/2, got %+v", summary)
	}

	// The persisted summary matches what the service returned.
	stored, err := scoreService.Summary(ctx, "u1", domain.ModeTrivia)
	if err != nil {
		t.Fatalf("summary read: %v", err)
	}
	if stored.GamesPlayed != 2 || stored.AverageScore != 2.5 {
		t.Fatalf("expected stored summary 2.5/2, got %+v", stored)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "pub", "POSTGRES_PASSWORD": "pubpass", "POSTGRES_DB": "pubdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://pub:pubpass@%s:%s/pubdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn string, bank domain.QuestionBank) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_banks (game_mode, data) VALUES (?, ?::jsonb) ON CONFLICT (game_mode) DO UPDATE SET data=EXCLUDED.data`, bank.GameMode, string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		GameMode: domain.ModeTrivia,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "Who won Super Bowl LIV?", Answer: "Kansas City Chiefs", Points: 5},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
