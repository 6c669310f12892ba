package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
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
	"skin-assessment-service/internal/app"
	"skin-assessment-service/internal/domain"
	pgloader "skin-assessment-service/internal/infra/postgres"
	pgmigrations "skin-assessment-service/internal/infra/postgres/migrations"
	infraredis "skin-assessment-service/internal/infra/redis"
)

func TestAssessmentEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateAndSeed(t, ctx, pgURL, shortBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewQuestionBankLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	banks := infraredis.NewQuestionBankRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	dispatcher := &capturingDispatcher{}
	service := app.NewAssessmentService(sessionStore, banks, dispatcher, nil, app.Settings{BankID: "short"})

	// The seeded default bank is readable too.
	if _, err := loader.LoadQuestionBank(ctx, domain.DefaultQuestionBankID); err != nil {
		t.Fatalf("load default bank: %v", err)
	}

	view, err := service.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if live, err := sessionStore.LiveCount(ctx); err != nil || live != 1 {
		t.Fatalf("expected one live session, got %d (%v)", live, err)
	}

	for view.Phase == domain.PhaseQuestioning {
		view, err = service.Answer(ctx, view.SessionID, domain.AnswerSubmission{QuestionID: view.Question.ID, OptionIndex: 1})
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
	}
	for field, value := range map[string]string{
		domain.FieldFirstName: "Jane",
		domain.FieldEmail:     "jane@example.com",
		domain.FieldPhone:     "07123 456789",
	} {
		if _, err := service.UpdateContact(ctx, view.SessionID, field, value); err != nil {
			t.Fatalf("update %s: %v", field, err)
		}
	}
	view, err = service.SubmitLead(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// 2 answers x 10 = 20 -> tier 4
	if view.Result == nil || view.Result.Tier != domain.Tier4 {
		t.Fatalf("expected type IV result, got %+v", view.Result)
	}
	if n := dispatcher.count(); n != 1 {
		t.Fatalf("expected one dispatched lead, got %d", n)
	}

	service.Close(ctx, view.SessionID)
	if live, err := sessionStore.LiveCount(ctx); err != nil || live != 0 {
		t.Fatalf("expected no live sessions after close, got %d (%v)", live, err)
	}
}

type capturingDispatcher struct {
	mu       sync.Mutex
	payloads []domain.SubmissionPayload
}

func (d *capturingDispatcher) Dispatch(p domain.SubmissionPayload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, p)
}

func (d *capturingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.payloads)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "assess", "POSTGRES_PASSWORD": "assesspass", "POSTGRES_DB": "assessdb"},
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
	dsn := fmt.Sprintf("postgres://assess:assesspass@%s:%s/assessdb?sslmode=disable", host, port.Port())
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

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string, bank domain.QuestionBank) {
	t.Helper()
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
	if err := pgmigrations.SeedQuestionBank(ctx, db, bank, true); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
}

func shortBank() domain.QuestionBank {
	options := []domain.Option{{Label: "low", Score: 0}, {Label: "high", Score: 10}}
	return domain.QuestionBank{
		ID: "short",
		Questions: []domain.Question{
			{ID: "tone", Prompt: "Skin tone?", Options: options},
			{ID: "tan", Prompt: "Does it tan?", Options: options},
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
