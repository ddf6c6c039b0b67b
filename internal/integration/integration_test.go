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

	"coursedeck-service/internal/app"
	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/infra/memory"
	pgstore "coursedeck-service/internal/infra/postgres"
	pgmigrations "coursedeck-service/internal/infra/postgres/migrations"
	infraredis "coursedeck-service/internal/infra/redis"
)

func TestLearningFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCourse(t, ctx, pgURL, sampleCourse())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	courseStore := pgstore.NewCourseStore(pool)
	enrollmentStore := pgstore.NewEnrollmentStore(pool)
	courseCache := infraredis.NewCourseCache(redisClient, courseStore, 5*time.Minute)
	service := app.NewLearningService(courseCache, enrollmentStore,
		memory.NewHostedCheckout("https://pay.example/checkout"),
		memory.NewCertificateRenderer(), false, nil)

	if _, err := service.Enroll(ctx, "u1", "course-1"); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	result, err := service.SubmitQuiz(ctx, "u1", "course-1", "l1", "s1", domain.QuizSubmission{AnswerID: "a1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct {
		t.Fatalf("expected correct grade, got %+v", result)
	}

	result, err = service.SubmitFinalExam(ctx, "u1", "course-1", domain.QuizSubmission{AnswerID: "x1"})
	if err != nil {
		t.Fatalf("final exam: %v", err)
	}
	if !result.Correct {
		t.Fatalf("expected exam passed, got %+v", result)
	}

	// Completion and progress must survive a round trip through postgres.
	enrollment, err := enrollmentStore.GetEnrollment(ctx, "u1", "course-1")
	if err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if !enrollment.IsCompleted || !enrollment.HasPassed("l1", "s1") {
		t.Fatalf("enrollment not persisted: %+v", enrollment)
	}

	// The first read populated the redis cache.
	exists, err := redisClient.Exists(ctx, "course:course-1:doc").Result()
	if err != nil {
		t.Fatalf("redis exists: %v", err)
	}
	if exists != 1 {
		t.Fatalf("expected cached course document in redis")
	}

	cert, err := service.IssueCertificate(ctx, "u1", "Alice", "course-1")
	if err != nil {
		t.Fatalf("certificate: %v", err)
	}
	if !strings.HasPrefix(cert, "data:image/svg+xml;base64,") {
		t.Fatalf("unexpected certificate payload: %.40s", cert)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "course", "POSTGRES_PASSWORD": "coursepass", "POSTGRES_DB": "coursedb"},
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
	dsn := fmt.Sprintf("postgres://course:coursepass@%s:%s/coursedb?sslmode=disable", host, port.Port())
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

func seedCourse(t *testing.T, ctx context.Context, dsn string, course domain.Course) {
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

	data, err := json.Marshal(course)
	if err != nil {
		t.Fatalf("marshal course: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO courses (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, course.ID, string(data)); err != nil {
		t.Fatalf("insert course: %v", err)
	}
}

func sampleCourse() domain.Course {
	return domain.Course{
		ID:          "course-1",
		Title:       "Cell Biology",
		Description: "Structure and function of the cell.",
		Level:       domain.LevelBeginner,
		Specialty:   "Biology",
		Status:      domain.StatusActive,
		IsPublic:    true,
		Lessons: []domain.Lesson{
			{
				ID: "l1",
				Slides: []domain.Slide{
					{ID: "s1", Quiz: &domain.Quiz{
						Kind:     domain.QuizSingleChoice,
						Question: "Which organelle produces ATP?",
						Answers: []domain.Answer{
							{ID: "a1", Text: "Mitochondrion", IsCorrect: true},
							{ID: "a2", Text: "Ribosome"},
						},
					}},
				},
			},
			{
				ID:          "exam",
				IsFinalExam: true,
				Slides: []domain.Slide{
					{ID: "s2", Quiz: &domain.Quiz{
						Kind:     domain.QuizSingleChoice,
						Question: "Which molecule carries genetic information?",
						Answers: []domain.Answer{
							{ID: "x1", Text: "DNA", IsCorrect: true},
							{ID: "x2", Text: "Lipid"},
						},
					}},
				},
			},
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
