package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coursedeck-service/internal/app"
	"coursedeck-service/internal/config"
	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/infra/memory"
	pgstore "coursedeck-service/internal/infra/postgres"
	rediscache "coursedeck-service/internal/infra/redis"
	transport "coursedeck-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the course service",
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

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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
	courseTTL := config.TTLDuration(cfg.Course.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var courseRepo app.CourseRepository
	var enrollmentRepo app.EnrollmentRepository
	if pool != nil {
		courseRepo = pgstore.NewCourseStore(pool)
		enrollmentRepo = pgstore.NewEnrollmentStore(pool)
	} else {
		store := memory.NewCourseStore()
		if _, err := store.SaveCourse(ctx, sampleCourse()); err != nil {
			return err
		}
		courseRepo = store
		enrollmentRepo = memory.NewEnrollmentStore()
	}

	var courseReader app.CourseReader
	if redisClient != nil {
		courseReader = rediscache.NewCourseCache(redisClient, courseRepo, courseTTL)
	} else {
		courseReader = memory.NewCourseCache(courseRepo, courseTTL)
	}

	var editorStore transport.EditorSessionStore
	if redisClient != nil {
		editorStore = rediscache.NewEditorStore(redisClient, redisTTL)
	} else {
		editorStore = memory.NewEditorStore()
	}

	checkoutURL := cfg.Checkout.URL
	if checkoutURL == "" {
		checkoutURL = "https://checkout.local/pay"
	}

	courseService := app.NewCourseService(courseRepo, courseReader, log)
	learningService := app.NewLearningService(
		courseReader,
		enrollmentRepo,
		memory.NewHostedCheckout(checkoutURL),
		memory.NewCertificateRenderer(),
		cfg.Exam.RequireRegularCompletion,
		log,
	)

	apiHandler := transport.NewAPIHandler(courseService, learningService, log)
	editorHandler := transport.NewEditorWSHandler(courseService, editorStore, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	apiHandler.Register(mux)
	mux.HandleFunc("/ws/editor", editorHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting course service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCourse seeds the in-memory store so the service is usable without
// Postgres.
func sampleCourse() domain.Course {
	quiz := &domain.Quiz{
		Kind:        domain.QuizSingleChoice,
		Question:    "Which part of the cell produces energy?",
		Explanation: "Mitochondria convert nutrients into ATP.",
		Answers: []domain.Answer{
			{ID: domain.NewID(), Text: "Mitochondria", IsCorrect: true},
			{ID: domain.NewID(), Text: "Nucleus"},
			{ID: domain.NewID(), Text: "Ribosome"},
		},
	}
	now := time.Now()
	return domain.Course{
		ID:          "course-1",
		Title:       "Cell Biology Basics",
		Description: "An introduction to the building blocks of life.",
		Specialty:   "Biology",
		Level:       domain.LevelBeginner,
		Status:      domain.StatusActive,
		IsPublic:    true,
		CreatorID:   "admin-1",
		Lessons: []domain.Lesson{
			{
				ID:    domain.NewID(),
				Title: "Lesson 1",
				Slides: []domain.Slide{
					{
						ID:              domain.NewID(),
						Title:           "The Cell",
						BackgroundColor: "#ffffff",
						Elements: []domain.Element{
							{
								ID:       domain.NewID(),
								Type:     domain.ElementText,
								Content:  "Welcome to Cell Biology",
								Position: domain.Position{X: 40, Y: 30},
								Size:     domain.Size{Width: 880, Height: 60},
								ZIndex:   1,
								IsVisible: true,
								FontSize: 32,
								IsBold:   true,
							},
						},
						Quiz: quiz,
					},
				},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
