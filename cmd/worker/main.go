package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/heracleslabs/coachbot/internal/coach"
	"github.com/heracleslabs/coachbot/internal/coaching"
	"github.com/heracleslabs/coachbot/internal/config"
	"github.com/heracleslabs/coachbot/internal/jobs"
	"github.com/heracleslabs/coachbot/internal/models"
	"github.com/heracleslabs/coachbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to connect to database:", err)
	}
	defer pool.Close()

	users := store.NewUserStore(pool)
	workouts := store.NewWorkoutStore(pool)

	opts := []coach.Option{}
	if cfg.CoachBaseURL != "" {
		opts = append(opts, coach.WithBaseURL(cfg.CoachBaseURL))
	}
	if cfg.CoachModel != "" {
		opts = append(opts, coach.WithModel(cfg.CoachModel))
	}
	client, err := coach.New(cfg.CoachAPIKey, opts...)
	if err != nil {
		log.Fatalf("coach client error: %v", err)
	}

	svc := coaching.New(users, workouts, client, logger,
		coaching.WithDefaultTemperature(cfg.Temperature))

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency:    8,
		StrictPriority: false,
		Queues: map[string]int{
			"generate": 10, // higher priority
			"default":  5,  // default priority
		},
	})
	mux := asynq.NewServeMux()

	mux.HandleFunc(jobs.TaskGeneratePlan, func(ctx context.Context, t *asynq.Task) error {
		var p jobs.GeneratePlanPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			log.Printf("[asynq] bad payload: %v", err)
			return err
		}
		log.Printf("[generate] start user=%s goal=%s", p.Username, p.Goal)
		start := time.Now()
		_, err := svc.GeneratePlan(ctx, p.Username, models.CoachingRequest{
			Sport:       p.Sport,
			Position:    p.Position,
			Injury:      p.Injury,
			Goal:        p.Goal,
			Diet:        p.Diet,
			Intensity:   p.Intensity,
			Difficulty:  p.Difficulty,
			Temperature: p.Temperature,
		})
		duration := time.Since(start)

		if err != nil {
			if isRetryableError(err) {
				log.Printf("[generate] retryable error user=%s duration=%v: %v", p.Username, duration, err)
				return err // allow retry
			}
			log.Printf("[generate] permanent error user=%s duration=%v: %v (dropping job)", p.Username, duration, err)
			return nil // don't retry permanent failures
		}
		log.Printf("[generate] done user=%s duration=%v", p.Username, duration)
		return nil
	})

	log.Println("Worker running...")
	log.Fatal(srv.Run(mux))
}

// isRetryableError determines if an error should trigger a job retry.
func isRetryableError(err error) bool {
	// Invalid profiles never become valid on retry.
	if errors.Is(err, store.ErrInvalidInput) {
		return false
	}

	// Rate limiting and server-side failures at the model provider clear up.
	var apiErr *coach.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}

	// An empty completion is worth one more pass through the retry budget.
	if errors.Is(err, coach.ErrEmptyResponse) {
		return true
	}

	// Transport problems (timeouts, DNS, refused connections) are transient.
	var netErr interface{ Temporary() bool }
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
