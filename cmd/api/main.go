// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/heracleslabs/coachbot/internal/coach"
	"github.com/heracleslabs/coachbot/internal/coaching"
	"github.com/heracleslabs/coachbot/internal/config"
	"github.com/heracleslabs/coachbot/internal/export"
	"github.com/heracleslabs/coachbot/internal/http/routes"
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

	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Printf("starting app on :%s", cfg.Port)

	// DB
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()
	if err := store.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate error: %v", err)
	}

	users := store.NewUserStore(pool)
	workouts := store.NewWorkoutStore(pool)

	// Coaching model client
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

	// Sessions
	sess := scs.New()
	sess.Lifetime = 12 * time.Hour
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = false

	// Router / server
	s := routes.New(routes.ServerOptions{
		Sess:      sess,
		Svc:       svc,
		Users:     users,
		Exporter:  export.TextExporter{},
		RedisAddr: cfg.RedisAddr,
		Log:       logger,
	})
	h := hlog.NewHandler(logger)(s.Router)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: sess.LoadAndSave(h)}
	log.Fatal(srv.ListenAndServe())
}
