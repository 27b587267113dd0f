package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk.org/internal/httpapi"
	"taskdesk.org/internal/obs"
	"taskdesk.org/internal/store/pg"
	redisstore "taskdesk.org/internal/store/redis"
	"taskdesk.org/internal/todo"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Storage backend is picked from the environment: Postgres when a DSN
	// is set, Redis when an address is set, in-memory otherwise.
	var (
		repo  todo.Repository
		db    *sql.DB
		probe httpapi.ReadyProbe
	)
	switch {
	case os.Getenv("TASKDESK_PG_DSN") != "":
		store, err := pg.Open(os.Getenv("TASKDESK_PG_DSN"))
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		repo = store
		db = store.DB()
		probe = httpapi.ReadyProbe{DB: db}
		log.Printf("storage: postgres")
	case os.Getenv("TASKDESK_REDIS_ADDR") != "":
		store := redisstore.Open(os.Getenv("TASKDESK_REDIS_ADDR"))
		repo = store
		probe = httpapi.ReadyProbe{Ping: store.Ping}
		log.Printf("storage: redis")
	default:
		repo = todo.NewInMemory()
		log.Printf("storage: in-memory (set TASKDESK_PG_DSN or TASKDESK_REDIS_ADDR for persistence)")
	}

	addr := os.Getenv("TASKDESK_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	api := httpapi.New(probe, version, todo.NewService(repo))

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting taskdesk-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
