// Asynqmon exposes the task queue dashboard, mainly to watch the producer
// profile backfill queue during operations.
package main

import (
	"log"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"github.com/organico-dev/organico/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	h := asynqmon.New(asynqmon.Options{
		RootPath:     "/",
		RedisConnOpt: asynq.RedisClientOpt{Addr: cfg.Redis.Address},
	})

	addr := ":8090"
	log.Printf("Starting Asynqmon on %s with Redis at %s", addr, cfg.Redis.Address)
	log.Fatal(http.ListenAndServe(addr, h))
}
