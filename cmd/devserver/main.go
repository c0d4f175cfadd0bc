package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessclient/internal/server"
	"chessclient/internal/storage"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	var store *storage.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := storage.New(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("database init failed")
		}
		store = storage.NewStore(db)
		log.Info().Msg("persistence enabled")
	}

	hub := server.NewHub(store)
	h := server.NewHandler(hub)

	port := getEnv("PORT", "8000")
	log.Info().Str("port", port).Msg("devserver listening")
	if err := http.ListenAndServe(":"+port, h.Routes()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
