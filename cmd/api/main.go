package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"medication-reminder/internal/adapters/auth/tokens"
	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/auth"
	"medication-reminder/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	appLog := logger.NewFromEnv()

	var verifier auth.AuthVerifier
	if base := os.Getenv("AUTH_BASE_URL"); base != "" {
		client, err := tokens.NewClient(tokens.Config{
			BaseURL: base,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Fatalf("auth client: %v", err)
		}
		verifier = tokens.NewVerifier(client)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier, // nil => modo dev
		Log:          appLog,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLog.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
