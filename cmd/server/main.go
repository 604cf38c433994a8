package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/server"
)

func main() {
	fmt.Println("Starting Parlor chat server...")

	cfg, err := server.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Fatalf("Failed to create uploads directory: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open message store: %v", err)
	}

	presence := chat.NewPresence()

	roster, err := chat.NewRosterLog(filepath.Join(cfg.DataDir, "users.json"))
	if err != nil {
		log.Fatalf("Failed to open roster file: %v", err)
	}

	accounts, err := server.NewCredentialStore(filepath.Join(cfg.DataDir, "accounts.json"))
	if err != nil {
		log.Fatalf("Failed to open accounts file: %v", err)
	}

	hub := server.NewHub()
	go hub.Run()

	app := server.NewApp(cfg, hub, store, presence, roster, accounts)
	httpServer := server.CreateServer(cfg.Port, app.Routes())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.StartServer(httpServer)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Received signal %s, shutting down", sig)
		if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout); err != nil {
			log.Printf("HTTP shutdown did not complete cleanly: %v", err)
		}
		if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
			log.Printf("Hub shutdown did not complete cleanly: %v", err)
		}
	}
}

// buildStore selects the message log backend from configuration.
func buildStore(cfg *server.Config) (chat.Store, error) {
	switch cfg.StoreBackend {
	case server.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := client.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Printf("Using Redis message store at %s", cfg.RedisAddr)
		return chat.NewRedisStore(client), nil
	default:
		path := filepath.Join(cfg.DataDir, "messages.json")
		log.Printf("Using file message store at %s", path)
		return chat.NewFileStore(path)
	}
}
