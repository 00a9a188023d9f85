package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solaceapp/solace-backend/internal/chat"
	"github.com/solaceapp/solace-backend/internal/config"
	"github.com/solaceapp/solace-backend/internal/db"
	"github.com/solaceapp/solace-backend/internal/httpapi"
	"github.com/solaceapp/solace-backend/internal/models"
	"github.com/solaceapp/solace-backend/internal/store/rabbitmq"
	"github.com/solaceapp/solace-backend/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.JournalEntry{},
		&models.EmotionLog{},
		&models.UserOptions{},
		&models.Todo{},
		&models.TimetableEntry{},
		&chat.Session{},
		&chat.Message{},
		&chat.Job{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rds.Close()

	rabbit, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer rabbit.Close()

	router := httpapi.NewRouter(gdb, cfg, rds, rabbit)

	// WriteTimeout stays unset: /chat holds an SSE stream open for as long
	// as the model keeps generating.
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
