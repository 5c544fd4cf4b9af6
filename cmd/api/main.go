package main

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"

	"github.com/fixlater/fixlater-backend/internal/auth"
	"github.com/fixlater/fixlater-backend/internal/config"
	"github.com/fixlater/fixlater-backend/internal/db"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.TaskImage{},
		&model.AvailabilitySlot{},
		&model.Application{},
		&model.Review{},
		&model.Conversation{},
		&model.Message{},
		&model.Notification{},
		&model.SavedTask{},
		&model.PasswordReset{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiresHours)*time.Hour)
	if err != nil {
		log.Fatalf("token manager error: %v", err)
	}

	var storageClient *storage.Client
	if cfg.StorageBucket != "" {
		storageClient, err = storage.NewClient(context.Background())
		if err != nil {
			log.Printf("storage client error, uploads disabled: %v", err)
		}
	}

	srv := server.New(conn, cfg, tokens, storageClient)

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
