package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/repository"
	"github.com/oldgate-museum/booking-widget/pkg/config"
	"github.com/oldgate-museum/booking-widget/pkg/database"
)

func main() {
	var (
		up     = flag.Bool("up", false, "apply pending migrations")
		status = flag.Bool("status", false, "show migration status")
	)
	flag.Parse()

	if !*up && !*status {
		fmt.Fprintln(os.Stderr, "usage: migrate -up | -status")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.DBName,
		SSLMode:        cfg.Database.SSLMode,
		MaxConns:       2,
		MinConns:       1,
		ConnectTimeout: 5 * time.Second,
		MaxRetries:     3,
		RetryInterval:  1 * time.Second,
	})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	migrator := repository.NewMigrator(db)

	switch {
	case *up:
		applied, err := migrator.Up(ctx)
		if err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		if len(applied) == 0 {
			fmt.Println("No pending migrations")
			return
		}
		for _, m := range applied {
			fmt.Printf("Applied %04d_%s\n", m.Version, m.Name)
		}
	case *status:
		statuses, err := migrator.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%04d_%s  %s\n", s.Version, s.Name, state)
		}
	}
}
