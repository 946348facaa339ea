// seed inserts the sample events for local testing. Idempotent: existing events are only renamed.
// With -hash-admin it instead prints a bcrypt hash of ADMIN_PASSWORD for ADMIN_PASSWORD_HASH.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/omerA/v0-guest-event-app/internal/config"
	"github.com/omerA/v0-guest-event-app/internal/db"
	"github.com/omerA/v0-guest-event-app/internal/event/domain"
	eventrepo "github.com/omerA/v0-guest-event-app/internal/event/repository"
	"github.com/omerA/v0-guest-event-app/internal/security"
)

var seedEvents = []domain.Event{
	{ID: "annual-gathering-2026", Name: "Annual Gathering 2026"},
	{ID: "gala", Name: "Gala Dinner"},
}

func main() {
	hashAdmin := flag.Bool("hash-admin", false, "Print a bcrypt hash of ADMIN_PASSWORD and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *hashAdmin {
		if cfg.AdminPassword == "" {
			log.Fatal("ADMIN_PASSWORD is not set")
		}
		hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(cfg.AdminPassword))
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	repo := eventrepo.NewPostgresRepository(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	for i := range seedEvents {
		e := seedEvents[i]
		e.CreatedAt = now
		if err := e.Validate(); err != nil {
			log.Fatalf("seed event %s: %v", e.ID, err)
		}
		if err := repo.Create(ctx, &e); err != nil {
			log.Fatalf("create event %s: %v", e.ID, err)
		}
		log.Printf("seed: event %s ready", e.ID)
	}
	log.Println("Seed complete.")
}
