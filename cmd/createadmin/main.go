// Command createadmin creates the admin account, or promotes an existing
// user with the same email.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/Skotchmaster/fashion_store/internal/config"
	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/internal/service"
	pkgdb "github.com/Skotchmaster/fashion_store/pkg/db"
	"github.com/Skotchmaster/fashion_store/pkg/events"
)

func main() {
	cfg := config.Load()

	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email (default $ADMIN_EMAIL)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password, used only when the account is created (default $ADMIN_PASSWORD)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	store := repo.New(db)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	svc := &service.AuthService{Repo: store, Events: events.Nop{}}
	id, created, err := svc.EnsureAdmin(ctx, *email, *password)
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if created {
		log.Printf("admin %s created with id %d", *email, id)
	} else {
		log.Printf("user %s (id %d) is an admin", *email, id)
	}
}
