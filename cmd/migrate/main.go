// File: cmd/migrate/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"tutor-onboarding/internal/config"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/adapters/account"
	pg "tutor-onboarding/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	seed := flag.Bool("seed", false, "create a demo account after migrating")
	email := flag.String("email", "demo@tutor.local", "demo account email")
	password := flag.String("password", "demo-password", "demo account password")
	flag.Parse()

	// dev relaxes secret validation; this tool only needs the database.
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database.url is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	fmt.Println("schema up to date")

	users := pg.NewPostgresUserRepo(pool)
	n, err := users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("count users: %v", err)
	}
	if !*seed {
		fmt.Printf("%d accounts present\n", n)
		return
	}

	svc := account.NewLocalAccountService(users, pg.NewTxManager(pool))
	u, err := svc.CreateAccount(ctx, adapter.NewAccount{
		Email:    *email,
		Password: *password,
		Username: "demo",
		Subject:  model.SubjectBiology,
		Plan:     model.PlanBasic,
	})
	var ae *adapter.AccountError
	if errors.As(err, &ae) && ae.Kind == adapter.KindConflict {
		fmt.Printf("%s already registered. No changes.\n", *email)
		return
	}
	if err != nil {
		log.Fatalf("seed account: %v", err)
	}
	fmt.Printf("seeded: %s (id=%s, subject=%s, plan=%s)\n", u.Email, u.ID, u.Subject, u.SubscriptionPlan)
}
