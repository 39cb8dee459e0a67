// Command rebind points a payee email at a connected account id. It repairs
// the orphan left when account creation succeeded but binding failed.
//
//	go run ./cmd/rebind -email payee@example.com -account acct_123
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-payments/config"
	"github.com/oksasatya/go-ddd-payments/internal/application"
	pginfra "github.com/oksasatya/go-ddd-payments/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

func main() {
	email := flag.String("email", "", "payee email")
	accountID := flag.String("account", "", "connected account id (acct_...)")
	flag.Parse()
	if *email == "" || *accountID == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-rebind", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), AppName: cfg.AppName + "-rebind", MaxConns: 2})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	registry := application.NewAccountRegistry(pginfra.NewIdentityRepository(pool), nil, logger)
	previous, err := registry.Resolve(ctx, *email)
	if err != nil {
		previous = "(none)"
	}
	if err := registry.Bind(ctx, *email, *accountID); err != nil {
		logger.Fatalf("rebind failed: %v", err)
	}
	fmt.Printf("bound email=%s account=%s previous=%s\n", *email, *accountID, previous)
}
