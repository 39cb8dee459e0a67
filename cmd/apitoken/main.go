// Command apitoken mints a bearer token for an API client when
// API_AUTH_ENABLED is on.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-payments/config"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

func main() {
	client := flag.String("client", "", "client name carried in the token")
	ttl := flag.Duration("ttl", 0, "token lifetime (default JWT_ACCESS_TTL)")
	flag.Parse()
	if *client == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.JWTAccessSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_ACCESS_SECRET is not set")
		os.Exit(1)
	}
	if *ttl <= 0 {
		*ttl = cfg.AccessTTL
	}

	token, exp, err := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTIssuer, *ttl).GenerateToken(*client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n# expires %s\n", token, exp.UTC().Format(time.RFC3339))
}
