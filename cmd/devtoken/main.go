// Command devtoken prints a bearer token for local testing against the marketplace API.
//
//	JWT_SECRET=dev go run ./cmd/devtoken -user alice
package main

import (
	"flag"
	"fmt"
	"os"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/config"
)

func main() {
	username := flag.String("user", "", "username to put in the token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken -user <name> [-ttl 1h]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	lifetime := cfg.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.IssueToken(cfg.JWTSecret, *username, lifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
