// Command devtoken mints an HS256 bearer token for local API calls.
//
// Usage:
//
//	devtoken -secret change-me -sub dev|alice -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/personal-report/organizer-api/internal/platform/auth/tokens"
)

func main() {
	secret := flag.String("secret", "", "shared HS256 secret (same as the API's JWT_SECRET)")
	sub := flag.String("sub", "dev|local", "token subject (user id)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *secret == "" {
		log.Fatal("-secret is required")
	}

	token, err := tokens.NewManager(*secret, *ttl).Mint(*sub)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Println(token)
}
