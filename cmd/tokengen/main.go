// Command tokengen mints a staff JWT for the admin API. Run it on the
// server (or anywhere with JWT_SECRET_KEY set) and hand the token to the
// staff member's dashboard session.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/clearway/collections-backend-go/internal/config"
	"github.com/clearway/collections-backend-go/internal/pkg/jwt"
)

func main() {
	subject := flag.String("subject", "", "staff identifier to embed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-subject is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	token, expiresAt, err := jwt.NewService(cfg.Auth.JWTSecret).GenerateStaffToken(*subject, *ttl)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println(token)
	fmt.Printf("expires: %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
