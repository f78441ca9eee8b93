// Command tokengen prints a bearer token for the flight summary API, signed
// with JWT_SECRET from the environment or .env.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iliyamo/flight-cargo-summary/internal/config"
	"github.com/iliyamo/flight-cargo-summary/internal/utils"
)

func main() {
	subject := flag.String("sub", "ops-board", "token subject")
	role := flag.String("role", "OPS", "role claim checked against API_ROLES")
	ttl := flag.Duration("ttl", 0, "token lifetime (default ACCESS_TOKEN_TTL_MIN minutes)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.AuthEnabled() {
		log.Fatal("JWT_SECRET is not set; the API is running without auth")
	}

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = time.Duration(cfg.AccessTTLMin) * time.Minute
	}
	tok, err := utils.NewAccessToken(cfg.JWTSecret, *subject, *role, lifetime)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}
