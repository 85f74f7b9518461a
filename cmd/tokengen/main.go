// Command tokengen mints development bearer tokens for the seeded demo
// identities. It signs with the same JWT_SIGNING_KEY the server reads, so a
// token printed here is accepted by a locally running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"caseseal/internal/identity"
	"caseseal/internal/platform/config"
	"caseseal/pkg/secrets"
)

func main() {
	var (
		username  = flag.String("username", "", "seeded username to mint a token for")
		password  = flag.String("password", "", "password of the seeded user (optional; skips verification when empty)")
		ttl       = flag.Duration("ttl", time.Hour, "token lifetime")
		list      = flag.Bool("list", false, "list the seeded demo identities and exit")
		newSecret = flag.Bool("new-secret", false, "generate a random secret for JWT_SIGNING_KEY or CASESEAL_MASTER_KEY and exit")
	)
	flag.Parse()

	seedUsers := identity.DefaultSeedUsers()

	if *list {
		for _, u := range seedUsers {
			fmt.Printf("%-12s role=%s\n", u.Username, u.Role)
		}
		return
	}

	if *newSecret {
		secret, err := secrets.Generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "tokengen: generate secret: %v\n", err)
			os.Exit(1)
		}
		hash, err := secrets.Hash(secret)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tokengen: hash secret: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("secret: %s\n", secret)
		fmt.Printf("bcrypt: %s\n", hash)
		return
	}

	if *username == "" {
		fmt.Fprintln(os.Stderr, "tokengen: -username is required (use -list to see the roster)")
		os.Exit(2)
	}

	ctx := context.Background()
	store := identity.NewInMemoryStore()
	if _, err := identity.Seed(ctx, store, seedUsers); err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: seed identities: %v\n", err)
		os.Exit(1)
	}

	user, err := store.FindByUsername(ctx, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: unknown user %q\n", *username)
		os.Exit(1)
	}

	if *password != "" {
		if err := secrets.Verify(*password, user.PasswordHash); err != nil {
			fmt.Fprintln(os.Stderr, "tokengen: invalid password")
			os.Exit(1)
		}
	}

	cfg := config.FromEnv()
	tokens := identity.NewTokenService(cfg.JWTSigningKey, *ttl)

	signed, jti, err := tokens.Issue(user.Principal())
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("user: %s (role=%s)\n", user.Username, user.Role)
	fmt.Printf("jti:  %s\n", jti)
	fmt.Printf("token:\n%s\n", signed)
}
