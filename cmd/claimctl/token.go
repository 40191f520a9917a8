package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/fatih/color"

	"claimflow/internal/auth"
	"claimflow/internal/config"
)

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("sub", "", "token subject (caller name)")
	ttl := fs.Duration("ttl", 0, "token lifetime, defaults to the configured TTL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	issuer, err := auth.NewIssuer(&cfg.Auth)
	if err != nil {
		return err
	}

	token, expiresAt, err := issuer.Issue(*subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	color.New(color.FgHiBlack).Printf("expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
