package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"malstats/internal/auth"
)

func tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token [operator]",
		Short: "Issue a bearer token for the import and delete API routes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			operator := "operator"
			if len(args) > 0 {
				operator = args[0]
			}
			ts := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTDuration)
			tok, exp, err := ts.Sign(operator)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			fmt.Println("expires", exp.UTC().Format(time.RFC3339))
			return nil
		},
	}
}
