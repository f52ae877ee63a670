package main

import (
	"fmt"
	"time"

	"journeymap/infrastructure/config"
	"journeymap/pkg/auth"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	heading = color.New(color.FgHiGreen, color.Bold)
	subtle  = color.New(color.FgHiBlack)
	info    = color.New(color.FgCyan)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "journeyctl",
		Short:         "Generate and inspect journey maps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd(), newLayoutCmd(), newTokenCmd())
	return root
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			generator, err := auth.NewJWTGenerator(auth.JWTConfig{
				SecretKey: cfg.JWTSecret,
				Issuer:    cfg.JWTIssuer,
			}, ttl)
			if err != nil {
				return err
			}
			token, err := generator.GenerateToken(userID, email, []string{"authenticated"})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local-user", "user id placed in the sub claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
