package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nriit/facultypubs/internal/server/biz"
)

var tokenEmail string

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Principal email to sign the token for (required)")
	_ = tokenCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(tokenCmd, secretCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for a principal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		token, err := biz.NewAuthService(biz.AuthServiceParams{Config: cfg.Auth}).IssueToken(tokenEmail)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a random value for auth.jwt_secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := biz.GenerateSecretKey()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), secret)

		return nil
	},
}
