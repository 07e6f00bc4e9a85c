package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blog-publishing-api/internal/auth"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
)

var (
	// Token flags
	tokenEmail string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token for an existing account",
	Long: `Issue a bearer token without a password, for operators and scripts.

Examples:
  blogctl token issue --email writer@example.com
  blogctl token issue --email writer@example.com --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvironment(func(env *environment) error {
			user, err := repository.NewUserRepo(env.db).GetByEmail(context.Background(), tokenEmail)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("no user with email %s", tokenEmail)
			}

			ttl := env.cfg.Auth.TokenTTL
			if tokenTTL > 0 {
				ttl = tokenTTL
			}
			token, expiresAt, err := auth.NewIssuer([]byte(env.cfg.Auth.SecretKey), ttl).Issue(user.ID)
			if err != nil {
				return err
			}
			session := &models.Session{User: user, Token: token, ExpiresAt: expiresAt}
			return printResult(session, auth.BearerHeader(token))
		})
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "Account email")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to JWT_TTL)")
	_ = tokenIssueCmd.MarkFlagRequired("email")
}

