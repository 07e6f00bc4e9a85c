package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/service"
)

var (
	// User flags
	userEmail    string
	userName     string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account and print its bearer token",
	Long: `Create an account with the same validation as the sign up endpoint.

Examples:
  blogctl user create --email writer@example.com --name Writer --password secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvironment(func(env *environment) error {
			services := service.NewServices(repository.New(env.db), env.db, env.cfg, env.log)
			session, err := services.Account.SignUp(context.Background(), models.SignUpInput{
				Email:                userEmail,
				Password:             userPassword,
				PasswordConfirmation: userPassword,
				Name:                 userName,
			})
			if err != nil {
				var ve *models.ValidationError
				if errors.As(err, &ve) {
					return fmt.Errorf("invalid account: %s", strings.Join(ve.Messages, "; "))
				}
				return err
			}
			return printResult(session, fmt.Sprintf("created user %s\ntoken: %s", session.User.ID, session.Token))
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Account email")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Account password")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}
