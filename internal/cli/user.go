package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/spf13/cobra"
)

// passwordEnv lets scripts pass the password without exposing it in the process list.
const passwordEnv = "JOS_USER_PASSWORD"

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var (
		req   dto.CreateUserRequest
		role  string
		email string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Create a user account. The first account ever created becomes admin
regardless of --role, which is how a fresh installation is bootstrapped.

The password is read from --password or, when omitted, from ` + passwordEnv + `.`,
		Example: `  jos_admin user create --username mario --name "Mario Rossi" --role admin
  JOS_USER_PASSWORD=segreto123 jos_admin user create --username anna --name Anna`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv(passwordEnv)
			}
			if req.Password == "" {
				return errors.New("a password is required (--password or " + passwordEnv + ")")
			}
			req.Role = domain.UserRole(role)
			if req.Role != "" && req.Role != domain.RoleAdmin && req.Role != domain.RoleOperator {
				return fmt.Errorf("unknown role %q", role)
			}
			if email != "" {
				req.Email = &email
			}

			ctx := cmd.Context()
			svc, cleanup, err := a.services(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// No creator: the CLI runs with the operator's shell access, not a session.
			user, err := svc.User.CreateUser(ctx, req, "")
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), dto.ToUserResponse(user))
		},
	}
	create.Flags().StringVar(&req.Username, "username", "", "Login name")
	create.Flags().StringVar(&req.Name, "name", "", "Display name")
	create.Flags().StringVar(&req.Password, "password", "", "Password (at least 8 characters)")
	create.Flags().StringVar(&role, "role", "", "admin or operator (default operator)")
	create.Flags().StringVar(&email, "email", "", "Email, used to link Google sign-in")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}
