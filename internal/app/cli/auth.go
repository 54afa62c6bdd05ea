package cli

import (
	"dashboard/internal/model"
	"errors"

	"github.com/spf13/cobra"
)

func (c *CLI) loginCommand() *cobra.Command {
	var creds model.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.app.Session.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			return c.print(user)
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (c *CLI) registerCommand() *cobra.Command {
	var reg model.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a doctor account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Password2 == "" {
				reg.Password2 = reg.Password
			}
			if reg.Password != reg.Password2 {
				return errors.New("passwords do not match")
			}

			if err := c.app.Auth.Register(cmd.Context(), reg); err != nil {
				return err
			}
			return c.print(map[string]string{
				"status": "registered",
				"email":  reg.Email,
			})
		},
	}

	cmd.Flags().StringVar(&reg.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&reg.Password2, "confirm-password", "", "password confirmation, defaults to --password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (c *CLI) passwordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Recover a forgotten password",
	}

	var email string
	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Send a password reset email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Auth.ForgotPassword(cmd.Context(), email); err != nil {
				return err
			}
			return c.print(map[string]string{"status": "reset email sent"})
		},
	}
	forgot.Flags().StringVar(&email, "email", "", "account email")
	_ = forgot.MarkFlagRequired("email")

	var reset model.PasswordReset
	confirm := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with the emailed token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Auth.ResetPasswordConfirm(cmd.Context(), reset); err != nil {
				return err
			}
			return c.print(map[string]string{"status": "password updated"})
		},
	}
	confirm.Flags().StringVar(&reset.Email, "email", "", "account email")
	confirm.Flags().StringVar(&reset.Token, "token", "", "reset token")
	confirm.Flags().StringVar(&reset.NewPassword, "new-password", "", "new password")
	_ = confirm.MarkFlagRequired("email")
	_ = confirm.MarkFlagRequired("token")
	_ = confirm.MarkFlagRequired("new-password")

	cmd.AddCommand(forgot, confirm)
	return cmd
}

func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Session.Logout(cmd.Context())
			return c.print(map[string]string{"status": "logged out"})
		},
	}
}

func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := c.app.Session.CurrentUser()
			if !ok {
				return ErrNotLoggedIn
			}
			return c.print(user)
		},
	}
}
