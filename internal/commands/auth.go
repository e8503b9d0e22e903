package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard/internal/dto"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			var err error
			if name == "" {
				if name, err = a.prompt("Name"); err != nil {
					return err
				}
			}
			if email, password, err = a.credentials(email, password); err != nil {
				return err
			}

			auth, err := a.api.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if err := a.store.SetAuth(auth.Token, dto.UserDTO{ID: auth.ID, Name: auth.Name, Email: auth.Email}); err != nil {
				return err
			}
			a.notify.Success(fmt.Sprintf("Welcome, %s", auth.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			var err error
			if email, password, err = a.credentials(email, password); err != nil {
				return err
			}

			auth, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.store.SetAuth(auth.Token, dto.UserDTO{ID: auth.ID, Name: auth.Name, Email: auth.Email}); err != nil {
				return err
			}
			a.notify.Success(fmt.Sprintf("Welcome back, %s", auth.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.dash.Logout(); err != nil {
				return err
			}
			opts.app.notify.Success("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}
			user, err := a.api.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
}

func (a *app) credentials(email, password string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = a.prompt("Email"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = a.prompt("Password"); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}
