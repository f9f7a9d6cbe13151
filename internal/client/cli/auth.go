package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) registerCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.Register(cmd.Context(), name, email)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (prompted if empty)")
	cmd.Flags().StringVar(&email, "email", "", "email (prompted if empty)")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.Login(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email (prompted if empty)")
	return cmd
}

func (a *App) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Get a new access token with the stored refresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.Refresh(cmd.Context())
		},
	}
}

func (a *App) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the identity behind the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.Me(cmd.Context())
		},
	}
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.Logout()
		},
	}
}

// prompt returns value, or asks for it when empty.
func (a *App) prompt(value, text string) (string, error) {
	if value != "" {
		return value, nil
	}
	return getSimpleText(a.reader, text, a.out)
}

// Register creates an account. Missing name and email are prompted for, the
// password always is.
func (a *App) Register(ctx context.Context, name, email string) error {
	name, err := a.prompt(name, "Enter name")
	if err != nil {
		return err
	}
	email, err = a.prompt(email, "Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.withClient(ctx, func(ctx context.Context, c AuthClient) error {
		u, err := c.Register(ctx, name, email, string(password))
		if err != nil {
			return err
		}
		a.printf("Registered user %d (%s)\n", u.ID, u.Email)
		return nil
	})
}

// Login authenticates and stores the returned token pair.
func (a *App) Login(ctx context.Context, email string) error {
	email, err := a.prompt(email, "Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.withClient(ctx, func(ctx context.Context, c AuthClient) error {
		u, err := c.Login(ctx, email, string(password))
		if err != nil {
			return err
		}
		a.printf("Logged in as %s\n", u.Email)
		return nil
	})
}

// Refresh replaces the stored access token.
func (a *App) Refresh(ctx context.Context) error {
	return a.withClient(ctx, func(ctx context.Context, c AuthClient) error {
		before := c.Tokens().RefreshToken
		s, err := c.Refresh(ctx)
		if err != nil {
			return err
		}
		a.printf("Access token refreshed\n")
		if s.RefreshToken != before {
			a.printf("Refresh token rotated\n")
		}
		return nil
	})
}

// Me prints the claims of the current access token.
func (a *App) Me(ctx context.Context) error {
	return a.withClient(ctx, func(ctx context.Context, c AuthClient) error {
		me, err := c.Me(ctx)
		if err != nil {
			return err
		}
		role := me.Role
		if role == "" {
			role = "-"
		}
		a.printf("user:    %s\nrole:    %s\nexpires: %s\n",
			me.Subject, role, time.Unix(me.ExpiresAt, 0).UTC().Format(time.RFC3339))
		return nil
	})
}

// Logout removes the session file.
func (a *App) Logout() error {
	if err := client.ClearSession(a.config.SessionFile); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}
