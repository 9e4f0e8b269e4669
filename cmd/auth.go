package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/urfave/cli/v3"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// readPassword prompts for a password without echoing, falling back to the
// flag value when one was provided.
func (r *Runner) readPassword(cmd *cli.Command, flag, prompt string) (string, error) {
	if password := cmd.String(flag); password != "" {
		return password, nil
	}

	r.writePlain("%s: ", prompt)
	raw, err := term.ReadPassword(uintptr(syscall.Stdin))
	r.writePlain("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// AuthLogin signs in with a username or email and stores the session locally.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	usernameOrEmail := cmd.StringArg("user")
	if usernameOrEmail == "" {
		return fmt.Errorf("%w: username or email", shared.ErrMissingArgument)
	}

	password, err := r.readPassword(cmd, "password", "Password")
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "user", usernameOrEmail)

	user, err := r.session.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Signed in as %s\n", user.DisplayName())
}

// AuthSignup registers a new account and signs in.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	password, err := r.readPassword(cmd, "password", "Password")
	if err != nil {
		return err
	}

	req := models.UserRequest{
		FirstName: cmd.String("first-name"),
		LastName:  cmd.String("last-name"),
		Username:  cmd.String("username"),
		Email:     cmd.String("email"),
		Password:  password,
	}

	r.logger.Info("registering account", "username", req.Username)

	user, err := r.session.Signup(ctx, req)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Account created, signed in as %s\n", user.DisplayName())
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.SignedIn() {
		return r.writePlain("Not signed in\n")
	}

	if err := r.session.Logout(); err != nil {
		return err
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the current session and backend health.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if health, err := r.client.Health(ctx); err != nil {
		r.writePlain("✗ Backend unreachable: %v\n", err)
	} else {
		r.writePlain("✓ Backend healthy (%s)\n", health.Status)
	}

	user := r.session.Current()
	if user == nil {
		return r.writePlain("Session: not signed in\n")
	}

	r.writePlain("Session: %s (%s)\n", user.DisplayName(), user.Email)
	if r.session.NotificationsEnabled() {
		r.writePlain("Notifications: enabled\n")
	} else {
		r.writePlain("Notifications: disabled\n")
	}
	return nil
}

// AuthPasswd changes the signed-in user's password.
func (r *Runner) AuthPasswd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(); err != nil {
		return err
	}

	current, err := r.readPassword(cmd, "current", "Current password")
	if err != nil {
		return err
	}
	updated, err := r.readPassword(cmd, "new", "New password")
	if err != nil {
		return err
	}

	if err := r.session.ChangePassword(ctx, current, updated); err != nil {
		return err
	}

	return r.writePlain("✓ Password updated\n")
}

// AuthDelete deletes the signed-in user's account after confirmation.
func (r *Runner) AuthDelete(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser()
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete account %q", shared.ErrMissingConfig, user.Username)
	}

	if err := r.session.DeleteAccount(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Account deleted\n")
}

// authCommand handles session operations.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the BookBuddy session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with username or email",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "user"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "First name", Required: true},
					&cli.StringFlag{Name: "last-name", Usage: "Last name", Required: true},
					&cli.StringFlag{Name: "username", Usage: "Username", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password (prompted when omitted)"},
				},
				Action: r.AuthSignup,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show session and backend state",
				Action: r.AuthStatus,
			},
			{
				Name:  "passwd",
				Usage: "Change the account password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Usage: "Current password (prompted when omitted)"},
					&cli.StringFlag{Name: "new", Usage: "New password (prompted when omitted)"},
				},
				Action: r.AuthPasswd,
			},
			{
				Name:  "delete",
				Usage: "Delete the account permanently",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "Confirm deletion"},
				},
				Action: r.AuthDelete,
			},
		},
	}
}
