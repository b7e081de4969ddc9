package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mmcdole/atelier/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const authTimeout = 30 * time.Second

// prompter reads answers from the terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter() *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	input, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// password reads hidden input when stdin is a terminal
func (p *prompter) password(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(p.out) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and sync favorites with your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			p := newPrompter()
			if email == "" {
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
			defer cancel()

			user, err := a.session.Login(ctx, email, password)
			if err != nil {
				return describeAuthError(err)
			}
			fmt.Printf("✓ Signed in as %s\n", user.Username)

			return syncAfterSignIn(ctx, a)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	var email, username string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sync favorites with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			p := newPrompter()
			if email == "" {
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			if username == "" {
				if username, err = p.line("Username: "); err != nil {
					return err
				}
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}
			confirm, err := p.password("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
			defer cancel()

			user, err := a.session.Register(ctx, email, username, password)
			if err != nil {
				return describeAuthError(err)
			}
			fmt.Printf("✓ Account created, signed in as %s\n", user.Username)

			return syncAfterSignIn(ctx, a)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	return cmd
}

// syncAfterSignIn merges the favorites collected on this machine into the
// new session
func syncAfterSignIn(ctx context.Context, a *app) error {
	cache := a.newCache(false)
	defer cache.Close()

	cache.Initialize(ctx)
	if err := cache.EnableSync(ctx); err != nil {
		a.logger.Warn("favorites sync after sign-in failed", "error", err)
		fmt.Println("! Favorites will sync next time the server is reachable")
		return nil
	}
	fmt.Printf("✓ %d favorites synced\n", cache.GetCount())
	return nil
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; favorites stay on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.IsAuthenticated() {
				fmt.Println("Not signed in")
				return nil
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Println("✓ Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.IsAuthenticated() {
				fmt.Println("Not signed in")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
			defer cancel()

			user, err := a.session.Verify(ctx)
			switch {
			case errors.Is(err, domain.ErrSessionExpired):
				return errors.New("session expired, run atelier login")
			case errors.Is(err, domain.ErrNetwork):
				cached, _ := a.session.User()
				fmt.Printf("%s <%s> (server unreachable)\n", cached.Username, cached.Email)
				return nil
			case err != nil:
				return err
			}
			fmt.Printf("%s <%s>\n", user.Username, user.Email)
			return nil
		},
	}
}

func describeAuthError(err error) error {
	if errors.Is(err, domain.ErrNetwork) {
		return fmt.Errorf("server unreachable: %w", err)
	}
	return err
}
