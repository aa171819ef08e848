package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/db/repository"
)

type adminStore interface {
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (repository.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
}

func newCreateAdminCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator, or promote an existing account and reset its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var err error
			if name == "" {
				if name, err = prompt(in, out, "Name: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = prompt(in, out, "Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword(in, out)
			if err != nil {
				return err
			}

			pool, _, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			u, created, err := ensureAdmin(cmd.Context(), repository.NewUserRepository(pool), name, email, password)
			if err != nil {
				return err
			}
			verb := "promoted"
			if created {
				verb = "created"
			}
			fmt.Fprintf(out, "Administrator %s <%s> %s (id %s)\n", u.Name, u.Email, verb, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	return cmd
}

// ensureAdmin creates the account or, when the email is taken, grants admin and replaces the password.
func ensureAdmin(ctx context.Context, users adminStore, name, email, password string) (repository.User, bool, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(name) < 2 {
		return repository.User{}, false, errors.New("name must be at least 2 characters")
	}
	if !strings.Contains(email, "@") {
		return repository.User{}, false, errors.New("a valid email is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return repository.User{}, false, err
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u, err := users.Create(ctx, repository.CreateUserParams{Name: name, Email: email, PasswordHash: &hash, IsAdmin: true})
		if err != nil {
			return repository.User{}, false, fmt.Errorf("create admin: %w", err)
		}
		return u, true, nil
	case err != nil:
		return repository.User{}, false, fmt.Errorf("look up %s: %w", email, err)
	}

	u, err := users.Update(ctx, existing.ID, repository.UpdateUserParams{Name: name, Email: email, IsAdmin: true})
	if err != nil {
		return repository.User{}, false, fmt.Errorf("promote admin: %w", err)
	}
	if err := users.SetPassword(ctx, existing.ID, hash); err != nil {
		return repository.User{}, false, fmt.Errorf("set password: %w", err)
	}
	return u, false, nil
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal and falls back to a plain line for piped input.
func readPassword(in *bufio.Reader, out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(in, out, "Password: ")
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
