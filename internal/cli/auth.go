package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quizctl/internal/app"
	"quizctl/internal/domain"
)

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var req domain.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("QUIZCTL_PASSWORD")
			}
			session, err := e.auth.Login(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", session.Email, session.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (or QUIZCTL_PASSWORD)")
	return cmd
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			if err := e.auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			session, err := e.auth.Current(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", session.Email, session.Role)

			claims, err := e.auth.Claims(ctx)
			if errors.Is(err, app.ErrOpaqueToken) {
				return nil
			}
			if err != nil {
				return err
			}
			if claims.ExpiresAt != nil {
				fmt.Fprintf(out, "token expires %s\n", formatTime(&claims.ExpiresAt.Time))
			}
			return nil
		}),
	}
}

func newRegisterCmd(flags *rootFlags) *cobra.Command {
	var (
		req  domain.RegisterRequest
		role string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			req.Role = domain.Role(strings.ToUpper(role))
			if err := e.auth.Register(ctx, req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as %s, you can now log in\n", req.Email, req.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStudent), "STUDENT or ADMIN")
	return cmd
}
