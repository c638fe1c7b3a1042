package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quizctl/internal/domain"
)

func newUsersCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users (admin)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every user",
			RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
				users, err := e.admin.Users(ctx)
				if err != nil {
					return err
				}
				tw := table(cmd.OutOrStdout(), "ID", "NAME", "EMAIL", "ROLE")
				for _, u := range users {
					row(tw, u.ID, u.Name, u.Email, u.Role)
				}
				return tw.Flush()
			}),
		},
		&cobra.Command{
			Use:   "role USER_ID ROLE",
			Short: "Set a user's role to STUDENT or ADMIN",
			Args:  cobra.ExactArgs(2),
			RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
				userID, err := parseID(args[0], "user id")
				if err != nil {
					return err
				}
				user, err := e.admin.UpdateRole(ctx, userID, domain.Role(strings.ToUpper(args[1])))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
				return nil
			}),
		},
	)
	return cmd
}
