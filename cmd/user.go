package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learners",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user and print its API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := e.store.Users().Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %d: %s\nToken: %s\n", u.ID, u.Username, u.Token)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		users, err := e.store.Users().List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%5s  %-24s  %s\n", "ID", "Username", "Last node")
		fmt.Fprintln(out, strings.Repeat("─", 44))
		for _, u := range users {
			last := "-"
			if u.LastNodeID != nil {
				last = fmt.Sprint(*u.LastNodeID)
			}
			fmt.Fprintf(out, "%5d  %-24s  %s\n", u.ID, truncate(u.Username, 24), last)
		}
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}
