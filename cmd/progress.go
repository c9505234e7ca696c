package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Toggle a learner's progress on a node",
}

var progressDoneCmd = &cobra.Command{
	Use:   "done <username> <node-id>",
	Short: "Toggle completion of a node's skill",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, "done")
	},
}

var progressIgnoreCmd = &cobra.Command{
	Use:   "ignore <username> <node-id>",
	Short: "Toggle ignoring of a node's skill",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, "ignored")
	},
}

func init() {
	progressCmd.AddCommand(progressDoneCmd)
	progressCmd.AddCommand(progressIgnoreCmd)
}

func runToggle(cmd *cobra.Command, args []string, kind string) error {
	nodeID, err := parseID("node", args[1])
	if err != nil {
		return err
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	u, err := e.store.Users().ByUsername(ctx, args[0])
	if err != nil {
		return err
	}

	tr := e.tracker()
	var on bool
	if kind == "done" {
		on, err = tr.ToggleDone(ctx, u.ID, nodeID)
	} else {
		on, err = tr.ToggleIgnore(ctx, u.ID, nodeID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "node %d %s: %v\n", nodeID, kind, on)
	return nil
}
