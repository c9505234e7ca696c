package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse the skill catalogue",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		skills, err := e.store.Skills().List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%5s  %-40s  %8s\n", "ID", "Title", "Duration")
		fmt.Fprintln(out, strings.Repeat("─", 57))
		for _, s := range skills {
			d := time.Duration(s.Duration) * time.Second
			fmt.Fprintf(out, "%5d  %-40s  %8s\n", s.ID, truncate(s.Title, 40), d)
		}
		fmt.Fprintf(out, "\n%d skills\n", len(skills))
		return nil
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <skill-id>",
	Short: "Show a skill with its rendered text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("skill", args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.store.Skills().Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", s.Title)
		if s.VideoURL != "" {
			fmt.Fprintf(out, "Video:    %s\n", s.VideoURL)
		}
		fmt.Fprintf(out, "Duration: %s\n", time.Duration(s.Duration)*time.Second)

		if s.Text == "" {
			return nil
		}
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprintf(out, "\n%s\n", s.Text)
			return nil
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return fmt.Errorf("create markdown renderer: %w", err)
		}
		text, err := r.Render(s.Text)
		if err != nil {
			return fmt.Errorf("render skill text: %w", err)
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func init() {
	skillShowCmd.Flags().Bool("raw", false, "Print the markdown text without rendering")

	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillShowCmd)
}
