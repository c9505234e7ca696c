package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/abhisek/skilltree/internal/catalog"
	"github.com/abhisek/skilltree/internal/progress"
	"github.com/abhisek/skilltree/internal/render"
	"github.com/abhisek/skilltree/internal/ui/components"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Manage and inspect skill trees",
}

var treeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all trees",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		trees, err := e.store.Trees().List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%5s  %-40s  %s\n", "ID", "Title", "Free")
		fmt.Fprintln(out, strings.Repeat("─", 54))
		for _, t := range trees {
			fmt.Fprintf(out, "%5d  %-40s  %v\n", t.ID, truncate(t.Title, 40), t.IsFree)
		}
		fmt.Fprintf(out, "\n%d trees\n", len(trees))
		return nil
	},
}

var treeShowCmd = &cobra.Command{
	Use:   "show <tree-id>",
	Short: "Show the roadmap of a tree, optionally for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		treeID, err := parseID("tree", args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		userID, err := lookupUser(ctx, e, cmd)
		if err != nil {
			return err
		}
		tree, err := e.store.Trees().Get(ctx, treeID)
		if err != nil {
			return err
		}
		rm, err := e.tracker().Roadmap(ctx, userID, treeID)
		if err != nil {
			return err
		}
		view := render.Roadmap(rm, tree.Title)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, view)
		}
		fmt.Fprint(cmd.OutOrStdout(), components.Roadmap(view, 60))
		return nil
	},
}

var treeGraphCmd = &cobra.Command{
	Use:   "graph <tree-id>",
	Short: "Print the graph-drawing payload of a tree as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		treeID, err := parseID("tree", args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		userID, err := lookupUser(ctx, e, cmd)
		if err != nil {
			return err
		}
		rm, err := e.tracker().Roadmap(ctx, userID, treeID)
		if err != nil {
			return err
		}
		return writeJSON(cmd, render.Graph(rm))
	},
}

var treeImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a tree definition (YAML or TOML), replacing a tree with the same title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		path := args[0]
		if err := importFile(cmd, e, path); err != nil {
			return err
		}
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return watchFile(cmd, e, path)
		}
		return nil
	},
}

var treeSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the built-in sample tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		tree, err := catalog.Import(cmd.Context(), e.store.Trees(), catalog.Sample())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded tree %d: %s\n", tree.ID, tree.Title)
		return nil
	},
}

var treeSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the built-in sample tree as a definition file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		data, err := catalog.Encode(catalog.Sample(), catalog.Format(format))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var treeValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a tree definition without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := catalog.Parse(args[0])
		if err != nil {
			return err
		}
		if err := def.Validate(); err != nil {
			return err
		}
		g, _ := def.Graph()
		goal, _ := g.GoalNode()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes, %d edges, goal %q)\n",
			def.Tree.Title, g.Len(), len(def.Edges), goal.Title)
		return nil
	},
}

func init() {
	treeShowCmd.Flags().String("user", "", "Username whose progress to show")
	treeShowCmd.Flags().Bool("json", false, "Print the roadmap as JSON")
	treeGraphCmd.Flags().String("user", "", "Username whose progress to include")
	treeImportCmd.Flags().Bool("watch", false, "Re-import whenever the file changes")
	treeSampleCmd.Flags().String("format", string(catalog.YAML), "Output format: yaml or toml")

	treeCmd.AddCommand(treeListCmd)
	treeCmd.AddCommand(treeShowCmd)
	treeCmd.AddCommand(treeGraphCmd)
	treeCmd.AddCommand(treeImportCmd)
	treeCmd.AddCommand(treeSeedCmd)
	treeCmd.AddCommand(treeSampleCmd)
	treeCmd.AddCommand(treeValidateCmd)
}

func importFile(cmd *cobra.Command, e *env, path string) error {
	def, err := catalog.Parse(path)
	if err != nil {
		return err
	}
	tree, err := catalog.Import(cmd.Context(), e.store.Trees(), def)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported tree %d: %s (%d nodes, %d edges)\n",
		tree.ID, tree.Title, len(def.Nodes), len(def.Edges))
	return nil
}

// watchFile re-imports path on every change until the command is
// interrupted. Failed imports are reported and the previous tree is kept.
func watchFile(cmd *cobra.Command, e *env, path string) error {
	w, err := catalog.NewWatcher(path)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	e.logger.Info("watching for changes", "file", w.Path)
	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			e.logger.Warn("watch error", "error", err)
		case <-w.Changes:
			if err := importFile(cmd, e, path); err != nil {
				e.logger.Error("re-import failed", "file", path, "error", err)
			}
		}
	}
}

// lookupUser resolves the --user flag to a user ID. Without the flag the
// anonymous user is used.
func lookupUser(ctx context.Context, e *env, cmd *cobra.Command) (int, error) {
	name, _ := cmd.Flags().GetString("user")
	if name == "" {
		return progress.Anonymous, nil
	}
	u, err := e.store.Users().ByUsername(ctx, name)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func parseID(what, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + what + " id " + strconv.Quote(s))
	}
	return id, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to at most n terminal cells, ending in "...".
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "...")
}
