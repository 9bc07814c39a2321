package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markbook-app/markbook/internal/roster"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the student ID roster",
	}
	cmd.AddCommand(newRosterCreateCmd())
	cmd.AddCommand(newRosterLookupCmd())
	cmd.AddCommand(newRosterListCmd())
	return cmd
}

func newRosterCreateCmd() *cobra.Command {
	var from, out string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build a roster from a forms response export",
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := os.ReadFile(from)
			if err != nil {
				return err
			}
			var subs []roster.Submission
			if err := json.Unmarshal(data, &subs); err != nil {
				return fmt.Errorf("parse %s: %w", from, err)
			}
			r := roster.FromSubmissions(from, subs)
			if err := r.Save(out); err != nil {
				return err
			}
			fmt.Printf("wrote %d students to %s\n", len(r.Students), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "forms response export (JSON)")
	cmd.Flags().StringVar(&out, "out", "roster.yaml", "roster file to write (.yaml or .json)")
	cmd.MarkFlagRequired("from")
	return cmd
}

func newRosterLookupCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "lookup <student-id-or-email>",
		Short: "Resolve one roster entry by ID or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := roster.Load(path)
			if err != nil {
				return err
			}
			key := args[0]
			id := key
			s, ok := r.LookupByID(key)
			if !ok && strings.Contains(key, "@") {
				id, s, ok = r.LookupByEmail(key)
			}
			if !ok {
				return fmt.Errorf("no roster entry for %q", key)
			}
			fmt.Printf("%s\t%s\t%s\n", id, s.Email, s.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "roster", "roster.yaml", "roster file")
	return cmd
}

func newRosterListCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all roster entries",
		RunE: func(_ *cobra.Command, _ []string) error {
			r, err := roster.Load(path)
			if err != nil {
				return err
			}
			for _, id := range r.List() {
				s := r.Students[id]
				fmt.Printf("%s\t%s\t%s\n", id, s.Email, s.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "roster", "roster.yaml", "roster file")
	return cmd
}
