package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gradebot/catalog"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with the assignment map",
	}
	cmd.AddCommand(newCatalogBuildCmd(), newCatalogListCmd())
	return cmd
}

func newCatalogBuildCmd() *cobra.Command {
	var manifestPath, root, out string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile assignment folders listed in a YAML manifest into the JSON assignment map",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(manifestPath)
			if err != nil {
				return err
			}
			defer f.Close()

			m, err := catalog.ReadManifest(f)
			if err != nil {
				return err
			}
			if root == "" {
				root = filepath.Dir(manifestPath)
			}
			records, err := catalog.Compile(m, root)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				of, err := os.Create(out)
				if err != nil {
					return err
				}
				defer of.Close()
				w = of
			}
			if err := catalog.WriteJSON(w, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "compiled %d assignments\n", len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "assignments.yaml", "YAML manifest listing assignment folders")
	cmd.Flags().StringVar(&root, "root", "", "directory the manifest paths are relative to (default: the manifest's directory)")
	cmd.Flags().StringVar(&out, "out", "assignment_map.json", "output file, or - for stdout")
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the identifiers a compiled assignment map resolves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Load(path)
			if err != nil {
				return err
			}
			for _, id := range c.Identifiers() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "map", "assignment_map.json", "compiled assignment map")
	return cmd
}
