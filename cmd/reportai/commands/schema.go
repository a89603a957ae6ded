package commands

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/schema"
)

func newSchemaCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export and import the configuration tree",
	}
	cmd.AddCommand(newSchemaExportCmd(g), newSchemaImportCmd(g), newSchemaTreeCmd(g))
	return cmd
}

func newSchemaExportCmd(g *globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configuration tree as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSchema(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.Schema.ExportSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			g.ui.Success("Exported %d product(s) to %s", len(snap.Products), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newSchemaImportCmd(g *globals) *cobra.Command {
	var clearExisting bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSON snapshot into the configuration store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return domain.ValidationError("read snapshot", err)
			}
			snap, err := schema.ParseSnapshot(data)
			if err != nil {
				return err
			}

			a, err := g.openSchema(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if clearExisting {
				g.ui.Warning("Existing products will be replaced")
			}
			result, err := a.Schema.ImportSnapshot(cmd.Context(), snap, clearExisting)
			if err != nil {
				return err
			}

			if g.ui.JSONMode() {
				return g.ui.JSON(result)
			}
			g.ui.Success("Imported snapshot version %s", snap.Version)
			g.ui.Table([]string{"ENTITY", "COUNT"}, importRows(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearExisting, "clear", false, "delete existing products before importing")
	return cmd
}

func newSchemaTreeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "List products with their subproducts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSchema(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			tree, err := a.Schema.Tree(cmd.Context())
			if err != nil {
				return err
			}
			if g.ui.JSONMode() {
				return g.ui.JSON(tree)
			}
			if len(tree) == 0 {
				g.ui.Info("No products configured")
				return nil
			}

			var rows [][]string
			for _, p := range tree {
				rows = append(rows, []string{strconv.FormatInt(p.Product.ID, 10), p.Product.Name, p.Product.Slug, ""})
				for _, sp := range p.Subproducts {
					rows = append(rows, []string{strconv.FormatInt(sp.Subproduct.ID, 10), "  " + sp.Subproduct.Name, sp.Subproduct.Slug, strconv.Itoa(len(sp.TacticTypes))})
				}
			}
			g.ui.Table([]string{"ID", "NAME", "SLUG", "TABLES"}, rows)
			return nil
		},
	}
}

func importRows(r *schema.ImportResult) [][]string {
	counts := map[string]int{
		"products":          r.Products,
		"subproducts":       r.Subproducts,
		"tactic_types":      r.TacticTypes,
		"extractors":        r.Extractors,
		"benchmarks":        r.Benchmarks,
		"overrides":         r.Overrides,
		"skipped_overrides": r.SkippedOverrides,
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys)+1)
	if r.Cleared > 0 {
		rows = append(rows, []string{"cleared", strconv.FormatInt(r.Cleared, 10)})
	}
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return rows
}
