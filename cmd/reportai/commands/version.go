package commands

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newVersionCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Save, list and restore configuration versions",
	}
	cmd.AddCommand(newVersionSaveCmd(g), newVersionListCmd(g), newVersionRestoreCmd(g))
	return cmd
}

func newVersionSaveCmd(g *globals) *cobra.Command {
	var description, createdBy string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Snapshot the current configuration tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSchema(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.Schema.SaveVersion(cmd.Context(), description, createdBy)
			if err != nil {
				return err
			}
			if g.ui.JSONMode() {
				return g.ui.JSON(v)
			}
			g.ui.Success("Saved version %s (id %d)", v.VersionNumber, v.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "version description")
	cmd.Flags().StringVar(&createdBy, "by", "cli", "author recorded with the version")
	return cmd
}

func newVersionListCmd(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSchema(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			versions, err := a.Schema.ListVersions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if g.ui.JSONMode() {
				return g.ui.JSON(versions)
			}
			if len(versions) == 0 {
				g.ui.Info("No versions saved")
				return nil
			}

			rows := make([][]string, 0, len(versions))
			for _, v := range versions {
				active := ""
				if v.IsActive {
					active = "*"
				}
				rows = append(rows, []string{
					strconv.FormatInt(v.ID, 10),
					v.VersionNumber,
					active,
					v.CreatedBy,
					v.CreatedAt.Format("2006-01-02 15:04"),
					v.Description,
				})
			}
			g.ui.Table([]string{"ID", "VERSION", "ACTIVE", "BY", "CREATED", "DESCRIPTION"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum versions to list")
	return cmd
}

func newVersionRestoreCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the configuration tree with a saved version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := g.openSchema(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Schema.RestoreVersion(cmd.Context(), id)
			if err != nil {
				return err
			}
			if g.ui.JSONMode() {
				return g.ui.JSON(result)
			}
			g.ui.Success("Restored version %s", result.Version.VersionNumber)
			g.ui.Table([]string{"ENTITY", "COUNT"}, importRows(result.Import))
			return nil
		},
	}
}
