package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

func newMigrateCmd(g *globals) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Store == nil {
				return domain.ConfigurationError("no database configured", nil)
			}

			migrator := storage.NewMigrator(a.Store)
			var status *storage.MigrationStatus
			if statusOnly {
				status, err = migrator.Status(cmd.Context())
			} else {
				before, serr := migrator.Status(cmd.Context())
				if serr != nil {
					return serr
				}
				if len(before.Pending) > 0 {
					g.ui.Step("Applying %d migration(s) to %s", len(before.Pending), a.Store.Driver())
				}
				status, err = migrator.Up(cmd.Context())
			}
			if err != nil {
				return err
			}

			if g.ui.JSONMode() {
				return g.ui.JSON(map[string]interface{}{
					"upToDate": status.UpToDate,
					"applied":  status.Applied,
					"pending":  status.Pending,
					"total":    status.Total,
				})
			}

			if status.UpToDate {
				g.ui.Success("Database is up to date (%d migrations)", status.Total)
			} else {
				g.ui.Warning("%d of %d migrations pending: %s", len(status.Pending), status.Total, strings.Join(status.Pending, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "report migration status without applying")
	return cmd
}
