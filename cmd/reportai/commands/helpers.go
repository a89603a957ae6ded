package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/edwinlov3tt/report-ai-sub000/internal/app"
	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
)

// openApp builds the service graph. Pending migrations are applied so every
// command works against a fresh database.
func (g *globals) openApp(cmd *cobra.Command, migrate bool) (*app.App, error) {
	return app.New(cmd.Context(), g.cfg, g.logger, app.Options{Migrate: migrate})
}

// openSchema is openApp for commands that need the configuration store.
func (g *globals) openSchema(cmd *cobra.Command) (*app.App, error) {
	a, err := g.openApp(cmd, true)
	if err != nil {
		return nil, err
	}
	if a.Schema == nil {
		_ = a.Close()
		return nil, domain.ConfigurationError("the configuration store requires a database", nil)
	}
	return a, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError("invalid id "+strconv.Quote(arg), err)
	}
	return id, nil
}
