package commands

import (
	"github.com/spf13/cobra"

	"github.com/edwinlov3tt/report-ai-sub000/internal/llm"
)

func newModelsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List AI models and whether their provider keys are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := llm.NewRegistry(llm.DefaultModels(), nil)
			statuses := registry.Statuses()

			if g.ui.JSONMode() {
				return g.ui.JSON(map[string]interface{}{
					"models":       statuses,
					"defaultModel": g.cfg.AI.DefaultModel,
				})
			}

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				id := s.ID
				if id == g.cfg.AI.DefaultModel {
					id += " (default)"
				}
				rows = append(rows, []string{id, s.Name, string(s.Provider), s.EnvKey, g.ui.YesNo(s.Configured)})
			}
			g.ui.Table([]string{"MODEL", "NAME", "PROVIDER", "KEY", "CONFIGURED"}, rows)
			return nil
		},
	}
}
