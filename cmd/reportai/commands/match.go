package commands

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edwinlov3tt/report-ai-sub000/internal/matcher"
)

func newMatchCmd(g *globals) *cobra.Command {
	var headers []string

	cmd := &cobra.Command{
		Use:   "match <filename>",
		Short: "Show which tactic tables a CSV filename and headers match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			tables, err := a.Tables(cmd.Context())
			if err != nil {
				return err
			}

			filename := filepath.Base(args[0])
			byName := matcher.MatchFilename(filename, tables)
			var byHeader []matcher.HeaderMatch
			if len(headers) > 0 {
				byHeader = matcher.MatchHeaders(headers, tables)
			}

			if g.ui.JSONMode() {
				return g.ui.JSON(map[string]interface{}{
					"filenameMatches": byName,
					"headerMatches":   byHeader,
				})
			}

			if len(tables) == 0 {
				g.ui.Warning("No tactic tables configured")
			}
			if len(byName) == 0 {
				g.ui.Info("No filename matches for %s", filename)
			} else {
				rows := make([][]string, 0, len(byName))
				for _, m := range byName {
					rows = append(rows, []string{m.Product, m.Table.TableSlug, m.Table.Name, m.MatchType, strconv.Itoa(m.Score)})
				}
				g.ui.Table([]string{"PRODUCT", "TABLE", "NAME", "MATCH", "SCORE"}, rows)
			}

			if len(headers) > 0 {
				if len(byHeader) == 0 {
					g.ui.Info("No header matches")
					return nil
				}
				rows := make([][]string, 0, len(byHeader))
				for _, m := range byHeader {
					rows = append(rows, []string{m.Product, m.Table.TableSlug, strconv.Itoa(m.Percent) + "%", strings.Join(m.MissingHeaders, ",")})
				}
				g.ui.Table([]string{"PRODUCT", "TABLE", "SIMILARITY", "MISSING"}, rows)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&headers, "headers", nil, "comma separated CSV headers to match")
	return cmd
}
