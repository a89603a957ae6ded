// Package matcher maps uploaded CSV files to configured tactic tables by
// filename and header heuristics.
package matcher

import (
	"sort"
	"strings"
	"unicode"

	"github.com/edwinlov3tt/report-ai-sub000/internal/schema"
)

// Match types and their scores.
const (
	MatchExact   = "Exact Filename"
	MatchPattern = "Pattern Match"
	MatchAlias   = "Alias Match"

	ScoreExact   = 100
	ScorePattern = 90
	ScoreAlias   = 80
)

// Table is one matchable tactic table.
type Table struct {
	TableSlug    string   `json:"table_slug"`
	Name         string   `json:"name"`
	TacticTypeID int64    `json:"tactic_type_id,omitempty"`
	Filenames    []string `json:"filenames"`
	Aliases      []string `json:"aliases"`
	Headers      []string `json:"headers"`
}

// ProductTables groups tables under their product.
type ProductTables struct {
	ProductName string  `json:"product_name"`
	ProductSlug string  `json:"product_slug"`
	Tables      []Table `json:"tables"`
}

// FilenameMatch is one scored filename hit.
type FilenameMatch struct {
	Product   string `json:"product"`
	Table     Table  `json:"table"`
	Score     int    `json:"score"`
	MatchType string `json:"match_type"`

	// rank orders equal scores; a whole table slug beats its leading segment.
	rank int
}

// HeaderMatch is one table whose headers overlap the uploaded ones.
type HeaderMatch struct {
	Product         string   `json:"product"`
	Table           Table    `json:"table"`
	Similarity      float64  `json:"similarity"`
	Percent         int      `json:"percent"`
	MatchingHeaders []string `json:"matching_headers"`
	MissingHeaders  []string `json:"missing_headers"`
}

// MatchFilename scores filename against every table. Tables that do not
// match are omitted. Among pattern matches a whole-slug hit sorts before a
// leading-segment hit; remaining ties keep enumeration order.
func MatchFilename(filename string, products []ProductTables) []FilenameMatch {
	matches := []FilenameMatch{}
	if strings.TrimSpace(filename) == "" {
		return matches
	}
	lower := strings.ToLower(filename)

	for _, p := range products {
		for _, t := range p.Tables {
			score, kind, rank := scoreFilename(filename, lower, p.ProductSlug, t)
			if score == 0 {
				continue
			}
			matches = append(matches, FilenameMatch{Product: p.ProductName, Table: t, Score: score, MatchType: kind, rank: rank})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].rank > matches[j].rank
	})
	return matches
}

func scoreFilename(filename, lower, productSlug string, t Table) (int, string, int) {
	for _, f := range t.Filenames {
		if f == filename {
			return ScoreExact, MatchExact, 0
		}
	}
	if rank := patternRank(lower, productSlug, t.TableSlug); rank > 0 {
		return ScorePattern, MatchPattern, rank
	}
	for _, a := range t.Aliases {
		if a != "" && strings.Contains(lower, strings.ToLower(a)) {
			return ScoreAlias, MatchAlias, 0
		}
	}
	return 0, "", 0
}

const (
	patternHead  = 1
	patternWhole = 2
)

// patternRank checks that lower follows report-{product}-... and then looks
// for the table slug among the remaining name tokens. The whole slug as a
// run of tokens ranks patternWhole; its leading segment alone as a token
// ranks patternHead. Export names put the platform and subproduct between
// the two, so report-meta-facebook-link-click-campaign.csv matches table
// campaign-performance, while report-meta-facebook-campaign-geo.csv prefers
// campaign-geo. Zero means no match.
func patternRank(lower, productSlug, tableSlug string) int {
	if productSlug == "" || tableSlug == "" {
		return 0
	}
	prefix := "report-" + strings.ToLower(productSlug) + "-"
	idx := strings.Index(lower, prefix)
	if idx < 0 {
		return 0
	}
	name := tokens(lower[idx+len(prefix):])
	slug := tokens(strings.ToLower(tableSlug))
	if len(slug) == 0 {
		return 0
	}
	if containsRun(name, slug) {
		return patternWhole
	}
	if containsRun(name, slug[:1]) {
		return patternHead
	}
	return 0
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsRun reports whether run appears in toks as consecutive elements.
func containsRun(toks, run []string) bool {
	for i := 0; i+len(run) <= len(toks); i++ {
		found := true
		for j := range run {
			if toks[i+j] != run[j] {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}

// MatchHeaders ranks tables by Jaccard similarity between headers and each
// table's configured headers. Only tables with some overlap are returned.
func MatchHeaders(headers []string, products []ProductTables) []HeaderMatch {
	matches := []HeaderMatch{}
	uploaded := normalizeSet(headers)
	if len(uploaded) == 0 {
		return matches
	}

	for _, p := range products {
		for _, t := range p.Tables {
			configured := normalizeSet(t.Headers)
			if len(configured) == 0 {
				continue
			}
			matching, missing := overlap(t.Headers, uploaded)
			if len(matching) == 0 {
				continue
			}
			sim := jaccard(uploaded, configured)
			matches = append(matches, HeaderMatch{
				Product:         p.ProductName,
				Table:           t,
				Similarity:      sim,
				Percent:         int(sim*100 + 0.5),
				MatchingHeaders: matching,
				MissingHeaders:  missing,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	return matches
}

// Similarity returns |a∩b| / |a∪b| over trimmed, case-insensitive header
// sets. Two empty sets have similarity 0.
func Similarity(a, b []string) float64 {
	return jaccard(normalizeSet(a), normalizeSet(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for h := range a {
		if _, ok := b[h]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// overlap splits the configured headers into those present in uploaded and
// those missing, preserving configured order and spelling.
func overlap(configured []string, uploaded map[string]struct{}) (matching, missing []string) {
	matching, missing = []string{}, []string{}
	seen := map[string]bool{}
	for _, h := range configured {
		key := normalize(h)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := uploaded[key]; ok {
			matching = append(matching, strings.TrimSpace(h))
		} else {
			missing = append(missing, strings.TrimSpace(h))
		}
	}
	return matching, missing
}

func normalize(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func normalizeSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if n := normalize(h); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// TablesFromTree adapts the configuration tree into matcher tables. Every
// tactic type becomes a table keyed by its slug; its filename stem adds a
// "<stem>.csv" filename.
func TablesFromTree(tree []schema.ProductNode) []ProductTables {
	out := make([]ProductTables, 0, len(tree))
	for _, p := range tree {
		pt := ProductTables{ProductName: p.Name, ProductSlug: p.Slug, Tables: []Table{}}
		for _, sp := range p.Subproducts {
			for _, tt := range sp.TacticTypes {
				filenames := append([]string{}, tt.ExpectedFilenames...)
				if tt.FilenameStem != "" {
					filenames = append(filenames, tt.FilenameStem+".csv")
				}
				pt.Tables = append(pt.Tables, Table{
					TableSlug:    tt.Slug,
					Name:         tt.Name,
					TacticTypeID: tt.ID,
					Filenames:    filenames,
					Aliases:      append([]string{}, tt.Aliases...),
					Headers:      append([]string{}, tt.Headers...),
				})
			}
		}
		out = append(out, pt)
	}
	return out
}

// Best returns the top filename match, if any.
func Best(matches []FilenameMatch) (FilenameMatch, bool) {
	if len(matches) == 0 {
		return FilenameMatch{}, false
	}
	return matches[0], true
}
