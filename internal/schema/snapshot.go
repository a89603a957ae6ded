package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// SnapshotVersion tags every exported document.
const SnapshotVersion = "2.0"

// Snapshot is the exported configuration tree. Documents carry no database
// IDs so they can be imported into any store.
type Snapshot struct {
	Version     string       `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	Products    []ProductDoc `json:"products"`
}

// ProductDoc is one product with everything it owns.
type ProductDoc struct {
	Name             string             `json:"name"`
	Slug             string             `json:"slug"`
	Platforms        storage.StringList `json:"platforms"`
	Notes            string             `json:"notes,omitempty"`
	AIGuidelines     string             `json:"ai_guidelines,omitempty"`
	AIPrompt         string             `json:"ai_prompt,omitempty"`
	Subproducts      []SubproductDoc    `json:"subproducts"`
	Extractors       []ExtractorDoc     `json:"extractors,omitempty"`
	Benchmarks       []BenchmarkDoc     `json:"benchmarks,omitempty"`
	SectionOverrides []OverrideDoc      `json:"section_overrides,omitempty"`
}

// SubproductDoc is one subproduct with its tactic types. A missing
// inherit_from_product defaults to true.
type SubproductDoc struct {
	Name               string             `json:"name"`
	Slug               string             `json:"slug"`
	Platforms          storage.StringList `json:"platforms"`
	Notes              string             `json:"notes,omitempty"`
	AIGuidelines       string             `json:"ai_guidelines,omitempty"`
	InheritFromProduct *bool              `json:"inherit_from_product,omitempty"`
	TacticTypes        []TacticTypeDoc    `json:"tactic_types"`
	SectionOverrides   []OverrideDoc      `json:"section_overrides,omitempty"`
}

// TacticTypeDoc is one tactic type.
type TacticTypeDoc struct {
	Name              string             `json:"name"`
	Slug              string             `json:"slug"`
	DataValue         string             `json:"data_value,omitempty"`
	FilenameStem      string             `json:"filename_stem,omitempty"`
	ExpectedFilenames storage.StringList `json:"expected_filenames"`
	Aliases           storage.StringList `json:"aliases"`
	Headers           storage.StringList `json:"headers"`
}

// ExtractorDoc is one Lumina extractor.
type ExtractorDoc struct {
	Name           string                `json:"name"`
	Path           string                `json:"path"`
	WhenConditions storage.Predicate     `json:"when_conditions"`
	AggregateType  storage.AggregateType `json:"aggregate_type,omitempty"`
}

// BenchmarkDoc is one KPI goal.
type BenchmarkDoc struct {
	MetricName       string                     `json:"metric_name"`
	GoalValue        float64                    `json:"goal_value"`
	WarningThreshold float64                    `json:"warning_threshold"`
	Unit             storage.BenchmarkUnit      `json:"unit"`
	Direction        storage.BenchmarkDirection `json:"direction"`
}

// OverrideDoc is a section override keyed by section_key so it survives
// section ID changes.
type OverrideDoc struct {
	SectionKey         string           `json:"section_key"`
	IsEnabled          *bool            `json:"is_enabled,omitempty"`
	CustomInstructions *string          `json:"custom_instructions,omitempty"`
	CustomDataSources  *storage.JSONDoc `json:"custom_data_sources,omitempty"`
	CustomMinLength    *int             `json:"custom_min_length,omitempty"`
	CustomMaxLength    *int             `json:"custom_max_length,omitempty"`
	DisplayOrder       *int             `json:"display_order,omitempty"`
}

// ParseSnapshot decodes and sanity-checks an import document.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, domain.ValidationError("snapshot is not valid JSON", err)
	}
	if snap.Version == "" {
		return nil, domain.ValidationError("snapshot is missing version", nil)
	}
	if snap.Products == nil {
		return nil, domain.ValidationError("snapshot is missing products", nil)
	}
	return &snap, nil
}

// Counts summarizes a snapshot.
func (s *Snapshot) Counts() map[string]int {
	counts := map[string]int{
		"products":     len(s.Products),
		"subproducts":  0,
		"tactic_types": 0,
		"extractors":   0,
		"benchmarks":   0,
	}
	for _, p := range s.Products {
		counts["subproducts"] += len(p.Subproducts)
		counts["extractors"] += len(p.Extractors)
		counts["benchmarks"] += len(p.Benchmarks)
		for _, sp := range p.Subproducts {
			counts["tactic_types"] += len(sp.TacticTypes)
		}
	}
	return counts
}

// check validates the document up front: entity rules plus uniqueness within
// the document. Errors name the offending location.
func (s *Snapshot) check() error {
	names := make(map[string]bool, len(s.Products))
	for i := range s.Products {
		p := &s.Products[i]
		loc := fmt.Sprintf("products[%d]", i)
		if p.Slug == "" {
			p.Slug = storage.Slugify(p.Name)
		}
		if err := storage.Validate(&storage.Product{Name: p.Name, Slug: p.Slug}); err != nil {
			return domain.ValidationError(loc, err)
		}
		if names[p.Name] {
			return domain.ValidationError(fmt.Sprintf("%s: duplicate product name %q", loc, p.Name), nil)
		}
		names[p.Name] = true

		subSlugs := map[string]bool{}
		for j := range p.Subproducts {
			sp := &p.Subproducts[j]
			subLoc := fmt.Sprintf("%s.subproducts[%d]", loc, j)
			if sp.Slug == "" {
				sp.Slug = storage.Slugify(sp.Name)
			}
			if err := storage.Validate(&storage.Subproduct{Name: sp.Name, Slug: sp.Slug}); err != nil {
				return domain.ValidationError(subLoc, err)
			}
			if subSlugs[sp.Slug] {
				return domain.ValidationError(fmt.Sprintf("%s: duplicate subproduct slug %q", subLoc, sp.Slug), nil)
			}
			subSlugs[sp.Slug] = true

			tacticSlugs := map[string]bool{}
			for k := range sp.TacticTypes {
				tt := &sp.TacticTypes[k]
				ttLoc := fmt.Sprintf("%s.tactic_types[%d]", subLoc, k)
				if tt.Slug == "" {
					tt.Slug = storage.Slugify(tt.Name)
				}
				if err := storage.Validate(&storage.TacticType{Name: tt.Name, Slug: tt.Slug}); err != nil {
					return domain.ValidationError(ttLoc, err)
				}
				if tacticSlugs[tt.Slug] {
					return domain.ValidationError(fmt.Sprintf("%s: duplicate tactic slug %q", ttLoc, tt.Slug), nil)
				}
				tacticSlugs[tt.Slug] = true
			}
		}

		for j, e := range p.Extractors {
			m := storage.LuminaExtractor{Name: e.Name, Path: e.Path, AggregateType: e.AggregateType}
			if err := storage.Validate(&m); err != nil {
				return domain.ValidationError(fmt.Sprintf("%s.extractors[%d]", loc, j), err)
			}
		}

		metrics := map[string]bool{}
		for j, b := range p.Benchmarks {
			bLoc := fmt.Sprintf("%s.benchmarks[%d]", loc, j)
			m := storage.Benchmark{MetricName: b.MetricName, Unit: b.Unit, Direction: b.Direction}
			if err := storage.Validate(&m); err != nil {
				return domain.ValidationError(bLoc, err)
			}
			if metrics[b.MetricName] {
				return domain.ValidationError(fmt.Sprintf("%s: duplicate metric_name %q", bLoc, b.MetricName), nil)
			}
			metrics[b.MetricName] = true
		}
	}
	return nil
}
