// Package storage provides database models and repositories for the report
// configuration hierarchy, campaigns and generated analyses.
package storage

import (
	"time"
)

// AggregateType controls how a LuminaExtractor folds multiple matches.
type AggregateType string

const (
	AggregateNone   AggregateType = ""
	AggregateFirst  AggregateType = "first"
	AggregateUnique AggregateType = "unique"
	AggregateSum    AggregateType = "sum"
	AggregateJoin   AggregateType = "join"
)

// Valid reports whether a is a known aggregate type.
func (a AggregateType) Valid() bool {
	switch a {
	case AggregateNone, AggregateFirst, AggregateUnique, AggregateSum, AggregateJoin:
		return true
	}
	return false
}

// BenchmarkUnit is the unit a benchmark goal is expressed in.
type BenchmarkUnit string

const (
	UnitPercentage BenchmarkUnit = "percentage"
	UnitRatio      BenchmarkUnit = "ratio"
	UnitUSD        BenchmarkUnit = "USD"
	UnitCount      BenchmarkUnit = "count"
	UnitSeconds    BenchmarkUnit = "seconds"
)

// BenchmarkDirection tells whether larger values are better.
type BenchmarkDirection string

const (
	HigherBetter BenchmarkDirection = "higher_better"
	LowerBetter  BenchmarkDirection = "lower_better"
)

// SettingType is the declared type of an AIGlobalSetting value.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// Product is the root of the taxonomy.
type Product struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name" validate:"required,max=255"`
	Slug         string     `db:"slug" json:"slug" validate:"omitempty,slug"`
	Platforms    StringList `db:"platforms" json:"platforms"`
	Notes        string     `db:"notes" json:"notes"`
	AIGuidelines string     `db:"ai_guidelines" json:"ai_guidelines"`
	AIPrompt     string     `db:"ai_prompt" json:"ai_prompt"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Subproduct belongs to a Product and owns TacticTypes.
type Subproduct struct {
	ID                 int64      `db:"id" json:"id"`
	ProductID          int64      `db:"product_id" json:"product_id"`
	Name               string     `db:"name" json:"name" validate:"required,max=255"`
	Slug               string     `db:"slug" json:"slug" validate:"omitempty,slug"`
	Platforms          StringList `db:"platforms" json:"platforms"`
	Notes              string     `db:"notes" json:"notes"`
	AIGuidelines       string     `db:"ai_guidelines" json:"ai_guidelines"`
	InheritFromProduct bool       `db:"inherit_from_product" json:"inherit_from_product"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// TacticType drives filename-to-tactic matching and header validation.
type TacticType struct {
	ID                int64      `db:"id" json:"id"`
	SubproductID      int64      `db:"subproduct_id" json:"subproduct_id"`
	Name              string     `db:"name" json:"name" validate:"required,max=255"`
	Slug              string     `db:"slug" json:"slug" validate:"omitempty,slug"`
	DataValue         string     `db:"data_value" json:"data_value"`
	FilenameStem      string     `db:"filename_stem" json:"filename_stem"`
	ExpectedFilenames StringList `db:"expected_filenames" json:"expected_filenames"`
	Aliases           StringList `db:"aliases" json:"aliases"`
	Headers           StringList `db:"headers" json:"headers"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// LuminaExtractor describes how to pull a derived value out of raw order JSON.
type LuminaExtractor struct {
	ID             int64         `db:"id" json:"id"`
	ProductID      int64         `db:"product_id" json:"product_id"`
	Name           string        `db:"name" json:"name" validate:"required,max=255"`
	Path           string        `db:"path" json:"path" validate:"required"`
	WhenConditions Predicate     `db:"when_conditions" json:"when_conditions"`
	AggregateType  AggregateType `db:"aggregate_type" json:"aggregate_type" validate:"omitempty,oneof=first unique sum join"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// Benchmark is a per-product KPI goal.
type Benchmark struct {
	ID               int64              `db:"id" json:"id"`
	ProductID        int64              `db:"product_id" json:"product_id"`
	MetricName       string             `db:"metric_name" json:"metric_name" validate:"required,key"`
	GoalValue        float64            `db:"goal_value" json:"goal_value"`
	WarningThreshold float64            `db:"warning_threshold" json:"warning_threshold"`
	Unit             BenchmarkUnit      `db:"unit" json:"unit" validate:"required,oneof=percentage ratio USD count seconds"`
	Direction        BenchmarkDirection `db:"direction" json:"direction" validate:"required,oneof=higher_better lower_better"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// ReportSection is a global template of a report content block.
type ReportSection struct {
	ID                  int64     `db:"id" json:"id"`
	SectionKey          string    `db:"section_key" json:"section_key" validate:"required,key,max=100"`
	SectionName         string    `db:"section_name" json:"section_name" validate:"required,max=255"`
	DisplayOrder        int       `db:"display_order" json:"display_order"`
	IsEnabled           bool      `db:"is_enabled" json:"is_enabled"`
	IsRequired          bool      `db:"is_required" json:"is_required"`
	DefaultInstructions string    `db:"default_instructions" json:"default_instructions"`
	DataSources         JSONDoc   `db:"data_sources" json:"data_sources"`
	OutputFormat        string    `db:"output_format" json:"output_format"`
	MinLength           *int      `db:"min_length" json:"min_length" validate:"omitempty,min=0"`
	MaxLength           *int      `db:"max_length" json:"max_length" validate:"omitempty,min=0"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// SectionOverride is a product- or subproduct-scoped override of a
// ReportSection. Nil fields inherit from the next less specific level.
type SectionOverride struct {
	ID                 int64     `db:"id" json:"id"`
	OwnerID            int64     `db:"owner_id" json:"owner_id"`
	SectionID          int64     `db:"section_id" json:"section_id"`
	IsEnabled          *bool     `db:"is_enabled" json:"is_enabled"`
	CustomInstructions *string   `db:"custom_instructions" json:"custom_instructions"`
	CustomDataSources  *JSONDoc  `db:"custom_data_sources" json:"custom_data_sources"`
	CustomMinLength    *int      `db:"custom_min_length" json:"custom_min_length" validate:"omitempty,min=0"`
	CustomMaxLength    *int      `db:"custom_max_length" json:"custom_max_length" validate:"omitempty,min=0"`
	DisplayOrder       *int      `db:"display_order" json:"display_order"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// OverrideScope selects the table a SectionOverride lives in.
type OverrideScope string

const (
	ScopeProduct    OverrideScope = "product"
	ScopeSubproduct OverrideScope = "subproduct"
)

// AIGlobalSetting is a typed key-value entry grouped by category.
type AIGlobalSetting struct {
	ID           int64       `db:"id" json:"id"`
	SettingKey   string      `db:"setting_key" json:"setting_key" validate:"required,key,max=100"`
	SettingValue string      `db:"setting_value" json:"setting_value"`
	SettingType  SettingType `db:"setting_type" json:"setting_type" validate:"required,oneof=string number boolean json"`
	Category     string      `db:"category" json:"category" validate:"required,max=100"`
	Description  string      `db:"description" json:"description"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// AITestConfig is a saved harness for exercising the prompt pipeline.
type AITestConfig struct {
	ID                 int64      `db:"id" json:"id"`
	ConfigName         string     `db:"config_name" json:"config_name" validate:"required,max=255"`
	TestScenario       string     `db:"test_scenario" json:"test_scenario"`
	ProductID          *int64     `db:"product_id" json:"product_id"`
	SubproductID       *int64     `db:"subproduct_id" json:"subproduct_id"`
	TestData           JSONDoc    `db:"test_data" json:"test_data"`
	AIModel            string     `db:"ai_model" json:"ai_model" validate:"required"`
	Temperature        float64    `db:"temperature" json:"temperature" validate:"min=0,max=2"`
	Tone               string     `db:"tone" json:"tone"`
	CustomInstructions string     `db:"custom_instructions" json:"custom_instructions"`
	EnabledSections    StringList `db:"enabled_sections" json:"enabled_sections"`
	LastTestResult     *JSONDoc   `db:"last_test_result" json:"last_test_result"`
	LastTestAt         *time.Time `db:"last_test_at" json:"last_test_at"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// SchemaVersion is an append-only snapshot of the configuration tree.
type SchemaVersion struct {
	ID            int64     `db:"id" json:"id"`
	VersionNumber string    `db:"version_number" json:"version_number"`
	Description   string    `db:"description" json:"description"`
	SchemaData    JSONDoc   `db:"schema_data" json:"schema_data,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Campaign is a fetched and normalized Lumina order.
type Campaign struct {
	ID          int64     `db:"id" json:"id"`
	OrderID     string    `db:"order_id" json:"order_id"`
	OrderNumber string    `db:"order_number" json:"order_number"`
	Name        string    `db:"name" json:"name"`
	Status      string    `db:"status" json:"status"`
	RawData     JSONDoc   `db:"raw_data" json:"raw_data"`
	Normalized  JSONDoc   `db:"normalized" json:"normalized"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetched_at"`
}

// Analysis is a generated report. IsMock is recorded for operators only.
type Analysis struct {
	ID           string    `db:"id" json:"id"`
	CampaignID   *int64    `db:"campaign_id" json:"campaign_id"`
	CampaignName string    `db:"campaign_name" json:"campaign_name"`
	Model        string    `db:"model" json:"model"`
	IsMock       bool      `db:"is_mock" json:"-"`
	Prompt       string    `db:"prompt" json:"-"`
	ResponseText string    `db:"response_text" json:"response_text"`
	Result       JSONDoc   `db:"result" json:"result"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
