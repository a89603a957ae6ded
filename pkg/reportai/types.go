package reportai

import "time"

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// LineItem is one normalized order line.
type LineItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Product    string  `json:"product"`
	SubProduct string  `json:"subProduct"`
	TacticType string  `json:"tacticType,omitempty"`
	Platform   string  `json:"platform,omitempty"`
	StartDate  string  `json:"startDate,omitempty"`
	EndDate    string  `json:"endDate,omitempty"`
	Budget     float64 `json:"budget"`
}

// Campaign is a normalized Lumina order.
type Campaign struct {
	ID            string                 `json:"id"`
	OrderNumber   string                 `json:"orderNumber"`
	Name          string                 `json:"name"`
	LineItems     []LineItem             `json:"lineItems"`
	Status        string                 `json:"status"`
	StartDate     string                 `json:"startDate,omitempty"`
	EndDate       string                 `json:"endDate,omitempty"`
	DaysElapsed   int                    `json:"daysElapsed"`
	DaysRemaining int                    `json:"daysRemaining"`
	TotalBudget   float64                `json:"totalBudget"`
	Products      []string               `json:"products"`
	Derived       map[string]interface{} `json:"derived,omitempty"`
}

// Tactic is a group of line items sharing product and subproduct.
type Tactic struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Product     string     `json:"product"`
	SubProduct  string     `json:"subProduct"`
	TotalBudget float64    `json:"totalBudget"`
	LineItems   []LineItem `json:"lineItems"`
}

// AnalyzeRequest is the body of an analysis run.
type AnalyzeRequest struct {
	CampaignData  CampaignData   `json:"campaignData"`
	UploadedFiles []UploadedFile `json:"uploadedFiles,omitempty"`
	CompanyInfo   string         `json:"companyInfo,omitempty"`
	Tactics       []TacticRef    `json:"tactics,omitempty"`
	AIConfig      AIConfig       `json:"aiConfig"`
}

// CampaignData describes the campaign being reported on.
type CampaignData struct {
	OrderID       string `json:"orderId,omitempty"`
	Name          string `json:"name"`
	Status        string `json:"status,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	DaysElapsed   int    `json:"daysElapsed,omitempty"`
	DaysRemaining int    `json:"daysRemaining,omitempty"`
	Objectives    string `json:"objectives,omitempty"`
}

// UploadedFile is one CSV upload, either raw or pre-parsed.
type UploadedFile struct {
	Filename string              `json:"filename"`
	TacticID string              `json:"tacticId,omitempty"`
	Content  string              `json:"content,omitempty"`
	Headers  []string            `json:"headers,omitempty"`
	Rows     []map[string]string `json:"rows,omitempty"`
}

// TacticRef names a selected tactic.
type TacticRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// AIConfig carries per-run model settings.
type AIConfig struct {
	Model              string   `json:"model,omitempty"`
	Tone               string   `json:"tone,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
	MaxTokens          int      `json:"maxTokens,omitempty"`
	CustomInstructions string   `json:"customInstructions,omitempty"`
	ProductID          *int64   `json:"productId,omitempty"`
	SubproductID       *int64   `json:"subproductId,omitempty"`
}

// Analysis is the sectioned report.
type Analysis struct {
	ExecutiveSummary      string `json:"executiveSummary"`
	TacticPerformance     string `json:"tacticPerformance"`
	TacticTrends          string `json:"tacticTrends"`
	TacticRecommendations string `json:"tacticRecommendations"`
	PerformanceAnalysis   string `json:"performanceAnalysis"`
	TrendAnalysis         string `json:"trendAnalysis"`
	Recommendations       string `json:"recommendations"`
}

// AnalyzeResponse is returned by Analyze.
type AnalyzeResponse struct {
	Analysis   Analysis `json:"analysis"`
	AnalysisID string   `json:"analysisId"`
}

// StoredAnalysis is a persisted analysis.
type StoredAnalysis struct {
	AnalysisID   string    `json:"analysisId"`
	CampaignName string    `json:"campaignName"`
	CreatedAt    time.Time `json:"createdAt"`
	Analysis     Analysis  `json:"analysis"`
}

// Model is one AI model known to the service.
type Model struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Provider   string `json:"provider"`
	EnvKey     string `json:"envKey"`
	MaxTokens  int    `json:"maxTokens"`
	Configured bool   `json:"configured"`
}

// ModelsResponse lists models and the default.
type ModelsResponse struct {
	Models       []Model `json:"models"`
	DefaultModel string  `json:"defaultModel"`
}

// ModelTestRequest is a raw prompt for one model.
type ModelTestRequest struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
}

// ModelTestResponse is the outcome of a model test.
type ModelTestResponse struct {
	Success    bool   `json:"success"`
	Response   string `json:"response,omitempty"`
	Model      string `json:"model"`
	Error      string `json:"error,omitempty"`
	Configured *bool  `json:"configured,omitempty"`
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Cleared          int64 `json:"cleared"`
	Products         int   `json:"products"`
	Subproducts      int   `json:"subproducts"`
	TacticTypes      int   `json:"tactic_types"`
	Extractors       int   `json:"extractors"`
	Benchmarks       int   `json:"benchmarks"`
	Overrides        int   `json:"overrides"`
	SkippedOverrides int   `json:"skipped_overrides"`
}

// Version is a saved configuration snapshot.
type Version struct {
	ID            int64     `json:"id"`
	VersionNumber string    `json:"version_number"`
	Description   string    `json:"description"`
	IsActive      bool      `json:"is_active"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
