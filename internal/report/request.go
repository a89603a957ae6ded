package report

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/edwinlov3tt/report-ai-sub000/internal/prompt"
)

// AnalyzeRequest is the body of an analysis run.
type AnalyzeRequest struct {
	CampaignData  CampaignData   `json:"campaignData"`
	UploadedFiles []UploadedFile `json:"uploadedFiles"`
	CompanyInfo   FreeText       `json:"companyInfo"`
	Tactics       []TacticRef    `json:"tactics"`
	AIConfig      AIConfig       `json:"aiConfig"`
}

// CampaignData describes the campaign being reported on.
type CampaignData struct {
	OrderID       string   `json:"orderId"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	DaysElapsed   int      `json:"daysElapsed"`
	DaysRemaining int      `json:"daysRemaining"`
	Objectives    FreeText `json:"objectives"`
}

func (c CampaignData) promptCampaign() prompt.Campaign {
	return prompt.Campaign{
		Name:          c.Name,
		Status:        c.Status,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		DaysElapsed:   c.DaysElapsed,
		DaysRemaining: c.DaysRemaining,
	}
}

// UploadedFile is one CSV upload. Either Content holds the raw CSV or
// Headers and Rows hold it pre-parsed.
type UploadedFile struct {
	Filename string              `json:"filename"`
	TacticID string              `json:"tacticId"`
	Content  string              `json:"content"`
	Headers  []string            `json:"headers"`
	Rows     []map[string]string `json:"rows"`
}

// TacticRef names a tactic the caller selected.
type TacticRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AIConfig carries per-run model settings. Zero values fall back to the
// stored AI settings, then to service defaults.
type AIConfig struct {
	Model              string   `json:"model"`
	Tone               string   `json:"tone"`
	Temperature        *float64 `json:"temperature"`
	MaxTokens          int      `json:"maxTokens"`
	CustomInstructions string   `json:"customInstructions"`
	ProductID          *int64   `json:"productId"`
	SubproductID       *int64   `json:"subproductId"`
}

// FreeText accepts either a JSON string or any other JSON value, which is
// kept as compact JSON text.
type FreeText string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FreeText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*f = FreeText(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return err
	}
	*f = FreeText(buf.String())
	return nil
}

func (f FreeText) String() string {
	return strings.TrimSpace(string(f))
}
