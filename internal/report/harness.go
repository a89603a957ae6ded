package report

import (
	"context"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// TestConfigStore loads test configs and records their outcomes.
type TestConfigStore interface {
	GetTestConfig(ctx context.Context, id int64) (*storage.AITestConfig, error)
	RecordTestResult(ctx context.Context, id int64, result interface{}, at time.Time) error
}

// TestRunResult is stored as last_test_result.
type TestRunResult struct {
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Model      string    `json:"model"`
	Analysis   *Analysis `json:"analysis,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// RunTestConfig runs a stored test scenario against its configured model.
// Unlike Generate there is no fallback: a failed call is the result. Only
// loading or recording failures are returned as errors.
func (p *Pipeline) RunTestConfig(ctx context.Context, configs TestConfigStore, id int64) (*TestRunResult, error) {
	tc, err := configs.GetTestConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	var req AnalyzeRequest
	if len(tc.TestData) > 0 {
		if err := tc.TestData.Decode(&req); err != nil {
			return nil, domain.ValidationError("test_data is not a valid analysis request", err)
		}
	}
	temp := tc.Temperature
	req.AIConfig = AIConfig{
		Model:              tc.AIModel,
		Tone:               tc.Tone,
		Temperature:        &temp,
		CustomInstructions: tc.CustomInstructions,
		ProductID:          tc.ProductID,
		SubproductID:       tc.SubproductID,
	}

	start := p.now()
	out := &TestRunResult{Model: tc.AIModel}
	prep, err := p.prepare(ctx, req, tc.EnabledSections)
	if err == nil {
		err = p.callOnce(ctx, tc.AIModel, prep, out)
	}
	if err != nil {
		out.Error = domain.PublicMessage(err)
	}
	out.DurationMS = p.now().Sub(start).Milliseconds()

	if err := configs.RecordTestResult(ctx, id, out, p.now()); err != nil {
		return nil, err
	}
	p.logger.Info().
		Int64("test_config_id", id).
		Str("model", tc.AIModel).
		Bool("success", out.Success).
		Int64("duration_ms", out.DurationMS).
		Msg("test config run")
	return out, nil
}

func (p *Pipeline) callOnce(ctx context.Context, model string, prep *prepared, out *TestRunResult) error {
	if p.llm == nil {
		return domain.ConfigurationError("no model client configured", nil)
	}
	text, err := p.llm.Call(ctx, model, prep.text, prep.temperature, prep.maxTokens)
	if err != nil {
		return err
	}
	a := Parse(text)
	out.Analysis = &a
	out.Success = true
	return nil
}
