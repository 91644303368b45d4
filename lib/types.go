package lib

import (
	"fmt"
	"strings"

	"github.com/labsharedao/biomed-gateway/lib/biomed"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ValidationError reports exactly which field broke which rule. It is the
// only error kind produced below the upstream client.
type ValidationError struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Actual != "" {
		return fmt.Sprintf("validation: %s: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("validation: %s: expected %s", e.Field, e.Expected)
}

// Bounds accepted by the validator.
const (
	MaxTextChars = 50000
	MaxBatchSize = 50

	MinSummaryMaxLength = 10
	MaxSummaryMaxLength = 1000
	MinSummaryMinLength = 5
	MaxSummaryMinLength = 500

	DefaultSummaryMaxLength = 60
	DefaultSummaryMinLength = 20
)

// Batch operations.
const (
	OperationAnalyze   = "analyze"
	OperationSummarize = "summarize"
	OperationExtract   = "extract"
	OperationCombined  = "combined"
)

func validText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return ValidationError{Field: field, Expected: "non-empty string"}
	}
	if len([]rune(text)) > MaxTextChars {
		return ValidationError{
			Field:    field,
			Expected: fmt.Sprintf("at most %d characters", MaxTextChars),
			Actual:   fmt.Sprintf("%d characters", len([]rune(text))),
		}
	}
	return nil
}

type TextRequest struct {
	Text string `json:"text"`
}

func (r TextRequest) Validate() error {
	return validText("text", r.Text)
}

// SummarizeRequest carries the caller's generation bounds. Pointer fields
// distinguish "absent, use the default" from an explicit zero.
type SummarizeRequest struct {
	Text      string `json:"text"`
	MaxLength *int   `json:"max_length"`
	MinLength *int   `json:"min_length"`
	DoSample  *bool  `json:"do_sample"`
}

func (r SummarizeRequest) Validate() error {
	if err := validText("text", r.Text); err != nil {
		return err
	}
	maxLen, minLen, _ := r.Bounds()
	if maxLen < MinSummaryMaxLength || maxLen > MaxSummaryMaxLength {
		return ValidationError{
			Field:    "max_length",
			Expected: fmt.Sprintf("integer in [%d, %d]", MinSummaryMaxLength, MaxSummaryMaxLength),
			Actual:   fmt.Sprintf("%d", maxLen),
		}
	}
	if minLen < MinSummaryMinLength || minLen > MaxSummaryMinLength {
		return ValidationError{
			Field:    "min_length",
			Expected: fmt.Sprintf("integer in [%d, %d]", MinSummaryMinLength, MaxSummaryMinLength),
			Actual:   fmt.Sprintf("%d", minLen),
		}
	}
	if minLen > maxLen {
		return ValidationError{
			Field:    "min_length",
			Expected: "min_length <= max_length",
			Actual:   fmt.Sprintf("min_length %d > max_length %d", minLen, maxLen),
		}
	}
	return nil
}

// Bounds resolves the requested generation bounds, applying defaults for
// absent fields.
func (r SummarizeRequest) Bounds() (maxLen, minLen int, doSample bool) {
	maxLen = DefaultSummaryMaxLength
	minLen = DefaultSummaryMinLength
	if r.MaxLength != nil {
		maxLen = *r.MaxLength
	}
	if r.MinLength != nil {
		minLen = *r.MinLength
	}
	if r.DoSample != nil {
		doSample = *r.DoSample
	}
	return maxLen, minLen, doSample
}

type SensorMetadataRequest struct {
	Metadata   string `json:"metadata"`
	SensorType string `json:"sensorType"`
}

func (r SensorMetadataRequest) Validate() error {
	if err := validText("metadata", r.Metadata); err != nil {
		return err
	}
	if strings.TrimSpace(r.SensorType) == "" {
		return ValidationError{Field: "sensorType", Expected: "non-empty string"}
	}
	return nil
}

type ProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r ProposalRequest) Validate() error {
	if err := validText("title", r.Title); err != nil {
		return err
	}
	return validText("description", r.Description)
}

type BatchRequest struct {
	Texts     []string `json:"texts"`
	Operation string   `json:"operation"`
}

func (r BatchRequest) Validate() error {
	if len(r.Texts) < 1 || len(r.Texts) > MaxBatchSize {
		return ValidationError{
			Field:    "texts",
			Expected: fmt.Sprintf("array of 1 to %d texts", MaxBatchSize),
			Actual:   fmt.Sprintf("%d texts", len(r.Texts)),
		}
	}
	for i, text := range r.Texts {
		if err := validText(fmt.Sprintf("texts[%d]", i), text); err != nil {
			return err
		}
	}
	switch r.ResolvedOperation() {
	case OperationAnalyze, OperationSummarize, OperationExtract, OperationCombined:
		return nil
	}
	return ValidationError{
		Field:    "operation",
		Expected: "one of analyze, summarize, extract, combined",
		Actual:   r.Operation,
	}
}

func (r BatchRequest) ResolvedOperation() string {
	if r.Operation == "" {
		return OperationAnalyze
	}
	return r.Operation
}

// Composed views returned by the gateway.

type AnalysisResult struct {
	Text     string          `json:"text"`
	Entities []biomed.Entity `json:"entities"`
	Count    int             `json:"count"`
}

type SimpleSummaryResult struct {
	OriginalText     string  `json:"original_text"`
	Summary          string  `json:"summary"`
	CompressionRatio float64 `json:"compression_ratio"`
}

type CombinedResult struct {
	OriginalText     string          `json:"original_text"`
	Summary          string          `json:"summary"`
	Entities         []biomed.Entity `json:"entities"`
	TotalEntities    int             `json:"total_entities"`
	OriginalLength   int             `json:"original_length"`
	SummaryLength    int             `json:"summary_length"`
	CompressionRatio float64         `json:"compression_ratio"`
	MaxLength        int             `json:"max_length"`
	MinLength        int             `json:"min_length"`
}

type SensorResult struct {
	Entities  []biomed.Entity `json:"entities"`
	Summary   string          `json:"summary"`
	Insights  []string        `json:"insights"`
	RiskLevel string          `json:"risk_level"`
}

type ProposalResult struct {
	Entities            []biomed.Entity `json:"entities"`
	Summary             string          `json:"summary"`
	BiomedicalRelevance float64         `json:"biomedical_relevance"`
	KeyTerms            []string        `json:"key_terms"`
}

type BatchItemResult struct {
	Index   int         `json:"index"`
	Text    string      `json:"text"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Success bool        `json:"success"`
}

type BatchResult struct {
	Results    []BatchItemResult `json:"results"`
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
}

// Health states reported by the gateway.
const (
	HealthOK          = "ok"
	HealthDegraded    = "degraded"
	HealthUnavailable = "unavailable"
)

type HealthResult struct {
	Status       string              `json:"status"`
	ModelsLoaded biomed.ModelsLoaded `json:"models_loaded"`
}
