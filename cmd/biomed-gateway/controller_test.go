package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/labsharedao/biomed-gateway/lib"
	"github.com/labsharedao/biomed-gateway/lib/biomed"
)

type mockModelClient struct {
	mock.Mock
}

func (m *mockModelClient) ExtractEntities(ctx context.Context, text string) (*biomed.NERResponse, error) {
	args := m.Called(ctx, text)
	resp, _ := args.Get(0).(*biomed.NERResponse)
	return resp, args.Error(1)
}

func (m *mockModelClient) Summarize(ctx context.Context, params biomed.SummarizeParams) (*biomed.SummaryResponse, error) {
	args := m.Called(ctx, params)
	resp, _ := args.Get(0).(*biomed.SummaryResponse)
	return resp, args.Error(1)
}

func (m *mockModelClient) Health(ctx context.Context) (*biomed.HealthResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*biomed.HealthResponse)
	return resp, args.Error(1)
}

func (m *mockModelClient) Close() {}

const monitoringText = "Patients with diabetes and hypertension require careful monitoring."

func monitoringEntities() []biomed.Entity {
	return []biomed.Entity{
		{Word: "diabetes", EntityGroup: "Disease_disorder", Score: 0.97, Start: 14, End: 22},
		{Word: "hypertension", EntityGroup: "Disease_disorder", Score: 0.95, Start: 27, End: 39},
	}
}

func nerResponse(text string, entities []biomed.Entity) *biomed.NERResponse {
	return &biomed.NERResponse{InputText: text, Entities: entities, TotalEntities: len(entities)}
}

type ControllerSuite struct {
	suite.Suite
	mockClient *mockModelClient
	controller controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.mockClient = &mockModelClient{}
	s.controller = controller{client: s.mockClient, batchConcurrency: 8}
}

func (s *ControllerSuite) Test_controller_Analyze() {
	s.mockClient.On("ExtractEntities", mock.Anything, monitoringText).
		Return(nerResponse(monitoringText, monitoringEntities()), nil)

	result, err := s.controller.Analyze(context.Background(), monitoringText)

	s.Require().NoError(err)
	s.Equal(monitoringText, result.Text)
	s.Equal(monitoringEntities(), result.Entities)
	s.Equal(2, result.Count)
}

func (s *ControllerSuite) Test_controller_AnalyzeIsRepeatable() {
	s.mockClient.On("ExtractEntities", mock.Anything, monitoringText).
		Return(nerResponse(monitoringText, monitoringEntities()), nil)

	first, err := s.controller.Analyze(context.Background(), monitoringText)
	s.Require().NoError(err)
	second, err := s.controller.Analyze(context.Background(), monitoringText)
	s.Require().NoError(err)

	s.Equal(first, second)
}

func (s *ControllerSuite) Test_controller_Summarize() {
	s.mockClient.On("Summarize", mock.Anything, biomed.SummarizeParams{
		Text: "a 300 char passage", MaxLength: 60, MinLength: 20,
	}).Return(&biomed.SummaryResponse{
		OriginalText:     "a 300 char passage",
		Summary:          "a 55 char summary",
		OriginalLength:   300,
		SummaryLength:    55,
		CompressionRatio: 0.18, // upstream rounds; the gateway recomputes
		MaxLength:        60,
		MinLength:        20,
	}, nil)

	result, err := s.controller.Summarize(context.Background(), "a 300 char passage", 60, 20, false)

	s.Require().NoError(err)
	s.InDelta(55.0/300.0, result.CompressionRatio, 1e-9)
	s.Equal(300, result.OriginalLength)
	s.Equal(55, result.SummaryLength)
}

func (s *ControllerSuite) Test_controller_SummarizeSimple() {
	s.mockClient.On("Summarize", mock.Anything, biomed.SummarizeParams{
		Text: "some text", MaxLength: lib.DefaultSummaryMaxLength, MinLength: lib.DefaultSummaryMinLength,
	}).Return(&biomed.SummaryResponse{
		OriginalText:   "some text",
		Summary:        "short",
		OriginalLength: 9,
		SummaryLength:  5,
	}, nil)

	result, err := s.controller.SummarizeSimple(context.Background(), "some text")

	s.Require().NoError(err)
	s.Equal(&lib.SimpleSummaryResult{
		OriginalText:     "some text",
		Summary:          "short",
		CompressionRatio: 5.0 / 9.0,
	}, result)
}

func (s *ControllerSuite) Test_controller_ExtractAndSummarize() {
	s.mockClient.On("ExtractEntities", mock.Anything, monitoringText).
		Return(nerResponse(monitoringText, monitoringEntities()), nil)
	s.mockClient.On("Summarize", mock.Anything, mock.AnythingOfType("biomed.SummarizeParams")).
		Return(&biomed.SummaryResponse{
			OriginalText:   monitoringText,
			Summary:        "Diabetic patients need monitoring.",
			OriginalLength: 68,
			SummaryLength:  34,
		}, nil)

	result, err := s.controller.ExtractAndSummarize(context.Background(), monitoringText, 60, 20, false)

	s.Require().NoError(err)
	s.Equal(monitoringText, result.OriginalText)
	s.Equal("Diabetic patients need monitoring.", result.Summary)
	s.Equal(monitoringEntities(), result.Entities)
	s.Equal(2, result.TotalEntities)
	s.InDelta(34.0/68.0, result.CompressionRatio, 1e-9)
	s.Equal(60, result.MaxLength)
	s.Equal(20, result.MinLength)
}

// The combined view must equal the merge of the two independent calls on the
// same mocked upstream.
func (s *ControllerSuite) Test_controller_ExtractAndSummarizeMatchesParts() {
	s.mockClient.On("ExtractEntities", mock.Anything, monitoringText).
		Return(nerResponse(monitoringText, monitoringEntities()), nil)
	s.mockClient.On("Summarize", mock.Anything, mock.AnythingOfType("biomed.SummarizeParams")).
		Return(&biomed.SummaryResponse{
			OriginalText:   monitoringText,
			Summary:        "Diabetic patients need monitoring.",
			OriginalLength: 68,
			SummaryLength:  34,
		}, nil)

	combined, err := s.controller.ExtractAndSummarize(context.Background(), monitoringText, 60, 20, false)
	s.Require().NoError(err)
	ner, err := s.controller.ExtractEntities(context.Background(), monitoringText)
	s.Require().NoError(err)
	summary, err := s.controller.Summarize(context.Background(), monitoringText, 60, 20, false)
	s.Require().NoError(err)

	s.Equal(ner.Entities, combined.Entities)
	s.Equal(len(ner.Entities), combined.TotalEntities)
	s.Equal(summary.Summary, combined.Summary)
	s.Equal(summary.OriginalLength, combined.OriginalLength)
	s.Equal(summary.SummaryLength, combined.SummaryLength)
	s.Equal(summary.CompressionRatio, combined.CompressionRatio)
}

func (s *ControllerSuite) Test_controller_ExtractAndSummarizeFailsWhole() {
	s.mockClient.On("ExtractEntities", mock.Anything, monitoringText).
		Return(nerResponse(monitoringText, monitoringEntities()), nil)
	s.mockClient.On("Summarize", mock.Anything, mock.AnythingOfType("biomed.SummarizeParams")).
		Return(nil, biomed.NewError(biomed.ErrRejected, "boom"))

	result, err := s.controller.ExtractAndSummarize(context.Background(), monitoringText, 60, 20, false)

	s.Nil(result)
	var upstreamErr *biomed.Error
	s.Require().ErrorAs(err, &upstreamErr)
	s.Equal(biomed.ErrRejected, upstreamErr.Kind)
}

func (s *ControllerSuite) Test_controller_ProcessSensorMetadata() {
	metadata := "Patient in ICU with severe pneumonia on ventilator"
	s.mockClient.On("ExtractEntities", mock.Anything, metadata).
		Return(nerResponse(metadata, []biomed.Entity{
			{Word: "pneumonia", EntityGroup: "Disease_disorder", Score: 0.93, Start: 27, End: 36},
			{Word: "ventilator", EntityGroup: "Medical_device", Score: 0.88, Start: 40, End: 50},
		}), nil)
	s.mockClient.On("Summarize", mock.Anything, mock.AnythingOfType("biomed.SummarizeParams")).
		Return(&biomed.SummaryResponse{
			OriginalText:   metadata,
			Summary:        "ICU patient with pneumonia.",
			OriginalLength: 50,
			SummaryLength:  27,
		}, nil)

	result, err := s.controller.ProcessSensorMetadata(context.Background(), metadata, "Temperature")

	s.Require().NoError(err)
	s.Equal("high", result.RiskLevel)
	s.Equal("ICU patient with pneumonia.", result.Summary)
	s.Contains(result.Insights, "Mentions disease: pneumonia")
	s.Contains(result.Insights, "References medical device: ventilator")
}

func (s *ControllerSuite) Test_controller_AnalyzeProposal() {
	title := "CRISPR off-target effects"
	description := "Investigate unintended edits in Cas9 genome editing."

	s.mockClient.On("ExtractEntities", mock.Anything, title+". "+description).
		Return(nerResponse(title+". "+description, []biomed.Entity{
			{Word: "CRISPR", EntityGroup: "Gene_protein", Score: 0.95},
			{Word: "Cas9", EntityGroup: "Gene_protein", Score: 0.9},
			{Word: "genome", EntityGroup: "Biological_structure", Score: 0.7},
			{Word: "edits", EntityGroup: "Therapeutic_procedure", Score: 0.6},
		}), nil)
	s.mockClient.On("Summarize", mock.Anything, mock.MatchedBy(func(p biomed.SummarizeParams) bool {
		return p.Text == description
	})).Return(&biomed.SummaryResponse{
		OriginalText:   description,
		Summary:        "Study of Cas9 off-target edits.",
		OriginalLength: 52,
		SummaryLength:  31,
	}, nil)

	result, err := s.controller.AnalyzeProposal(context.Background(), title, description)

	s.Require().NoError(err)
	s.InDelta(0.6, result.BiomedicalRelevance, 1e-9)
	s.Equal([]string{"CRISPR", "Cas9", "genome", "edits"}, result.KeyTerms)
	s.Equal("Study of Cas9 off-target edits.", result.Summary)
}

func (s *ControllerSuite) Test_controller_Health() {
	tests := []struct {
		name       string
		response   *biomed.HealthResponse
		err        error
		wantStatus string
	}{
		{
			name:       "both ready",
			response:   &biomed.HealthResponse{Status: "healthy", ModelsLoaded: biomed.ModelsLoaded{NER: true, Summarizer: true}},
			wantStatus: lib.HealthOK,
		},
		{
			name:       "summarizer down",
			response:   &biomed.HealthResponse{Status: "healthy", ModelsLoaded: biomed.ModelsLoaded{NER: true}},
			wantStatus: lib.HealthDegraded,
		},
		{
			name:       "upstream gone",
			err:        biomed.NewError(biomed.ErrUnreachable, "connection refused"),
			wantStatus: lib.HealthUnavailable,
		},
	}
	for _, tt := range tests {
		s.T().Log(tt.name)
		mockClient := &mockModelClient{}
		mockClient.On("Health", mock.Anything).Return(tt.response, tt.err)
		c := controller{client: mockClient, batchConcurrency: 8}

		health := c.Health(context.Background())

		s.Equal(tt.wantStatus, health.Status, tt.name)
		if tt.response != nil {
			s.Equal(tt.response.ModelsLoaded, health.ModelsLoaded, tt.name)
		}
	}
}
