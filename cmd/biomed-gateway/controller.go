package main

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/labsharedao/biomed-gateway/lib"
	"github.com/labsharedao/biomed-gateway/lib/analysis"
	"github.com/labsharedao/biomed-gateway/lib/biomed"
)

type controller struct {
	client           biomed.Client
	batchConcurrency int64
}

func (c controller) ExtractEntities(ctx context.Context, text string) (*biomed.NERResponse, error) {
	return c.client.ExtractEntities(ctx, text)
}

func (c controller) Analyze(ctx context.Context, text string) (*lib.AnalysisResult, error) {
	ner, err := c.client.ExtractEntities(ctx, text)
	if err != nil {
		return nil, err
	}
	return &lib.AnalysisResult{
		Text:     ner.InputText,
		Entities: ner.Entities,
		Count:    len(ner.Entities),
	}, nil
}

func (c controller) Summarize(ctx context.Context, text string, maxLen, minLen int, doSample bool) (*biomed.SummaryResponse, error) {
	summary, err := c.client.Summarize(ctx, biomed.SummarizeParams{
		Text:      text,
		MaxLength: maxLen,
		MinLength: minLen,
		DoSample:  doSample,
	})
	if err != nil {
		return nil, err
	}
	summary.CompressionRatio = analysis.CompressionRatio(summary.OriginalLength, summary.SummaryLength)
	return summary, nil
}

func (c controller) SummarizeSimple(ctx context.Context, text string) (*lib.SimpleSummaryResult, error) {
	summary, err := c.Summarize(ctx, text, lib.DefaultSummaryMaxLength, lib.DefaultSummaryMinLength, false)
	if err != nil {
		return nil, err
	}
	return &lib.SimpleSummaryResult{
		OriginalText:     summary.OriginalText,
		Summary:          summary.Summary,
		CompressionRatio: summary.CompressionRatio,
	}, nil
}

// ExtractAndSummarize issues the NER and summarization calls concurrently
// and joins them into one view. Either failure fails the whole operation;
// the sibling call is cancelled through the group context. Partial results
// are never returned.
func (c controller) ExtractAndSummarize(ctx context.Context, text string, maxLen, minLen int, doSample bool) (*lib.CombinedResult, error) {
	ner, summary, err := c.extractAndSummarize(ctx, text, text, maxLen, minLen, doSample)
	if err != nil {
		return nil, err
	}
	return &lib.CombinedResult{
		OriginalText:     text,
		Summary:          summary.Summary,
		Entities:         ner.Entities,
		TotalEntities:    len(ner.Entities),
		OriginalLength:   summary.OriginalLength,
		SummaryLength:    summary.SummaryLength,
		CompressionRatio: summary.CompressionRatio,
		MaxLength:        maxLen,
		MinLength:        minLen,
	}, nil
}

func (c controller) ProcessSensorMetadata(ctx context.Context, metadata, sensorType string) (*lib.SensorResult, error) {
	ner, summary, err := c.extractAndSummarize(ctx, metadata, metadata,
		lib.DefaultSummaryMaxLength, lib.DefaultSummaryMinLength, false)
	if err != nil {
		return nil, err
	}
	return &lib.SensorResult{
		Entities:  ner.Entities,
		Summary:   summary.Summary,
		Insights:  analysis.Insights(ner.Entities),
		RiskLevel: string(analysis.ClassifyRisk(ner.Entities, sensorType)),
	}, nil
}

func (c controller) AnalyzeProposal(ctx context.Context, title, description string) (*lib.ProposalResult, error) {
	// Entities come from the whole proposal, the summary from the
	// description alone.
	ner, summary, err := c.extractAndSummarize(ctx, title+". "+description, description,
		lib.DefaultSummaryMaxLength, lib.DefaultSummaryMinLength, false)
	if err != nil {
		return nil, err
	}
	return &lib.ProposalResult{
		Entities:            ner.Entities,
		Summary:             summary.Summary,
		BiomedicalRelevance: analysis.Relevance(ner.Entities),
		KeyTerms:            analysis.KeyTerms(ner.Entities),
	}, nil
}

func (c controller) Health(ctx context.Context) lib.HealthResult {
	health, err := c.client.Health(ctx)
	if err != nil {
		return lib.HealthResult{Status: lib.HealthUnavailable}
	}
	status := lib.HealthOK
	if !health.ModelsLoaded.NER || !health.ModelsLoaded.Summarizer {
		status = lib.HealthDegraded
	}
	return lib.HealthResult{Status: status, ModelsLoaded: health.ModelsLoaded}
}

func (c controller) extractAndSummarize(ctx context.Context, nerText, summaryText string, maxLen, minLen int, doSample bool) (*biomed.NERResponse, *biomed.SummaryResponse, error) {
	g, ctx := errgroup.WithContext(ctx)

	var ner *biomed.NERResponse
	var summary *biomed.SummaryResponse
	g.Go(func() error {
		var err error
		ner, err = c.client.ExtractEntities(ctx, nerText)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = c.Summarize(ctx, summaryText, maxLen, minLen, doSample)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ner, summary, nil
}
