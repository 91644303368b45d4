package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/labsharedao/biomed-gateway/lib"
	"github.com/labsharedao/biomed-gateway/lib/biomed"
)

type server struct {
	controller   controller
	maxBodyBytes int64
}

func (s server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/nlp")
	api.Use(s.limitBody)
	api.GET("/", s.Root)
	api.GET("/health", s.Health)
	api.POST("/extract-entities", s.ExtractEntities)
	api.POST("/analyze", s.Analyze)
	api.POST("/summarize", s.Summarize)
	api.POST("/summarize-simple", s.SummarizeSimple)
	api.POST("/extract-and-summarize", s.ExtractAndSummarize)
	api.POST("/process-sensor-metadata", s.ProcessSensorMetadata)
	api.POST("/analyze-proposal", s.AnalyzeProposal)
	api.POST("/batch-analyze", s.BatchAnalyze)
}

func (s server) limitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
	}
	c.Next()
}

func (s server) Root(c *gin.Context) {
	succeed(c, "biomedical NLP gateway", gin.H{
		"name":   "LabShareDAO Biomedical NLP Gateway",
		"status": "active",
		"models": gin.H{
			"ner":           "d4data/biomedical-ner-all",
			"summarization": "facebook/bart-large-cnn",
		},
	})
}

func (s server) Health(c *gin.Context) {
	health := s.controller.Health(c.Request.Context())
	switch health.Status {
	case lib.HealthOK:
		succeed(c, "all models ready", health)
	case lib.HealthDegraded:
		name := "summarizer"
		if !health.ModelsLoaded.NER {
			name = "ner"
		}
		c.JSON(http.StatusServiceUnavailable, lib.Response{
			Message: "service degraded",
			Data:    health,
			Error:   biomed.NewError(biomed.ErrModelNotReady, name).Error(),
		})
	default:
		c.JSON(http.StatusServiceUnavailable, lib.Response{
			Message: "service unavailable",
			Data:    health,
			Error:   "upstream unreachable",
		})
	}
}

func (s server) ExtractEntities(c *gin.Context) {
	var req lib.TextRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := s.controller.ExtractEntities(c.Request.Context(), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	succeed(c, "entities extracted", result)
}

func (s server) Analyze(c *gin.Context) {
	var req lib.TextRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := s.controller.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	succeed(c, "analysis complete", result)
}

func (s server) Summarize(c *gin.Context) {
	var req lib.SummarizeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	maxLen, minLen, doSample := req.Bounds()
	result, err := s.controller.Summarize(c.Request.Context(), req.Text, maxLen, minLen, doSample)
	if err != nil {
		handleError(c, err)
		return
	}
	succeed(c, "text summarized", result)
}

func (s server) SummarizeSimple(c *gin.Context) {
	var req lib.TextRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := s.controller.SummarizeSimple(c.Request.Context(), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	succeed(c, "text summarized", result)
}

func (s server) ExtractAndSummarize(c *gin.Context) {
	var req lib.SummarizeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	maxLen, minLen, doSample := req.Bounds()
	result, err := s.controller.ExtractAndSummarize(c.Request.Context(), req.Text, maxLen, minLen, doSample)
	if err != nil {
		handleError(c, err)
		return
	}
	succeed(c, "combined analysis complete", result)
}

func (s server) ProcessSensorMetadata(c *gin.Context) {
	var req lib.SensorMetadataRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := s.controller.ProcessSensorMetadata(c.Request.Context(), req.Metadata, req.SensorType)
	if err != nil {
		handleError(c, err)
		return
	}
	succeed(c, "sensor metadata processed", result)
}

func (s server) AnalyzeProposal(c *gin.Context) {
	var req lib.ProposalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := s.controller.AnalyzeProposal(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	succeed(c, "proposal analyzed", result)
}

func (s server) BatchAnalyze(c *gin.Context) {
	var req lib.BatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result := s.controller.BatchAnalyze(c.Request.Context(), req.Texts, req.ResolvedOperation())
	succeed(c, "batch processed", result)
}

type validatable interface {
	Validate() error
}

func bindAndValidate(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		handleError(c, lib.ValidationError{Field: "body", Expected: "valid json", Actual: err.Error()})
		return false
	}
	if err := req.Validate(); err != nil {
		handleError(c, err)
		return false
	}
	return true
}

func succeed(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, lib.Response{Success: true, Message: message, Data: data})
}

// handleError is the single place where error kinds become status codes.
func handleError(c *gin.Context, err error) {
	var validationErr lib.ValidationError
	if errors.As(err, &validationErr) {
		abort(c, http.StatusBadRequest, "invalid request", validationErr.Error())
		return
	}

	var upstreamErr *biomed.Error
	if errors.As(err, &upstreamErr) {
		switch upstreamErr.Kind {
		case biomed.ErrTimeout:
			abort(c, http.StatusGatewayTimeout, "upstream timed out", upstreamErr.Error())
		case biomed.ErrModelNotReady:
			abort(c, http.StatusServiceUnavailable, "model unavailable", upstreamErr.Error())
		default:
			abort(c, http.StatusBadGateway, "upstream failed", upstreamErr.Error())
		}
		return
	}

	// Anything else is ours. Log the cause, never return it.
	log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
	abort(c, http.StatusInternalServerError, "request failed", "internal error")
}

func abort(c *gin.Context, code int, message, errMsg string) {
	c.JSON(code, lib.Response{Message: message, Error: errMsg})
	c.Abort()
}
