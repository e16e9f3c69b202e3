package http

import (
	"errors"
	"net/http"

	"github.com/aescanero/awo/internal/application/steps"
	"github.com/aescanero/awo/pkg/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WorkflowSubmitRequest represents a workflow submission.
type WorkflowSubmitRequest struct {
	Pattern domain.Pattern          `json:"pattern" binding:"required"`
	Request domain.AdmissionRequest `json:"request" binding:"required"`
	Steps   []steps.Spec            `json:"steps" binding:"required"`
	Input   interface{}             `json:"input"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details.
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"checks": gin.H{
			"gate":         "ok",
			"orchestrator": "ok",
		},
	})
}

// handleEvaluate runs one admission evaluation. The decision is always
// 200: deny, throttle and circuit-open are data, not transport errors.
func (s *Server) handleEvaluate(c *gin.Context) {
	var req domain.AdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	decision := s.gate.Evaluate(c.Request.Context(), &req)
	c.JSON(http.StatusOK, decision)
}

// handleListPolicies returns the active rule set in evaluation order.
func (s *Server) handleListPolicies(c *gin.Context) {
	rules := s.gate.Rules()
	c.JSON(http.StatusOK, gin.H{
		"rules": rules,
		"total": len(rules),
	})
}

// handleBreakerStates returns a snapshot of every circuit breaker.
func (s *Server) handleBreakerStates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"breakers": s.gate.BreakerStates()})
}

// handleBucketStates returns a snapshot of every token bucket.
func (s *Server) handleBucketStates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buckets": s.gate.LimiterStates()})
}

// handleListStepKinds returns the registered step kinds.
func (s *Server) handleListStepKinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": s.registry.Kinds()})
}

// handleSubmitWorkflow builds the steps from their specs and runs the
// workflow synchronously, returning the full sealed result.
func (s *Server) handleSubmitWorkflow(c *gin.Context) {
	var req WorkflowSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	built, err := s.registry.Build(req.Steps)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_STEPS",
				Message: err.Error(),
			},
		})
		return
	}

	ctx := c.Request.Context()
	var result *domain.WorkflowResult
	switch req.Pattern {
	case domain.PatternPipeline:
		result, err = s.orchestrator.Pipeline(ctx, &req.Request, built, req.Input)
	case domain.PatternFanOut:
		result, err = s.orchestrator.FanOut(ctx, &req.Request, built, req.Input)
	case domain.PatternSaga:
		result, err = s.orchestrator.Saga(ctx, &req.Request, built, req.Input)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_PATTERN",
				Message: "pattern must be pipeline, fan-out or saga",
			},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "SUBMISSION_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleListWorkflows lists persisted workflow summary IDs.
func (s *Server) handleListWorkflows(c *gin.Context) {
	ids, err := s.orchestrator.ListSummaries(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list workflows", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORAGE_ERROR",
				Message: "Failed to list workflow summaries",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflows": ids,
		"total":     len(ids),
	})
}

// handleGetWorkflow fetches a persisted workflow summary.
func (s *Server) handleGetWorkflow(c *gin.Context) {
	workflowID := c.Param("id")

	result, err := s.orchestrator.GetSummary(c.Request.Context(), workflowID)
	if err != nil {
		if errors.Is(err, domain.ErrSummaryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Workflow not found",
				},
			})
			return
		}
		s.logger.Error("failed to get workflow",
			zap.String("workflow_id", workflowID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORAGE_ERROR",
				Message: "Failed to load workflow summary",
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
