package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
	domainsvc "TrendPulse/internal/domain/service"
	"TrendPulse/internal/service/ratelimit"
	"TrendPulse/internal/usecase"
	xhttp "TrendPulse/pkg/http"
	xlogger "TrendPulse/pkg/logger"
)

const apiVersion = "1.0.0"

// AuthConfig carries the shared credential and submit rate limits.
type AuthConfig struct {
	APIKey       string
	SubmitBurst  float64
	SubmitPerSec float64
}

// AnalysisEchoHandler exposes the analysis lifecycle over HTTP.
type AnalysisEchoHandler struct {
	logger    *xlogger.Logger
	orch      *usecase.AnalysisOrchestrator
	completer domainsvc.TextCompleter
	limiter   *ratelimit.Limiter
	auth      AuthConfig
}

// NewAnalysisEchoHandler creates the handler.
func NewAnalysisEchoHandler(logger *xlogger.Logger, orch *usecase.AnalysisOrchestrator, completer domainsvc.TextCompleter, auth AuthConfig) *AnalysisEchoHandler {
	if auth.SubmitBurst <= 0 {
		auth.SubmitBurst = 10
	}
	if auth.SubmitPerSec <= 0 {
		auth.SubmitPerSec = 1
	}
	return &AnalysisEchoHandler{
		logger:    logger,
		orch:      orch,
		completer: completer,
		limiter:   ratelimit.New(),
		auth:      auth,
	}
}

// RegisterRoutes implements xhttp.Handler.
func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("", h.Info)
	g.POST("/analyze", h.Analyze)
	g.GET("/results", h.ListResults)
	g.GET("/results/:id", h.GetResult)
	g.DELETE("/results/:id", h.DeleteResult)
}

func (h *AnalysisEchoHandler) authenticate(key string) *xhttp.AppError {
	if key == "" || key != h.auth.APIKey {
		return xhttp.UnauthorizedError("Invalid API key")
	}
	return nil
}

// Analyze accepts a new analysis request and schedules it.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if aerr := h.authenticate(req.APIKey); aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	if !h.limiter.Allow(req.APIKey, h.auth.SubmitBurst, h.auth.SubmitPerSec) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many analysis requests, slow down"))
	}

	analysisReq := models.AnalysisRequest{
		Market:    req.Market,
		Region:    domainrepo.NormalizeRegion(req.Region),
		Timeframe: domainrepo.NormalizeTimeframe(req.Timeframe),
	}

	job, err := h.orch.Submit(c.Request().Context(), analysisReq)
	if err != nil {
		h.logger.Error("submit usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to start analysis").WithError(err))
	}
	if job.Status == models.StatusFailed {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Service is busy, try again later"))
	}

	return xhttp.SuccessResponse(c, models.AnalyzeResponse{
		AnalysisID:          job.ID,
		Status:              "processing",
		Message:             "Analysis started successfully",
		EstimatedCompletion: "30-60 seconds",
	})
}

// GetResult returns the full job view for one analysis id.
func (h *AnalysisEchoHandler) GetResult(c echo.Context) error {
	if aerr := h.authenticate(c.QueryParam("api_key")); aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}

	id := c.Param("id")
	job, err := h.orch.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domainrepo.ErrJobNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Analysis not found or expired"))
		}
		h.logger.Error("get result usecase error", xlogger.String("id", id), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to load analysis").WithError(err))
	}
	return xhttp.SuccessResponse(c, job)
}

// ListResults returns recent job summaries, newest first.
func (h *AnalysisEchoHandler) ListResults(c echo.Context) error {
	req := &models.ResultsQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if aerr := h.authenticate(req.APIKey); aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}

	summaries, err := h.orch.List(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("list results usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to list analyses").WithError(err))
	}
	return xhttp.ListResponse(c, summaries, int64(len(summaries)))
}

// DeleteResult removes one analysis.
func (h *AnalysisEchoHandler) DeleteResult(c echo.Context) error {
	if aerr := h.authenticate(c.QueryParam("api_key")); aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}

	id := c.Param("id")
	if err := h.orch.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, domainrepo.ErrJobNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Analysis not found"))
		}
		h.logger.Error("delete result usecase error", xlogger.String("id", id), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to delete analysis").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"message": "Analysis deleted successfully"})
}

// Info describes the API surface.
func (h *AnalysisEchoHandler) Info(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.ServiceInfo{
		Name:    "TrendPulse - Market Trend Analysis",
		Version: apiVersion,
		Endpoints: map[string]string{
			"analyze": "POST /api/analyze",
			"results": "GET /api/results/{id}",
			"list":    "GET /api/results",
			"delete":  "DELETE /api/results/{id}",
			"health":  "GET /health",
		},
		Regions: []string{
			string(models.RegionUS), string(models.RegionEU),
			string(models.RegionAsia), string(models.RegionGlobal),
		},
		Timeframes: []string{
			string(models.TFDaily), string(models.TFWeekly), string(models.TFMonthly),
			string(models.TFQuarterly), string(models.TFYearly),
		},
	})
}

// Health reports process readiness. Job state is deliberately not consulted.
func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	openaiStatus := "disconnected"
	if h.completer != nil && h.completer.Ready() {
		openaiStatus = "connected"
	}
	return c.JSON(http.StatusOK, models.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: map[string]string{
			"openai":          openaiStatus,
			"storage":         "active",
			"data_collectors": "ready",
		},
		Version: apiVersion,
	})
}
