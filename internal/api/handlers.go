package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"travelgo/internal/config"
	"travelgo/internal/metrics"
	"travelgo/internal/models"
	"travelgo/internal/storage"
	"travelgo/internal/worker"
)

const (
	ServiceName = "AI Travel Planner"
	Version     = "1.0.0"
)

// QueryRunner submits one question for processing. Satisfied by
// worker.Dispatcher.
type QueryRunner interface {
	Submit(ctx context.Context, question string) (string, error)
}

// Handler wires HTTP routes to the travel-planning agent.
type Handler struct {
	runner   QueryRunner
	history  *storage.History
	cfg      *config.Config
	logger   *zap.Logger
	provider string
}

// NewHandler constructs a Handler instance. history may be nil when no
// database is configured.
func NewHandler(runner QueryRunner, history *storage.History, cfg *config.Config, provider string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		runner:   runner,
		history:  history,
		cfg:      cfg,
		logger:   logger,
		provider: provider,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.cfg.BasicConfig.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", h.health)
	router.GET("/api/info", h.apiInfo)
	router.GET("/api/history", h.queryHistory)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/query", h.query)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
	})
}

func (h *Handler) apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        ServiceName + " API",
		"version":     Version,
		"description": "AI-powered travel planning service",
		"endpoints": gin.H{
			"/health":      "Health check",
			"/api/info":    "API information",
			"/api/history": "Recent travel plans",
			"/metrics":     "Prometheus metrics",
			"/query":       "Generate travel plans",
		},
		"frontend_url": h.cfg.BasicConfig.FrontendURL,
	})
}

func (h *Handler) query(c *gin.Context) {
	started := time.Now()
	requestID := uuid.NewString()
	c.Header("X-Request-ID", requestID)

	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body", "", started)
		return
	}
	if req.Question == "" {
		h.respondError(c, http.StatusBadRequest, "question must not be empty", req.Question, started)
		return
	}
	if maxLen := h.cfg.BasicConfig.MaxQuestionLength; len([]rune(req.Question)) > maxLen {
		h.respondError(c, http.StatusBadRequest, "question exceeds maximum length", req.Question, started)
		return
	}

	h.logger.Info("received query",
		zap.String("request_id", requestID),
		zap.Int("question_length", len(req.Question)))

	timeout := time.Duration(h.cfg.BasicConfig.QueryTimeout) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	answer, err := h.runner.Submit(ctx, req.Question)
	elapsed := time.Since(started)
	metrics.QueryDuration.Observe(elapsed.Seconds())

	if err != nil {
		if errors.Is(err, worker.ErrDispatcherBusy) {
			h.respondError(c, http.StatusTooManyRequests, "server is busy, please retry", req.Question, started)
			return
		}
		// Internal detail stays in the logs; the client gets a generic line.
		h.logger.Error("query failed",
			zap.String("request_id", requestID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		metrics.QueriesCompleted.WithLabelValues(models.StatusError).Inc()
		h.saveRecord(requestID, req.Question, "", models.StatusError, elapsed)
		h.respondError(c, http.StatusInternalServerError, "failed to generate travel plan", req.Question, started)
		return
	}

	h.logger.Info("query answered",
		zap.String("request_id", requestID),
		zap.Duration("elapsed", elapsed))
	metrics.QueriesCompleted.WithLabelValues(models.StatusSuccess).Inc()
	h.saveRecord(requestID, req.Question, answer, models.StatusSuccess, elapsed)

	c.JSON(http.StatusOK, models.QueryResponse{
		Answer:         answer,
		Timestamp:      time.Now().Format(time.RFC3339),
		Status:         models.StatusSuccess,
		Query:          req.Question,
		ProcessingTime: elapsed.Seconds(),
	})
}

func (h *Handler) respondError(c *gin.Context, status int, message, query string, started time.Time) {
	c.JSON(status, models.QueryResponse{
		Error:          message,
		Timestamp:      time.Now().Format(time.RFC3339),
		Status:         models.StatusError,
		Query:          query,
		ProcessingTime: time.Since(started).Seconds(),
	})
}

func (h *Handler) saveRecord(requestID, question, answer, status string, elapsed time.Duration) {
	if h.history == nil {
		return
	}
	rec := &models.QueryRecord{
		RequestID:      requestID,
		Question:       question,
		Answer:         answer,
		Status:         status,
		Provider:       h.provider,
		ProcessingTime: elapsed.Seconds(),
		CreatedAt:      time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.history.Save(ctx, rec); err != nil {
		h.logger.Warn("save query record failed", zap.Error(err))
	}
}

func (h *Handler) queryHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"records": []*models.QueryRecord{}})
		return
	}
	limit := h.cfg.BasicConfig.HistoryLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	records, err := h.history.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if records == nil {
		records = []*models.QueryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
