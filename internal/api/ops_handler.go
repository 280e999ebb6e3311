package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/advice"
	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/models"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "luminher-api"

// OpsHandler serves the API-key protected operational endpoints.
type OpsHandler struct {
	metricsService  core.MetricsService
	emailService    core.EmailService
	progressService core.ProgressService
	adviceProxy     *advice.Proxy
	clock           func() time.Time
	logger          *zap.Logger
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(
	ms core.MetricsService,
	es core.EmailService,
	ps core.ProgressService,
	proxy *advice.Proxy,
	clock func() time.Time,
	logger *zap.Logger,
) *OpsHandler {
	if clock == nil {
		clock = time.Now
	}
	return &OpsHandler{
		metricsService:  ms,
		emailService:    es,
		progressService: ps,
		adviceProxy:     proxy,
		clock:           clock,
		logger:          logger,
	}
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

type metricsResponse struct {
	OK      bool                `json:"ok"`
	Metrics *models.UserMetrics `json:"metrics"`
}

type signupsResponse struct {
	OK     bool              `json:"ok"`
	Range  models.DateRange  `json:"range"`
	Series []models.DayCount `json:"series"`
}

type sendEmailResponse struct {
	OK   bool `json:"ok"`
	Sent int  `json:"sent"`
}

type progressResponse struct {
	OK      bool                   `json:"ok"`
	Entries []models.ProgressEntry `json:"entries"`
}

// Health handles GET /apiHealth.
func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		OK:      true,
		Service: ServiceName,
		Time:    h.clock().UTC().Format(time.RFC3339),
	})
}

// Metrics handles GET /apiMetrics.
func (h *OpsHandler) Metrics(c *gin.Context) {
	m, err := h.metricsService.UserMetrics(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, metricsResponse{OK: true, Metrics: m})
}

// DailySignups handles GET /apiDailySignups.
func (h *OpsHandler) DailySignups(c *gin.Context) {
	s, err := h.metricsService.DailySignups(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, signupsResponse{OK: true, Range: s.Range, Series: s.Series})
}

// SendEmail handles POST /apiSendEmail.
func (h *OpsHandler) SendEmail(c *gin.Context) {
	var req models.SendEmailRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: invalid JSON body: %v", core.ErrInvalidArgument, err))
		return
	}
	sent, err := h.emailService.Send(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sendEmailResponse{OK: true, Sent: sent})
}

// Advice handles POST /apiAdvice. The upstream answer is relayed verbatim.
func (h *OpsHandler) Advice(c *gin.Context) {
	resp, err := h.adviceProxy.Forward(c.Request.Context(), c.Query("model"), c.Query("version"), c.Request.Body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.Status, contentType, resp.Body)
}

// UserProgress handles GET /apiUserProgress?uid=.
func (h *OpsHandler) UserProgress(c *gin.Context) {
	entries, err := h.progressService.List(c.Request.Context(), c.Query("uid"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, progressResponse{OK: true, Entries: entries})
}
