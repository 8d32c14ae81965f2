package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/fraudreview/internal/review/application"
	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/pkg/logger"
	"github.com/wyfcoding/fraudreview/pkg/response"
)

// ReviewHandler 审核域 HTTP 处理器
type ReviewHandler struct {
	app *application.Service
}

// NewReviewHandler 创建 HTTP 处理器实例
func NewReviewHandler(app *application.Service) *ReviewHandler {
	return &ReviewHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *ReviewHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/reviews", h.CreateReview)
		api.GET("/reviews/:tipo/:id", h.GetReview)
		api.GET("/metrics", h.ListMetrics)

		api.POST("/audits", h.RegisterAudit)
		api.GET("/audits", h.ListAudits)

		api.POST("/frauds", h.ReportFraud)

		api.GET("/clients/:id/status", h.GetStatus)
		api.GET("/clients/:id/fraud-status", h.GetFraudStatus)
		api.GET("/clients/:id/last-review", h.GetLastReview)
		api.GET("/clients/:id/account-creation-date", h.GetAccountCreationDate)
	}
}

// writeError 按错误分类映射状态码：冲突 409、校验 400、未找到 404，其余 500
func writeError(c *gin.Context, err error) {
	var dup *domain.DuplicateError
	switch {
	case errors.As(err, &dup):
		response.ErrorWithStatus(c, http.StatusConflict, "analysis already exists", dup.Conflict)
	case errors.Is(err, domain.ErrValidation):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), nil)
	default:
		logger.Error(c.Request.Context(), "Request failed", "path", c.Request.URL.Path, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// CreateReview 创建审核
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req application.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	review, err := h.app.CreateReview(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, review)
}

// GetReview 定点查询审核
func (h *ReviewHandler) GetReview(c *gin.Context) {
	tipo := domain.ReviewType(c.Param("tipo"))
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid review id", nil)
		return
	}

	review, err := h.app.GetByIDAndType(c.Request.Context(), uint(id), tipo)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, review)
}

// ListMetrics 聚合查询
func (h *ReviewHandler) ListMetrics(c *gin.Context) {
	filter := application.MetricsFilter{
		AnalystID:      c.Query("analyst_id"),
		DateFrom:       c.Query("date_from"),
		DateTo:         c.Query("date_to"),
		Tipo:           domain.ReviewType(c.Query("tipo")),
		ClientContains: c.Query("client"),
	}

	rows, err := h.app.ListMetrics(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rows)
}

// RegisterAudit 审计登记
func (h *ReviewHandler) RegisterAudit(c *gin.Context) {
	var req application.RegisterAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if err := h.app.RegisterAudit(c.Request.Context(), &req); err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, nil)
}

// ListAudits 审计登记列表
func (h *ReviewHandler) ListAudits(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", nil)
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid offset", nil)
		return
	}

	entries, err := h.app.ListAudits(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, entries)
}

// ReportFraud 欺诈上报
func (h *ReviewHandler) ReportFraud(c *gin.Context) {
	var req application.ReportFraudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if err := h.app.ReportFraud(c.Request.Context(), &req); err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, nil)
}

// GetStatus 客户审计状态
func (h *ReviewHandler) GetStatus(c *gin.Context) {
	status, err := h.app.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, status)
}

// GetFraudStatus 客户欺诈状态
func (h *ReviewHandler) GetFraudStatus(c *gin.Context) {
	status, err := h.app.GetFraudStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, status)
}

// GetLastReview 客户最近一条审核
func (h *ReviewHandler) GetLastReview(c *gin.Context) {
	review, err := h.app.GetLastReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, review)
}

// GetAccountCreationDate 客户最早开户日期
func (h *ReviewHandler) GetAccountCreationDate(c *gin.Context) {
	date, err := h.app.GetAccountCreationDate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"account_created_at": date})
}
