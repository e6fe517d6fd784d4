// Package http 交易生命周期引擎 HTTP 接口
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/tradeos/internal/tradeos/application"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// TradeOSHandler HTTP 处理器
type TradeOSHandler struct {
	app *application.TradeOSService
}

// NewTradeOSHandler 创建 HTTP 处理器实例
func NewTradeOSHandler(app *application.TradeOSService) *TradeOSHandler {
	return &TradeOSHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *TradeOSHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/tradeos")
	{
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.POST("/orders/:id/cancel", h.CancelOrder)
		api.POST("/orders/:id/release", h.ReleaseOrder)
		api.POST("/orders/:id/confirm", h.GenerateConfirm)

		api.POST("/blocks", h.BuildBlock)
		api.GET("/blocks/:id", h.GetBlock)
		api.POST("/blocks/:id/route", h.RouteBlock)
		api.POST("/blocks/:id/allocate", h.AllocateBlock)

		api.POST("/trade-errors", h.OpenTradeError)
		api.GET("/trade-errors", h.ListTradeErrors)
		api.POST("/trade-errors/:id/close", h.CloseTradeError)

		api.GET("/blotter", h.ExportBlotter)
	}
}

// statusOf 领域错误分类到 HTTP 状态码的映射。
func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindApprovalRequired:
		return http.StatusForbidden
	case domain.KindRoutingRejected:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *TradeOSHandler) fail(c *gin.Context, action string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logging.Error(c.Request.Context(), "Failed to "+action, "error", err)
	}
	response.ErrorWithStatus(c, status, err.Error(), "")
}

// CreateOrder 接收订单
func (h *TradeOSHandler) CreateOrder(c *gin.Context) {
	var cmd application.CreateOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	order, err := h.app.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "create order", err)
		return
	}
	response.Success(c, order)
}

// GetOrder 获取订单详情
func (h *TradeOSHandler) GetOrder(c *gin.Context) {
	order, err := h.app.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get order", err)
		return
	}
	response.Success(c, order)
}

// ListOrders 列出订单
func (h *TradeOSHandler) ListOrders(c *gin.Context) {
	orders, err := h.app.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, "list orders", err)
		return
	}
	response.Success(c, orders)
}

// CancelOrder 取消订单
func (h *TradeOSHandler) CancelOrder(c *gin.Context) {
	order, err := h.app.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "cancel order", err)
		return
	}
	response.Success(c, order)
}

// ReleaseOrder 由合规审查人释放 HELD 订单
func (h *TradeOSHandler) ReleaseOrder(c *gin.Context) {
	var req struct {
		ReviewerID string `json:"reviewer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	order, err := h.app.ReleaseOrder(c.Request.Context(), c.Param("id"), req.ReviewerID)
	if err != nil {
		h.fail(c, "release order", err)
		return
	}
	response.Success(c, order)
}

// GenerateConfirm 生成成交确认书
func (h *TradeOSHandler) GenerateConfirm(c *gin.Context) {
	confirm, err := h.app.GenerateConfirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "generate confirm", err)
		return
	}
	response.Success(c, confirm)
}

// BuildBlock 成块
func (h *TradeOSHandler) BuildBlock(c *gin.Context) {
	var cmd application.BuildBlockCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	block, err := h.app.BuildBlock(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "build block", err)
		return
	}
	response.Success(c, block)
}

// GetBlock 获取交易块详情
func (h *TradeOSHandler) GetBlock(c *gin.Context) {
	block, err := h.app.GetBlock(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get block", err)
		return
	}
	response.Success(c, block)
}

// RouteBlock 路由交易块
func (h *TradeOSHandler) RouteBlock(c *gin.Context) {
	var cmd application.RouteBlockCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	cmd.BlockID = c.Param("id")

	block, err := h.app.RouteBlock(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "route block", err)
		return
	}
	response.Success(c, block)
}

// AllocateBlock 分摊交易块
func (h *TradeOSHandler) AllocateBlock(c *gin.Context) {
	var cmd application.AllocateBlockCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	cmd.BlockID = c.Param("id")

	result, err := h.app.AllocateBlock(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "allocate block", err)
		return
	}
	response.Success(c, result)
}

// OpenTradeError 开立交易差错
func (h *TradeOSHandler) OpenTradeError(c *gin.Context) {
	var cmd application.OpenTradeErrorCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	item, err := h.app.OpenTradeError(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "open trade error", err)
		return
	}
	response.Success(c, item)
}

// ListTradeErrors 按状态列出差错
func (h *TradeOSHandler) ListTradeErrors(c *gin.Context) {
	status := c.DefaultQuery("status", string(domain.TradeErrorSegregated))
	items, err := h.app.ListTradeErrors(c.Request.Context(), status)
	if err != nil {
		h.fail(c, "list trade errors", err)
		return
	}
	response.Success(c, items)
}

// CloseTradeError 关闭交易差错
func (h *TradeOSHandler) CloseTradeError(c *gin.Context) {
	var cmd application.CloseTradeErrorCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	cmd.ErrorID = c.Param("id")

	item, err := h.app.CloseTradeError(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "close trade error", err)
		return
	}
	response.Success(c, item)
}

// ExportBlotter 导出订单报表，out_path 非空时同时落盘。
func (h *TradeOSHandler) ExportBlotter(c *gin.Context) {
	filter := domain.BlotterFilter{
		AssetClass:   domain.AssetClass(c.Query("asset_class")),
		InstrumentID: c.Query("instrument_id"),
		Status:       domain.OrderStatus(c.Query("status")),
	}

	export, err := h.app.ExportBlotter(c.Request.Context(), filter, c.Query("out_path"))
	if err != nil {
		h.fail(c, "export blotter", err)
		return
	}
	response.Success(c, export)
}
