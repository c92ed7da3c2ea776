package handler

import (
	"net/http"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/service"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/gin-gonic/gin"
)

// OrderHandler 订单保存与提交
type OrderHandler struct {
	orders   *service.OrderService
	sessions *store.Registry
}

func NewOrderHandler(orders *service.OrderService, sessions *store.Registry) *OrderHandler {
	return &OrderHandler{orders: orders, sessions: sessions}
}

// SaveDesign 保存前端已合成的正反面图片
func (h *OrderHandler) SaveDesign(c *gin.Context) {
	var req model.SaveDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	if err := h.orders.SaveDesign(c.Request.Context(), req); err != nil {
		failWith(c, "保存设计失败", err)
		return
	}
	c.JSON(http.StatusOK, model.SaveResponse{Success: true})
}

func (h *OrderHandler) SaveOverlay(c *gin.Context) {
	var req model.SaveOverlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	fileID, err := h.orders.SaveOverlay(c.Request.Context(), req)
	if err != nil {
		failWith(c, "保存图层失败", err)
		return
	}
	c.JSON(http.StatusOK, model.SaveResponse{Success: true, FileID: fileID})
}

// Submit 在服务端合成会话的两面并上传
func (h *OrderHandler) Submit(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		failWith(c, "会话不存在", err)
		return
	}

	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请填写姓名和电话", err)
		return
	}

	fileName, err := h.orders.Submit(c.Request.Context(), sess, req)
	if err != nil {
		failWith(c, "提交订单失败", err)
		return
	}
	c.JSON(http.StatusOK, model.SubmitResponse{Success: true, FileName: fileName})
}
