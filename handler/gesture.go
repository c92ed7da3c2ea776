package handler

import (
	"net/http"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/gin-gonic/gin"
)

// BeginGesture 开始拖动、缩放或双指手势
func (h *SessionHandler) BeginGesture(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req model.BeginGestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	if _, err := model.ParseView(string(req.View)); err != nil {
		fail(c, http.StatusBadRequest, "无效的视图", err)
		return
	}
	if err := sess.BeginGesture(req); err != nil {
		failWith(c, "无法开始手势", err)
		return
	}
	overlay, _ := sess.Overlay(req.View, req.OverlayID)
	c.JSON(http.StatusOK, model.OverlayResponse{View: req.View, Overlay: overlay})
}

// MoveGesture 按顺序应用一批指针采样
func (h *SessionHandler) MoveGesture(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req model.MoveGestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	overlay, err := sess.MoveGesture(req.Samples)
	if err != nil {
		failWith(c, "手势处理失败", err)
		return
	}
	v, _, _ := sess.ActiveGesture()
	c.JSON(http.StatusOK, model.OverlayResponse{View: v, Overlay: overlay})
}

func (h *SessionHandler) EndGesture(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.EndGesture(); err != nil {
		failWith(c, "没有进行中的手势", err)
		return
	}
	c.Status(http.StatusNoContent)
}
