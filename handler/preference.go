package handler

import (
	"net/http"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/service"
	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	prefs *service.PreferenceService
}

func NewPreferenceHandler(prefs *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// GetColor 读取客户端保存的服装颜色
func (h *PreferenceHandler) GetColor(c *gin.Context) {
	color, ok, err := h.prefs.Color(c.Request.Context(), c.GetHeader(ClientIDHeader))
	if err != nil {
		failWith(c, "读取偏好失败", err)
		return
	}
	if !ok {
		fail(c, http.StatusNotFound, "未设置颜色偏好", nil)
		return
	}
	c.JSON(http.StatusOK, model.ColorPreference{Color: color})
}

func (h *PreferenceHandler) SetColor(c *gin.Context) {
	var req model.ColorPreference
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	if err := h.prefs.SetColor(c.Request.Context(), c.GetHeader(ClientIDHeader), req.Color); err != nil {
		failWith(c, "保存偏好失败", err)
		return
	}
	c.Status(http.StatusNoContent)
}
