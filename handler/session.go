package handler

import (
	"net/http"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/service"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/dryp3004/DRYP-Preview/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientIDHeader 标识浏览器的请求头，用于保存偏好和限流
const ClientIDHeader = "X-Client-ID"

// SessionHandler 设计会话与图层操作
type SessionHandler struct {
	sessions *store.Registry
	catalog  *service.Catalog
	prefs    *service.PreferenceService
	design   *service.DesignService
	capture  *service.CaptureService
}

func NewSessionHandler(
	sessions *store.Registry,
	catalog *service.Catalog,
	prefs *service.PreferenceService,
	design *service.DesignService,
	capture *service.CaptureService,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		catalog:  catalog,
		prefs:    prefs,
		design:   design,
		capture:  capture,
	}
}

// session 取出路径中的会话，失败时已写入响应
func (h *SessionHandler) session(c *gin.Context) (*store.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		failWith(c, "会话不存在", err)
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) sessionView(c *gin.Context) (*store.Session, model.View, bool) {
	sess, ok := h.session(c)
	if !ok {
		return nil, "", false
	}
	v, ok := parseView(c)
	if !ok {
		return nil, "", false
	}
	return sess, v, true
}

// Create 创建会话；未指定颜色时使用客户端保存的偏好
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "请求参数错误", err)
			return
		}
	}

	if req.Garment.Color == "" {
		if clientID := c.GetHeader(ClientIDHeader); clientID != "" {
			color, ok, err := h.prefs.Color(c.Request.Context(), clientID)
			if err != nil {
				utils.Logger.Warn("failed to load color preference", zap.Error(err))
			} else if ok {
				req.Garment.Color = color
			}
		}
	}

	garment, err := h.catalog.Resolve(req.Garment)
	if err != nil {
		failWith(c, "不支持的服装款式", err)
		return
	}

	sess := h.sessions.Create(garment)
	utils.Logger.Info("session created",
		zap.String("session", sess.ID()),
		zap.String("type", garment.Type),
		zap.String("color", garment.Color))
	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if !h.sessions.Close(c.Param("id")) {
		failWith(c, "会话不存在", store.ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetView 切换当前编辑的一面
func (h *SessionHandler) SetView(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req model.SetViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	v, err := model.ParseView(string(req.View))
	if err != nil {
		fail(c, http.StatusBadRequest, "无效的视图", err)
		return
	}
	sess.SetActiveView(v)
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Crop 裁剪图片并放入当前视图
func (h *SessionHandler) Crop(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req model.CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	v, overlay, err := h.design.Crop(c.Request.Context(), sess, req)
	if err != nil {
		failWith(c, "裁剪失败", err)
		return
	}
	c.JSON(http.StatusCreated, model.OverlayResponse{View: v, Overlay: overlay})
}

// AddOverlay 直接添加图层，kind 为 sized 时使用旧版尺寸模型
func (h *SessionHandler) AddOverlay(c *gin.Context) {
	sess, v, ok := h.sessionView(c)
	if !ok {
		return
	}
	var req model.AddOverlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}

	if err := raster.ValidateSource(req.Image); err != nil {
		failWith(c, "图片地址无效", err)
		return
	}

	var overlay model.Overlay
	switch req.Kind {
	case "", model.KindScaled:
		overlay = sess.AddOverlay(v, req.Image)
	case model.KindSized:
		overlay = sess.AddDesign(v, req.Image)
	default:
		fail(c, http.StatusBadRequest, "未知的图层类型", nil)
		return
	}
	c.JSON(http.StatusCreated, model.OverlayResponse{View: v, Overlay: overlay})
}

func (h *SessionHandler) UpdatePosition(c *gin.Context) {
	sess, v, ok := h.sessionView(c)
	if !ok {
		return
	}
	var pos model.OverlayPosition
	if err := c.ShouldBindJSON(&pos); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	id := c.Param("overlayId")
	if !sess.UpdatePosition(v, id, pos) {
		failWith(c, "图层不存在", store.ErrOverlayNotFound)
		return
	}
	overlay, _ := sess.Overlay(v, id)
	c.JSON(http.StatusOK, model.OverlayResponse{View: v, Overlay: overlay})
}

func (h *SessionHandler) DeleteOverlay(c *gin.Context) {
	sess, v, ok := h.sessionView(c)
	if !ok {
		return
	}
	if !sess.DeleteOverlay(v, c.Param("overlayId")) {
		failWith(c, "图层不存在", store.ErrOverlayNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Select(c *gin.Context) {
	sess, v, ok := h.sessionView(c)
	if !ok {
		return
	}
	if err := sess.Select(v, c.Param("overlayId")); err != nil {
		failWith(c, "图层不存在", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearSelection 点击空白处取消选中
func (h *SessionHandler) ClearSelection(c *gin.Context) {
	sess, v, ok := h.sessionView(c)
	if !ok {
		return
	}
	sess.ClearSelection(v)
	c.Status(http.StatusNoContent)
}

// Wheel 滚轮缩放，按住修饰键时旋转
func (h *SessionHandler) Wheel(c *gin.Context) {
	sess, v, ok := h.sessionView(c)
	if !ok {
		return
	}
	var req model.WheelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	overlay, err := sess.Wheel(v, c.Param("overlayId"), req.DeltaY, req.Modifier)
	if err != nil {
		failWith(c, "操作失败", err)
		return
	}
	c.JSON(http.StatusOK, model.OverlayResponse{View: v, Overlay: overlay})
}

// Capture 渲染一面，format 可选 png（默认）或 webp
func (h *SessionHandler) Capture(c *gin.Context) {
	sess, v, ok := h.sessionView(c)
	if !ok {
		return
	}
	format, err := raster.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, http.StatusBadRequest, "不支持的图片格式", err)
		return
	}

	img, err := h.capture.Capture(c.Request.Context(), sess, v)
	if err != nil {
		failWith(c, "渲染失败", err)
		return
	}
	data, err := raster.Encode(img, format)
	if err != nil {
		fail(c, http.StatusInternalServerError, "编码图片失败", err)
		return
	}
	c.Data(http.StatusOK, format.MimeType(), data)
}
