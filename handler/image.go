package handler

import (
	"context"
	"net/http"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/gin-gonic/gin"
)

// Finder 按提示词查找或生成候选图片
type Finder interface {
	Find(ctx context.Context, req model.GenerateRequest) ([]model.GeneratedImage, error)
}

// Proxier 将远程图片转为 data URI
type Proxier interface {
	Proxy(ctx context.Context, imageURL string) (string, error)
}

type ImageHandler struct {
	finder Finder
	proxy  Proxier
}

func NewImageHandler(finder Finder, proxy Proxier) *ImageHandler {
	return &ImageHandler{finder: finder, proxy: proxy}
}

// Generate 搜索图片，useAI 时改为生成
func (h *ImageHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "提示词不能为空", err)
		return
	}

	images, err := h.finder.Find(c.Request.Context(), req)
	if err != nil {
		failWith(c, "获取图片失败", err)
		return
	}
	if images == nil {
		images = []model.GeneratedImage{}
	}
	c.JSON(http.StatusOK, model.GenerateResponse{Images: images})
}

func (h *ImageHandler) Proxy(c *gin.Context) {
	var req model.ProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "图片地址不能为空", err)
		return
	}

	dataURI, err := h.proxy.Proxy(c.Request.Context(), req.ImageURL)
	if err != nil {
		failWith(c, "代理图片失败", err)
		return
	}
	c.JSON(http.StatusOK, model.ImageResponse{ImageURL: dataURI})
}
