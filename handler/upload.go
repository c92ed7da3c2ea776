package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/service"
	"github.com/dryp3004/DRYP-Preview/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Cutter 去除图片背景
type Cutter interface {
	RemoveBackground(ctx context.Context, data []byte, keepLargest bool) ([]byte, error)
}

type UploadHandler struct {
	upload *service.UploadService
	cutter Cutter
}

// NewUploadHandler cutter 为 nil 时去背景接口返回 503
func NewUploadHandler(upload *service.UploadService, cutter Cutter) *UploadHandler {
	return &UploadHandler{upload: upload, cutter: cutter}
}

// Upload 处理图片上传，返回 data URI
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "请上传图片文件", err)
		return
	}

	// 验证文件大小
	if file.Size > h.upload.MaxSize() {
		fail(c, http.StatusBadRequest,
			fmt.Sprintf("文件大小超过限制 (%d MB)", h.upload.MaxSize()/(1024*1024)),
			service.ErrFileTooLarge)
		return
	}

	f, err := file.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "读取文件失败", err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.upload.MaxSize()+1))
	if err != nil {
		fail(c, http.StatusInternalServerError, "读取文件失败", err)
		return
	}

	resp, err := h.upload.Process(data)
	if err != nil {
		failWith(c, "不支持的图片文件", err)
		return
	}

	utils.Logger.Info("file uploaded",
		zap.String("filename", file.Filename),
		zap.String("md5", utils.BytesMD5(data)),
		zap.Int64("size", file.Size),
		zap.Int("width", resp.Width),
		zap.Int("height", resp.Height))

	c.JSON(http.StatusOK, resp)
}

// Cutout 去除 data URI 图片的背景，返回透明 PNG
func (h *UploadHandler) Cutout(c *gin.Context) {
	if h.cutter == nil {
		fail(c, http.StatusServiceUnavailable, "去背景服务不可用", service.ErrCutoutDisabled)
		return
	}

	var req model.CutoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}

	_, data, err := raster.ParseDataURI(req.Image)
	if err != nil {
		failWith(c, "图片格式错误", err)
		return
	}
	if int64(len(data)) > h.upload.MaxSize() {
		fail(c, http.StatusBadRequest, "图片过大", service.ErrFileTooLarge)
		return
	}

	out, err := h.cutter.RemoveBackground(c.Request.Context(), data, req.KeepLargest)
	if err != nil {
		failWith(c, "图片处理失败", err)
		return
	}

	c.JSON(http.StatusOK, model.ImageResponse{ImageURL: raster.DataURI("image/png", out)})
}
