package handler

import (
	"errors"
	"net/http"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/service"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/dryp3004/DRYP-Preview/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail 返回统一的错误结构，5xx 同时记录日志
func fail(c *gin.Context, status int, message string, err error) {
	resp := model.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		_ = c.Error(err)
	}
	if status >= http.StatusInternalServerError {
		utils.Logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, resp)
}

// statusOf 把领域错误映射为 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrOverlayNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrGestureActive),
		errors.Is(err, store.ErrNoGesture),
		errors.Is(err, store.ErrScaleCooldown):
		return http.StatusConflict
	case errors.Is(err, store.ErrKindMismatch),
		errors.Is(err, store.ErrBadGesture),
		errors.Is(err, raster.ErrEmptyCrop),
		errors.Is(err, raster.ErrNotDataURI),
		errors.Is(err, raster.ErrInvalidSource),
		errors.Is(err, raster.ErrUnsafeAsset),
		errors.Is(err, raster.ErrImageTooLarge),
		errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrUnsupportedType),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUndecodable),
		errors.Is(err, service.ErrEmptyImage),
		errors.Is(err, service.ErrMissingCustomer),
		errors.Is(err, service.ErrUnknownGarment),
		errors.Is(err, service.ErrUnknownColor),
		errors.Is(err, service.ErrMissingClientID):
		return http.StatusBadRequest
	case errors.Is(err, raster.ErrMissingAnchor),
		errors.Is(err, service.ErrNoForeground):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrSearchFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func failWith(c *gin.Context, message string, err error) {
	fail(c, statusOf(err), message, err)
}

func parseView(c *gin.Context) (model.View, bool) {
	v, err := model.ParseView(c.Param("view"))
	if err != nil {
		fail(c, http.StatusBadRequest, "无效的视图", err)
		return "", false
	}
	return v, true
}
