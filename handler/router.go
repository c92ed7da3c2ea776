package handler

import "github.com/gin-gonic/gin"

// Handlers 全部 API 处理器
type Handlers struct {
	Upload     *UploadHandler
	Image      *ImageHandler
	Session    *SessionHandler
	Order      *OrderHandler
	Preference *PreferenceHandler
}

// Register 注册 API 路由，limit 只用于调用外部服务的接口
func Register(api gin.IRouter, h Handlers, limit gin.HandlerFunc) {
	vendor := api.Group("", limit)
	{
		vendor.POST("/generate", h.Image.Generate)
		vendor.POST("/proxy-image", h.Image.Proxy)
		vendor.POST("/remove-background", h.Upload.Cutout)
		vendor.POST("/save-design", h.Order.SaveDesign)
		vendor.POST("/save-overlay", h.Order.SaveOverlay)
		vendor.POST("/sessions/:id/submit", h.Order.Submit)
	}

	api.POST("/upload", h.Upload.Upload)

	api.GET("/preferences/color", h.Preference.GetColor)
	api.PUT("/preferences/color", h.Preference.SetColor)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.Session.Create)
		sessions.GET("/:id", h.Session.Get)
		sessions.DELETE("/:id", h.Session.Delete)
		sessions.PUT("/:id/view", h.Session.SetView)
		sessions.POST("/:id/crop", h.Session.Crop)

		sessions.POST("/:id/gestures", h.Session.BeginGesture)
		sessions.POST("/:id/gestures/move", h.Session.MoveGesture)
		sessions.DELETE("/:id/gestures", h.Session.EndGesture)

		view := sessions.Group("/:id/views/:view")
		view.GET("/capture", h.Session.Capture)
		view.DELETE("/selection", h.Session.ClearSelection)
		view.POST("/overlays", h.Session.AddOverlay)
		view.PUT("/overlays/:overlayId/position", h.Session.UpdatePosition)
		view.DELETE("/overlays/:overlayId", h.Session.DeleteOverlay)
		view.POST("/overlays/:overlayId/select", h.Session.Select)
		view.POST("/overlays/:overlayId/wheel", h.Session.Wheel)
	}
}
