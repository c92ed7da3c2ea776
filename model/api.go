package model

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// GenerateRequest 图片搜索/生成请求
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	UseAI  bool   `json:"useAI"`
}

// GeneratedImage 候选图片
type GeneratedImage struct {
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
}

// GenerateResponse 图片搜索/生成响应
type GenerateResponse struct {
	Images []GeneratedImage `json:"images"`
}

// ProxyRequest 图片代理请求
type ProxyRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// ImageResponse 返回 data URI 形式的图片
type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// CutoutRequest 去背景请求
type CutoutRequest struct {
	Image       string `json:"image" binding:"required"`
	KeepLargest bool   `json:"keepLargest"`
}

// SaveDesignRequest 提交订单设计
type SaveDesignRequest struct {
	FrontImage   string `json:"frontImage" binding:"required"`
	BackImage    string `json:"backImage" binding:"required"`
	FileName     string `json:"fileName" binding:"required"`
	CustomerName string `json:"customerName"`
	PhoneNumber  string `json:"phoneNumber"`
}

// SaveOverlayRequest 单独保存一个图层
type SaveOverlayRequest struct {
	OverlayImage string `json:"overlayImage" binding:"required"`
	FileName     string `json:"fileName" binding:"required"`
	Position     string `json:"position"`
}

// SaveResponse 保存结果
type SaveResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId,omitempty"`
}

// OverlayResponse 图层操作结果
type OverlayResponse struct {
	View    View    `json:"view"`
	Overlay Overlay `json:"overlay"`
}

// ColorPreference 服装颜色偏好
type ColorPreference struct {
	Color string `json:"color" binding:"required"`
}
