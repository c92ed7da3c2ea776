package model

// Garment 服装款式与颜色
type Garment struct {
	Type  string `json:"type"`
	Color string `json:"color"`
	Size  string `json:"size,omitempty"`
}

// SessionSnapshot 设计会话的只读快照
type SessionSnapshot struct {
	ID            string             `json:"id"`
	Garment       Garment            `json:"garment"`
	ActiveView    View               `json:"activeView"`
	Views         map[View]ViewState `json:"views"`
	ActiveOverlay string             `json:"activeOverlayId,omitempty"`
}

// CreateSessionRequest 创建设计会话
type CreateSessionRequest struct {
	Garment Garment `json:"garment"`
}

// SetViewRequest 切换当前视图
type SetViewRequest struct {
	View View `json:"view" binding:"required"`
}

// AddOverlayRequest 直接添加图层
type AddOverlayRequest struct {
	Image string      `json:"image" binding:"required"`
	Kind  OverlayKind `json:"kind"`
}

// CropRequest 裁剪图片并生成新图层
type CropRequest struct {
	Image         string   `json:"image" binding:"required"`
	Crop          CropRect `json:"crop"`
	DisplayWidth  float64  `json:"displayWidth"`
	DisplayHeight float64  `json:"displayHeight"`
}

// CropRect 裁剪框，Unit 为 "%"（默认）或 "px"，相对于显示尺寸
type CropRect struct {
	Unit   string  `json:"unit"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WheelRequest 滚轮事件
type WheelRequest struct {
	DeltaY   float64 `json:"deltaY"`
	Modifier bool    `json:"modifier"`
}

// GestureType 手势类型
type GestureType string

const (
	GestureDrag         GestureType = "drag"
	GestureCorner       GestureType = "corner"
	GestureDirectional  GestureType = "directional"
	GesturePinch        GestureType = "pinch"
	GestureLegacyDrag   GestureType = "legacy-drag"
	GestureLegacyResize GestureType = "legacy-resize"
)

// BeginGestureRequest 开始手势
type BeginGestureRequest struct {
	View      View        `json:"view" binding:"required"`
	OverlayID string      `json:"overlayId" binding:"required"`
	Type      GestureType `json:"type" binding:"required"`
	Pointers  []Point     `json:"pointers"`
	Handle    string      `json:"handle,omitempty"`
	Box       *Size       `json:"box,omitempty"`
}

// MoveGestureRequest 手势采样，按到达顺序处理
type MoveGestureRequest struct {
	Samples [][]Point `json:"samples" binding:"required"`
}

// SubmitRequest 提交订单
type SubmitRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
	PhoneNumber  string `json:"phoneNumber" binding:"required"`
}

// SubmitResponse 提交结果
type SubmitResponse struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName"`
}
