package model

import "fmt"

// 缩放范围，所有修改 scale 的路径都必须落在此区间内
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// View 服装的一面
type View string

const (
	ViewFront View = "front"
	ViewBack  View = "back"
)

// ParseView 解析视图名称
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewFront, ViewBack:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Views 按固定顺序返回两个视图
func Views() []View {
	return []View{ViewFront, ViewBack}
}

// OverlayKind 区分两种尺寸模型
type OverlayKind string

const (
	// KindScaled 以 200x200 基准框为单位的统一缩放，位置是相对视图中心的偏移
	KindScaled OverlayKind = "scaled"
	// KindSized 旧版 Design 模型，直接保存宽高，位置是视图内的左上角
	KindSized OverlayKind = "sized"
)

// OverlayPosition 图层变换
type OverlayPosition struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// IdentityPosition 新图层的初始变换
func IdentityPosition() OverlayPosition {
	return OverlayPosition{X: 0, Y: 0, Scale: 1, Rotation: 0}
}

// Clamped 返回 scale 被限制在 [MinScale, MaxScale] 内的副本
func (p OverlayPosition) Clamped() OverlayPosition {
	p.Scale = max(MinScale, min(MaxScale, p.Scale))
	return p
}

// Size 宽高
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point 指针坐标
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Overlay 放置在服装某一面上的设计图层
type Overlay struct {
	ID       string          `json:"id"`
	Kind     OverlayKind     `json:"kind"`
	Image    string          `json:"image"`
	Position OverlayPosition `json:"position"`
	Size     *Size           `json:"size,omitempty"`
}

// Design 旧版前端使用的设计数据结构
type Design struct {
	ID       string  `json:"id"`
	ImageURL string  `json:"imageUrl"`
	Position Point   `json:"position"`
	Size     Size    `json:"size"`
	Rotation float64 `json:"rotation"`
	Side     View    `json:"side"`
}

// DefaultDesignSize 旧版 Design 的初始尺寸
var DefaultDesignSize = Size{Width: 150, Height: 150}

// Overlay 将 Design 转换为 sized 图层
func (d Design) Overlay() Overlay {
	size := d.Size
	return Overlay{
		ID:    d.ID,
		Kind:  KindSized,
		Image: d.ImageURL,
		Position: OverlayPosition{
			X:        d.Position.X,
			Y:        d.Position.Y,
			Scale:    1,
			Rotation: d.Rotation,
		},
		Size: &size,
	}
}

// DesignFromOverlay 将 sized 图层还原为 Design
func DesignFromOverlay(o Overlay, side View) (Design, error) {
	if o.Kind != KindSized || o.Size == nil {
		return Design{}, fmt.Errorf("overlay %s is not a sized overlay", o.ID)
	}
	return Design{
		ID:       o.ID,
		ImageURL: o.Image,
		Position: Point{X: o.Position.X, Y: o.Position.Y},
		Size:     *o.Size,
		Rotation: o.Position.Rotation,
		Side:     side,
	}, nil
}

// ViewState 单个视图的图层列表与选中状态
type ViewState struct {
	Overlays   []Overlay `json:"overlays"`
	SelectedID string    `json:"selectedOverlayId,omitempty"`
}
