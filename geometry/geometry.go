// Package geometry 把指针、触摸、滚轮事件换算为图层变换，不做任何 I/O
package geometry

import (
	"math"
	"strings"
	"time"

	"github.com/dryp3004/DRYP-Preview/model"
)

const (
	// GestureMaxScale 滚轮与角点缩放的上限
	GestureMaxScale = 3.0

	RotateStep         = 5.0
	WheelZoomIn        = 1.05
	WheelZoomOut       = 0.95
	CornerResizeFactor = 0.005

	// ScaleCooldown 滚轮缩放后这段时间内不接受拖拽开始
	ScaleCooldown = 100 * time.Millisecond

	// LegacyMinSize 旧版 Design 角点缩放的最小边长
	LegacyMinSize = 50.0
)

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Distance 两点间距离
func Distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Drag 拖拽手势，开始时记录指针与位置之间的偏移
type Drag struct {
	Offset model.Point
}

// BeginDrag 记录 offset = pointer - position
func BeginDrag(pointer model.Point, pos model.OverlayPosition) Drag {
	return Drag{Offset: model.Point{X: pointer.X - pos.X, Y: pointer.Y - pos.Y}}
}

// Apply position = pointer - offset，只与最后一次采样有关
func (d Drag) Apply(pointer model.Point, pos model.OverlayPosition) model.OverlayPosition {
	pos.X = pointer.X - d.Offset.X
	pos.Y = pointer.Y - d.Offset.Y
	return pos
}

// WheelRotate 每个滚轮刻度旋转 ±5 度，不做取模
func WheelRotate(pos model.OverlayPosition, deltaY float64) model.OverlayPosition {
	if deltaY > 0 {
		pos.Rotation += RotateStep
	} else {
		pos.Rotation -= RotateStep
	}
	return pos
}

// WheelScale 每个滚轮刻度缩放 0.95 或 1.05 倍
func WheelScale(pos model.OverlayPosition, deltaY float64) model.OverlayPosition {
	factor := WheelZoomIn
	if deltaY > 0 {
		factor = WheelZoomOut
	}
	pos.Scale = Clamp(pos.Scale*factor, model.MinScale, GestureMaxScale)
	return pos
}

// CornerResize 角点缩放，取 x、y 方向位移中较大者
type CornerResize struct {
	Start      model.Point
	StartScale float64
}

func BeginCornerResize(pointer model.Point, pos model.OverlayPosition) CornerResize {
	return CornerResize{Start: pointer, StartScale: pos.Scale}
}

func (r CornerResize) Apply(pointer model.Point, pos model.OverlayPosition) model.OverlayPosition {
	delta := math.Max(pointer.X-r.Start.X, pointer.Y-r.Start.Y)
	pos.Scale = Clamp(r.StartScale+delta*CornerResizeFactor, model.MinScale, GestureMaxScale)
	return pos
}

// DirectionalResize 按手柄方向缩放，Handle 由 n/s/e/w 组成，如 "se"
type DirectionalResize struct {
	Handle     string
	Start      model.Point
	StartScale float64
	Box        model.Size
}

func BeginDirectionalResize(handle string, pointer model.Point, pos model.OverlayPosition, box model.Size) DirectionalResize {
	return DirectionalResize{
		Handle:     strings.ToLower(handle),
		Start:      pointer,
		StartScale: pos.Scale,
		Box:        box,
	}
}

// Apply 横纵两个方向各自计算，取变化幅度更大的一个
func (r DirectionalResize) Apply(pointer model.Point, pos model.OverlayPosition) model.OverlayPosition {
	dx := pointer.X - r.Start.X
	dy := pointer.Y - r.Start.Y

	scale := r.StartScale
	best := 0.0
	consider := func(candidate float64) {
		if change := math.Abs(candidate - r.StartScale); change > best {
			best = change
			scale = candidate
		}
	}

	if r.Box.Width > 0 {
		switch {
		case strings.Contains(r.Handle, "e"):
			consider(r.StartScale * (1 + dx/r.Box.Width))
		case strings.Contains(r.Handle, "w"):
			consider(r.StartScale * (1 - dx/r.Box.Width))
		}
	}
	if r.Box.Height > 0 {
		switch {
		case strings.Contains(r.Handle, "s"):
			consider(r.StartScale * (1 + dy/r.Box.Height))
		case strings.Contains(r.Handle, "n"):
			consider(r.StartScale * (1 - dy/r.Box.Height))
		}
	}

	pos.Scale = Clamp(scale, model.MinScale, model.MaxScale)
	return pos
}

// Pinch 双指缩放，直接修改宽高
type Pinch struct {
	InitialDistance float64
	InitialSize     model.Size
}

func BeginPinch(a, b model.Point, size model.Size) (Pinch, bool) {
	d := Distance(a, b)
	if d == 0 {
		return Pinch{}, false
	}
	return Pinch{InitialDistance: d, InitialSize: size}, true
}

func (p Pinch) Apply(a, b model.Point) model.Size {
	factor := Distance(a, b) / p.InitialDistance
	return model.Size{
		Width:  p.InitialSize.Width * factor,
		Height: p.InitialSize.Height * factor,
	}
}
