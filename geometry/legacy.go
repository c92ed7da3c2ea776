package geometry

import (
	"math"

	"github.com/dryp3004/DRYP-Preview/model"
)

// KeepInBounds 将 sized 图层的左上角限制在视图内
func KeepInBounds(p model.Point, size, bounds model.Size) model.Point {
	return model.Point{
		X: math.Min(math.Max(p.X, 0), bounds.Width-size.Width),
		Y: math.Min(math.Max(p.Y, 0), bounds.Height-size.Height),
	}
}

// LegacyDrag 旧版拖拽：以开始时的位置加上指针位移
type LegacyDrag struct {
	Start         model.Point
	StartPosition model.Point
	Bounds        model.Size
}

func BeginLegacyDrag(pointer model.Point, pos model.OverlayPosition, bounds model.Size) LegacyDrag {
	return LegacyDrag{
		Start:         pointer,
		StartPosition: model.Point{X: pos.X, Y: pos.Y},
		Bounds:        bounds,
	}
}

func (d LegacyDrag) Apply(pointer model.Point, pos model.OverlayPosition, size model.Size) model.OverlayPosition {
	next := model.Point{
		X: d.StartPosition.X + pointer.X - d.Start.X,
		Y: d.StartPosition.Y + pointer.Y - d.Start.Y,
	}
	if d.Bounds.Width > 0 && d.Bounds.Height > 0 {
		next = KeepInBounds(next, size, d.Bounds)
	}
	pos.X, pos.Y = next.X, next.Y
	return pos
}

// LegacyResize 旧版角点缩放，宽高各自加上位移，最小 50
type LegacyResize struct {
	Start       model.Point
	InitialSize model.Size
}

func BeginLegacyResize(pointer model.Point, size model.Size) LegacyResize {
	return LegacyResize{Start: pointer, InitialSize: size}
}

func (r LegacyResize) Apply(pointer model.Point) model.Size {
	return model.Size{
		Width:  math.Max(LegacyMinSize, r.InitialSize.Width+pointer.X-r.Start.X),
		Height: math.Max(LegacyMinSize, r.InitialSize.Height+pointer.Y-r.Start.Y),
	}
}
