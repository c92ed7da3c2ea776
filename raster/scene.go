package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/dryp3004/DRYP-Preview/model"
)

// 画布与服装底图的默认参数
const (
	CanvasWidth   = 375.0
	CanvasHeight  = 425.0
	PixelDensity  = 2.0
	GarmentFill   = 0.9
	OverlayBoxLen = 200.0
)

// Placement 图层在画布上的位置：图片按 contain 方式放入 Width x Height 的框，
// 再绕框中心旋转 Rotation 度
type Placement struct {
	CenterX  float64
	CenterY  float64
	Width    float64
	Height   float64
	Rotation float64
}

// Layer 场景中的一个图层
type Layer struct {
	ID        string
	Source    string
	Placement Placement
}

// Scene 与渲染目标无关的场景描述，单位为逻辑像素
type Scene struct {
	Width      float64
	Height     float64
	Density    float64
	Background color.Color
	Base       *Layer
	Overlays   []Layer
}

// PixelSize 输出图片的像素尺寸
func (s Scene) PixelSize() image.Point {
	d := s.Density
	if d <= 0 {
		d = 1
	}
	return image.Pt(int(math.Round(s.Width*d)), int(math.Round(s.Height*d)))
}

// Sources 场景引用的去重后的图片来源
func (s Scene) Sources() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(src string) {
		if _, ok := seen[src]; ok {
			return
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	if s.Base != nil {
		add(s.Base.Source)
	}
	for _, l := range s.Overlays {
		add(l.Source)
	}
	return out
}

// NewViewScene 构建服装一面的场景：底图居中并占画布 90%，图层按顺序叠加在上面
func NewViewScene(garmentSource string, overlays []model.Overlay) Scene {
	s := Scene{
		Width:   CanvasWidth,
		Height:  CanvasHeight,
		Density: PixelDensity,
	}
	if garmentSource != "" {
		s.Base = &Layer{
			ID:     "garment",
			Source: garmentSource,
			Placement: Placement{
				CenterX: CanvasWidth / 2,
				CenterY: CanvasHeight / 2,
				Width:   CanvasWidth * GarmentFill,
				Height:  CanvasHeight * GarmentFill,
			},
		}
	}
	for _, o := range overlays {
		s.Overlays = append(s.Overlays, OverlayLayer(o, s.Width, s.Height))
	}
	return s
}

// OverlayLayer 把图层实体换算为场景图层
func OverlayLayer(o model.Overlay, width, height float64) Layer {
	var p Placement
	switch {
	case o.Kind == model.KindSized && o.Size != nil:
		// 旧版模型：位置是左上角
		p = Placement{
			CenterX:  o.Position.X + o.Size.Width/2,
			CenterY:  o.Position.Y + o.Size.Height/2,
			Width:    o.Size.Width,
			Height:   o.Size.Height,
			Rotation: o.Position.Rotation,
		}
	default:
		scale := o.Position.Scale
		if scale <= 0 {
			scale = 1
		}
		p = Placement{
			CenterX:  width/2 + o.Position.X,
			CenterY:  height/2 + o.Position.Y,
			Width:    OverlayBoxLen * scale,
			Height:   OverlayBoxLen * scale,
			Rotation: o.Position.Rotation,
		}
	}
	return Layer{ID: o.ID, Source: o.Image, Placement: p}
}
