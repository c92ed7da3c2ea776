package raster

import (
	"errors"
	"image"
	"math"

	"github.com/dryp3004/DRYP-Preview/model"
	"golang.org/x/image/draw"
)

var ErrEmptyCrop = errors.New("crop rectangle has zero size")

// PixelRect 把显示坐标系下的裁剪框换算到原图像素，结果限制在原图范围内
// 百分比单位直接按原图尺寸换算，像素单位按 原图/显示 的比例换算
func PixelRect(src image.Rectangle, r model.CropRect, displayed model.Size) (image.Rectangle, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return image.Rectangle{}, ErrEmptyCrop
	}

	natW, natH := float64(src.Dx()), float64(src.Dy())
	var dw, dh float64
	switch r.Unit {
	case "px":
		if displayed.Width <= 0 || displayed.Height <= 0 {
			return image.Rectangle{}, errors.New("displayed size is required for pixel crops")
		}
		dw, dh = displayed.Width, displayed.Height
	default:
		dw, dh = 100, 100
	}

	// 先乘后除，奇数边长取一半时才能正确进位
	x := int(math.Round(r.X * natW / dw))
	y := int(math.Round(r.Y * natH / dh))
	w := int(math.Round(r.Width * natW / dw))
	h := int(math.Round(r.Height * natH / dh))
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, ErrEmptyCrop
	}
	origin := src.Min.Add(image.Pt(x, y))
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}.Intersect(src)
	if rect.Empty() {
		return image.Rectangle{}, ErrEmptyCrop
	}
	return rect, nil
}

// Crop 输出尺寸等于与原图相交后的裁剪框
func Crop(src image.Image, r model.CropRect, displayed model.Size) (*image.NRGBA, error) {
	rect, err := PixelRect(src.Bounds(), r, displayed)
	if err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, image.Point{}, src, rect, draw.Src, nil)
	return dst, nil
}
