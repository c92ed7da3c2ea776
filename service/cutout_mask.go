package service

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// maskProcessor GrabCut 掩码后处理
type maskProcessor struct{}

// ExtractForeground 确定前景与可能前景合并为 255
func (p *maskProcessor) ExtractForeground(mask *gocv.Mat) gocv.Mat {
	fg := gocv.NewMat()
	defer fg.Close()
	sure := gocv.NewMatFromScalar(gocv.Scalar{Val1: float64(maskForeground)}, gocv.MatTypeCV8U)
	defer sure.Close()
	gocv.Compare(*mask, sure, &fg, gocv.CompareEQ)

	probable := gocv.NewMat()
	defer probable.Close()
	prob := gocv.NewMatFromScalar(gocv.Scalar{Val1: float64(maskProbForeground)}, gocv.MatTypeCV8U)
	defer prob.Close()
	gocv.Compare(*mask, prob, &probable, gocv.CompareEQ)

	combined := gocv.NewMat()
	gocv.BitwiseOr(fg, probable, &combined)
	return combined
}

// MorphologyOptimize 开运算去噪点，闭运算补小洞
func (p *maskProcessor) MorphologyOptimize(mask *gocv.Mat, kernelSize int) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(*mask, &opened, gocv.MorphOpen, kernel)

	closed := gocv.NewMat()
	gocv.MorphologyEx(opened, &closed, gocv.MorphClose, kernel)
	return closed
}

// RefineEdges 轻微膨胀后重新二值化，保留细线条
func (p *maskProcessor) RefineEdges(mask *gocv.Mat) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 2, Y: 2})
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(*mask, &dilated, kernel)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(dilated, &blurred, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)

	final := gocv.NewMat()
	gocv.Threshold(blurred, &final, 127, 255, gocv.ThresholdBinary)
	return final
}

// KeepLargest 只保留面积最大的连通区域
func (p *maskProcessor) KeepLargest(mask *gocv.Mat) gocv.Mat {
	contours := gocv.FindContours(*mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return mask.Clone()
	}

	maxArea := 0.0
	maxIndex := 0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > maxArea {
			maxArea = area
			maxIndex = i
		}
	}

	largest := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	largest.SetTo(gocv.NewScalar(0, 0, 0, 0))
	gocv.DrawContours(&largest, contours, maxIndex, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	return largest
}

// Feather 柔化边缘作为 alpha 通道，避免锯齿
func (p *maskProcessor) Feather(mask *gocv.Mat) gocv.Mat {
	alpha := gocv.NewMat()
	gocv.GaussianBlur(*mask, &alpha, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)
	return alpha
}
