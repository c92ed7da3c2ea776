package service

import (
	"image"

	"gocv.io/x/gocv"
)

// GrabCut 掩码取值
const (
	maskBackground     uint8 = 0
	maskForeground     uint8 = 1
	maskProbBackground uint8 = 2
	maskProbForeground uint8 = 3
)

const (
	levelSimple  = "simple"
	levelMedium  = "medium"
	levelComplex = "complex"
)

type artworkInfo struct {
	Level             string
	EdgeDensity       float64
	ColorVariance     float64
	UniformBackground bool
}

// artworkAnalyzer 判断图案复杂度以及背景是否为纯色
type artworkAnalyzer struct{}

func (a *artworkAnalyzer) Analyze(img *gocv.Mat) artworkInfo {
	edgeDensity := a.edgeDensity(img)
	colorVariance := a.colorVariance(img)

	var level string
	switch {
	case edgeDensity < 0.05 && colorVariance < 30:
		level = levelSimple
	case edgeDensity > 0.15 || colorVariance > 60:
		level = levelComplex
	default:
		level = levelMedium
	}

	return artworkInfo{
		Level:             level,
		EdgeDensity:       edgeDensity,
		ColorVariance:     colorVariance,
		UniformBackground: a.uniformBorder(img),
	}
}

func (a *artworkAnalyzer) edgeDensity(img *gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*img, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	return float64(gocv.CountNonZero(edges)) / float64(img.Rows()*img.Cols())
}

func (a *artworkAnalyzer) colorVariance(img *gocv.Mat) float64 {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(*img, &lab, gocv.ColorBGRToLab)

	return meanStdDev(&lab)
}

// uniformBorder 四周边缘颜色几乎一致时认为是纯色背景，例如搜索到的黑底 png
func (a *artworkAnalyzer) uniformBorder(img *gocv.Mat) bool {
	w, h := img.Cols(), img.Rows()
	strip := max(1, min(w, h)/20)
	if w <= 2*strip || h <= 2*strip {
		return false
	}

	strips := []image.Rectangle{
		image.Rect(0, 0, w, strip),
		image.Rect(0, h-strip, w, h),
		image.Rect(0, 0, strip, h),
		image.Rect(w-strip, 0, w, h),
	}

	var means [][3]float64
	for _, r := range strips {
		region := img.Region(r)
		mean := gocv.NewMat()
		stddev := gocv.NewMat()
		gocv.MeanStdDev(region, &mean, &stddev)
		spread := avgRows(&stddev)
		means = append(means, [3]float64{mean.GetDoubleAt(0, 0), mean.GetDoubleAt(1, 0), mean.GetDoubleAt(2, 0)})
		mean.Close()
		stddev.Close()
		region.Close()
		if spread > 12 {
			return false
		}
	}

	for _, m := range means[1:] {
		for c := 0; c < 3; c++ {
			d := m[c] - means[0][c]
			if d > 20 || d < -20 {
				return false
			}
		}
	}
	return true
}

func meanStdDev(img *gocv.Mat) float64 {
	mean := gocv.NewMat()
	stddev := gocv.NewMat()
	defer mean.Close()
	defer stddev.Close()
	gocv.MeanStdDev(*img, &mean, &stddev)
	return avgRows(&stddev)
}

func avgRows(m *gocv.Mat) float64 {
	if m.Rows() == 0 {
		return 0
	}
	total := 0.0
	for i := 0; i < m.Rows(); i++ {
		total += m.GetDoubleAt(i, 0)
	}
	return total / float64(m.Rows())
}

// saliencyDetector 根据梯度估计图案主体区域
type saliencyDetector struct{}

// Detect 计算显著性图
func (d *saliencyDetector) Detect(img *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*img, &gray, gocv.ColorBGRToGray)

	gradX := gocv.NewMat()
	gradY := gocv.NewMat()
	defer gradX.Close()
	defer gradY.Close()
	gocv.Sobel(gray, &gradX, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gradY, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderDefault)

	absGradX := gocv.NewMat()
	absGradY := gocv.NewMat()
	defer absGradX.Close()
	defer absGradY.Close()
	gocv.ConvertScaleAbs(gradX, &absGradX, 1, 0)
	gocv.ConvertScaleAbs(gradY, &absGradY, 1, 0)

	gradient := gocv.NewMat()
	defer gradient.Close()
	gocv.AddWeighted(absGradX, 0.5, absGradY, 0.5, 0, &gradient)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gradient, &blurred, image.Point{X: 21, Y: 21}, 0, 0, gocv.BorderDefault)

	saliency := gocv.NewMat()
	gocv.Threshold(blurred, &saliency, 0, 255, gocv.ThresholdOtsu)
	return saliency
}

// ExtractRect 最大显著区域的外接矩形，带 5% 边距
func (d *saliencyDetector) ExtractRect(saliency *gocv.Mat, width, height int) image.Rectangle {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 21, Y: 21})
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(*saliency, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		border := int(float64(width) * 0.1)
		return image.Rect(border, border, width-border, height-border)
	}

	var maxRect image.Rectangle
	maxArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > maxArea {
			maxArea = area
			maxRect = gocv.BoundingRect(contours.At(i))
		}
	}

	padding := int(float64(maxRect.Dx()) * 0.05)
	maxRect.Min.X = max(0, maxRect.Min.X-padding)
	maxRect.Min.Y = max(0, maxRect.Min.Y-padding)
	maxRect.Max.X = min(width, maxRect.Max.X+padding)
	maxRect.Max.Y = min(height, maxRect.Max.Y+padding)
	return maxRect
}

// CreateMask 边缘为确定背景，显著区域为可能前景，其余为可能背景
func (d *saliencyDetector) CreateMask(saliency *gocv.Mat, width, height int) gocv.Mat {
	mask := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
	mask.SetTo(gocv.NewScalar(float64(maskProbBackground), 0, 0, 0))

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 11, Y: 11})
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(*saliency, &dilated, kernel)

	borderSize := max(1, int(float64(width)*0.03))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case x < borderSize || x >= width-borderSize || y < borderSize || y >= height-borderSize:
				mask.SetUCharAt(y, x, maskBackground)
			case dilated.GetUCharAt(y, x) > 128:
				mask.SetUCharAt(y, x, maskProbForeground)
			}
		}
	}
	return mask
}
