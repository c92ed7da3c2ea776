package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

var (
	ErrQueueFull      = errors.New("处理队列已满，请稍后重试")
	ErrUndecodable    = errors.New("failed to decode image")
	ErrNoForeground   = errors.New("no foreground detected")
	ErrCutoutDisabled = errors.New("cutout service unavailable")
)

// CutoutService 用 GrabCut 去除图案背景，输出带透明通道的 PNG
type CutoutService struct {
	iterations   int
	borderSize   int
	maxDimension int
	maxPixels    int
	semaphore    chan struct{}
	queueTimeout time.Duration
	analyzer     *artworkAnalyzer
	saliency     *saliencyDetector
	masks        *maskProcessor
}

func NewCutoutService(cfg *config.CutoutConfig) *CutoutService {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	maxDimension := cfg.MaxDimension
	if maxDimension <= 0 {
		maxDimension = 1200
	}
	return &CutoutService{
		iterations:   cfg.Iterations,
		borderSize:   cfg.BorderSize,
		maxDimension: maxDimension,
		maxPixels:    cfg.MaxPixels,
		semaphore:    make(chan struct{}, maxConcurrent),
		queueTimeout: time.Duration(cfg.QueueTimeout) * time.Second,
		analyzer:     &artworkAnalyzer{},
		saliency:     &saliencyDetector{},
		masks:        &maskProcessor{},
	}
}

// RemoveBackground 返回去除背景后的 PNG；keepLargest 时只保留最大的前景区域
func (s *CutoutService) RemoveBackground(ctx context.Context, data []byte, keepLargest bool) ([]byte, error) {
	if _, err := raster.CheckSize(data, s.maxPixels); err != nil {
		if errors.Is(err, raster.ErrImageTooLarge) {
			return nil, err
		}
		return nil, ErrUndecodable
	}

	// 并发控制
	queueCtx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-queueCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrQueueFull
	}

	startTime := time.Now()

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || img.Empty() {
		img.Close()
		return nil, ErrUndecodable
	}
	defer img.Close()

	width := img.Cols()
	height := img.Rows()

	scaled, scale := s.smartResize(&img)
	defer scaled.Close()

	info := s.analyzer.Analyze(&scaled)
	utils.Logger.Info("artwork analyzed",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("level", info.Level),
		zap.Bool("uniform_background", info.UniformBackground))

	fgMask := s.segment(&scaled, info)

	// 还原到原始尺寸
	if scale != 1.0 {
		resized := gocv.NewMat()
		gocv.Resize(fgMask, &resized, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)
		gocv.Threshold(resized, &resized, 127, 255, gocv.ThresholdBinary)
		fgMask.Close()
		fgMask = resized
	}

	if keepLargest {
		largest := s.masks.KeepLargest(&fgMask)
		fgMask.Close()
		fgMask = largest
	}
	defer fgMask.Close()

	coverage := float64(gocv.CountNonZero(fgMask)) / float64(width*height)
	if coverage == 0 {
		return nil, ErrNoForeground
	}

	alpha := s.masks.Feather(&fgMask)
	defer alpha.Close()

	out, err := s.compose(&img, &alpha)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("background removed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Float64("foreground_coverage", coverage),
		zap.String("level", info.Level))
	return out, nil
}

// segment 在缩放后的图像上执行 GrabCut，返回 0/255 前景掩码
func (s *CutoutService) segment(img *gocv.Mat, info artworkInfo) gocv.Mat {
	w, h := img.Cols(), img.Rows()

	var initRect image.Rectangle
	var mask gocv.Mat

	if info.UniformBackground || info.Level == levelSimple {
		border := s.borderSize
		if border < 10 {
			border = int(float64(w) * 0.05)
		}
		border = min(border, w/4, h/4)
		initRect = image.Rect(border, border, w-border, h-border)
		mask = gocv.NewMat()
	} else {
		saliencyMap := s.saliency.Detect(img)
		defer saliencyMap.Close()

		initRect = s.saliency.ExtractRect(&saliencyMap, w, h)
		mask = s.saliency.CreateMask(&saliencyMap, w, h)
	}
	defer mask.Close()

	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	iterations := s.iterations
	switch info.Level {
	case levelSimple:
		iterations = max(3, s.iterations-2)
	case levelComplex:
		iterations = s.iterations + 2
	}

	if mask.Empty() {
		gocv.GrabCut(*img, &mask, initRect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)
	} else {
		gocv.GrabCut(*img, &mask, image.Rectangle{}, &bgdModel, &fgdModel, iterations, gocv.GCInitWithMask)
	}

	if info.Level != levelSimple {
		gocv.GrabCut(*img, &mask, image.Rectangle{}, &bgdModel, &fgdModel, 2, gocv.GCInitWithMask)
	}

	fgMask := s.masks.ExtractForeground(&mask)

	kernelSize := 3
	if info.Level == levelComplex {
		kernelSize = 5
	}
	optimized := s.masks.MorphologyOptimize(&fgMask, kernelSize)
	fgMask.Close()
	fgMask = optimized

	if info.Level != levelSimple {
		refined := s.masks.RefineEdges(&fgMask)
		fgMask.Close()
		fgMask = refined
	}
	return fgMask
}

// compose 以掩码作为 alpha 通道输出 BGRA PNG
func (s *CutoutService) compose(img, alpha *gocv.Mat) ([]byte, error) {
	channels := gocv.Split(*img)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()
	if len(channels) < 3 {
		return nil, ErrUndecodable
	}

	bgra := gocv.NewMat()
	defer bgra.Close()
	gocv.Merge([]gocv.Mat{channels[0], channels[1], channels[2], *alpha}, &bgra)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, bgra)
	if err != nil {
		return nil, fmt.Errorf("encode cutout: %w", err)
	}
	defer buf.Close()

	return bytes.Clone(buf.GetBytes()), nil
}

// smartResize 缩放到最大边不超过 maxDimension
func (s *CutoutService) smartResize(img *gocv.Mat) (gocv.Mat, float64) {
	width := img.Cols()
	height := img.Rows()
	maxDim := max(width, height)
	if maxDim <= s.maxDimension {
		return img.Clone(), 1.0
	}

	scale := float64(s.maxDimension) / float64(maxDim)
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)

	resized := gocv.NewMat()
	gocv.Resize(*img, &resized, image.Point{X: newWidth, Y: newHeight}, 0, 0, gocv.InterpolationArea)

	return resized, scale
}
