package service

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/dryp3004/DRYP-Preview/metrics"
	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
)

// CaptureService 把会话的某一面合成为图片，不包含选中框等交互元素
type CaptureService struct {
	catalog  *Catalog
	renderer *raster.Renderer
}

func NewCaptureService(catalog *Catalog, renderer *raster.Renderer) *CaptureService {
	return &CaptureService{catalog: catalog, renderer: renderer}
}

// Scene 根据会话当前状态构建场景
func (s *CaptureService) Scene(sess *store.Session, v model.View) raster.Scene {
	return raster.NewViewScene(s.catalog.Asset(sess.Garment(), v), sess.Overlays(v))
}

// Capture 渲染单面
func (s *CaptureService) Capture(ctx context.Context, sess *store.Session, v model.View) (*image.RGBA, error) {
	start := time.Now()
	img, err := s.renderer.Render(ctx, s.Scene(sess, v))
	s.record(sess, v, start, err)
	if err != nil {
		return nil, fmt.Errorf("capture %s view: %w", v, err)
	}
	return img, nil
}

// CaptureAll 并行渲染正反两面，任一失败则整体失败
func (s *CaptureService) CaptureAll(ctx context.Context, sess *store.Session) (map[model.View]*image.RGBA, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	views := model.Views()
	jobs := make(map[model.View]*raster.Job, len(views))
	for _, v := range views {
		jobs[v] = s.renderer.Start(ctx, s.Scene(sess, v))
	}

	out := make(map[model.View]*image.RGBA, len(views))
	for _, v := range views {
		img, err := jobs[v].Wait(ctx)
		s.record(sess, v, start, err)
		if err != nil {
			for _, j := range jobs {
				j.Cancel()
			}
			return nil, fmt.Errorf("capture %s view: %w", v, err)
		}
		out[v] = img
	}
	return out, nil
}

func (s *CaptureService) record(sess *store.Session, v model.View, start time.Time, err error) {
	metrics.RecordRender(string(v), time.Since(start), err)
	if err != nil {
		utils.Logger.Error("capture failed",
			zap.String("session", sess.ID()),
			zap.String("view", string(v)),
			zap.Error(err))
		return
	}
	utils.Logger.Debug("capture rendered",
		zap.String("session", sess.ID()),
		zap.String("view", string(v)),
		zap.Duration("duration", time.Since(start)))
}
