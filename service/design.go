package service

import (
	"context"
	"fmt"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
)

// DesignService 裁剪图片并作为新图层放入当前视图
type DesignService struct {
	loader raster.Loader
}

func NewDesignService(loader raster.Loader) *DesignService {
	return &DesignService{loader: loader}
}

// Crop 裁剪成功后才创建图层，失败时会话保持不变
func (s *DesignService) Crop(ctx context.Context, sess *store.Session, req model.CropRequest) (model.View, model.Overlay, error) {
	if err := raster.ValidateSource(req.Image); err != nil {
		return "", model.Overlay{}, err
	}
	src, err := s.loader.Load(ctx, req.Image)
	if err != nil {
		return "", model.Overlay{}, fmt.Errorf("load crop source: %w", err)
	}

	displayed := model.Size{Width: req.DisplayWidth, Height: req.DisplayHeight}
	cropped, err := raster.Crop(src, req.Crop, displayed)
	if err != nil {
		return "", model.Overlay{}, err
	}

	dataURI, err := raster.EncodeDataURI(cropped, raster.FormatPNG)
	if err != nil {
		return "", model.Overlay{}, err
	}

	view, overlay := sess.AddToActive(dataURI)
	utils.Logger.Info("overlay created from crop",
		zap.String("session", sess.ID()),
		zap.String("view", string(view)),
		zap.String("overlay", overlay.ID),
		zap.Int("width", cropped.Bounds().Dx()),
		zap.Int("height", cropped.Bounds().Dy()))
	return view, overlay, nil
}
