package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
)

// UploadService 校验上传的图片并转为 data URI
type UploadService struct {
	maxSize      int64
	maxPixels    int
	allowedTypes []string
}

func NewUploadService(cfg *config.UploadConfig) *UploadService {
	return &UploadService{maxSize: cfg.MaxSize, maxPixels: cfg.MaxPixels, allowedTypes: cfg.AllowedTypes}
}

// MaxSize 单个文件大小上限
func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// Process 按文件内容识别类型，不信任客户端声明的 Content-Type
func (s *UploadService) Process(data []byte) (*model.ImageResponse, error) {
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	if !s.isAllowedType(mt) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	img, err := raster.Decode(data, s.maxPixels)
	if errors.Is(err, raster.ErrImageTooLarge) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}

	b := img.Bounds()
	return &model.ImageResponse{
		ImageURL: raster.DataURI(mt.String(), data),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

func (s *UploadService) isAllowedType(mt *mimetype.MIME) bool {
	if !strings.HasPrefix(mt.String(), "image/") {
		return false
	}
	for _, allowed := range s.allowedTypes {
		if mt.Is(allowed) {
			return true
		}
	}
	return false
}
