package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
)

var (
	ErrEmptyImage      = errors.New("image payload is empty")
	ErrMissingCustomer = errors.New("customer name and phone number are required")
)

const (
	mimePNG  = "image/png"
	mimeJSON = "application/json"
)

// OrderFileName 订单文件名：<姓名>-<电话>-<DD-MM-YYYY>-<h:mmam>
func OrderFileName(name, phone string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%s-%s",
		strings.TrimSpace(name),
		strings.TrimSpace(phone),
		t.Format("02-01-2006"),
		t.Format("3:04pm"))
}

// designMetadata 与订单图片一起保存的说明文件
type designMetadata struct {
	ID           string             `json:"id"`
	FileName     string             `json:"fileName"`
	CustomerName string             `json:"customerName,omitempty"`
	PhoneNumber  string             `json:"phoneNumber,omitempty"`
	Garment      *model.Garment     `json:"garment,omitempty"`
	Overlays     map[model.View]int `json:"overlays,omitempty"`
	Files        map[string]string  `json:"files"`
	Timestamp    string             `json:"timestamp"`
}

type overlayMetadata struct {
	FileName  string `json:"fileName"`
	Position  string `json:"position"`
	Timestamp string `json:"timestamp"`
	OverlayID string `json:"overlayId"`
}

// OrderService 把设计结果保存到云盘
type OrderService struct {
	uploader Uploader
	capture  *CaptureService
	now      func() time.Time
}

func NewOrderService(uploader Uploader, capture *CaptureService) *OrderService {
	return &OrderService{uploader: uploader, capture: capture, now: time.Now}
}

// SaveDesign 保存客户端已渲染好的正反面
func (s *OrderService) SaveDesign(ctx context.Context, req model.SaveDesignRequest) error {
	front, err := decodeImagePayload(req.FrontImage)
	if err != nil {
		return fmt.Errorf("front image: %w", err)
	}
	back, err := decodeImagePayload(req.BackImage)
	if err != nil {
		return fmt.Errorf("back image: %w", err)
	}

	meta := designMetadata{
		CustomerName: req.CustomerName,
		PhoneNumber:  req.PhoneNumber,
	}
	return s.uploadDesign(ctx, req.FileName, map[model.View][]byte{
		model.ViewFront: front,
		model.ViewBack:  back,
	}, meta)
}

// SaveOverlay 单独保存一个图层及其说明文件，返回图层文件 ID
func (s *OrderService) SaveOverlay(ctx context.Context, req model.SaveOverlayRequest) (string, error) {
	data, err := decodeImagePayload(req.OverlayImage)
	if err != nil {
		return "", err
	}

	position := req.Position
	if position == "" {
		position = "unnamed"
	}
	base := fmt.Sprintf("overlay-%s-%s", req.FileName, position)

	fileID, err := s.uploader.Upload(ctx, FolderOverlays, base+".png", mimePNG, data)
	if err != nil {
		return "", err
	}

	meta, err := json.MarshalIndent(overlayMetadata{
		FileName:  req.FileName,
		Position:  req.Position,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		OverlayID: fileID,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	if _, err := s.uploader.Upload(ctx, FolderOverlays, base+"-metadata.json", mimeJSON, meta); err != nil {
		return "", err
	}
	return fileID, nil
}

// Submit 在服务端合成正反两面并保存，合成失败时不上传任何文件
func (s *OrderService) Submit(ctx context.Context, sess *store.Session, req model.SubmitRequest) (string, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.PhoneNumber)
	if name == "" || phone == "" {
		return "", ErrMissingCustomer
	}

	views, err := s.capture.CaptureAll(ctx, sess)
	if err != nil {
		return "", err
	}

	images := make(map[model.View][]byte, len(views))
	for v, img := range views {
		data, err := raster.Encode(img, raster.FormatPNG)
		if err != nil {
			return "", err
		}
		images[v] = data
	}

	garment := sess.Garment()
	counts := make(map[model.View]int, len(views))
	for _, v := range model.Views() {
		counts[v] = len(sess.Overlays(v))
	}

	fileName := OrderFileName(name, phone, s.now())
	meta := designMetadata{
		CustomerName: name,
		PhoneNumber:  phone,
		Garment:      &garment,
		Overlays:     counts,
	}
	if err := s.uploadDesign(ctx, fileName, images, meta); err != nil {
		return "", err
	}

	utils.Logger.Info("order submitted",
		zap.String("session", sess.ID()),
		zap.String("file_name", fileName))
	return fileName, nil
}

func (s *OrderService) uploadDesign(ctx context.Context, fileName string, images map[model.View][]byte, meta designMetadata) error {
	meta.ID = utils.GenerateID()
	meta.FileName = fileName
	meta.Timestamp = s.now().UTC().Format(time.RFC3339)
	meta.Files = make(map[string]string, len(images))

	for _, v := range model.Views() {
		data, ok := images[v]
		if !ok {
			continue
		}
		name := fmt.Sprintf("%s-%s.png", fileName, v)
		id, err := s.uploader.Upload(ctx, FolderDesigns, name, mimePNG, data)
		if err != nil {
			return err
		}
		meta.Files[name] = id
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	_, err = s.uploader.Upload(ctx, FolderDesigns, fileName+"-metadata.json", mimeJSON, data)
	return err
}

func decodeImagePayload(s string) ([]byte, error) {
	_, data, err := raster.ParseDataURI(s)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}
