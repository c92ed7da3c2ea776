package service

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/metrics"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var ErrInvalidPrivateKey = errors.New("GOOGLE_PRIVATE_KEY is not a valid PEM encoded private key")

// Folder 云盘目标目录
type Folder int

const (
	FolderDesigns Folder = iota
	FolderOverlays
)

// Uploader 上传文件，返回文件 ID
type Uploader interface {
	Upload(ctx context.Context, folder Folder, name, mimeType string, data []byte) (string, error)
}

// DriveService 使用服务账号写入 Google Drive
type DriveService struct {
	svc     *drive.Service
	folders map[Folder]string
}

func NewDriveService(ctx context.Context, cfg *config.GoogleConfig) (*DriveService, error) {
	if err := cfg.ValidateDrive(); err != nil {
		return nil, err
	}
	if err := validatePrivateKey(cfg.PrivateKey); err != nil {
		return nil, err
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	jwtCfg := &jwt.Config{
		Email:        cfg.ClientEmail,
		PrivateKey:   []byte(cfg.PrivateKey),
		PrivateKeyID: cfg.PrivateKeyID,
		Scopes:       []string{drive.DriveFileScope},
		TokenURL:     tokenURL,
	}

	opts := []option.ClientOption{option.WithHTTPClient(jwtCfg.Client(ctx))}
	if cfg.DriveEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.DriveEndpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}

	return &DriveService{
		svc: svc,
		folders: map[Folder]string{
			FolderDesigns:  cfg.DriveFolderID,
			FolderOverlays: cfg.DriveOverlaysFolderID,
		},
	}, nil
}

func validatePrivateKey(key string) error {
	block, _ := pem.Decode([]byte(key))
	if block == nil {
		return ErrInvalidPrivateKey
	}
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return nil
	}
	if _, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return nil
	}
	return ErrInvalidPrivateKey
}

func (s *DriveService) Upload(ctx context.Context, folder Folder, name, mimeType string, data []byte) (string, error) {
	parent, ok := s.folders[folder]
	if !ok {
		return "", fmt.Errorf("unknown drive folder %d", folder)
	}

	f, err := s.svc.Files.Create(&drive.File{
		Name:     name,
		Parents:  []string{parent},
		MimeType: mimeType,
	}).Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).Context(ctx).Do()
	metrics.RecordVendorCall("google_drive", err)
	if err != nil {
		utils.Logger.Error("drive upload failed", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	utils.Logger.Info("file uploaded to drive",
		zap.String("name", name),
		zap.String("file_id", f.Id),
		zap.Int("bytes", len(data)))
	return f.Id, nil
}
