package service

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingClientID = errors.New("client id is required")
	ErrUnknownColor    = errors.New("unknown garment color")
)

// PreferenceService 保存客户端选择的服装颜色，跨会话保留
type PreferenceService struct {
	cache   Cache
	catalog *Catalog
}

func NewPreferenceService(cache Cache, catalog *Catalog) *PreferenceService {
	return &PreferenceService{cache: cache, catalog: catalog}
}

func colorKey(clientID string) string {
	return "pref:color:" + clientID
}

// Color 返回保存的颜色，未设置时 ok 为 false
func (s *PreferenceService) Color(ctx context.Context, clientID string) (string, bool, error) {
	if strings.TrimSpace(clientID) == "" {
		return "", false, ErrMissingClientID
	}
	data, ok, err := s.cache.Get(ctx, colorKey(clientID))
	if err != nil || !ok {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *PreferenceService) SetColor(ctx context.Context, clientID, color string) error {
	if strings.TrimSpace(clientID) == "" {
		return ErrMissingClientID
	}
	color = strings.ToLower(strings.TrimSpace(color))
	if !s.catalog.HasColor(color) {
		return ErrUnknownColor
	}
	return s.cache.Set(ctx, colorKey(clientID), []byte(color), 0)
}
