package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
)

var ErrInvalidURL = errors.New("image url must be http or https")

// Fetcher 下载远程资源
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// ProxyService 代理远程图片并转为 data URI，避免浏览器跨域限制
type ProxyService struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
}

func NewProxyService(fetcher Fetcher, cache Cache, ttl time.Duration) *ProxyService {
	return &ProxyService{fetcher: fetcher, cache: cache, ttl: ttl}
}

type proxyEntry struct {
	DataURI string `json:"dataUri"`
}

// Proxy 返回远程图片的 data URI，结果按 URL 缓存
func (s *ProxyService) Proxy(ctx context.Context, imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	key := "proxy:" + utils.StringMD5(imageURL)
	if s.cache != nil {
		cached, err := getJSON[proxyEntry](ctx, s.cache, key)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.Error(err))
		}
		if cached != nil {
			utils.Logger.Debug("proxy cache hit", zap.String("cache_key", key))
			return cached.DataURI, nil
		}
	}

	data, contentType, err := s.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("proxy image: %w", err)
	}

	mimeType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURI := raster.DataURI(mimeType, data)

	if s.cache != nil {
		if err := setJSON(ctx, s.cache, key, proxyEntry{DataURI: dataURI}, s.ttl); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}
	return dataURI, nil
}
