package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Loader 按来源字符串加载图片
type Loader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

var (
	ErrInvalidSource = errors.New("image source must be a data URI or an http(s) URL")
	ErrUnsafeAsset   = errors.New("asset path must stay inside the asset directory")
)

// ValidateSource 客户端提交的图片只能是 data URI 或 http(s) 地址
func ValidateSource(source string) error {
	if IsDataURI(source) || isRemote(source) {
		return nil
	}
	return ErrInvalidSource
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// SourceLoader 支持 data URI、http(s) 地址和素材目录下的文件
type SourceLoader struct {
	client    *http.Client
	assetDir  string
	maxBytes  int64
	maxPixels int
}

func NewSourceLoader(client *http.Client, assetDir string, maxBytes int64, maxPixels int) *SourceLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &SourceLoader{client: client, assetDir: assetDir, maxBytes: maxBytes, maxPixels: maxPixels}
}

func (l *SourceLoader) Load(ctx context.Context, source string) (image.Image, error) {
	switch {
	case source == "":
		return nil, fmt.Errorf("empty image source")
	case IsDataURI(source):
		return DecodeDataURI(source, l.maxPixels)
	case isRemote(source):
		data, _, err := l.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		return Decode(data, l.maxPixels)
	default:
		return l.loadAsset(source)
	}
}

// Fetch 下载远程图片，返回内容与 Content-Type
func (l *SourceLoader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if l.maxBytes > 0 {
		r = io.LimitReader(resp.Body, l.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", url, err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, "", fmt.Errorf("fetch %s: body exceeds %d bytes", url, l.maxBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// loadAsset 只读取素材目录内的相对路径
func (l *SourceLoader) loadAsset(source string) (image.Image, error) {
	rel := filepath.FromSlash(source)
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %q", ErrUnsafeAsset, source)
	}
	data, err := os.ReadFile(filepath.Join(l.assetDir, rel))
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	return Decode(data, l.maxPixels)
}
