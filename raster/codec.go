// Package raster 负责图片解码、裁剪以及把场景描述渲染为单张图片
package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// Format 输出编码格式
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// DefaultMaxPixels 未指定上限时允许解码的最大像素数
const DefaultMaxPixels = 40_000_000

var (
	ErrNotDataURI    = errors.New("not a base64 data URI")
	ErrImageTooLarge = errors.New("image dimensions exceed limit")
)

// MimeType 返回格式对应的 MIME 类型
func (f Format) MimeType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// ParseFormat 解析格式名称，空字符串视为 png
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Encode 按格式编码图片
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatWebP:
		err = nativewebp.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// EncodeDataURI 编码为 data:<mime>;base64,<payload>
func EncodeDataURI(img image.Image, f Format) (string, error) {
	data, err := Encode(img, f)
	if err != nil {
		return "", err
	}
	return DataURI(f.MimeType(), data), nil
}

// DataURI 拼接 data URI
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI 判断是否 data URI
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURI 拆出 MIME 类型与原始字节
func ParseDataURI(s string) (string, []byte, error) {
	if !IsDataURI(s) {
		return "", nil, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return strings.TrimSuffix(header, ";base64"), data, nil
}

// DecodeDataURI 解码 data URI 中的图片
func DecodeDataURI(s string, maxPixels int) (image.Image, error) {
	_, data, err := ParseDataURI(s)
	if err != nil {
		return nil, err
	}
	return Decode(data, maxPixels)
}

type codec struct {
	mime         string
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// tga 没有文件头魔数，只作为最后的尝试
var (
	codecs = []codec{
		{"image/png", png.Decode, png.DecodeConfig},
		{"image/jpeg", jpeg.Decode, jpeg.DecodeConfig},
		{"image/gif", gif.Decode, gif.DecodeConfig},
		{"image/webp", webp.Decode, webp.DecodeConfig},
		{"image/bmp", bmp.Decode, bmp.DecodeConfig},
	}
	tgaCodec = codec{"image/x-tga", tga.Decode, tga.DecodeConfig}
)

func codecFor(data []byte) codec {
	mt := mimetype.Detect(data)
	for _, c := range codecs {
		if mt.Is(c.mime) {
			return c
		}
	}
	return tgaCodec
}

// CheckSize 只读取文件头中的尺寸，超过 maxPixels 时返回 ErrImageTooLarge；maxPixels <= 0 使用 DefaultMaxPixels
func CheckSize(data []byte, maxPixels int) (image.Config, error) {
	_, cfg, err := inspect(data, maxPixels)
	return cfg, err
}

func inspect(data []byte, maxPixels int) (codec, image.Config, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	c := codecFor(data)

	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return c, image.Config{}, fmt.Errorf("decode %s: %w", c.mime, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return c, image.Config{}, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return c, cfg, nil
}

// Decode 按内容识别格式后解码，尺寸超过 maxPixels 的图片在分配内存前被拒绝
func Decode(data []byte, maxPixels int) (image.Image, error) {
	c, _, err := inspect(data, maxPixels)
	if err != nil {
		return nil, err
	}
	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.mime, err)
	}
	return img, nil
}
