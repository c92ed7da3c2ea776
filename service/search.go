package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/metrics"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

var ErrSearchFailed = errors.New("failed to search for images")

var imageExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)$`)

const (
	pngMarker    = ".png"
	pngQueryHint = "filetype:png black background transparent"
	maxStart     = 50
)

// SearchService 通过 Google 自定义搜索查找图片
type SearchService struct {
	svc *customsearch.Service
	cx  string
	// 便于测试固定随机行为
	offset  func() int64
	shuffle func([]string)
}

func NewSearchService(ctx context.Context, cfg *config.GoogleConfig) (*SearchService, error) {
	if err := cfg.ValidateSearch(); err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.SearchEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.SearchEndpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	return &SearchService{
		svc:    svc,
		cx:     cfg.CX,
		offset: func() int64 { return rand.Int64N(maxStart) + 1 },
		shuffle: func(s []string) {
			rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		},
	}, nil
}

// Search 返回随机起始位置、打乱顺序后的图片链接
// 查询包含 ".png" 时只找透明 png，没有结果再退回普通搜索
func (s *SearchService) Search(ctx context.Context, query string) ([]string, error) {
	lower := strings.ToLower(query)
	pngMode := strings.Contains(lower, pngMarker)
	q := strings.TrimSpace(strings.Replace(lower, pngMarker, "", 1))

	links, err := s.search(ctx, q, pngMode)
	metrics.RecordVendorCall("google_search", err)
	if err != nil {
		utils.Logger.Error("image search failed", zap.String("query", q), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if pngMode && len(links) == 0 {
		utils.Logger.Info("no png results, falling back to plain search", zap.String("query", q))
		return s.Search(ctx, q)
	}
	return links, nil
}

func (s *SearchService) search(ctx context.Context, q string, pngMode bool) ([]string, error) {
	text := q
	if pngMode {
		text = q + " " + pngQueryHint
	}

	call := s.svc.Cse.List().
		Cx(s.cx).
		Q(text).
		SearchType("image").
		ImgSize("large").
		Num(10).
		Safe("active").
		Start(s.offset())
	if pngMode {
		call = call.FileType("png").ImgDominantColor("black")
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		if item == nil || item.Link == "" {
			continue
		}
		if pngMode {
			if strings.HasSuffix(strings.ToLower(item.Link), pngMarker) {
				links = append(links, item.Link)
			}
			continue
		}
		if imageExt.MatchString(item.Link) {
			links = append(links, item.Link)
		}
	}
	s.shuffle(links)
	return links, nil
}
