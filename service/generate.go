package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/metrics"
	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var ErrNoImageGenerated = errors.New("no image was generated")

const refineSystemPrompt = "You are an expert at creating detailed design prompts. " +
	"Focus on creating clear, specific descriptions that will work well for DALL-E 3."

// ImageSearcher 图片搜索
type ImageSearcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// GenerateService 优化提示词后调用 DALL-E 生成图片
type GenerateService struct {
	client     *openai.Client
	chatModel  string
	imageModel string
}

func NewGenerateService(cfg *config.OpenAIConfig) (*GenerateService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &GenerateService{
		client:     openai.NewClientWithConfig(clientCfg),
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
	}, nil
}

// RefinePrompt 用对话模型扩写提示词，失败或返回为空时使用原始提示词
func (s *GenerateService) RefinePrompt(ctx context.Context, prompt string) string {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: refineSystemPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Create a detailed DALL-E prompt based on: %q. The design should have a clear focal point.", prompt),
			},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	metrics.RecordVendorCall("openai_chat", err)
	if err != nil {
		utils.Logger.Warn("prompt refinement failed, using original", zap.Error(err))
		return prompt
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		utils.Logger.Info("prompt refinement returned empty, using original")
		return prompt
	}

	refined := resp.Choices[0].Message.Content
	utils.Logger.Debug("prompt refined", zap.String("prompt", refined))
	return refined
}

// Generate 生成一张 1024x1024 图片
func (s *GenerateService) Generate(ctx context.Context, prompt string) ([]model.GeneratedImage, error) {
	refined := s.RefinePrompt(ctx, prompt)

	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         refined,
		Model:          s.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		Quality:        openai.CreateImageQualityStandard,
		Style:          openai.CreateImageStyleNatural,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	metrics.RecordVendorCall("openai_image", err)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoImageGenerated
	}

	images := make([]model.GeneratedImage, 0, len(resp.Data))
	for _, d := range resp.Data {
		images = append(images, model.GeneratedImage{URL: d.URL, Source: "dalle3"})
	}
	return images, nil
}

// ImageGenerator AI 图片生成
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]model.GeneratedImage, error)
}

// ImageFinder 根据请求选择搜索或生成
type ImageFinder struct {
	searcher  ImageSearcher
	generator ImageGenerator
}

func NewImageFinder(searcher ImageSearcher, generator ImageGenerator) *ImageFinder {
	return &ImageFinder{searcher: searcher, generator: generator}
}

func (f *ImageFinder) Find(ctx context.Context, req model.GenerateRequest) ([]model.GeneratedImage, error) {
	if req.UseAI {
		return f.generator.Generate(ctx, req.Prompt)
	}

	links, err := f.searcher.Search(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}
	images := make([]model.GeneratedImage, 0, len(links))
	for _, link := range links {
		images = append(images, model.GeneratedImage{URL: link, Title: req.Prompt})
	}
	return images, nil
}
