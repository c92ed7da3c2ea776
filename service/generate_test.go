package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type openAIServer struct {
	chatStatus  int
	chatContent string
	imageURLs   []string

	chatRequests  []map[string]any
	imageRequests []map[string]any
}

func (s *openAIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/v1/chat/completions":
		s.chatRequests = append(s.chatRequests, body)
		if s.chatStatus != 0 {
			w.WriteHeader(s.chatStatus)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": s.chatContent},
			}},
		})
	case "/v1/images/generations":
		s.imageRequests = append(s.imageRequests, body)
		data := make([]any, 0, len(s.imageURLs))
		for _, u := range s.imageURLs {
			data = append(data, map[string]any{"url": u})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"created": 1, "data": data})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestGenerate(t *testing.T, srv *openAIServer) *GenerateService {
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	s, err := NewGenerateService(&config.OpenAIConfig{
		APIKey:     "sk-test",
		BaseURL:    ts.URL + "/v1",
		ChatModel:  "gpt-4",
		ImageModel: "dall-e-3",
	})
	require.NoError(t, err)
	return s
}

func TestNewGenerateService_MissingKey(t *testing.T) {
	_, err := NewGenerateService(&config.OpenAIConfig{})
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestGenerate_UsesRefinedPrompt(t *testing.T) {
	srv := &openAIServer{chatContent: "a detailed neon tiger", imageURLs: []string{"https://img.example.com/1.png"}}
	s := newTestGenerate(t, srv)

	images, err := s.Generate(context.Background(), "tiger")
	require.NoError(t, err)
	assert.Equal(t, []model.GeneratedImage{{URL: "https://img.example.com/1.png", Source: "dalle3"}}, images)

	require.Len(t, srv.chatRequests, 1)
	chat := srv.chatRequests[0]
	assert.Equal(t, "gpt-4", chat["model"])
	assert.InDelta(t, 0.7, chat["temperature"], 1e-6)
	assert.EqualValues(t, 200, chat["max_tokens"])

	require.Len(t, srv.imageRequests, 1)
	img := srv.imageRequests[0]
	assert.Equal(t, "a detailed neon tiger", img["prompt"])
	assert.Equal(t, "dall-e-3", img["model"])
	assert.Equal(t, "1024x1024", img["size"])
	assert.Equal(t, "standard", img["quality"])
	assert.Equal(t, "natural", img["style"])
	assert.Equal(t, "url", img["response_format"])
}

func TestRefinePrompt_FallsBackToOriginal(t *testing.T) {
	failing := newTestGenerate(t, &openAIServer{chatStatus: http.StatusInternalServerError})
	assert.Equal(t, "tiger", failing.RefinePrompt(context.Background(), "tiger"))

	empty := newTestGenerate(t, &openAIServer{chatContent: "   "})
	assert.Equal(t, "tiger", empty.RefinePrompt(context.Background(), "tiger"))
}

func TestGenerate_NoImage(t *testing.T) {
	s := newTestGenerate(t, &openAIServer{chatContent: "x"})

	_, err := s.Generate(context.Background(), "tiger")
	assert.ErrorIs(t, err, ErrNoImageGenerated)
}

type fakeSearcher struct {
	links []string
	err   error
}

func (f fakeSearcher) Search(context.Context, string) ([]string, error) {
	return f.links, f.err
}

type fakeGenerator struct {
	images []model.GeneratedImage
	err    error
}

func (f fakeGenerator) Generate(context.Context, string) ([]model.GeneratedImage, error) {
	return f.images, f.err
}

func TestImageFinder(t *testing.T) {
	f := NewImageFinder(
		fakeSearcher{links: []string{"https://x/1.png"}},
		fakeGenerator{images: []model.GeneratedImage{{URL: "https://ai/1.png", Source: "dalle3"}}},
	)

	found, err := f.Find(context.Background(), model.GenerateRequest{Prompt: "cat"})
	require.NoError(t, err)
	assert.Equal(t, []model.GeneratedImage{{URL: "https://x/1.png", Title: "cat"}}, found)

	generated, err := f.Find(context.Background(), model.GenerateRequest{Prompt: "cat", UseAI: true})
	require.NoError(t, err)
	assert.Equal(t, "dalle3", generated[0].Source)

	failing := NewImageFinder(fakeSearcher{err: errors.New("boom")}, nil)
	_, err = failing.Find(context.Background(), model.GenerateRequest{Prompt: "cat"})
	assert.Error(t, err)
}
