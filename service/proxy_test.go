package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	data        []byte
	contentType string
	err         error
	calls       int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	f.calls++
	return f.data, f.contentType, f.err
}

func TestProxy_CachesByURL(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte{1, 2, 3}, contentType: "image/png; charset=binary"}
	s := NewProxyService(fetcher, NewLocalCache(8, time.Hour), time.Hour)

	uri, err := s.Proxy(context.Background(), "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AQID", uri)

	again, err := s.Proxy(context.Background(), "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, uri, again)
	assert.Equal(t, 1, fetcher.calls)
}

func TestProxy_DefaultMimeType(t *testing.T) {
	s := NewProxyService(&fakeFetcher{data: []byte{0xff}}, nil, 0)

	uri, err := s.Proxy(context.Background(), "http://example.com/photo")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,/w==", uri)
}

func TestProxy_Errors(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("status 404")}
	s := NewProxyService(fetcher, failingCache{}, time.Hour)

	for _, u := range []string{"", "ftp://example.com/a.png", "file:///etc/passwd", "not a url"} {
		_, err := s.Proxy(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidURL, u)
	}
	assert.Zero(t, fetcher.calls)

	// 缓存故障不影响代理，下载失败才返回错误
	_, err := s.Proxy(context.Background(), "https://example.com/a.png")
	assert.ErrorContains(t, err, "status 404")
}
