package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/dryp3004/DRYP-Preview/config"
)

var (
	testRed   = color.RGBA{R: 255, A: 255}
	testWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type mapLoader map[string]image.Image

func (m mapLoader) Load(_ context.Context, source string) (image.Image, error) {
	img, ok := m[source]
	if !ok {
		return nil, errors.New("not found: " + source)
	}
	return img, nil
}

type upload struct {
	folder   Folder
	name     string
	mimeType string
	data     []byte
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []upload
	failOn  string
}

func (f *fakeUploader) Upload(_ context.Context, folder Folder, name, mimeType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && name == f.failOn {
		return "", errors.New("quota exceeded")
	}
	f.uploads = append(f.uploads, upload{folder: folder, name: name, mimeType: mimeType, data: data})
	return "id-" + name, nil
}

func (f *fakeUploader) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.uploads))
	for _, u := range f.uploads {
		out = append(out, u.name)
	}
	return out
}

func testCatalog() *Catalog {
	return NewCatalog([]config.GarmentConfig{
		{Type: "tshirt", Color: "white", Front: "white-front", Back: "white-back"},
		{Type: "tshirt", Color: "black", Front: "black-front", Back: ""},
	})
}
