package service

import (
	"context"
	"image"
	"testing"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureService(loader mapLoader) *CaptureService {
	return NewCaptureService(testCatalog(), raster.NewRenderer(loader, 2))
}

func TestCapture_GarmentOnly(t *testing.T) {
	s := newCaptureService(mapLoader{"white-front": solidImage(40, 40, testWhite)})
	sess := store.NewSession(model.Garment{Type: "tshirt", Color: "white"})

	img, err := s.Capture(context.Background(), sess, model.ViewFront)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 750, 850), img.Bounds())
	assert.Equal(t, testWhite, img.RGBAAt(375, 425))
}

func TestCapture_OverlayOnActiveView(t *testing.T) {
	s := newCaptureService(mapLoader{
		"white-front": solidImage(40, 40, testWhite),
		"art":         solidImage(10, 10, testRed),
	})
	sess := store.NewSession(model.Garment{Type: "tshirt", Color: "white"})
	o := sess.AddOverlay(model.ViewFront, "art")
	require.True(t, sess.UpdatePosition(model.ViewFront, o.ID, model.OverlayPosition{X: 100, Scale: 0.5}))
	require.NoError(t, sess.Select(model.ViewFront, o.ID))

	img, err := s.Capture(context.Background(), sess, model.ViewFront)
	require.NoError(t, err)
	assert.Equal(t, testRed, img.RGBAAt(575, 425))
	assert.Equal(t, testWhite, img.RGBAAt(375, 425), "selection handles are never drawn")
}

func TestCapture_MissingAnchor(t *testing.T) {
	s := newCaptureService(mapLoader{"black-front": solidImage(4, 4, testWhite)})
	sess := store.NewSession(model.Garment{Type: "tshirt", Color: "black"})

	_, err := s.Capture(context.Background(), sess, model.ViewBack)
	assert.ErrorIs(t, err, raster.ErrMissingAnchor)

	_, err = s.CaptureAll(context.Background(), sess)
	assert.ErrorIs(t, err, raster.ErrMissingAnchor)
}

func TestCaptureAll(t *testing.T) {
	s := newCaptureService(mapLoader{
		"white-front": solidImage(8, 8, testWhite),
		"white-back":  solidImage(8, 8, testRed),
	})
	sess := store.NewSession(model.Garment{Type: "tshirt", Color: "white"})

	views, err := s.CaptureAll(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, testWhite, views[model.ViewFront].RGBAAt(375, 425))
	assert.Equal(t, testRed, views[model.ViewBack].RGBAAt(375, 425))
}
