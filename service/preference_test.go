package service

import (
	"context"
	"testing"
	"time"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreference_ColorRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewPreferenceService(NewLocalCache(8, 0), testCatalog())

	_, ok, err := s.Color(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetColor(ctx, "client-1", " Black "))
	color, ok, err := s.Color(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "black", color)

	_, ok, err = s.Color(ctx, "client-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreference_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewPreferenceService(NewLocalCache(8, time.Hour), testCatalog())

	assert.ErrorIs(t, s.SetColor(ctx, "", "white"), ErrMissingClientID)
	assert.ErrorIs(t, s.SetColor(ctx, "c", "purple"), ErrUnknownColor)
	_, _, err := s.Color(ctx, " ")
	assert.ErrorIs(t, err, ErrMissingClientID)
}

func TestCatalog(t *testing.T) {
	c := testCatalog()

	g, err := c.Resolve(model.Garment{})
	require.NoError(t, err)
	assert.Equal(t, model.Garment{Type: "tshirt", Color: "white"}, g)

	g, err = c.Resolve(model.Garment{Type: "TSHIRT", Color: "Black", Size: "XL"})
	require.NoError(t, err)
	assert.Equal(t, model.Garment{Type: "tshirt", Color: "black", Size: "XL"}, g)

	_, err = c.Resolve(model.Garment{Type: "hat"})
	assert.ErrorIs(t, err, ErrUnknownGarment)

	assert.Equal(t, "white-front", c.Asset(model.Garment{Type: "tshirt", Color: "white"}, model.ViewFront))
	assert.Equal(t, "white-back", c.Asset(model.Garment{Type: "tshirt", Color: "white"}, model.ViewBack))
	assert.Empty(t, c.Asset(model.Garment{Type: "hat", Color: "white"}, model.ViewFront))
	assert.True(t, c.HasColor("BLACK"))
	assert.False(t, c.HasColor("red"))
}
