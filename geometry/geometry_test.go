package geometry

import (
	"testing"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Drag
// =============================================================================

func TestDrag_FinalPointerOnly(t *testing.T) {
	start := model.OverlayPosition{X: 10, Y: 20, Scale: 1.5, Rotation: 30}
	d := BeginDrag(model.Point{X: 100, Y: 100}, start)
	assert.Equal(t, model.Point{X: 90, Y: 80}, d.Offset)

	pos := start
	for _, p := range []model.Point{{X: 120, Y: 90}, {X: 300, Y: -40}, {X: 150, Y: 160}} {
		pos = d.Apply(p, pos)
	}
	direct := d.Apply(model.Point{X: 150, Y: 160}, start)

	assert.Equal(t, direct, pos)
	assert.Equal(t, 60.0, pos.X)
	assert.Equal(t, 80.0, pos.Y)
	assert.Equal(t, 1.5, pos.Scale)
	assert.Equal(t, 30.0, pos.Rotation)

	// 重放同一个最终坐标结果不变
	assert.Equal(t, pos, d.Apply(model.Point{X: 150, Y: 160}, pos))
}

// =============================================================================
// Wheel
// =============================================================================

func TestWheelRotate_Cumulative(t *testing.T) {
	pos := model.IdentityPosition()
	for i := 0; i < 5; i++ {
		pos = WheelRotate(pos, 1)
	}
	assert.Equal(t, 25.0, pos.Rotation)

	for i := 0; i < 80; i++ {
		pos = WheelRotate(pos, 3)
	}
	assert.Equal(t, 425.0, pos.Rotation)

	pos = WheelRotate(pos, -1)
	assert.Equal(t, 420.0, pos.Rotation)
}

func TestWheelScale_ZoomOutFromSmall(t *testing.T) {
	pos := model.OverlayPosition{Scale: 0.12}
	pos = WheelScale(pos, 1)
	assert.InDelta(t, 0.114, pos.Scale, 1e-9)

	for i := 0; i < 50; i++ {
		pos = WheelScale(pos, 1)
		assert.GreaterOrEqual(t, pos.Scale, model.MinScale)
	}
	assert.Equal(t, model.MinScale, pos.Scale)
}

func TestWheelScale_ZoomInCapped(t *testing.T) {
	pos := model.IdentityPosition()
	pos = WheelScale(pos, -1)
	assert.InDelta(t, 1.05, pos.Scale, 1e-9)

	for i := 0; i < 100; i++ {
		pos = WheelScale(pos, -1)
		assert.LessOrEqual(t, pos.Scale, GestureMaxScale)
	}
	assert.Equal(t, GestureMaxScale, pos.Scale)
}

// =============================================================================
// Resize
// =============================================================================

func TestCornerResize(t *testing.T) {
	start := model.IdentityPosition()
	r := BeginCornerResize(model.Point{X: 50, Y: 50}, start)

	pos := r.Apply(model.Point{X: 150, Y: 80}, start)
	assert.InDelta(t, 1.5, pos.Scale, 1e-9)

	// 使用较大的位移分量
	pos = r.Apply(model.Point{X: 40, Y: 90}, start)
	assert.InDelta(t, 1.2, pos.Scale, 1e-9)

	pos = r.Apply(model.Point{X: 5000, Y: 0}, start)
	assert.Equal(t, GestureMaxScale, pos.Scale)

	pos = r.Apply(model.Point{X: -5000, Y: -5000}, start)
	assert.Equal(t, model.MinScale, pos.Scale)
}

func TestDirectionalResize(t *testing.T) {
	start := model.OverlayPosition{Scale: 2}
	box := model.Size{Width: 200, Height: 100}

	tests := []struct {
		name    string
		handle  string
		pointer model.Point
		want    float64
	}{
		{"east grows", "e", model.Point{X: 100, Y: 0}, 3},
		{"west shrinks when moving right", "w", model.Point{X: 100, Y: 0}, 1},
		{"south grows", "s", model.Point{X: 0, Y: 50}, 3},
		{"north grows when moving up", "n", model.Point{X: 0, Y: -50}, 3},
		{"se takes larger change", "se", model.Point{X: 20, Y: 50}, 3},
		{"nw shrink wins over small growth", "nw", model.Point{X: 150, Y: -10}, 0.5},
		{"clamped high", "se", model.Point{X: 1000, Y: 1000}, model.MaxScale},
		{"clamped low", "e", model.Point{X: -195, Y: 0}, model.MinScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BeginDirectionalResize(tt.handle, model.Point{}, start, box)
			got := r.Apply(tt.pointer, start)
			assert.InDelta(t, tt.want, got.Scale, 1e-9)
		})
	}
}

func TestPinch(t *testing.T) {
	p, ok := BeginPinch(model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0}, model.Size{Width: 150, Height: 120})
	require.True(t, ok)

	size := p.Apply(model.Point{X: 0, Y: 0}, model.Point{X: 0, Y: 200})
	assert.InDelta(t, 300, size.Width, 1e-9)
	assert.InDelta(t, 240, size.Height, 1e-9)

	_, ok = BeginPinch(model.Point{X: 5, Y: 5}, model.Point{X: 5, Y: 5}, model.Size{})
	assert.False(t, ok)
}

// =============================================================================
// Legacy
// =============================================================================

func TestLegacyDrag_KeepsInBounds(t *testing.T) {
	bounds := model.Size{Width: 375, Height: 425}
	size := model.Size{Width: 150, Height: 150}
	start := model.OverlayPosition{X: 10, Y: 10, Scale: 1}
	d := BeginLegacyDrag(model.Point{X: 0, Y: 0}, start, bounds)

	pos := d.Apply(model.Point{X: 50, Y: 60}, start, size)
	assert.Equal(t, 60.0, pos.X)
	assert.Equal(t, 70.0, pos.Y)

	pos = d.Apply(model.Point{X: 1000, Y: -1000}, start, size)
	assert.Equal(t, 225.0, pos.X)
	assert.Equal(t, 0.0, pos.Y)
}

func TestLegacyResize_MinimumSize(t *testing.T) {
	r := BeginLegacyResize(model.Point{X: 10, Y: 10}, model.Size{Width: 150, Height: 150})

	assert.Equal(t, model.Size{Width: 180, Height: 140}, r.Apply(model.Point{X: 40, Y: 0}))
	assert.Equal(t, model.Size{Width: LegacyMinSize, Height: LegacyMinSize}, r.Apply(model.Point{X: -500, Y: -500}))
}
