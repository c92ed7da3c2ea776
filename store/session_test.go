package store

import (
	"testing"
	"time"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(t *testing.T) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSession(model.Garment{Type: "T-Shirt", Color: "white"},
		WithClock(clock.Now),
		WithBounds(model.Size{Width: 375, Height: 425}))
	return s, clock
}

// =============================================================================
// CRUD
// =============================================================================

func TestAddOverlay_IdentityAndNotSelected(t *testing.T) {
	s, _ := newTestSession(t)

	o := s.AddOverlay(model.ViewFront, "data:image/png;base64,AAAA")
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, model.KindScaled, o.Kind)
	assert.Equal(t, model.OverlayPosition{X: 0, Y: 0, Scale: 1, Rotation: 0}, o.Position)
	assert.Empty(t, s.Selected(model.ViewFront))
	assert.Len(t, s.Overlays(model.ViewFront), 1)
	assert.Empty(t, s.Overlays(model.ViewBack))
}

func TestUpdatePosition(t *testing.T) {
	s, _ := newTestSession(t)
	o := s.AddOverlay(model.ViewFront, "a")

	ok := s.UpdatePosition(model.ViewFront, o.ID, model.OverlayPosition{X: 5, Y: 6, Scale: 9, Rotation: 400})
	require.True(t, ok)
	got, _ := s.Overlay(model.ViewFront, o.ID)
	assert.Equal(t, model.OverlayPosition{X: 5, Y: 6, Scale: model.MaxScale, Rotation: 400}, got.Position)

	// 图层不存在时不做任何事
	before := s.Snapshot()
	assert.False(t, s.UpdatePosition(model.ViewFront, "missing", model.IdentityPosition()))
	assert.False(t, s.UpdatePosition(model.ViewBack, o.ID, model.IdentityPosition()))
	assert.Equal(t, before, s.Snapshot())
}

func TestDeleteOverlay_Selection(t *testing.T) {
	s, _ := newTestSession(t)
	a := s.AddOverlay(model.ViewFront, "a")
	b := s.AddOverlay(model.ViewFront, "b")
	c := s.AddOverlay(model.ViewFront, "c")

	require.NoError(t, s.Select(model.ViewFront, a.ID))

	// 删除未选中的图层，选中状态不变
	assert.True(t, s.DeleteOverlay(model.ViewFront, b.ID))
	assert.Equal(t, a.ID, s.Selected(model.ViewFront))

	// 删除选中的图层，选中被清除
	assert.True(t, s.DeleteOverlay(model.ViewFront, a.ID))
	assert.Empty(t, s.Selected(model.ViewFront))

	remaining := s.Overlays(model.ViewFront)
	require.Len(t, remaining, 1)
	assert.Equal(t, c.ID, remaining[0].ID)

	assert.False(t, s.DeleteOverlay(model.ViewFront, a.ID))
}

func TestSelect_IndependentPerView(t *testing.T) {
	s, _ := newTestSession(t)
	f1 := s.AddOverlay(model.ViewFront, "f1")
	f2 := s.AddOverlay(model.ViewFront, "f2")
	b1 := s.AddOverlay(model.ViewBack, "b1")

	require.NoError(t, s.Select(model.ViewFront, f1.ID))
	require.NoError(t, s.Select(model.ViewBack, b1.ID))
	require.NoError(t, s.Select(model.ViewFront, f2.ID))

	assert.Equal(t, f2.ID, s.Selected(model.ViewFront))
	assert.Equal(t, b1.ID, s.Selected(model.ViewBack))

	// 跨视图选中失败
	assert.ErrorIs(t, s.Select(model.ViewBack, f1.ID), ErrOverlayNotFound)
	assert.Equal(t, b1.ID, s.Selected(model.ViewBack))

	s.ClearSelection(model.ViewFront)
	assert.Empty(t, s.Selected(model.ViewFront))
	assert.Equal(t, b1.ID, s.Selected(model.ViewBack))
}

func TestSwitchView_PreservesState(t *testing.T) {
	s, _ := newTestSession(t)
	f := s.AddOverlay(model.ViewFront, "f")
	s.AddOverlay(model.ViewBack, "b1")
	b2 := s.AddOverlay(model.ViewBack, "b2")
	require.NoError(t, s.Select(model.ViewFront, f.ID))
	require.NoError(t, s.Select(model.ViewBack, b2.ID))

	before := s.Snapshot()

	s.SetActiveView(model.ViewBack)
	assert.Equal(t, model.ViewBack, s.ActiveView())
	s.SetActiveView(model.ViewFront)

	assert.Equal(t, before, s.Snapshot())
}

func TestAddToActive(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetActiveView(model.ViewBack)

	v, o := s.AddToActive("cropped")
	assert.Equal(t, model.ViewBack, v)
	assert.Equal(t, model.IdentityPosition(), o.Position)
	assert.Len(t, s.Overlays(model.ViewBack), 1)
	assert.Empty(t, s.Overlays(model.ViewFront))
}

func TestSnapshot_IsCopy(t *testing.T) {
	s, _ := newTestSession(t)
	o := s.AddDesign(model.ViewFront, "legacy")

	snap := s.Snapshot()
	snap.Views[model.ViewFront].Overlays[0].Size.Width = 999

	got, _ := s.Overlay(model.ViewFront, o.ID)
	assert.Equal(t, model.DefaultDesignSize, *got.Size)
}

// =============================================================================
// Wheel
// =============================================================================

func TestWheel_RotateAndScale(t *testing.T) {
	s, _ := newTestSession(t)
	o := s.AddOverlay(model.ViewFront, "a")

	for i := 0; i < 5; i++ {
		_, err := s.Wheel(model.ViewFront, o.ID, 120, true)
		require.NoError(t, err)
	}
	got, _ := s.Overlay(model.ViewFront, o.ID)
	assert.Equal(t, 25.0, got.Position.Rotation)
	assert.Equal(t, 1.0, got.Position.Scale)

	got, err := s.Wheel(model.ViewFront, o.ID, -120, false)
	require.NoError(t, err)
	assert.InDelta(t, 1.05, got.Position.Scale, 1e-9)

	_, err = s.Wheel(model.ViewFront, "missing", 1, false)
	assert.ErrorIs(t, err, ErrOverlayNotFound)
}

func TestWheel_ScaleCooldownBlocksDrag(t *testing.T) {
	s, clock := newTestSession(t)
	o := s.AddOverlay(model.ViewFront, "a")

	_, err := s.Wheel(model.ViewFront, o.ID, 1, false)
	require.NoError(t, err)

	drag := model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: o.ID, Type: model.GestureDrag,
		Pointers: []model.Point{{X: 10, Y: 10}},
	}
	assert.ErrorIs(t, s.BeginGesture(drag), ErrScaleCooldown)

	clock.Advance(100 * time.Millisecond)
	assert.NoError(t, s.BeginGesture(drag))
}

// =============================================================================
// Gestures
// =============================================================================

func TestGesture_DragCommitsIncrementally(t *testing.T) {
	s, _ := newTestSession(t)
	o := s.AddOverlay(model.ViewFront, "a")

	require.NoError(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: o.ID, Type: model.GestureDrag,
		Pointers: []model.Point{{X: 100, Y: 100}},
	}))
	assert.Equal(t, o.ID, s.Selected(model.ViewFront))

	got, err := s.MoveGesture([][]model.Point{{{X: 110, Y: 100}}, {{X: 130, Y: 90}}})
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Position.X)
	assert.Equal(t, -10.0, got.Position.Y)

	require.NoError(t, s.EndGesture())
	stored, _ := s.Overlay(model.ViewFront, o.ID)
	assert.Equal(t, got.Position, stored.Position)

	_, err = s.MoveGesture([][]model.Point{{{X: 0, Y: 0}}})
	assert.ErrorIs(t, err, ErrNoGesture)
	assert.ErrorIs(t, s.EndGesture(), ErrNoGesture)
}

func TestGesture_OnlyOneActive(t *testing.T) {
	s, _ := newTestSession(t)
	a := s.AddOverlay(model.ViewFront, "a")
	b := s.AddOverlay(model.ViewBack, "b")

	require.NoError(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: a.ID, Type: model.GestureCorner,
		Pointers: []model.Point{{X: 0, Y: 0}},
	}))

	err := s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewBack, OverlayID: b.ID, Type: model.GestureDrag,
		Pointers: []model.Point{{X: 0, Y: 0}},
	})
	assert.ErrorIs(t, err, ErrGestureActive)

	_, err = s.Wheel(model.ViewBack, b.ID, 1, true)
	assert.ErrorIs(t, err, ErrGestureActive)

	view, id, ok := s.ActiveGesture()
	require.True(t, ok)
	assert.Equal(t, model.ViewFront, view)
	assert.Equal(t, a.ID, id)

	got, err := s.MoveGesture([][]model.Point{{{X: 100, Y: 20}}})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got.Position.Scale, 1e-9)

	require.NoError(t, s.EndGesture())
	_, _, ok = s.ActiveGesture()
	assert.False(t, ok)
}

func TestGesture_PinchOnlyForSized(t *testing.T) {
	s, _ := newTestSession(t)
	scaled := s.AddOverlay(model.ViewFront, "a")
	sized := s.AddDesign(model.ViewFront, "b")

	pointers := []model.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	err := s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: scaled.ID, Type: model.GesturePinch, Pointers: pointers,
	})
	assert.ErrorIs(t, err, ErrKindMismatch)

	require.NoError(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: sized.ID, Type: model.GesturePinch, Pointers: pointers,
	}))
	got, err := s.MoveGesture([][]model.Point{
		{{X: 0, Y: 0}},
		{{X: 0, Y: 0}, {X: 200, Y: 0}},
	})
	require.NoError(t, err)
	require.NotNil(t, got.Size)
	assert.InDelta(t, 300, got.Size.Width, 1e-9)
	assert.InDelta(t, 300, got.Size.Height, 1e-9)
}

func TestGesture_LegacyDragAndResize(t *testing.T) {
	s, _ := newTestSession(t)
	d := s.AddDesign(model.ViewBack, "legacy")

	require.NoError(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewBack, OverlayID: d.ID, Type: model.GestureLegacyDrag,
		Pointers: []model.Point{{X: 0, Y: 0}},
	}))
	got, err := s.MoveGesture([][]model.Point{{{X: 500, Y: 40}}})
	require.NoError(t, err)
	assert.Equal(t, 225.0, got.Position.X)
	assert.Equal(t, 40.0, got.Position.Y)
	require.NoError(t, s.EndGesture())

	require.NoError(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewBack, OverlayID: d.ID, Type: model.GestureLegacyResize,
		Pointers: []model.Point{{X: 0, Y: 0}},
	}))
	got, err = s.MoveGesture([][]model.Point{{{X: -200, Y: 20}}})
	require.NoError(t, err)
	assert.Equal(t, model.Size{Width: 50, Height: 170}, *got.Size)
}

func TestDeleteOverlay_ReleasesGesture(t *testing.T) {
	s, _ := newTestSession(t)
	o := s.AddOverlay(model.ViewFront, "a")
	require.NoError(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: o.ID, Type: model.GestureDrag,
		Pointers: []model.Point{{X: 0, Y: 0}},
	}))

	require.True(t, s.DeleteOverlay(model.ViewFront, o.ID))
	_, _, ok := s.ActiveGesture()
	assert.False(t, ok)
}

func TestBeginGesture_Validation(t *testing.T) {
	s, _ := newTestSession(t)
	o := s.AddOverlay(model.ViewFront, "a")

	assert.ErrorIs(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: o.ID, Type: model.GestureDrag,
	}), ErrBadGesture)
	assert.ErrorIs(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: o.ID, Type: "spin",
		Pointers: []model.Point{{X: 0, Y: 0}},
	}), ErrBadGesture)
	assert.ErrorIs(t, s.BeginGesture(model.BeginGestureRequest{
		View: model.ViewFront, OverlayID: "nope", Type: model.GestureDrag,
		Pointers: []model.Point{{X: 0, Y: 0}},
	}), ErrOverlayNotFound)
}

// =============================================================================
// Registry
// =============================================================================

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := r.Create(model.Garment{Type: "Hoodie", Color: "black"})

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Close(s.ID()))
	assert.False(t, r.Close(s.ID()))
	_, err = r.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_Cleanup(t *testing.T) {
	r := NewRegistry()
	old := r.Create(model.Garment{Color: "white"})
	recent := r.Create(model.Garment{Color: "black"})
	touched := r.Create(model.Garment{Color: "white"})
	r.sessions[old.ID()].lastSeen = time.Now().Add(-3 * time.Hour)
	r.sessions[touched.ID()].lastSeen = time.Now().Add(-3 * time.Hour)

	// 访问会刷新空闲计时
	_, err := r.Get(touched.ID())
	require.NoError(t, err)

	assert.Equal(t, 1, r.Cleanup(2*time.Hour))
	assert.Equal(t, 2, r.Len())
	_, err = r.Get(old.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(recent.ID())
	assert.NoError(t, err)
}

func TestRegistry_StartCleanup(t *testing.T) {
	r := NewRegistry()
	s := r.Create(model.Garment{Color: "white"})
	r.mu.Lock()
	r.sessions[s.ID()].lastSeen = time.Now().Add(-time.Hour)
	r.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	r.StartCleanup(5*time.Millisecond, time.Minute, stop)

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
}
