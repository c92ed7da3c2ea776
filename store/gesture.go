package store

import (
	"github.com/dryp3004/DRYP-Preview/geometry"
	"github.com/dryp3004/DRYP-Preview/model"
)

// tracker 把一次采样应用到目标图层
type tracker interface {
	apply(o *model.Overlay, pointers []model.Point)
}

type gesture struct {
	view      model.View
	overlayID string
	kind      model.GestureType
	tracker   tracker
}

type dragTracker struct{ geometry.Drag }

func (t dragTracker) apply(o *model.Overlay, p []model.Point) {
	o.Position = t.Apply(p[0], o.Position)
}

type cornerTracker struct{ geometry.CornerResize }

func (t cornerTracker) apply(o *model.Overlay, p []model.Point) {
	o.Position = t.Apply(p[0], o.Position)
}

type directionalTracker struct{ geometry.DirectionalResize }

func (t directionalTracker) apply(o *model.Overlay, p []model.Point) {
	o.Position = t.Apply(p[0], o.Position)
}

type pinchTracker struct{ geometry.Pinch }

func (t pinchTracker) apply(o *model.Overlay, p []model.Point) {
	if len(p) < 2 {
		return
	}
	size := t.Apply(p[0], p[1])
	o.Size = &size
}

type legacyDragTracker struct{ geometry.LegacyDrag }

func (t legacyDragTracker) apply(o *model.Overlay, p []model.Point) {
	o.Position = t.Apply(p[0], o.Position, *o.Size)
}

type legacyResizeTracker struct{ geometry.LegacyResize }

func (t legacyResizeTracker) apply(o *model.Overlay, p []model.Point) {
	size := t.Apply(p[0])
	o.Size = &size
}

// BeginGesture 在指定图层上开始手势，并选中该图层
func (s *Session) BeginGesture(req model.BeginGestureRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture != nil {
		return ErrGestureActive
	}
	vs, ok := s.views[req.View]
	if !ok {
		return ErrBadGesture
	}
	i := vs.index(req.OverlayID)
	if i < 0 {
		return ErrOverlayNotFound
	}
	if len(req.Pointers) == 0 {
		return ErrBadGesture
	}
	o := vs.overlays[i]
	first := req.Pointers[0]

	var t tracker
	switch req.Type {
	case model.GestureDrag:
		if until, ok := s.cooldown[o.ID]; ok && s.now().Before(until) {
			return ErrScaleCooldown
		}
		t = dragTracker{geometry.BeginDrag(first, o.Position)}
	case model.GestureCorner:
		if o.Kind != model.KindScaled {
			return ErrKindMismatch
		}
		t = cornerTracker{geometry.BeginCornerResize(first, o.Position)}
	case model.GestureDirectional:
		if o.Kind != model.KindScaled {
			return ErrKindMismatch
		}
		box := model.Size{Width: BaseBox.Width * o.Position.Scale, Height: BaseBox.Height * o.Position.Scale}
		if req.Box != nil {
			box = *req.Box
		}
		t = directionalTracker{geometry.BeginDirectionalResize(req.Handle, first, o.Position, box)}
	case model.GesturePinch:
		if o.Kind != model.KindSized {
			return ErrKindMismatch
		}
		if len(req.Pointers) < 2 {
			return ErrBadGesture
		}
		p, ok := geometry.BeginPinch(req.Pointers[0], req.Pointers[1], *o.Size)
		if !ok {
			return ErrBadGesture
		}
		t = pinchTracker{p}
	case model.GestureLegacyDrag:
		if o.Kind != model.KindSized {
			return ErrKindMismatch
		}
		t = legacyDragTracker{geometry.BeginLegacyDrag(first, o.Position, s.bounds)}
	case model.GestureLegacyResize:
		if o.Kind != model.KindSized {
			return ErrKindMismatch
		}
		t = legacyResizeTracker{geometry.BeginLegacyResize(first, *o.Size)}
	default:
		return ErrBadGesture
	}

	vs.selected = o.ID
	s.gesture = &gesture{
		view:      req.View,
		overlayID: o.ID,
		kind:      req.Type,
		tracker:   t,
	}
	return nil
}

// MoveGesture 按到达顺序应用采样，每个采样立即生效
func (s *Session) MoveGesture(samples [][]model.Point) (model.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture == nil {
		return model.Overlay{}, ErrNoGesture
	}
	vs := s.views[s.gesture.view]
	i := vs.index(s.gesture.overlayID)
	if i < 0 {
		s.gesture = nil
		return model.Overlay{}, ErrOverlayNotFound
	}
	o := &vs.overlays[i]
	for _, sample := range samples {
		if len(sample) == 0 {
			continue
		}
		s.gesture.tracker.apply(o, sample)
	}
	return cloneOverlay(*o), nil
}

// EndGesture 结束手势并释放临时状态，已提交的修改不回滚
func (s *Session) EndGesture() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture == nil {
		return ErrNoGesture
	}
	s.gesture = nil
	return nil
}

// ActiveGesture 当前手势的目标图层
func (s *Session) ActiveGesture() (model.View, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture == nil {
		return "", "", false
	}
	return s.gesture.view, s.gesture.overlayID, true
}
