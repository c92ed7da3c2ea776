// Package store 保存设计会话中每个视图的图层列表、选中状态和当前手势
package store

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dryp3004/DRYP-Preview/geometry"
	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/utils"
)

var (
	ErrOverlayNotFound = errors.New("overlay not found")
	ErrGestureActive   = errors.New("another gesture is active")
	ErrNoGesture       = errors.New("no active gesture")
	ErrScaleCooldown   = errors.New("overlay is cooling down after a scale tick")
	ErrKindMismatch    = errors.New("gesture does not apply to this overlay kind")
	ErrBadGesture      = errors.New("invalid gesture input")
)

// BaseBox scaled 图层在 scale=1 时的显示框
var BaseBox = model.Size{Width: 200, Height: 200}

type viewState struct {
	overlays []model.Overlay
	selected string
}

func (v *viewState) index(id string) int {
	return slices.IndexFunc(v.overlays, func(o model.Overlay) bool { return o.ID == id })
}

// Session 一次设计会话，同一时刻最多只有一个手势
type Session struct {
	mu       sync.Mutex
	id       string
	garment  model.Garment
	bounds   model.Size
	active   model.View
	views    map[model.View]*viewState
	gesture  *gesture
	cooldown map[string]time.Time
	now      func() time.Time
}

// Option 会话选项
type Option func(*Session)

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithBounds 设置视图逻辑尺寸，旧版拖拽用它做边界限制
func WithBounds(size model.Size) Option {
	return func(s *Session) { s.bounds = size }
}

func NewSession(garment model.Garment, opts ...Option) *Session {
	s := &Session{
		id:      utils.GenerateID(),
		garment: garment,
		active:  model.ViewFront,
		views: map[model.View]*viewState{
			model.ViewFront: {},
			model.ViewBack:  {},
		},
		cooldown: make(map[string]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Garment() model.Garment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.garment
}

// ActiveView 当前视图
func (s *Session) ActiveView() model.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveView 切换视图，不改变任何图层和选中状态
func (s *Session) SetActiveView(v model.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = v
}

// AddOverlay 追加一个初始变换的 scaled 图层，不自动选中
func (s *Session) AddOverlay(v model.View, image string) model.Overlay {
	o := newScaledOverlay(image)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[v].overlays = append(s.views[v].overlays, o)
	return o
}

// AddDesign 追加一个旧版 sized 图层
func (s *Session) AddDesign(v model.View, image string) model.Overlay {
	size := model.DefaultDesignSize
	o := model.Overlay{
		ID:       utils.GenerateID(),
		Kind:     model.KindSized,
		Image:    image,
		Position: model.IdentityPosition(),
		Size:     &size,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[v].overlays = append(s.views[v].overlays, o)
	return o
}

// AddToActive 在当前视图追加 scaled 图层
func (s *Session) AddToActive(image string) (model.View, model.Overlay) {
	o := newScaledOverlay(image)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[s.active].overlays = append(s.views[s.active].overlays, o)
	return s.active, o
}

func newScaledOverlay(image string) model.Overlay {
	return model.Overlay{
		ID:       utils.GenerateID(),
		Kind:     model.KindScaled,
		Image:    image,
		Position: model.IdentityPosition(),
	}
}

// UpdatePosition 替换图层位置，图层不存在时不做任何事
func (s *Session) UpdatePosition(v model.View, id string, pos model.OverlayPosition) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.views[v]
	i := vs.index(id)
	if i < 0 {
		return false
	}
	vs.overlays[i].Position = pos.Clamped()
	return true
}

// DeleteOverlay 删除图层；若它被选中则清除选中
func (s *Session) DeleteOverlay(v model.View, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.views[v]
	i := vs.index(id)
	if i < 0 {
		return false
	}
	vs.overlays = slices.Delete(vs.overlays, i, i+1)
	if vs.selected == id {
		vs.selected = ""
	}
	if s.gesture != nil && s.gesture.view == v && s.gesture.overlayID == id {
		s.gesture = nil
	}
	delete(s.cooldown, id)
	return true
}

// Select 选中图层，只影响该视图
func (s *Session) Select(v model.View, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.views[v]
	if vs.index(id) < 0 {
		return ErrOverlayNotFound
	}
	vs.selected = id
	return nil
}

func (s *Session) ClearSelection(v model.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[v].selected = ""
}

// Selected 返回视图中被选中的图层 ID
func (s *Session) Selected(v model.View) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[v].selected
}

// Overlays 返回视图图层的副本，按绘制顺序
func (s *Session) Overlays(v model.View) []model.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOverlays(s.views[v].overlays)
}

// Overlay 查找单个图层
func (s *Session) Overlay(v model.View, id string) (model.Overlay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.views[v]
	i := vs.index(id)
	if i < 0 {
		return model.Overlay{}, false
	}
	return cloneOverlay(vs.overlays[i]), true
}

// Wheel 滚轮事件：按住修饰键旋转，否则缩放
func (s *Session) Wheel(v model.View, id string, deltaY float64, modifier bool) (model.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture != nil && (s.gesture.view != v || s.gesture.overlayID != id) {
		return model.Overlay{}, ErrGestureActive
	}
	vs := s.views[v]
	i := vs.index(id)
	if i < 0 {
		return model.Overlay{}, ErrOverlayNotFound
	}
	o := &vs.overlays[i]
	if modifier {
		o.Position = geometry.WheelRotate(o.Position, deltaY)
	} else {
		o.Position = geometry.WheelScale(o.Position, deltaY)
		s.cooldown[id] = s.now().Add(geometry.ScaleCooldown)
	}
	return cloneOverlay(*o), nil
}

// Snapshot 整个会话的深拷贝
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := model.SessionSnapshot{
		ID:         s.id,
		Garment:    s.garment,
		ActiveView: s.active,
		Views:      make(map[model.View]model.ViewState, len(s.views)),
	}
	for v, vs := range s.views {
		snap.Views[v] = model.ViewState{
			Overlays:   cloneOverlays(vs.overlays),
			SelectedID: vs.selected,
		}
	}
	if s.gesture != nil {
		snap.ActiveOverlay = s.gesture.overlayID
	}
	return snap
}

func cloneOverlay(o model.Overlay) model.Overlay {
	if o.Size != nil {
		size := *o.Size
		o.Size = &size
	}
	return o
}

func cloneOverlays(in []model.Overlay) []model.Overlay {
	out := make([]model.Overlay, len(in))
	for i, o := range in {
		out[i] = cloneOverlay(o)
	}
	return out
}
