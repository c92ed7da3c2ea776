package store

import (
	"errors"
	"sync"
	"time"

	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/utils"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry 进程内的会话表，不做持久化
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
	opts     []Option
}

func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		sessions: make(map[string]*registryEntry),
		opts:     opts,
	}
}

func (r *Registry) Create(garment model.Garment) *Session {
	s := NewSession(garment, r.opts...)
	r.mu.Lock()
	r.sessions[s.ID()] = &registryEntry{session: s, lastSeen: time.Now()}
	r.mu.Unlock()
	return s
}

// Get 每次访问都会刷新会话的空闲计时
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = time.Now()
	return entry.session, nil
}

// Close 关闭会话，其中的图层随之销毁
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup 关闭超过 idle 未访问的会话，返回关闭的数量
func (r *Registry) Cleanup(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	removed := 0
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup 每隔 interval 清理一次空闲会话，直到 stop 关闭
func (r *Registry) StartCleanup(interval, idle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := r.Cleanup(idle); n > 0 {
					utils.Logger.Info("idle sessions closed", zap.Int("count", n), zap.Int("remaining", r.Len()))
				}
			case <-stop:
				return
			}
		}
	}()
}
