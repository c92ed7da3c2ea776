package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ErrMissingAnchor 场景缺少服装底图，不能渲染
var ErrMissingAnchor = errors.New("scene has no garment base layer")

// Renderer 场景渲染器，所有图片加载完成后才开始绘制
type Renderer struct {
	loader      Loader
	maxParallel int
	interp      draw.Interpolator
}

func NewRenderer(loader Loader, maxParallel int) *Renderer {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Renderer{
		loader:      loader,
		maxParallel: maxParallel,
		interp:      draw.BiLinear,
	}
}

// Job 一次异步渲染
type Job struct {
	done   chan struct{}
	cancel context.CancelFunc
	img    *image.RGBA
	err    error
}

// Done 渲染结束（成功、失败或取消）时关闭
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel 取消渲染，未完成的加载会被中断
func (j *Job) Cancel() {
	j.cancel()
}

// Wait 等待渲染结果；ctx 结束时返回 ctx.Err()，但不取消渲染本身
func (j *Job) Wait(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-j.done:
		return j.img, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start 异步渲染场景
func (r *Renderer) Start(ctx context.Context, scene Scene) *Job {
	ctx, cancel := context.WithCancel(ctx)
	job := &Job{done: make(chan struct{}), cancel: cancel}

	if scene.Base == nil || scene.Base.Source == "" {
		job.err = ErrMissingAnchor
		close(job.done)
		return job
	}

	go func() {
		defer close(job.done)
		defer cancel()
		job.img, job.err = r.render(ctx, scene)
	}()
	return job
}

// Render 同步渲染
func (r *Renderer) Render(ctx context.Context, scene Scene) (*image.RGBA, error) {
	job := r.Start(ctx, scene)
	defer job.Cancel()
	return job.Wait(ctx)
}

func (r *Renderer) render(ctx context.Context, scene Scene) (*image.RGBA, error) {
	images, err := r.loadAll(ctx, scene.Sources())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := scene.PixelSize()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("invalid scene size %v", size)
	}
	density := scene.Density
	if density <= 0 {
		density = 1
	}

	dst := image.NewRGBA(image.Rectangle{Max: size})
	if scene.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(scene.Background), image.Point{}, draw.Src)
	}

	r.drawLayer(dst, images[scene.Base.Source], scene.Base.Placement, density)
	for _, l := range scene.Overlays {
		r.drawLayer(dst, images[l.Source], l.Placement, density)
	}
	return dst, nil
}

// loadAll 并发加载全部来源，任何一个失败即整体失败
func (r *Renderer) loadAll(ctx context.Context, sources []string) (map[string]image.Image, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	images := make(map[string]image.Image, len(sources))
	sem := make(chan struct{}, r.maxParallel)

	for _, src := range sources {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			img, err := r.loader.Load(ctx, src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("load layer source: %w", err)
					cancel()
				}
				return
			}
			images[src] = img
		}(src)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// drawLayer 计算 源图 -> 画布 的仿射矩阵：T(center) * R(rotation) * S(fit) * T(-imageCenter)，再乘以像素密度
func (r *Renderer) drawLayer(dst *image.RGBA, src image.Image, p Placement, density float64) {
	if src == nil || p.Width <= 0 || p.Height <= 0 {
		return
	}
	b := src.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return
	}

	fit := math.Min(p.Width/iw, p.Height/ih)
	rad := p.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	ox := -float64(b.Min.X) - iw/2
	oy := -float64(b.Min.Y) - ih/2

	m := f64.Aff3{
		density * fit * cos, -density * fit * sin, density * (p.CenterX + fit*(cos*ox-sin*oy)),
		density * fit * sin, density * fit * cos, density * (p.CenterY + fit*(sin*ox+cos*oy)),
	}
	r.interp.Transform(dst, m, src, b, draw.Over, nil)
}
