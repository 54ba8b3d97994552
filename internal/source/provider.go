package source

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/proteinframes/internal/config"
)

// ProgressFunc receives the share of loaded frames in percent.
// Calls are serialised and never decrease.
type ProgressFunc func(progress float64)

// Provider loads a whole frame sequence. The batch is all-or-nothing: a single
// failed frame replaces every frame with a synthetic one, so real and
// synthetic frames are never mixed.
type Provider struct {
	Source   Source
	Fallback *SyntheticSource
	Workers  int
	Timeout  time.Duration // 0 = ждать сколько угодно
}

func NewProvider(cfg config.Config, src Source) *Provider {
	return &Provider{
		Source:   src,
		Fallback: NewSyntheticSource(cfg.Width, cfg.Height, cfg.FrameCount),
		Workers:  cfg.LoadWorkers,
		Timeout:  cfg.LoadTimeout,
	}
}

// Load returns exactly n frames in index order. It never fails: load errors are
// logged and answered with synthetic frames. The result is nil only when ctx
// is cancelled before loading finishes.
func (p *Provider) Load(ctx context.Context, n int, onProgress ProgressFunc) []Frame {
	if n <= 0 {
		return []Frame{}
	}
	if onProgress == nil {
		onProgress = func(float64) {}
	}

	frames, err := p.loadAll(ctx, n, onProgress)
	if ctx.Err() != nil {
		return nil
	}
	if err == nil {
		return frames
	}

	log.Printf("[!] Не удалось загрузить кадры (%v), используем синтетическую спираль", err)
	frames = p.synthesize(ctx, n)
	if frames == nil {
		return nil
	}
	onProgress(100)
	return frames
}

func (p *Provider) loadAll(ctx context.Context, n int, onProgress ProgressFunc) ([]Frame, error) {
	if p.Source == nil {
		return nil, fmt.Errorf("источник кадров не задан")
	}

	loadCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(loadCtx)
	workers := p.Workers
	if workers <= 0 {
		workers = 16
	}
	g.SetLimit(workers)

	frames := make([]Frame, n)
	var mu sync.Mutex
	loaded := 0

	for i := 0; i < n; i++ {
		// Первая ошибка отменяет остальные запросы
		if gctx.Err() != nil {
			break
		}
		i := i // per-iteration copy (go directive is below 1.22)
		g.Go(func() error {
			img, err := p.Source.LoadFrame(gctx, i)
			if err != nil {
				return fmt.Errorf("кадр %d: %w", i, err)
			}
			if img == nil {
				return fmt.Errorf("кадр %d: пустое изображение", i)
			}
			frames[i] = Frame{Index: i, Image: img, Loaded: true}

			mu.Lock()
			loaded++
			onProgress(float64(loaded) / float64(n) * 100)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := loadCtx.Err(); err != nil {
		return nil, fmt.Errorf("загрузка прервана: %w", err)
	}
	return frames, nil
}

func (p *Provider) synthesize(ctx context.Context, n int) []Frame {
	fb := NewSyntheticSource(0, 0, n)
	if p.Fallback != nil {
		copied := *p.Fallback
		fb = &copied
	}
	fb.Count = n

	frames := make([]Frame, n)
	for i := range frames {
		if ctx.Err() != nil {
			return nil
		}
		frames[i] = Frame{Index: i, Image: fb.Frame(i), Loaded: true, Synthetic: true}
	}
	return frames
}
