package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадровые буферы *image.RGBA одного размера,
// чтобы рендер сотен кадров не нагружал сборщик мусора.
type ImagePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage возвращает прозрачный буфер w x h из общего пула.
func GetImage(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutImage возвращает буфер в общий пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get returns a zeroed (fully transparent) w x h image anchored at the origin.
// Non-positive sizes yield nil.
func (p *ImagePool) Get(w, h int) *image.RGBA {
	if w <= 0 || h <= 0 {
		return nil
	}
	key := image.Point{X: w, Y: h}
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(image.Rect(0, 0, key.X, key.Y))
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	img := pool.Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.Size()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists && img.Rect.Min == (image.Point{}) {
		pool.Put(img)
	}
}
