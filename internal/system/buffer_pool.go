package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры *image.RGBA одного размера, чтобы
// захват не выделял новый буфер на каждый прогон и не нагружал GC.
type ImagePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex

	gets   atomic.Int64
	allocs atomic.Int64
}

// PoolStats показывает, насколько часто буферы переиспользуются
type PoolStats struct {
	Gets   int64
	Allocs int64
}

// NewImagePool возвращает пустой пул
func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

var globalPool = NewImagePool()

// GetImage возвращает *image.RGBA из общего пула. Содержимое не очищается.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает буфер в общий пул
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// GlobalPoolStats возвращает счетчики общего пула
func GlobalPoolStats() PoolStats {
	return globalPool.Stats()
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.gets.Add(1)
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					p.allocs.Add(1)
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put принимает только буферы размеров, которые пул уже выдавал
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

func (p *ImagePool) Stats() PoolStats {
	return PoolStats{Gets: p.gets.Load(), Allocs: p.allocs.Load()}
}
