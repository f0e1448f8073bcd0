package model

import "sync"

// GridToPool hands a replaced grid back for reuse. A nil pool or grid is ignored,
// and so is the empty grid since it owns no buffers.
func GridToPool(grid *Grid, pool *GridPool) {
	if pool == nil || grid == nil || grid.Empty() {
		return
	}
	pool.Put(grid)
}

// GridPool recycles row buffers between generations so a running
// simulation does not allocate a fresh grid every step
type GridPool struct {
	pool sync.Pool
}

func NewGridPool() *GridPool {
	p := &GridPool{}
	p.pool.New = func() any { return new(Grid) }
	return p
}

// Get returns an all-dead grid of the given dimensions. Buffers from a
// pooled grid are reused when their sizes match.
func (p *GridPool) Get(width, height int) *Grid {
	g := p.pool.Get().(*Grid)
	g.Reset(width, height)
	return g
}

// Put stores g for reuse. The caller must not touch g afterwards.
func (p *GridPool) Put(g *Grid) {
	p.pool.Put(g)
}
