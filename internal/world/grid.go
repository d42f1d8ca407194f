package world

import (
	"math"
	"slices"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
)

// Proxy is a collidable as seen by the broad phase.
type Proxy struct {
	ID  ecs.EntityID
	Pos component.Vec2
	Tag component.ColliderTag
}

type cellKey struct {
	cx int64
	cy int64
}

// Grid is a uniform-cell broad phase rebuilt every tick. With a cell size no
// smaller than the overlap distance, every overlapping pair lies in the same
// or adjacent cells, so a 3x3 neighbourhood scan finds all of them.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int // cell → indices into proxies
	proxies  []Proxy
	buf      []int
}

func NewGrid(cellSize float64) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
		proxies:  make([]Proxy, 0, 64),
	}
}

func (g *Grid) key(p component.Vec2) cellKey {
	return cellKey{
		cx: int64(math.Floor(p.X / g.cellSize)),
		cy: int64(math.Floor(p.Y / g.cellSize)),
	}
}

// Reset empties the grid, keeping allocations.
func (g *Grid) Reset() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
	g.proxies = g.proxies[:0]
}

// Insert adds a proxy. Proxies with non-finite positions are skipped.
func (g *Grid) Insert(p Proxy) {
	if math.IsNaN(p.Pos.X) || math.IsNaN(p.Pos.Y) || math.IsInf(p.Pos.X, 0) || math.IsInf(p.Pos.Y, 0) {
		return
	}
	k := g.key(p.Pos)
	g.cells[k] = append(g.cells[k], len(g.proxies))
	g.proxies = append(g.proxies, p)
}

func (g *Grid) Len() int { return len(g.proxies) }

// Proxies returns the inserted proxies in insertion order.
func (g *Grid) Proxies() []Proxy { return g.proxies }

// Pairs calls fn once for every pair of proxies whose centres are within
// dist of each other. Pairs are reported in the same order as BrutePairs:
// ordered by the first proxy's insertion index, then the second's.
// dist must not exceed the cell size.
func (g *Grid) Pairs(dist float64, fn func(a, b Proxy)) {
	for i, a := range g.proxies {
		k := g.key(a.Pos)
		g.buf = g.buf[:0]
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, j := range g.cells[cellKey{k.cx + dx, k.cy + dy}] {
					if j > i && Overlap(a.Pos, g.proxies[j].Pos, dist) {
						g.buf = append(g.buf, j)
					}
				}
			}
		}
		slices.Sort(g.buf)
		for _, j := range g.buf {
			fn(a, g.proxies[j])
		}
	}
}

// BrutePairs is the exhaustive O(n²) equivalent of Grid.Pairs.
func BrutePairs(proxies []Proxy, dist float64, fn func(a, b Proxy)) {
	for i := range proxies {
		for j := i + 1; j < len(proxies); j++ {
			if Overlap(proxies[i].Pos, proxies[j].Pos, dist) {
				fn(proxies[i], proxies[j])
			}
		}
	}
}

// Overlap reports whether two circles whose radii sum to dist touch or
// intersect.
func Overlap(a, b component.Vec2, dist float64) bool {
	d := a.Sub(b)
	return d.Dot(d) <= dist*dist
}
