package heightfield

import (
	gomath "math"

	"github.com/Faultbox/skyhull/pkg/math"
)

// MaxMarchSteps bounds the number of cells the march should need at its
// starting level to cover the requested distance.
const MaxMarchSteps = 64

// coarseLevelsSkipped is how many of the coarsest levels the march never starts on.
const coarseLevelsSkipped = 2

// RayCollision finds where a ray first meets the terrain.
//
// The march starts on a coarse level and walks the grid cell by cell. When
// the ray drops to a cell's floor it records a tentative hit, then steps one
// level finer and walks again from where the ray entered that cell. The hit
// returned is the last one recorded before the march reaches level 0 or
// leaves the grid. A ray that starts below the ground it is standing over
// reports no hit.
//
// lodHint is the finest level the march may start on. The returned point has
// its Y snapped to the floor of the cell that was hit.
func (h *HeightField) RayCollision(start, dir math.Vec3, maxDistance float32, lodHint int) (math.Vec3, bool) {
	dir = dir.Normalize()
	if dir == (math.Vec3{}) || maxDistance <= 0 {
		return math.Vec3{}, false
	}

	tMin, tMax, ok := h.clipFootprint(start, dir)
	if !ok {
		return math.Vec3{}, false
	}
	tMin = max(tMin, 0)
	tMax = min(tMax, maxDistance)
	if tMin > tMax {
		return math.Vec3{}, false
	}

	if tMin == 0 {
		cx, cz := h.cellAt(0, start)
		if start.Y < h.cellFloor(0, cx, cz) {
			return math.Vec3{}, false
		}
	}

	var hit math.Vec3
	found := false
	t := tMin
	for level := h.startLevel(maxDistance, lodHint); level >= 0; level-- {
		tEnter, tHit, floor, ok := h.marchLevel(level, start, dir, t, tMax)
		if !ok {
			break
		}
		hit = start.Add(dir.Scale(tHit))
		hit.Y = floor
		found = true
		t = tEnter
	}
	return hit, found
}

// startLevel picks the finest level, no finer than lodHint, on which
// MaxMarchSteps cells span maxDistance.
func (h *HeightField) startLevel(maxDistance float32, lodHint int) int {
	top := max(0, len(h.levels)-1-coarseLevelsSkipped)
	level := math.ClampInt(lodHint, 0, top)
	for level < top {
		cw, cd := h.CellSize(level)
		if max(cw, cd)*MaxMarchSteps >= maxDistance {
			break
		}
		level++
	}
	return level
}

// marchLevel walks the cells of one level along the ray from t0 until the ray
// reaches a cell floor, leaves the grid, or passes tMax. On a hit it returns
// the parameter where the ray entered the cell, the parameter of the contact
// point and the cell floor.
func (h *HeightField) marchLevel(level int, start, dir math.Vec3, t0, tMax float32) (tEnter, tHit, floor float32, ok bool) {
	l := h.levels[level]
	cellW, cellD := h.CellSize(level)

	// Probe slightly past t0 so a ray sitting on a cell boundary starts in
	// the cell it is about to cross.
	nudge := min(cellW, cellD) * 1e-3
	cx, cz := h.cellAt(level, start.Add(dir.Scale(t0+nudge)))
	stepX, nextX, deltaX := axisStep(start.X-h.bounds.Min.X, dir.X, cellW, cx)
	stepZ, nextZ, deltaZ := axisStep(start.Z-h.bounds.Min.Z, dir.Z, cellD, cz)

	t := t0
	for {
		tExit := min(nextX, nextZ, tMax)
		floor = h.cellFloor(level, cx, cz)

		// The lowest point of the segment inside this cell decides contact.
		lowT := t
		if dir.Y < 0 {
			lowT = tExit
		}
		if start.Y+dir.Y*lowT <= floor {
			contact := t
			if dir.Y < 0 {
				contact = math.Clamp((floor-start.Y)/dir.Y, t, tExit)
			}
			return t, contact, floor, true
		}

		if tExit >= tMax {
			return 0, 0, 0, false
		}

		if nextX < nextZ {
			cx += stepX
			t = nextX
			nextX += deltaX
		} else {
			cz += stepZ
			t = nextZ
			nextZ += deltaZ
		}
		if cx < 0 || cx >= l.Width || cz < 0 || cz >= l.Height {
			return 0, 0, 0, false
		}
	}
}

// axisStep sets up the DDA along one axis. offset is the ray origin relative
// to the footprint minimum on that axis. It returns the cell increment, the
// ray parameter of the first boundary crossing and the parameter spacing
// between crossings.
func axisStep(offset, d, cell float32, c int) (step int, next, delta float32) {
	inf := float32(gomath.Inf(1))
	switch {
	case d > 0:
		return 1, (float32(c+1)*cell - offset) / d, cell / d
	case d < 0:
		return -1, (float32(c)*cell - offset) / d, -cell / d
	default:
		return 0, inf, inf
	}
}

// cellAt returns the cell containing p on the given level, clamped to the grid.
func (h *HeightField) cellAt(level int, p math.Vec3) (int, int) {
	l := h.levels[level]
	u := (p.X - h.bounds.Min.X) / h.size.X
	v := (p.Z - h.bounds.Min.Z) / h.size.Z
	cx := math.ClampInt(int(gomath.Floor(float64(u*float32(l.Width)))), 0, l.Width-1)
	cz := math.ClampInt(int(gomath.Floor(float64(v*float32(l.Height)))), 0, l.Height-1)
	return cx, cz
}

// clipFootprint intersects the ray with the footprint's X/Z extent and returns
// the parameter range spent inside it.
func (h *HeightField) clipFootprint(start, dir math.Vec3) (float32, float32, bool) {
	tMin := float32(gomath.Inf(-1))
	tMax := float32(gomath.Inf(1))

	origins := [2]float32{start.X, start.Z}
	dirs := [2]float32{dir.X, dir.Z}
	lo := [2]float32{h.bounds.Min.X, h.bounds.Min.Z}
	hi := [2]float32{h.bounds.Max.X, h.bounds.Max.Z}

	for i := range origins {
		origin, d := origins[i], dirs[i]
		if d == 0 {
			if origin < lo[i] || origin > hi[i] {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo[i] - origin) / d
		t2 := (hi[i] - origin) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
	}

	if tMax < tMin || tMax < 0 {
		return 0, 0, false
	}
	return tMin, tMax, true
}
