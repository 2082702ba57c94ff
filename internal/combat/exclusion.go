package combat

import "sort"

// Arena is the battle area. Border and ShipSeparation are hard exclusion distances.
type Arena struct {
	Width          float64
	Height         float64
	Border         float64
	ShipSeparation float64
}

func DefaultArena() Arena {
	return Arena{Width: 1808, Height: 948, Border: 50, ShipSeparation: 100}
}

// exclusion keeps move destinations out of arena borders and away from other ships.
type exclusion struct {
	xmin, ymin, xmax, ymax float64
	active                 bool
	border                 float64
	obstacle               float64
	obstacles              []Vec2
}

func newExclusion(arena Arena, ship *Ship, softDistance float64) *exclusion {
	ex := &exclusion{
		xmax:     arena.Width - 1,
		ymax:     arena.Height - 1,
		active:   arena.Width > 0 && arena.Height > 0,
		border:   arena.Border,
		obstacle: max(softDistance, arena.ShipSeparation),
	}
	if ship.world != nil {
		for _, other := range ship.world.Ships(true) {
			if other != ship {
				ex.obstacles = append(ex.obstacles, other.Pos)
			}
		}
	}
	return ex
}

// stopBefore returns the furthest point of [source, dest] outside every exclusion area.
func (ex *exclusion) stopBefore(dest, source Vec2) Vec2 {
	if !ex.active {
		return dest
	}
	t := LocationTarget(dest.X, dest.Y)
	t = t.KeepInsideRectangle(ex.xmin+ex.border, ex.ymin+ex.border,
		ex.xmax-ex.border, ex.ymax-ex.border, source)

	obstacles := append([]Vec2(nil), ex.obstacles...)
	sort.SliceStable(obstacles, func(i, j int) bool {
		return obstacles[i].Dist(source) < obstacles[j].Dist(source)
	})
	for _, o := range obstacles {
		moved := t.MoveOutOfCircle(o, ex.obstacle, source)
		if moved != t && o.Dist(source) < ex.obstacle {
			// already inside this obstacle area
			t = LocationTarget(source.X, source.Y)
		} else {
			t = moved
		}
	}
	return t.Pos()
}
