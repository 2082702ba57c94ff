package combat

// Drone is a static object projecting area effects around itself, for a number of its
// owner's turns.
type Drone struct {
	ID       string
	Owner    string
	Code     string
	Pos      Vec2
	Radius   float64
	Lifetime int
	Effects  []Effect
}

func (d *Drone) IsInRange(p Vec2) bool {
	return d.Pos.Dist(p) <= d.Radius
}

// AffectedShips lists the alive ships inside the drone radius, in play order.
func (d *Drone) AffectedShips(w World) []*Ship {
	return w.ShipsInCircle(d.Pos, d.Radius, true)
}
