package combat

import "math"

// Target is a location, optionally bound to a ship.
type Target struct {
	X, Y   float64
	ShipID string
}

func ShipTarget(s *Ship) Target {
	return Target{X: s.Pos.X, Y: s.Pos.Y, ShipID: s.ID}
}

func LocationTarget(x, y float64) Target {
	return Target{X: x, Y: y}
}

func (t Target) Pos() Vec2    { return Vec2{t.X, t.Y} }
func (t Target) IsShip() bool { return t.ShipID != "" }

func (t Target) DistanceTo(p Vec2) float64 { return t.Pos().Dist(p) }

func (t Target) InRange(center Vec2, radius float64) bool {
	return t.DistanceTo(center) <= radius
}

// ConstrainInRange pulls the target back onto the circle around center. A constrained target
// loses its ship binding.
func (t Target) ConstrainInRange(center Vec2, radius float64) Target {
	d := t.Pos().Sub(center)
	length := d.Len()
	if length <= radius {
		return t
	}
	p := center.Add(d.Scale(radius / length))
	return LocationTarget(p.X, p.Y)
}

// MoveOutOfCircle returns the point where the [source, target] line enters the circle, when
// the target lies inside it.
func (t Target) MoveOutOfCircle(circle Vec2, radius float64, source Vec2) Target {
	rel := t.Pos().Sub(circle)
	if rel.Len() >= radius {
		return t
	}
	src := source.Sub(circle)
	p, ok := intersectLineCircle(src, rel, radius)
	if !ok {
		return t
	}
	return LocationTarget(p.X+circle.X, p.Y+circle.Y)
}

// KeepInsideRectangle shortens the [source, target] segment so it stays in the rectangle.
func (t Target) KeepInsideRectangle(xmin, ymin, xmax, ymax float64, source Vec2) Target {
	length := t.DistanceTo(source)
	result := t
	if result.X < xmin {
		length *= (xmin - source.X) / (result.X - source.X)
		result = result.ConstrainInRange(source, length)
	}
	if result.X > xmax {
		length *= (xmax - source.X) / (result.X - source.X)
		result = result.ConstrainInRange(source, length)
	}
	if result.Y < ymin {
		length *= (ymin - source.Y) / (result.Y - source.Y)
		result = result.ConstrainInRange(source, length)
	}
	if result.Y > ymax {
		length *= (ymax - source.Y) / (result.Y - source.Y)
		result = result.ConstrainInRange(source, length)
	}
	return result
}

// intersectLineCircle intersects the line through p1 and p2 with the circle of radius r
// centered at the origin, keeping the intersection nearest to p1.
func intersectLineCircle(p1, p2 Vec2, r float64) (Vec2, bool) {
	a := p2.Y - p1.Y
	b := -(p2.X - p1.X)
	c := -(a*p1.X + b*p1.Y)
	n := a*a + b*b
	if n == 0 {
		return Vec2{}, false
	}
	x0, y0 := -a*c/n, -b*c/n
	const eps = 10e-8
	switch {
	case c*c > r*r*n+eps:
		return Vec2{}, false
	case math.Abs(c*c-r*r*n) < eps:
		return Vec2{x0, y0}, true
	}
	mult := math.Sqrt((r*r - c*c/n) / n)
	c1 := Vec2{x0 + b*mult, y0 - a*mult}
	c2 := Vec2{x0 - b*mult, y0 + a*mult}
	if c1.Dist(p1) <= c2.Dist(p1) {
		return c1, true
	}
	return c2, true
}
