package combat

import "math"

const epsilon = 1e-6

type Vec2 struct{ X, Y float64 }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Len() float64    { return math.Hypot(a.X, a.Y) }
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

func (a Vec2) Dist(b Vec2) float64 { return b.Sub(a).Len() }

// AngleTo is the bearing from a to b, in radians.
func (a Vec2) AngleTo(b Vec2) float64 { return math.Atan2(b.Y-a.Y, b.X-a.X) }

// Polar returns the point at distance d from a, along angle.
func (a Vec2) Polar(angle, d float64) Vec2 {
	return Vec2{a.X + math.Cos(angle)*d, a.Y + math.Sin(angle)*d}
}

// AngularDistance returns the signed difference a2-a1, normalized to (-pi, pi].
func AngularDistance(a1, a2 float64) float64 {
	d := math.Mod(a2-a1, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
