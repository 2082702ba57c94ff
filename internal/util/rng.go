package util

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// idSalt derives the identifier stream from the simulation seed.
const idSalt = 0x5deece66d

// Rand is the random source threaded through battles and AI. A scripted prefix of values
// can be queued ahead of the seeded source. Identifiers come from a separate stream, so
// generating them never shifts simulation draws.
type Rand struct {
	src    *rand.Rand
	ids    *rand.Rand
	script []float64
}

func New(seed int64) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{
		src: rand.New(rand.NewSource(seed)),
		ids: rand.New(rand.NewSource(seed ^ idSalt)),
	}
}

// NewScripted returns the given values first, then falls back to a fixed seed.
func NewScripted(values ...float64) *Rand {
	r := New(1)
	r.script = append([]float64(nil), values...)
	return r
}

// Push queues more scripted values.
func (r *Rand) Push(values ...float64) {
	r.script = append(r.script, values...)
}

func (r *Rand) Random() float64 {
	if len(r.script) > 0 {
		v := r.script[0]
		r.script = r.script[1:]
		return v
	}
	return r.src.Float64()
}

// RandInt returns an integer in [from, to], both inclusive.
func (r *Rand) RandInt(from, to int) int {
	if to < from {
		from, to = to, from
	}
	v := from + int(math.Floor(r.Random()*float64(to-from+1)))
	if v > to {
		v = to
	}
	return v
}

func (r *Rand) Bool() bool {
	return r.Random() < 0.5
}

// Weighted picks an index with probability proportional to its weight.
func (r *Rand) Weighted(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0
	}
	pick := r.Random() * total
	cumul := 0.0
	for i, w := range weights {
		cumul += w
		if pick < cumul {
			return i
		}
	}
	return len(weights) - 1
}

// Read fills p with bytes of the identifier stream, so the generator can feed
// uuid.NewRandomFromReader.
func (r *Rand) Read(p []byte) (int, error) {
	return r.ids.Read(p)
}

// ID returns a random UUID drawn from the identifier stream.
func (r *Rand) ID() string {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func Choice[T any](r *Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[r.RandInt(0, len(items)-1)], true
}

// Sample returns n distinct items, in random order.
func Sample[T any](r *Rand, items []T, n int) []T {
	pool := append([]T(nil), items...)
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		j := r.RandInt(0, len(pool)-1)
		out = append(out, pool[j])
		pool = append(pool[:j], pool[j+1:]...)
	}
	return out
}
