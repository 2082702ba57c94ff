package combat

import "math"

type AttrCode int

const (
	HullCapacity AttrCode = iota
	ShieldCapacity
	PowerCapacity
	PowerGeneration
	Maneuvrability
	Precision
	attrCount
)

var attrNames = [attrCount]string{
	"hull_capacity", "shield_capacity", "power_capacity", "power_generation",
	"maneuvrability", "precision",
}

func (a AttrCode) String() string {
	if a < 0 || a >= attrCount {
		return "unknown"
	}
	return attrNames[a]
}

func ParseAttr(s string) (AttrCode, bool) {
	for i, n := range attrNames {
		if n == s {
			return AttrCode(i), true
		}
	}
	return 0, false
}

type ValueCode int

const (
	Hull ValueCode = iota
	Shield
	Power
	valueCount
)

var valueNames = [valueCount]string{"hull", "shield", "power"}

func (v ValueCode) String() string {
	if v < 0 || v >= valueCount {
		return "unknown"
	}
	return valueNames[v]
}

func ParseValue(s string) (ValueCode, bool) {
	for i, n := range valueNames {
		if n == s {
			return ValueCode(i), true
		}
	}
	return 0, false
}

// Capacity is the attribute bounding a value.
func (v ValueCode) Capacity() AttrCode {
	switch v {
	case Hull:
		return HullCapacity
	case Shield:
		return ShieldCapacity
	default:
		return PowerCapacity
	}
}

// Attributes holds one integer per attribute code.
type Attributes [attrCount]int

func (a Attributes) Get(c AttrCode) int { return a[c] }

// attrPipeline accumulates modifiers before producing a fresh attribute set.
type attrPipeline struct {
	base     Attributes
	add      Attributes
	multiply Attributes
	limit    [attrCount]int
	limited  [attrCount]bool
}

func (p *attrPipeline) collect(e Effect) {
	switch eff := e.(type) {
	case *AttributeEffect:
		p.add[eff.Attr] += eff.Value
	case *AttributeMultiplyEffect:
		p.multiply[eff.Attr] += eff.Percent
	case *AttributeLimitEffect:
		if !p.limited[eff.Attr] || eff.Limit < p.limit[eff.Attr] {
			p.limit[eff.Attr] = eff.Limit
			p.limited[eff.Attr] = true
		}
	}
}

func (p *attrPipeline) result() Attributes {
	var out Attributes
	for i := range out {
		v := p.base[i] + p.add[i]
		if p.multiply[i] != 0 {
			v = int(math.Round(float64(v) * (1 + float64(p.multiply[i])/100)))
		}
		if p.limited[i] && p.limit[i] < v {
			v = p.limit[i]
		}
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}
