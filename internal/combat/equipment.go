package combat

type SlotType int

const (
	SlotHull SlotType = iota
	SlotShield
	SlotPower
	SlotEngine
	SlotWeapon
)

var slotNames = []string{"hull", "shield", "power", "engine", "weapon"}

func (t SlotType) String() string {
	if int(t) < 0 || int(t) >= len(slotNames) {
		return "unknown"
	}
	return slotNames[t]
}

func ParseSlot(s string) (SlotType, bool) {
	for i, n := range slotNames {
		if n == s {
			return SlotType(i), true
		}
	}
	return 0, false
}

// Cooldown counts uses until the equipment overheats, then the turns it needs to cool.
// Overheat 0 means unlimited uses.
type Cooldown struct {
	Uses     int
	Heat     int
	Overheat int
	Cooling  int
}

func (c *Cooldown) Configure(overheat, cooling int) {
	c.Overheat = overheat
	c.Cooling = max(1, cooling)
	c.Reset()
}

func (c *Cooldown) CanUse() bool { return c.Heat == 0 }

// WillOverheat reports whether the next use triggers overheat.
func (c *Cooldown) WillOverheat() bool {
	return c.Overheat > 0 && c.Uses+1 >= c.Overheat
}

func (c *Cooldown) Use() {
	if c.Overheat > 0 {
		c.Uses++
		if c.Uses >= c.Overheat {
			c.Heat = c.Cooling
		}
	}
}

// Cool runs once per owner turn end.
func (c *Cooldown) Cool() {
	if c.Heat > 0 {
		c.Heat--
	}
	if c.Heat == 0 {
		c.Uses = 0
	}
}

func (c *Cooldown) Reset() {
	c.Uses = 0
	c.Heat = 0
}

type Equipment struct {
	ID           string
	Code         string
	Name         string
	Slot         SlotType
	Level        int
	Price        int
	Requirements map[AttrCode]int
	// Effects are permanent while the equipment is attached.
	Effects  []Effect
	Action   *Action
	Wear     int
	Cooldown Cooldown
}

func NewEquipment(code string, slot SlotType) *Equipment {
	return &Equipment{ID: code, Code: code, Name: code, Slot: slot, Level: 1}
}

// SetAction binds a new action to the equipment.
func (e *Equipment) SetAction(name string, spec ActionSpec) *Action {
	e.Action = &Action{Code: spec.Kind() + "-" + e.Code, Name: name, Equipment: e, Spec: spec}
	return e.Action
}

func (e *Equipment) AddWear(n int) {
	if n > 0 {
		e.Wear += n
	}
}

// Value is the resale price, decreasing with wear.
func (e *Equipment) Value() int {
	return e.Price * 500 / (500 + e.Wear)
}

func (e *Equipment) CanBeEquipped(levels Attributes) bool {
	for attr, v := range e.Requirements {
		if levels[attr] < v {
			return false
		}
	}
	return true
}

// HasDamage reports whether the equipment action deals damage.
func (e *Equipment) HasDamage() bool {
	if e.Action == nil {
		return false
	}
	for _, eff := range e.Action.Effects() {
		switch x := eff.(type) {
		case *DamageEffect:
			return true
		case *StickyEffect:
			if _, ok := x.Base.(*DamageEffect); ok {
				return true
			}
		}
	}
	return false
}

// Slot is an equipment socket on a ship.
type Slot struct {
	Type     SlotType
	Attached *Equipment
}
