package combat

import (
	"fmt"
	"sort"

	"fleetsim/internal/config"
	"fleetsim/internal/util"
)

// Catalog builds equipment from yaml templates.
type Catalog struct {
	templates map[string]config.EquipmentTemplate
	order     []string
}

func NewCatalog(cfg *config.EquipmentConfig) (*Catalog, error) {
	c := &Catalog{templates: map[string]config.EquipmentTemplate{}}
	if cfg == nil {
		return c, nil
	}
	for _, t := range cfg.Equipment {
		if t.Code == "" {
			return nil, fmt.Errorf("equipment without code")
		}
		if _, dup := c.templates[t.Code]; dup {
			return nil, fmt.Errorf("duplicate equipment %q", t.Code)
		}
		c.templates[t.Code] = t
		c.order = append(c.order, t.Code)
		// validate once so New only fails on unknown codes
		if _, err := buildEquipment(t, nil); err != nil {
			return nil, fmt.Errorf("equipment %q: %w", t.Code, err)
		}
	}
	return c, nil
}

func (c *Catalog) Codes() []string { return append([]string(nil), c.order...) }

// New builds a fresh piece of equipment. Its ID is drawn from r when given.
func (c *Catalog) New(code string, r *util.Rand) (*Equipment, error) {
	t, ok := c.templates[code]
	if !ok {
		return nil, fmt.Errorf("unknown equipment %q", code)
	}
	return buildEquipment(t, r)
}

func buildEquipment(t config.EquipmentTemplate, r *util.Rand) (*Equipment, error) {
	slot, ok := ParseSlot(t.Slot)
	if !ok {
		return nil, fmt.Errorf("unknown slot %q", t.Slot)
	}
	eq := NewEquipment(t.Code, slot)
	if r != nil {
		eq.ID = r.ID()
	}
	if t.Name != "" {
		eq.Name = t.Name
	}
	eq.Price = t.Price
	if len(t.Requirements) > 0 {
		eq.Requirements = map[AttrCode]int{}
		for name, v := range t.Requirements {
			attr, ok := ParseAttr(name)
			if !ok {
				return nil, fmt.Errorf("unknown requirement %q", name)
			}
			eq.Requirements[attr] = v
		}
	}
	effects, err := buildEffects(t.Effects)
	if err != nil {
		return nil, err
	}
	eq.Effects = effects
	eq.Cooldown.Configure(t.Overheat, t.Cooling)
	if t.Action != nil {
		spec, err := buildActionSpec(*t.Action)
		if err != nil {
			return nil, err
		}
		name := t.Action.Name
		if name == "" {
			name = eq.Name
		}
		eq.SetAction(name, spec)
	}
	return eq, nil
}

func buildActionSpec(t config.ActionTemplate) (ActionSpec, error) {
	effects, err := buildEffects(t.Effects)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case "move":
		m := NewMoveSpec(t.DistancePerPower)
		if t.SafetyDistance > 0 {
			m.SafetyDistance = t.SafetyDistance
		}
		return m, nil
	case "trigger":
		return &TriggerSpec{Power: t.Power, RangeRadius: t.Range, Blast: t.Blast, Angle: t.Angle, Payload: effects}, nil
	case "toggle":
		return &ToggleSpec{Power: t.Power, Radius: t.Radius, Payload: effects}, nil
	case "drone":
		return &DroneSpec{Power: t.Power, DeployDistance: t.Range, Radius: t.Radius, Lifetime: t.Lifetime, Payload: effects}, nil
	}
	return nil, fmt.Errorf("unknown action kind %q", t.Kind)
}

func buildEffects(specs []config.EffectSpec) ([]Effect, error) {
	out := make([]Effect, 0, len(specs))
	for _, s := range specs {
		e, err := buildEffect(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func buildEffect(s config.EffectSpec) (Effect, error) {
	var e Effect
	switch s.Type {
	case "attr", "attrmult", "attrlimit":
		attr, ok := ParseAttr(s.Attr)
		if !ok {
			return nil, fmt.Errorf("unknown attribute %q", s.Attr)
		}
		switch s.Type {
		case "attr":
			e = &AttributeEffect{Attr: attr, Value: s.Amount}
		case "attrmult":
			e = &AttributeMultiplyEffect{Attr: attr, Percent: s.Amount}
		default:
			e = &AttributeLimitEffect{Attr: attr, Limit: s.Amount}
		}
	case "damage":
		e = &DamageEffect{Base: s.Base, Span: s.Span}
	case "damagemod":
		e = &DamageModifierEffect{Percent: s.Amount}
	case "value", "valuetransfer":
		v, ok := ParseValue(s.Resource)
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", s.Resource)
		}
		if s.Type == "value" {
			e = &ValueEffect{Value: v, Delta: s.Amount}
		} else {
			e = &ValueTransferEffect{Value: v, Amount: s.Amount}
		}
	default:
		return nil, fmt.Errorf("unknown effect type %q", s.Type)
	}
	if s.Duration > 0 {
		e = &StickyEffect{Base: e, Duration: s.Duration, OnStick: s.OnStick, OnTurnEnd: s.OnTurnEnd}
	}
	return e, nil
}

// ShipFactory builds a fully equipped ship of one model.
type ShipFactory func(id string, r *util.Rand) *Ship

// Registry maps model codes to factories.
type Registry struct {
	factories map[string]ShipFactory
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry() *Registry {
	reg := &Registry{factories: map[string]ShipFactory{}}
	reg.Register("scout", newScout)
	reg.Register("breaker", newBreaker)
	reg.Register("carrier", newCarrier)
	return reg
}

func (reg *Registry) Register(code string, f ShipFactory) {
	reg.factories[code] = f
}

func (reg *Registry) Has(code string) bool {
	_, ok := reg.factories[code]
	return ok
}

func (reg *Registry) Codes() []string {
	out := make([]string, 0, len(reg.factories))
	for code := range reg.factories {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (reg *Registry) Build(code, id string, r *util.Rand) (*Ship, error) {
	f, ok := reg.factories[code]
	if !ok {
		return nil, fmt.Errorf("unknown ship model %q", code)
	}
	s := f(id, r)
	s.Model = code
	return s, nil
}

// RegisterModels adds the yaml models, equipped from the catalog.
func RegisterModels(reg *Registry, cfg *config.ModelsConfig, cat *Catalog) error {
	if cfg == nil {
		return nil
	}
	for _, m := range cfg.Models {
		var levels Attributes
		for name, v := range m.Levels {
			attr, ok := ParseAttr(name)
			if !ok {
				return fmt.Errorf("model %q: unknown attribute %q", m.Code, name)
			}
			levels[attr] = v
		}
		var slots []SlotType
		for _, name := range m.Slots {
			t, ok := ParseSlot(name)
			if !ok {
				return fmt.Errorf("model %q: unknown slot %q", m.Code, name)
			}
			slots = append(slots, t)
		}
		for _, code := range m.Equipment {
			if _, ok := cat.templates[code]; !ok {
				return fmt.Errorf("model %q: unknown equipment %q", m.Code, code)
			}
		}
		tpl := m
		reg.Register(m.Code, func(id string, r *util.Rand) *Ship {
			name := tpl.Name
			if name == "" {
				name = tpl.Code
			}
			s := NewShip(id, name)
			s.Levels = levels
			s.CargoSpace = tpl.Cargo
			for _, t := range slots {
				s.AddSlot(t)
			}
			for _, code := range tpl.Equipment {
				if eq, err := cat.New(code, r); err == nil {
					s.Install(eq)
				}
			}
			s.UpdateAttributes()
			return s
		})
	}
	return nil
}

func withAttr(code string, slot SlotType, effects ...Effect) *Equipment {
	eq := NewEquipment(code, slot)
	eq.Effects = effects
	eq.Price = 100
	return eq
}

func newHull(code string, hull int) *Equipment {
	return withAttr(code, SlotHull, &AttributeEffect{Attr: HullCapacity, Value: hull})
}

func newShieldGenerator(code string, shield int) *Equipment {
	return withAttr(code, SlotShield, &AttributeEffect{Attr: ShieldCapacity, Value: shield})
}

func newReactor(code string, capacity, generation int) *Equipment {
	return withAttr(code, SlotPower,
		&AttributeEffect{Attr: PowerCapacity, Value: capacity},
		&AttributeEffect{Attr: PowerGeneration, Value: generation})
}

func newEngine(code string, distancePerPower float64) *Equipment {
	eq := withAttr(code, SlotEngine, &AttributeEffect{Attr: Maneuvrability, Value: 1})
	eq.SetAction("Engine", NewMoveSpec(distancePerPower))
	return eq
}

func newWeapon(code string, spec *TriggerSpec, overheat, cooling int) *Equipment {
	eq := NewEquipment(code, SlotWeapon)
	eq.Price = 150
	eq.SetAction(code, spec)
	eq.Cooldown.Configure(overheat, cooling)
	return eq
}

func assemble(id, name string, levels Attributes, items ...*Equipment) *Ship {
	s := NewShip(id, name)
	s.Levels = levels
	s.CargoSpace = 3
	for _, eq := range items {
		s.AddSlot(eq.Slot)
		s.Install(eq)
	}
	return s
}

func newScout(id string, _ *util.Rand) *Ship {
	var lv Attributes
	lv[Maneuvrability] = 4
	lv[Precision] = 2
	return assemble(id, "Scout", lv,
		newHull("light-hull", 80),
		newShieldGenerator("force-field", 40),
		newReactor("fission-reactor", 8, 5),
		newEngine("rocket-engine", 120),
		newWeapon("gatling", &TriggerSpec{
			Power: 3, RangeRadius: 450,
			Payload: []Effect{&DamageEffect{Base: 18, Span: 8}},
		}, 2, 1),
	)
}

func newBreaker(id string, _ *util.Rand) *Ship {
	var lv Attributes
	lv[Maneuvrability] = 2
	lv[Precision] = 3
	return assemble(id, "Breaker", lv,
		newHull("heavy-hull", 140),
		newShieldGenerator("deflector", 60),
		newReactor("fusion-reactor", 10, 6),
		newEngine("ion-engine", 90),
		newWeapon("missile-launcher", &TriggerSpec{
			Power: 4, RangeRadius: 600, Blast: 100,
			Payload: []Effect{&DamageEffect{Base: 22, Span: 10}},
		}, 1, 2),
		newWeapon("flak-cone", &TriggerSpec{
			Power: 3, RangeRadius: 300, Angle: 60,
			Payload: []Effect{&DamageEffect{Base: 14, Span: 6}},
		}, 2, 1),
	)
}

func newCarrier(id string, _ *util.Rand) *Ship {
	var lv Attributes
	lv[Maneuvrability] = 1
	lv[Precision] = 2
	bay := NewEquipment("repair-drone-bay", SlotWeapon)
	bay.Price = 200
	bay.SetAction("Deploy shield drone", &DroneSpec{
		Power: 3, DeployDistance: 300, Radius: 150, Lifetime: 2,
		Payload: []Effect{&DamageModifierEffect{Percent: -25}},
	})
	aura := NewEquipment("power-siphon", SlotWeapon)
	aura.Price = 200
	aura.SetAction("Siphon", &TriggerSpec{
		Power: 2, RangeRadius: 350,
		Payload: []Effect{
			&ValueTransferEffect{Value: Power, Amount: -2},
			&StickyEffect{Base: &AttributeEffect{Attr: Maneuvrability, Value: -1}, Duration: 2},
		},
	})
	shield := NewEquipment("shield-aura", SlotShield)
	shield.Price = 180
	shield.Effects = []Effect{&AttributeEffect{Attr: ShieldCapacity, Value: 30}}
	shield.SetAction("Shield aura", &ToggleSpec{
		Power: 2, Radius: 200,
		Payload: []Effect{&AttributeEffect{Attr: ShieldCapacity, Value: 20}},
	})
	return assemble(id, "Carrier", lv,
		newHull("carrier-hull", 170),
		shield,
		newReactor("fusion-reactor", 10, 6),
		newEngine("ion-engine", 80),
		newWeapon("laser", &TriggerSpec{
			Power: 4, RangeRadius: 500,
			Payload: []Effect{&DamageEffect{Base: 20, Span: 12}},
		}, 2, 2),
		bay,
		aura,
	)
}
