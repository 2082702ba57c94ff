package config

type EquipmentConfig struct {
	Equipment []EquipmentTemplate `yaml:"equipment"`
}

type EquipmentTemplate struct {
	Code         string          `yaml:"code"`
	Name         string          `yaml:"name"`
	Slot         string          `yaml:"slot"`
	Price        int             `yaml:"price"`
	Requirements map[string]int  `yaml:"requirements"`
	Effects      []EffectSpec    `yaml:"effects"`
	Action       *ActionTemplate `yaml:"action"`
	Overheat     int             `yaml:"overheat"`
	Cooling      int             `yaml:"cooling"`
}

// ActionTemplate describes the action an equipment provides. Kind is one of move, trigger,
// toggle or drone; unused parameters are ignored.
type ActionTemplate struct {
	Kind             string       `yaml:"kind"`
	Name             string       `yaml:"name"`
	Power            int          `yaml:"power"`
	Range            float64      `yaml:"range"`
	Blast            float64      `yaml:"blast"`
	Angle            float64      `yaml:"angle"`
	Radius           float64      `yaml:"radius"`
	Lifetime         int          `yaml:"lifetime"`
	DistancePerPower float64      `yaml:"distance_per_power"`
	SafetyDistance   float64      `yaml:"safety_distance"`
	Effects          []EffectSpec `yaml:"effects"`
}

// EffectSpec describes one effect. A positive duration makes it sticky.
type EffectSpec struct {
	Type      string `yaml:"type"`
	Attr      string `yaml:"attr"`
	Resource  string `yaml:"resource"`
	Amount    int    `yaml:"amount"`
	Base      int    `yaml:"base"`
	Span      int    `yaml:"span"`
	Duration  int    `yaml:"duration"`
	OnStick   bool   `yaml:"on_stick"`
	OnTurnEnd bool   `yaml:"on_turn_end"`
}
