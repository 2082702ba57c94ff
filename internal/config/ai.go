package config

type AIConfig struct {
	// Weights per scoring axis: turn_cost, enemy_damage, clustering, position, overheat and
	// active_effects.
	Weights map[string]float64 `yaml:"weights"`
	// Formula overrides the weighted sum; it sees every axis and weight by name.
	Formula         string `yaml:"formula"`
	ManeuverDelayMS int    `yaml:"maneuver_delay_ms"`
	RandomMoves     int    `yaml:"random_moves"`
	MaxTurns        int    `yaml:"max_turns"`
}

func DefaultAI() *AIConfig {
	return &AIConfig{
		Weights: map[string]float64{
			"turn_cost":      1,
			"enemy_damage":   5,
			"clustering":     1,
			"position":       1,
			"overheat":       3,
			"active_effects": 3,
		},
		ManeuverDelayMS: 1500,
		RandomMoves:     40,
		MaxTurns:        50,
	}
}
