package config

type ModelsConfig struct {
	Models []ModelTemplate `yaml:"models"`
}

type ModelTemplate struct {
	Code      string         `yaml:"code"`
	Name      string         `yaml:"name"`
	Levels    map[string]int `yaml:"levels"`
	Slots     []string       `yaml:"slots"`
	Cargo     int            `yaml:"cargo"`
	Equipment []string       `yaml:"equipment"`
}
