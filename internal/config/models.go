package config

// ModelsConfig declares the synthesis candidate-model chain.
type ModelsConfig struct {
	Synthesis SynthesisConfig `yaml:"synthesis"`
}

type SynthesisConfig struct {
	Provider  string   `yaml:"provider"`
	Primary   string   `yaml:"primary"`
	Fallbacks []string `yaml:"fallbacks"`
	MaxRepair int      `yaml:"max_repair"`
}

// Chain returns the candidate models in attempt order: primary first, then
// each fallback.
func (s SynthesisConfig) Chain() []string {
	chain := make([]string, 0, 1+len(s.Fallbacks))
	if s.Primary != "" {
		chain = append(chain, s.Primary)
	}
	chain = append(chain, s.Fallbacks...)
	return chain
}
