package tableau

// Definition is the YAML form of a user supplied tableau.
type Definition struct {
	Name    string      `yaml:"name"`
	Order   int         `yaml:"order"`
	Nodes   []float64   `yaml:"nodes"`
	Weights []float64   `yaml:"weights"`
	Matrix  [][]float64 `yaml:"matrix"`
}

func (d Definition) Build() (Tableau, error) {
	return New(d.Name, d.Order, d.Nodes, d.Weights, d.Matrix)
}

func (t Tableau) Definition() Definition {
	return Definition{
		Name:    t.name,
		Order:   t.order,
		Nodes:   t.Nodes(),
		Weights: t.Weights(),
		Matrix:  t.Matrix(),
	}
}
