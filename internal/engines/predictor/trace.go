package predictor

import "github.com/opencouncildata/forecast/pkg/core"

// trace accumulates the ordered methodology steps of one prediction.
type trace struct {
	steps []core.MethodologyStep
}

func (t *trace) add(name, description string, data map[string]float64, factors ...string) {
	t.steps = append(t.steps, core.MethodologyStep{
		Number:      len(t.steps) + 1,
		Name:        name,
		Description: description,
		Data:        data,
		Factors:     factors,
	})
}
