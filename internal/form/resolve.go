package form

import (
	"fmt"

	"github.com/jask/confirmform/internal/rules"
)

// Resolution is the confirmation chosen for one set of facts.
type Resolution struct {
	Value      string
	Alternate  bool
	Expression string
}

// Resolver picks the confirmation a saved configuration applies to a set of
// field values.
type Resolver struct {
	ev *rules.Evaluator
}

func NewResolver() (*Resolver, error) {
	ev, err := rules.NewEvaluator()
	if err != nil {
		return nil, err
	}
	return &Resolver{ev: ev}, nil
}

// Resolve returns the alternate confirmation when conditional logic is on
// and the conditions match facts, the default otherwise.
func (r *Resolver) Resolve(p Payload, facts map[string]string) (Resolution, error) {
	res := Resolution{Value: p.DefaultConfirmation}
	if !p.ConditionalLogicEnabled {
		return res, nil
	}

	set, err := p.RuleSet()
	if err != nil {
		return Resolution{}, err
	}
	prog, err := r.ev.Compile(set)
	if err != nil {
		return Resolution{}, fmt.Errorf("compile conditions: %w", err)
	}
	res.Expression = prog.Expression()

	matched, err := prog.Matches(facts)
	if err != nil {
		return Resolution{}, err
	}
	if matched && p.AlternateConfirmation != nil {
		res.Value = *p.AlternateConfirmation
		res.Alternate = true
	}
	return res, nil
}
