package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
)

// factsVar is the CEL variable holding the field values being matched.
const factsVar = "facts"

// costLimit bounds evaluation; ten equality checks sit far below it.
const costLimit = 10000

// Expression renders the set as a CEL boolean expression over the facts map.
// Rows are joined by their operators with CEL precedence, so AND binds
// tighter than OR. An empty set never matches.
func Expression(s *RuleSet) string {
	if s == nil || s.Empty() {
		return "false"
	}
	var b strings.Builder
	for i, r := range s.rows {
		if i > 0 {
			switch r.Operator {
			case OperatorOr:
				b.WriteString(" || ")
			default:
				b.WriteString(" && ")
			}
		}
		name, value := r.Trimmed()
		fmt.Fprintf(&b, "(%s in %s && %s[%s] == %s)",
			strconv.Quote(name), factsVar, factsVar, strconv.Quote(name), strconv.Quote(value))
	}
	return b.String()
}

// Evaluator compiles rule sets into CEL programs.
type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(factsVar, cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Program is a compiled rule set.
type Program struct {
	expression string
	prog       cel.Program
}

func (e *Evaluator) Compile(s *RuleSet) (*Program, error) {
	expr := Expression(s)
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := e.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return &Program{expression: expr, prog: prog}, nil
}

func (p *Program) Expression() string {
	return p.expression
}

// Matches evaluates the program against facts. Non-boolean results count as
// no match. Facts that are not valid UTF-8 are rejected with ErrInvalidText.
func (p *Program) Matches(facts map[string]string) (bool, error) {
	in := make(map[string]any, len(facts))
	for k, v := range facts {
		if err := checkText(k, v); err != nil {
			return false, fmt.Errorf("fact %q: %w", k, err)
		}
		in[k] = v
	}
	out, _, err := p.prog.Eval(map[string]any{factsVar: in})
	if err != nil {
		return false, fmt.Errorf("evaluate: %w", err)
	}
	matched, _ := out.Value().(bool)
	return matched, nil
}
