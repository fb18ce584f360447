package form

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jask/confirmform/internal/json"
	loglib "github.com/jask/confirmform/internal/log"
	"github.com/jask/confirmform/internal/rules"
)

var ErrInvalidDocument = errors.New("invalid form document")

// Payload is the saved configuration. The same shape is accepted as an input
// document.
type Payload struct {
	ConfirmationTarget      TargetType  `json:"confirmationTarget" yaml:"confirmationTarget"`
	DefaultConfirmation     string      `json:"defaultConfirmation" yaml:"defaultConfirmation"`
	ConditionalLogicEnabled bool        `json:"conditionalLogicEnabled" yaml:"conditionalLogicEnabled"`
	Conditions              []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	AlternateConfirmation   *string     `json:"alternateConfirmation,omitempty" yaml:"alternateConfirmation,omitempty"`
}

// Condition is one serialized row. Operator is null for the first row.
type Condition struct {
	Operator   *rules.Operator `json:"operator" yaml:"operator"`
	FieldName  string          `json:"fieldName" yaml:"fieldName"`
	FieldValue string          `json:"fieldValue" yaml:"fieldValue"`
}

func serialize(st state) Payload {
	p := Payload{
		ConfirmationTarget:      st.target,
		DefaultConfirmation:     st.defaultVal,
		ConditionalLogicEnabled: st.conditional,
	}
	if !st.conditional {
		return p
	}

	p.Conditions = make([]Condition, 0, len(st.rows))
	for i, r := range st.rows {
		name, value := r.Trimmed()
		c := Condition{FieldName: name, FieldValue: value}
		if i > 0 {
			op := r.Operator
			if op == rules.OperatorNone {
				op = rules.OperatorAnd
			}
			c.Operator = &op
		}
		p.Conditions = append(p.Conditions, c)
	}
	alt := st.alternate
	p.AlternateConfirmation = &alt
	return p
}

// RuleSet rebuilds the rule set described by the payload conditions.
func (p Payload) RuleSet() (*rules.RuleSet, error) {
	rows := make([]rules.ConditionRow, 0, len(p.Conditions))
	for i, c := range p.Conditions {
		row := rules.ConditionRow{FieldName: c.FieldName, FieldValue: c.FieldValue}
		if c.Operator != nil {
			op, err := rules.ParseOperator(string(*c.Operator))
			if err != nil {
				return nil, fmt.Errorf("condition %d: %w", i+1, err)
			}
			row.Operator = op
		}
		rows = append(rows, row)
	}
	return rules.NewRuleSet(rows...)
}

// Load replaces the form state with the document. The document is taken as
// given: an enabled form with no conditions stays empty so validation can
// report it.
func (f *Form) Load(p Payload) error {
	target := TargetRedirect
	if p.ConfirmationTarget != "" {
		t, err := ParseTargetType(string(p.ConfirmationTarget))
		if err != nil {
			return err
		}
		target = t
	}
	set, err := p.RuleSet()
	if err != nil {
		return err
	}

	f.target = target
	f.defaultVal = p.DefaultConfirmation
	f.conditional = p.ConditionalLogicEnabled
	f.alternate = ""
	if p.AlternateConfirmation != nil {
		f.alternate = *p.AlternateConfirmation
	}
	f.rules = set
	f.notice = nil
	f.errors = nil
	f.rowFlags = map[string]bool{}
	f.fieldFlags = map[Field]bool{}
	f.validateRows()
	f.logger.Debug("form loaded", loglib.Fields{"target": string(target), "rows": set.Len()})
	return nil
}

// DecodeDocument reads a YAML or JSON form document. A document starting
// with '{' is decoded as JSON. Unknown keys are rejected in both forms.
func DecodeDocument(r io.Reader) (Payload, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("read document: %w", err)
	}

	var p Payload
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return Payload{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return p, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Payload{}, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return p, nil
}

func ReadDocument(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return Payload{}, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return DecodeDocument(f)
}

// String renders the payload for status lines.
func (p Payload) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s", p.ConfirmationTarget, p.DefaultConfirmation)
	if p.ConditionalLogicEnabled && p.AlternateConfirmation != nil {
		fmt.Fprintf(&b, " (alternate %s when %d condition(s) match)", *p.AlternateConfirmation, len(p.Conditions))
	}
	return b.String()
}
