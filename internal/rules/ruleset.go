package rules

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxConditions is the hard cap on rows in a RuleSet.
const MaxConditions = 10

var (
	ErrCapacityExceeded = fmt.Errorf("maximum %d conditions allowed", MaxConditions)
	ErrRowNotFound      = errors.New("condition not found")
	ErrFirstRowOperator = errors.New("the first condition has no operator")
	ErrUnknownOperator  = errors.New("unknown operator")
	ErrInvalidText      = errors.New("text is not valid UTF-8")
)

// Operator joins a row to the row before it.
type Operator string

const (
	OperatorNone Operator = ""
	OperatorAnd  Operator = "and"
	OperatorOr   Operator = "or"
)

// ParseOperator accepts "and", "or" (any case) and the empty string.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return OperatorNone, nil
	case "and":
		return OperatorAnd, nil
	case "or":
		return OperatorOr, nil
	default:
		return OperatorNone, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}
}

// Label is the upper-case form shown in selectors.
func (o Operator) Label() string {
	return strings.ToUpper(string(o))
}

// Toggle flips between AND and OR.
func (o Operator) Toggle() Operator {
	if o == OperatorOr {
		return OperatorAnd
	}
	return OperatorOr
}

// ConditionRow is one fieldName = fieldValue predicate.
type ConditionRow struct {
	ID         string
	Operator   Operator
	FieldName  string
	FieldValue string
}

// Trim strips leading and trailing white space, byte order marks included.
// Browsers drop U+FEFF when trimming input values and so does the form.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

// Trimmed returns the trimmed field name and value.
func (r ConditionRow) Trimmed() (string, string) {
	return Trim(r.FieldName), Trim(r.FieldValue)
}

// Incomplete reports a partial entry: exactly one of name and value is set.
func (r ConditionRow) Incomplete() bool {
	name, value := r.Trimmed()
	return (name == "") != (value == "")
}

// Complete reports whether both name and value are set.
func (r ConditionRow) Complete() bool {
	name, value := r.Trimmed()
	return name != "" && value != ""
}

// RuleSet is the ordered list of condition rows. The head row never carries
// an operator and every other row always does; each mutation restores that.
// The zero value is an empty set ready to use.
type RuleSet struct {
	rows []ConditionRow
}

// NewRuleSet builds a set from rows, assigning IDs where missing. It fails
// with ErrCapacityExceeded beyond MaxConditions and with ErrInvalidText when
// a name or value is not valid UTF-8.
func NewRuleSet(rows ...ConditionRow) (*RuleSet, error) {
	if len(rows) > MaxConditions {
		return nil, ErrCapacityExceeded
	}
	s := &RuleSet{rows: make([]ConditionRow, 0, len(rows))}
	for i, r := range rows {
		if err := checkText(r.FieldName, r.FieldValue); err != nil {
			return nil, fmt.Errorf("condition %d: %w", i+1, err)
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.rows = append(s.rows, r)
	}
	s.normalize()
	return s, nil
}

func (s *RuleSet) Len() int {
	return len(s.rows)
}

func (s *RuleSet) Empty() bool {
	return len(s.rows) == 0
}

func (s *RuleSet) Full() bool {
	return len(s.rows) >= MaxConditions
}

// Rows returns a copy of the rows in order.
func (s *RuleSet) Rows() []ConditionRow {
	out := make([]ConditionRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Index returns the position of the row with the given ID, or -1.
func (s *RuleSet) Index(id string) int {
	for i, r := range s.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Add appends an empty row. The first row gets no operator, later rows AND.
func (s *RuleSet) Add() (ConditionRow, error) {
	if s.Full() {
		return ConditionRow{}, ErrCapacityExceeded
	}
	row := ConditionRow{ID: uuid.NewString()}
	if len(s.rows) > 0 {
		row.Operator = OperatorAnd
	}
	s.rows = append(s.rows, row)
	return row, nil
}

// Remove deletes the row with the given ID. If the head row goes, the new
// head loses its operator.
func (s *RuleSet) Remove(id string) error {
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	s.normalize()
	return nil
}

// Removable reports whether the row at index i shows a remove affordance.
func (s *RuleSet) Removable(i int) bool {
	return i > 0 && i < len(s.rows)
}

func (s *RuleSet) SetOperator(id string, op Operator) error {
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	if i == 0 {
		if op == OperatorNone {
			return nil
		}
		return ErrFirstRowOperator
	}
	if op != OperatorAnd && op != OperatorOr {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}
	s.rows[i].Operator = op
	return nil
}

func (s *RuleSet) SetFieldName(id, name string) error {
	if err := checkText(name); err != nil {
		return err
	}
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	s.rows[i].FieldName = name
	return nil
}

func (s *RuleSet) SetFieldValue(id, value string) error {
	if err := checkText(value); err != nil {
		return err
	}
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	s.rows[i].FieldValue = value
	return nil
}

// checkText rejects strings that cannot be quoted into an expression
// byte for byte.
func checkText(ss ...string) error {
	for _, s := range ss {
		if !utf8.ValidString(s) {
			return fmt.Errorf("%w: %q", ErrInvalidText, s)
		}
	}
	return nil
}

func (s *RuleSet) normalize() {
	for i := range s.rows {
		switch {
		case i == 0:
			s.rows[i].Operator = OperatorNone
		case s.rows[i].Operator == OperatorNone:
			s.rows[i].Operator = OperatorAnd
		}
	}
}
