package form

import (
	"fmt"
	"strings"

	"github.com/jask/confirmform/internal/rules"
)

// ErrorTitle heads the rendered error list.
const ErrorTitle = "Please fix the following errors:"

type Kind string

const (
	MissingRequiredField    Kind = "missing_required_field"
	EmptyRuleSetWhenEnabled Kind = "empty_rule_set_when_enabled"
	DuplicateCondition      Kind = "duplicate_condition"
)

// Field identifies the input an issue flags.
type Field string

const (
	FieldDefault    Field = "default"
	FieldAlternate  Field = "alternate"
	FieldConditions Field = "conditions"
)

// RowField is the Field for a single condition row.
func RowField(id string) Field {
	return Field("condition:" + id)
}

type Issue struct {
	Kind    Kind
	Message string
	Field   Field
}

// ValidationError carries every issue found by one save attempt, in the
// order the checks ran.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s): %s", len(e.Issues), strings.Join(e.Messages(), "; "))
}

func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		out = append(out, is.Message)
	}
	return out
}

// Count returns the number of issues of the given kind.
func (e *ValidationError) Count(k Kind) int {
	n := 0
	for _, is := range e.Issues {
		if is.Kind == k {
			n++
		}
	}
	return n
}

func validate(st state) []Issue {
	var issues []Issue

	if rules.Trim(st.defaultVal) == "" {
		issues = append(issues, Issue{
			Kind:    MissingRequiredField,
			Message: "Default confirmation is required",
			Field:   FieldDefault,
		})
	}

	if !st.conditional {
		return issues
	}

	if len(st.rows) == 0 {
		issues = append(issues, Issue{
			Kind:    EmptyRuleSetWhenEnabled,
			Message: "At least one condition is required when conditional logic is enabled",
			Field:   FieldConditions,
		})
	}

	for i, r := range st.rows {
		if !r.Complete() {
			issues = append(issues, Issue{
				Kind:    MissingRequiredField,
				Message: fmt.Sprintf("Condition %d: Both field name and value are required", i+1),
				Field:   RowField(r.ID),
			})
		}
	}

	if rules.Trim(st.alternate) == "" {
		issues = append(issues, Issue{
			Kind:    MissingRequiredField,
			Message: "Alternate confirmation URL is required when conditional logic is enabled",
			Field:   FieldAlternate,
		})
	}

	issues = append(issues, duplicates(st.rows)...)
	return issues
}

// duplicates reports one issue per row whose trimmed (name, value) pair was
// already seen. Comparison is exact after trimming, case is significant.
func duplicates(rows []rules.ConditionRow) []Issue {
	type pair struct{ name, value string }
	seen := make(map[pair]bool, len(rows))
	var issues []Issue
	for _, r := range rows {
		name, value := r.Trimmed()
		p := pair{name, value}
		if seen[p] {
			issues = append(issues, Issue{
				Kind:    DuplicateCondition,
				Message: "Duplicate conditions detected",
				Field:   RowField(r.ID),
			})
			continue
		}
		seen[p] = true
	}
	return issues
}
