package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRuleSet(t *testing.T, rows ...ConditionRow) *RuleSet {
	t.Helper()
	s, err := NewRuleSet(rows...)
	require.NoError(t, err)
	return s
}

func TestExpression(t *testing.T) {
	assert.Equal(t, "false", Expression(&RuleSet{}))

	s := mustRuleSet(t,
		ConditionRow{FieldName: " country ", FieldValue: "US"},
		ConditionRow{Operator: OperatorOr, FieldName: "plan", FieldValue: "pro"},
	)
	assert.Equal(t,
		`("country" in facts && facts["country"] == "US") || ("plan" in facts && facts["plan"] == "pro")`,
		Expression(s))
}

func TestEvaluator_Matches(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	// country=US AND plan=pro OR vip=yes  ==  (country=US AND plan=pro) OR vip=yes
	s := mustRuleSet(t,
		ConditionRow{FieldName: "country", FieldValue: "US"},
		ConditionRow{Operator: OperatorAnd, FieldName: "plan", FieldValue: "pro"},
		ConditionRow{Operator: OperatorOr, FieldName: "vip", FieldValue: "yes"},
	)
	prog, err := ev.Compile(s)
	require.NoError(t, err)

	tests := []struct {
		name  string
		facts map[string]string
		want  bool
	}{
		{name: "all and rows", facts: map[string]string{"country": "US", "plan": "pro"}, want: true},
		{name: "or row alone", facts: map[string]string{"vip": "yes"}, want: true},
		{name: "partial and", facts: map[string]string{"country": "US", "plan": "free"}, want: false},
		{name: "missing fields", facts: map[string]string{}, want: false},
		{name: "case sensitive", facts: map[string]string{"country": "us", "plan": "pro"}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := prog.Matches(tc.facts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluator_QuotesValues(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	s := mustRuleSet(t, ConditionRow{FieldName: `a"b`, FieldValue: `x\y`})
	prog, err := ev.Compile(s)
	require.NoError(t, err)

	got, err := prog.Matches(map[string]string{`a"b`: `x\y`})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluator_EmptySetNeverMatches(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	prog, err := ev.Compile(&RuleSet{})
	require.NoError(t, err)

	got, err := prog.Matches(map[string]string{"country": "US"})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluator_NonASCIIValues(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	s := mustRuleSet(t, ConditionRow{FieldName: "ville", FieldValue: "Zürich ÿ"})
	prog, err := ev.Compile(s)
	require.NoError(t, err)

	got, err := prog.Matches(map[string]string{"ville": "Zürich ÿ"})
	require.NoError(t, err)
	assert.True(t, got)

	_, err = prog.Matches(map[string]string{"ville": "Z\xfcrich"})
	require.ErrorIs(t, err, ErrInvalidText)
}
