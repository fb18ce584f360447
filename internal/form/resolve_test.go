package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/confirmform/internal/rules"
)

func TestResolver_Resolve(t *testing.T) {
	r, err := NewResolver()
	require.NoError(t, err)

	or := rules.OperatorOr
	p := Payload{
		ConfirmationTarget:      TargetRedirect,
		DefaultConfirmation:     "https://example.com",
		ConditionalLogicEnabled: true,
		Conditions: []Condition{
			{FieldName: "country", FieldValue: "US"},
			{Operator: &or, FieldName: "country", FieldValue: "CA"},
		},
		AlternateConfirmation: strPtr("https://na.example.com"),
	}

	res, err := r.Resolve(p, map[string]string{"country": "CA"})
	require.NoError(t, err)
	assert.True(t, res.Alternate)
	assert.Equal(t, "https://na.example.com", res.Value)
	assert.NotEmpty(t, res.Expression)

	res, err = r.Resolve(p, map[string]string{"country": "DE"})
	require.NoError(t, err)
	assert.False(t, res.Alternate)
	assert.Equal(t, "https://example.com", res.Value)
}

func TestResolver_DisabledUsesDefault(t *testing.T) {
	r, err := NewResolver()
	require.NoError(t, err)

	p := Payload{
		DefaultConfirmation: "https://example.com",
		Conditions:          []Condition{{FieldName: "country", FieldValue: "US"}},
	}
	res, err := r.Resolve(p, map[string]string{"country": "US"})
	require.NoError(t, err)
	assert.False(t, res.Alternate)
	assert.Equal(t, "https://example.com", res.Value)
	assert.Empty(t, res.Expression)
}
