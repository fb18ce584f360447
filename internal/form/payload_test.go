package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/confirmform/internal/rules"
)

const yamlDocument = `
confirmationTarget: modal
defaultConfirmation: thanks.html
conditionalLogicEnabled: true
conditions:
  - operator: null
    fieldName: country
    fieldValue: US
  - operator: or
    fieldName: plan
    fieldValue: pro
alternateConfirmation: thanks-us.html
`

func TestDecodeDocument_YAML(t *testing.T) {
	p, err := DecodeDocument(strings.NewReader(yamlDocument))
	require.NoError(t, err)

	assert.Equal(t, TargetModal, p.ConfirmationTarget)
	require.Len(t, p.Conditions, 2)
	assert.Nil(t, p.Conditions[0].Operator)
	require.NotNil(t, p.Conditions[1].Operator)
	assert.Equal(t, rules.OperatorOr, *p.Conditions[1].Operator)
	require.NotNil(t, p.AlternateConfirmation)
	assert.Equal(t, "thanks-us.html", *p.AlternateConfirmation)
}

func TestDecodeDocument_JSON(t *testing.T) {
	doc := `{"confirmationTarget":"redirect","defaultConfirmation":"https://example.com","conditionalLogicEnabled":false}`
	p, err := DecodeDocument(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", p.DefaultConfirmation)
	assert.False(t, p.ConditionalLogicEnabled)
}

func TestDecodeDocument_Errors(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader(""))
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = DecodeDocument(strings.NewReader("confirmationTarget: redirect\nunknownKey: 1\n"))
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = DecodeDocument(strings.NewReader(`{"confirmationTarget":"redirect","unknownKey":1}`))
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = DecodeDocument(strings.NewReader(`{"confirmationTarget":`))
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestDecodeDocument_JSONNullOperator(t *testing.T) {
	doc := ` {"confirmationTarget":"modal","defaultConfirmation":"x","conditionalLogicEnabled":true,
  "conditions":[{"operator":null,"fieldName":"country","fieldValue":"US"},{"operator":"or","fieldName":"plan","fieldValue":"pro"}],
  "alternateConfirmation":"y"}`
	p, err := DecodeDocument(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, p.Conditions, 2)
	assert.Nil(t, p.Conditions[0].Operator)
	assert.Equal(t, opPtr(rules.OperatorOr), p.Conditions[1].Operator)
}

func TestForm_LoadRoundTrip(t *testing.T) {
	p, err := DecodeDocument(strings.NewReader(yamlDocument))
	require.NoError(t, err)

	f := New(Options{})
	require.NoError(t, f.Load(p))
	assert.Equal(t, TargetModal, f.Target())
	assert.True(t, f.Conditional())
	assert.Equal(t, 2, f.RuleCount())

	saved, err := f.Save()
	require.NoError(t, err)
	assert.Equal(t, p, saved)
}

func TestForm_LoadRejects(t *testing.T) {
	f := New(Options{})

	err := f.Load(Payload{ConfirmationTarget: "dowload"})
	require.ErrorIs(t, err, ErrUnknownTarget)

	bad := rules.Operator("xor")
	err = f.Load(Payload{Conditions: []Condition{{}, {Operator: &bad}}})
	require.ErrorIs(t, err, rules.ErrUnknownOperator)

	err = f.Load(Payload{Conditions: make([]Condition, rules.MaxConditions+1)})
	require.ErrorIs(t, err, rules.ErrCapacityExceeded)

	err = f.Load(Payload{Conditions: []Condition{{FieldName: "country", FieldValue: "\xff"}}})
	require.ErrorIs(t, err, rules.ErrInvalidText)
}
