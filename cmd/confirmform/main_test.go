package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/confirmform/internal/form"
	"github.com/jask/confirmform/internal/json"
)

const validDoc = `
confirmationTarget: redirect
defaultConfirmation: https://example.com/thanks
conditionalLogicEnabled: true
conditions:
  - operator: null
    fieldName: " country "
    fieldValue: US
  - operator: or
    fieldName: plan
    fieldValue: pro
alternateConfirmation: https://example.com/vip
`

const invalidDoc = `
confirmationTarget: modal
defaultConfirmation: ""
conditionalLogicEnabled: true
conditions:
  - fieldName: country
    fieldValue: US
  - operator: and
    fieldName: country
    fieldValue: " US "
  - operator: and
    fieldName: plan
    fieldValue: ""
`

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CONFIRMFORM_CONFIG", "")
	t.Setenv("CONFIRMFORM_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := Prepare()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateValidDocumentJSON(t *testing.T) {
	out, err := run(t, "validate", "-f", writeDoc(t, validDoc), "--json")
	require.NoError(t, err)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.True(t, report.Valid)
	require.NotNil(t, report.Payload)

	p := report.Payload
	assert.Equal(t, form.TargetRedirect, p.ConfirmationTarget)
	require.Len(t, p.Conditions, 2)
	assert.Nil(t, p.Conditions[0].Operator)
	assert.Equal(t, "country", p.Conditions[0].FieldName)
	require.NotNil(t, p.Conditions[1].Operator)
	assert.Equal(t, "or", string(*p.Conditions[1].Operator))
	require.NotNil(t, p.AlternateConfirmation)
	assert.Equal(t, "https://example.com/vip", *p.AlternateConfirmation)
}

func TestValidateInvalidDocumentListsErrorsInOrder(t *testing.T) {
	out, err := run(t, "validate", "-f", writeDoc(t, invalidDoc), "--json")
	require.ErrorIs(t, err, errInvalidForm)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Nil(t, report.Payload)

	msgs := make([]string, 0, len(report.Errors))
	for _, e := range report.Errors {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"Default confirmation is required",
		"Condition 3: Both field name and value are required",
		"Alternate confirmation URL is required when conditional logic is enabled",
		"Duplicate conditions detected",
	}, msgs)
	assert.Equal(t, form.DuplicateCondition, report.Errors[3].Kind)
}

func TestValidateRequiresFile(t *testing.T) {
	_, err := run(t, "validate")
	require.Error(t, err)
}

func TestValidateRejectsUnknownTarget(t *testing.T) {
	_, err := run(t, "validate", "-f", writeDoc(t, "confirmationTarget: redirct\ndefaultConfirmation: x\n"))
	require.ErrorIs(t, err, form.ErrUnknownTarget)
}

func TestResolve(t *testing.T) {
	path := writeDoc(t, validDoc)

	tests := []struct {
		name      string
		facts     []string
		wantValue string
		wantAlt   bool
	}{
		{name: "country matches", facts: []string{"country=US"}, wantValue: "https://example.com/vip", wantAlt: true},
		{name: "plan matches", facts: []string{"plan=pro"}, wantValue: "https://example.com/vip", wantAlt: true},
		{name: "no match", facts: []string{"country=DE", "plan=free"}, wantValue: "https://example.com/thanks"},
		{name: "no facts", wantValue: "https://example.com/thanks"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := []string{"resolve", "-f", path, "--json"}
			for _, f := range tc.facts {
				args = append(args, "--fact", f)
			}
			out, err := run(t, args...)
			require.NoError(t, err)

			var got resolutionReport
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tc.wantValue, got.Value)
			assert.Equal(t, tc.wantAlt, got.Alternate)
			assert.NotEmpty(t, got.Expression)
		})
	}
}

func TestResolvePlainOutput(t *testing.T) {
	out, err := run(t, "resolve", "-f", writeDoc(t, validDoc), "--fact", "country=US")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/vip\n", out)
}

func TestResolveInvalidDocument(t *testing.T) {
	_, err := run(t, "resolve", "-f", writeDoc(t, invalidDoc), "--fact", "country=US")
	require.ErrorIs(t, err, errInvalidForm)
}

func TestParseFacts(t *testing.T) {
	facts, err := parseFacts([]string{"country=US", " url =https://x.test/?a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"country": "US",
		"url":     "https://x.test/?a=b",
		"empty":   "",
	}, facts)

	for _, bad := range []string{"novalue", "=US", " =x", "\ufeff=x", "country=\xff"} {
		_, err := parseFacts([]string{bad})
		assert.ErrorIs(t, err, errInvalidFact, bad)
	}
}

func TestResolveNonASCIIFact(t *testing.T) {
	doc := `confirmationTarget: redirect
defaultConfirmation: https://example.com/thanks
conditionalLogicEnabled: true
conditions:
  - operator: null
    fieldName: ville
    fieldValue: Zürich
alternateConfirmation: https://example.com/ch
`
	out, err := run(t, "resolve", "-f", writeDoc(t, doc), "--fact", "ville=Zürich", "--json")
	require.NoError(t, err)

	var got resolutionReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Alternate)
	assert.Equal(t, "https://example.com/ch", got.Value)
}

func TestBadConfigTargetFailsEarly(t *testing.T) {
	t.Setenv("CONFIRMFORM_FORM_DEFAULT_TARGET", "popup")
	_, err := run(t, "validate", "-f", writeDoc(t, validDoc))
	require.ErrorIs(t, err, form.ErrUnknownTarget)
}
