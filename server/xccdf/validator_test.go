package xccdf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchvalid/benchvalid/server/benchvalid"
)

const reportTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<Benchmark xmlns="http://checklists.nist.gov/xccdf/1.2">
  <TestResult>
%s  </TestResult>
</Benchmark>
`

func report(ruleResults ...string) string {
	body := ""
	for _, rr := range ruleResults {
		body += "    " + rr + "\n"
	}
	return fmt.Sprintf(reportTemplate, body)
}

func rule(num int, id, expected string) benchvalid.RuleRecord {
	return benchvalid.RuleRecord{Number: num, RuleID: id, ExpectedResult: expected}
}

func TestValidateMatch(t *testing.T) {
	doc := report(`<rule-result idref="r1"><result>pass</result></rule-result>`)

	passed, failed, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "COMPLIANT")}, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 0, failed)
	require.Len(t, results, 1)
	assert.Equal(t, "COMPLIANT", results[0].Actual)
	assert.Equal(t, benchvalid.StatusPass, results[0].Status)
	assert.Equal(t, "match", results[0].Message)
}

func TestValidateRuleNotFound(t *testing.T) {
	doc := report(`<rule-result idref="other"><result>pass</result></rule-result>`)

	passed, failed, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "COMPLIANT")}, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, passed)
	assert.Equal(t, 1, failed)
	require.Len(t, results, 1)
	assert.Equal(t, benchvalid.ActualNotFound, results[0].Actual)
	assert.Equal(t, benchvalid.StatusFail, results[0].Status)
	assert.Equal(t, "rule not found in XCCDF report", results[0].Message)
}

func TestValidateExpectedFailureIsAPass(t *testing.T) {
	// A rule expected to be non-compliant passes when the report agrees.
	doc := report(`<rule-result idref="r1"><result>fail</result></rule-result>`)

	passed, failed, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "NOT COMPLIANT")}, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, "NOT COMPLIANT", results[0].Actual)
	assert.Equal(t, benchvalid.StatusPass, results[0].Status)
}

func TestValidateMixedOutcomesKeepRuleOrder(t *testing.T) {
	doc := report(
		`<rule-result idref="r2"><result>error</result></rule-result>`,
		`<rule-result idref="r1"><result>pass</result></rule-result>`,
	)
	rules := []benchvalid.RuleRecord{
		rule(1, "r1", "COMPLIANT"),
		rule(2, "r2", "FIXED"),
	}

	passed, failed, results, err := NewValidator(nil).Validate(rules, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	require.Len(t, results, 2)
	// Verdicts follow rule order, not the report's internal order.
	assert.Equal(t, "r1", results[0].RuleID)
	assert.Equal(t, benchvalid.StatusPass, results[0].Status)
	assert.Equal(t, "r2", results[1].RuleID)
	assert.Equal(t, benchvalid.StatusFail, results[1].Status)
	assert.Equal(t, "mismatch: expected FIXED, got ERROR", results[1].Message)
}

func TestValidateVocabulary(t *testing.T) {
	cases := map[string]string{
		"pass":          "COMPLIANT",
		"fail":          "NOT COMPLIANT",
		"notapplicable": "NOT APPLICABLE",
		"notchecked":    "NOT CHECKED",
		"notselected":   "NOT SELECTED",
		"informational": "INFORMATIONAL",
		"error":         "ERROR",
		"unknown":       "UNKNOWN",
		"fixed":         "FIXED",
	}
	for token, label := range cases {
		t.Run(token, func(t *testing.T) {
			doc := report(fmt.Sprintf(`<rule-result idref="r1"><result>%s</result></rule-result>`, token))
			_, _, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", label)}, doc)
			require.NoError(t, err)
			assert.Equal(t, label, results[0].Actual)
			assert.Equal(t, benchvalid.StatusPass, results[0].Status)
		})
	}
}

func TestValidateVocabularyCaseInsensitive(t *testing.T) {
	doc := report(`<rule-result idref="r1"><result>NotApplicable</result></rule-result>`)

	_, _, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "NOT APPLICABLE")}, doc)
	require.NoError(t, err)
	assert.Equal(t, "NOT APPLICABLE", results[0].Actual)
	assert.Equal(t, benchvalid.StatusPass, results[0].Status)
}

func TestValidateUnknownTokenPassesThrough(t *testing.T) {
	doc := report(`<rule-result idref="r1"><result>waived</result></rule-result>`)

	_, _, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "WAIVED")}, doc)
	require.NoError(t, err)
	assert.Equal(t, "WAIVED", results[0].Actual)
	assert.Equal(t, benchvalid.StatusPass, results[0].Status)
}

func TestValidateMissingResultElement(t *testing.T) {
	doc := report(`<rule-result idref="r1"></rule-result>`)

	_, failed, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "COMPLIANT")}, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Equal(t, benchvalid.ActualUnknown, results[0].Actual)
	assert.Equal(t, benchvalid.StatusFail, results[0].Status)
}

func TestValidateNamespacePrefix(t *testing.T) {
	doc := `<?xml version="1.0"?>
<cdf:Benchmark xmlns:cdf="http://checklists.nist.gov/xccdf/1.2">
  <cdf:TestResult>
    <cdf:rule-result idref="r1"><cdf:result>pass</cdf:result></cdf:rule-result>
  </cdf:TestResult>
</cdf:Benchmark>`

	_, _, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "COMPLIANT")}, doc)
	require.NoError(t, err)
	assert.Equal(t, "COMPLIANT", results[0].Actual)
	assert.Equal(t, benchvalid.StatusPass, results[0].Status)
}

func TestValidateIdrefCaseSensitive(t *testing.T) {
	doc := report(`<rule-result idref="R1"><result>pass</result></rule-result>`)

	_, _, results, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "COMPLIANT")}, doc)
	require.NoError(t, err)
	assert.Equal(t, benchvalid.ActualNotFound, results[0].Actual)
}

func TestValidateNoRules(t *testing.T) {
	_, _, _, err := NewValidator(nil).Validate(nil, report())
	assert.ErrorIs(t, err, benchvalid.ErrNoRulesLoaded)
}

func TestValidateMalformedReport(t *testing.T) {
	_, _, _, err := NewValidator(nil).Validate([]benchvalid.RuleRecord{rule(1, "r1", "COMPLIANT")}, "<unclosed")
	var malformed *benchvalid.MalformedReportError
	require.ErrorAs(t, err, &malformed)
}

func TestValidateCountsSumToTotal(t *testing.T) {
	doc := report(
		`<rule-result idref="r1"><result>pass</result></rule-result>`,
		`<rule-result idref="r2"><result>fail</result></rule-result>`,
	)
	rules := []benchvalid.RuleRecord{
		rule(1, "r1", "COMPLIANT"),
		rule(2, "r2", "COMPLIANT"),
		rule(3, "r3", "COMPLIANT"),
	}

	passed, failed, results, err := NewValidator(nil).Validate(rules, doc)
	require.NoError(t, err)
	assert.Equal(t, len(rules), passed+failed)
	assert.Len(t, results, len(rules))
}

func TestValidateIdempotent(t *testing.T) {
	doc := report(
		`<rule-result idref="r1"><result>pass</result></rule-result>`,
		`<rule-result idref="r2"><result>fail</result></rule-result>`,
	)
	rules := []benchvalid.RuleRecord{
		rule(1, "r1", "COMPLIANT"),
		rule(2, "r2", "COMPLIANT"),
	}
	v := NewValidator(nil)

	_, _, first, err := v.Validate(rules, doc)
	require.NoError(t, err)
	_, _, second, err := v.Validate(rules, doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFailedAndPassedRules(t *testing.T) {
	v := NewValidator(nil)

	_, err := v.FailedRules()
	assert.ErrorIs(t, err, benchvalid.ErrNoResults)
	_, err = v.PassedRules()
	assert.ErrorIs(t, err, benchvalid.ErrNoResults)

	doc := report(
		`<rule-result idref="r1"><result>pass</result></rule-result>`,
		`<rule-result idref="r3"><result>pass</result></rule-result>`,
	)
	rules := []benchvalid.RuleRecord{
		rule(1, "r1", "COMPLIANT"),
		rule(2, "r2", "COMPLIANT"),
		rule(3, "r3", "COMPLIANT"),
	}
	_, _, _, err = v.Validate(rules, doc)
	require.NoError(t, err)

	failed, err := v.FailedRules()
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "r2", failed[0].RuleID)

	passed, err := v.PassedRules()
	require.NoError(t, err)
	require.Len(t, passed, 2)
	assert.Equal(t, "r1", passed[0].RuleID)
	assert.Equal(t, "r3", passed[1].RuleID)
}
