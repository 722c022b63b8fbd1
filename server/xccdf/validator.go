// Package xccdf validates XCCDF compliance reports against expected-result
// rules and renders the outcome as programmatic verdicts and a textual
// summary.
package xccdf

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/benchvalid/benchvalid/server/benchvalid"
)

// resultLabels maps the XCCDF result vocabulary to the labels used in rule
// tables.
var resultLabels = map[string]string{
	"pass":           "COMPLIANT",
	"fail":           "NOT COMPLIANT",
	"notapplicable":  "NOT APPLICABLE",
	"notchecked":     "NOT CHECKED",
	"notselected":    "NOT SELECTED",
	"informational":  "INFORMATIONAL",
	"error":          "ERROR",
	"unknown":        "UNKNOWN",
	"fixed":          "FIXED",
}

const descriptionWidth = 30

// Validator evaluates rule records against XCCDF report documents. It
// retains the results of the most recent Validate call to serve the derived
// queries; a Validator is not safe for concurrent use.
type Validator struct {
	logger kitlog.Logger
	last   []benchvalid.RuleResult
}

// NewValidator returns a Validator logging through the provided logger.
func NewValidator(logger kitlog.Logger) *Validator {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Validator{logger: logger}
}

// Validate matches each rule record against the report document and returns
// the pass and fail counts plus one verdict per rule, in rule order. It
// returns ErrNoRulesLoaded when rules is empty and a MalformedReportError
// when the document is not well-formed XML.
func (v *Validator) Validate(rules []benchvalid.RuleRecord, reportXML string) (passed, failed int, results []benchvalid.RuleResult, err error) {
	if len(rules) == 0 {
		return 0, 0, nil, benchvalid.ErrNoRulesLoaded
	}

	doc, err := xmlquery.Parse(strings.NewReader(reportXML))
	if err != nil {
		return 0, 0, nil, &benchvalid.MalformedReportError{Err: err}
	}

	// Index the report's rule-result elements by idref up front. Element
	// names are matched by local name so reports may use any namespace
	// prefix; the idref comparison itself is exact and case-sensitive.
	byIdref := make(map[string]*xmlquery.Node)
	for _, node := range xmlquery.Find(doc, "//*[local-name()='rule-result']") {
		if idref := node.SelectAttr("idref"); idref != "" {
			if _, ok := byIdref[idref]; !ok {
				byIdref[idref] = node
			}
		}
	}

	results = make([]benchvalid.RuleResult, 0, len(rules))
	for _, rule := range rules {
		res := evaluate(rule, byIdref[rule.RuleID])
		if res.Passed() {
			passed++
		} else {
			failed++
		}
		results = append(results, res)
	}

	v.last = results
	level.Debug(v.logger).Log(
		"msg", "validated XCCDF report",
		"rules", len(rules),
		"passed", passed,
		"failed", failed,
	)
	return passed, failed, results, nil
}

func evaluate(rule benchvalid.RuleRecord, node *xmlquery.Node) benchvalid.RuleResult {
	res := benchvalid.RuleResult{
		Number:      rule.Number,
		RuleID:      rule.RuleID,
		Description: rule.Description,
		Expected:    rule.ExpectedResult,
	}

	if node == nil {
		res.Actual = benchvalid.ActualNotFound
		res.Status = benchvalid.StatusFail
		res.Message = "rule not found in XCCDF report"
		return res
	}

	res.Actual = actualResult(node)
	if res.Actual == rule.ExpectedResult {
		res.Status = benchvalid.StatusPass
		res.Message = "match"
	} else {
		res.Status = benchvalid.StatusFail
		res.Message = fmt.Sprintf("mismatch: expected %s, got %s", res.Expected, res.Actual)
	}
	return res
}

// actualResult extracts the nested result value from a rule-result element
// and normalizes it through the XCCDF vocabulary. Unrecognized values pass
// through upper-cased; a missing result element reports UNKNOWN.
func actualResult(node *xmlquery.Node) string {
	resultNode := xmlquery.FindOne(node, ".//*[local-name()='result']")
	if resultNode == nil {
		return benchvalid.ActualUnknown
	}
	raw := strings.TrimSpace(resultNode.InnerText())
	if label, ok := resultLabels[strings.ToLower(raw)]; ok {
		return label
	}
	return strings.ToUpper(raw)
}

// FailedRules returns the failed verdicts from the most recent Validate
// call, in original order. It returns ErrNoResults before the first call.
func (v *Validator) FailedRules() ([]benchvalid.RuleResult, error) {
	return v.filter(benchvalid.StatusFail)
}

// PassedRules returns the passed verdicts from the most recent Validate
// call, in original order. It returns ErrNoResults before the first call.
func (v *Validator) PassedRules() ([]benchvalid.RuleResult, error) {
	return v.filter(benchvalid.StatusPass)
}

func (v *Validator) filter(status string) ([]benchvalid.RuleResult, error) {
	if v.last == nil {
		return nil, benchvalid.ErrNoResults
	}
	var out []benchvalid.RuleResult
	for _, res := range v.last {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out, nil
}
