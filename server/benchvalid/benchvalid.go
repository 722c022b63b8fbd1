// Package benchvalid holds the domain types shared across the benchvalid
// packages: expected-outcome rules loaded from rule tables, the verdicts
// produced by validating an XCCDF report against them, and the error
// taxonomy surfaced by the loaders and the validator.
package benchvalid

// Status values assigned to a RuleResult.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Sentinel actual-result values used when a rule cannot be resolved to a
// recognizable outcome in the report.
const (
	ActualNotFound = "NOT FOUND"
	ActualUnknown  = "UNKNOWN"
)

// RuleRecord is one expected-outcome entry from a rule table. Number is the
// row ordinal from the source table, RuleID the XCCDF rule identifier
// (idref) matched case-sensitively against the report, and ExpectedResult
// the upper-cased expected label. Description and Profile may be empty;
// Profile is only used as a load-time filter key.
type RuleRecord struct {
	Number         int
	RuleID         string
	ExpectedResult string
	Description    string
	Profile        string
}

// RuleResult is the verdict for one RuleRecord. Actual is the normalized
// result found in the report, ActualNotFound when no matching rule-result
// element exists, or ActualUnknown when the element carries no result value.
type RuleResult struct {
	Number      int
	RuleID      string
	Description string
	Expected    string
	Actual      string
	Status      string
	Message     string
}

// Passed reports whether the verdict is a pass.
func (r RuleResult) Passed() bool {
	return r.Status == StatusPass
}

// Credential is a resolved host/username/password triple for a scan target
// VM.
type Credential struct {
	Host     string
	Username string
	Password string
}

// CredentialSpec identifies the VM whose credentials should be resolved:
// benchmark (CIS, DISA), operating system and version, credential type
// (compliance or not-compliance) and service type (server or database).
type CredentialSpec struct {
	Benchmark string
	OS        string
	Version   string
	Type      string
	Service   string
}
