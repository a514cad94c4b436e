package rules

type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestInvalid TestStatus = "invalid"
)

// TestResult is returned by TestDraft. Matched is nil when no sample was given.
type TestResult struct {
	Status     TestStatus        `json:"status"`
	Errors     FieldErrors       `json:"errors,omitempty"`
	Matched    *bool             `json:"matched,omitempty"`
	Conditions []ConditionResult `json:"conditions,omitempty"`
	Message    string            `json:"message"`
}

// TestDraft dry-runs a draft. Only the caller supplied sample attributes are
// matched; no content is read.
func TestDraft(d Draft, sample map[string]any) TestResult {
	d = d.Normalize()
	if errs := ValidateDraft(d); !errs.Valid() {
		return TestResult{Status: TestInvalid, Errors: errs, Message: "Rule test failed: fix validation errors first"}
	}
	if sample == nil {
		return TestResult{Status: TestPassed, Message: "Rule test completed successfully"}
	}

	matched, results, err := Evaluate(d.Trigger.Conditions, sample)
	if err != nil {
		return TestResult{Status: TestFailed, Message: "Rule test failed: " + err.Error()}
	}
	msg := "Rule test completed successfully: sample does not match"
	if matched {
		msg = "Rule test completed successfully: sample matches"
	}
	return TestResult{Status: TestPassed, Matched: &matched, Conditions: results, Message: msg}
}
