package rule

import "fmt"

// InvalidPatternError reports a name pattern that failed to compile.
type InvalidPatternError struct {
	Rule    string
	Pattern string
	Wrapped error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("rule %q has invalid pattern %q: %v", e.Rule, e.Pattern, e.Wrapped)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Wrapped
}
