package componentmanager

import "strings"

// ValidationResult reports the outcome of ValidateCode.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var unsafePatterns = []string{"eval(", "Function(", "setTimeout(", "setInterval("}

// ValidateCode runs lightweight structural checks on component source. The
// code is only inspected as text.
func ValidateCode(code string) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}
	if strings.TrimSpace(code) == "" {
		res.Errors = append(res.Errors, "Component code cannot be empty")
		return res
	}

	lower := strings.ToLower(code)
	if !strings.Contains(lower, "function") && !strings.Contains(lower, "const") && !strings.Contains(lower, "export") {
		res.Errors = append(res.Errors, "Code must define a React component function")
	}
	if !strings.Contains(lower, "return") && !strings.Contains(lower, "=>") {
		res.Warnings = append(res.Warnings, "Component should return JSX")
	}
	for _, p := range unsafePatterns {
		if strings.Contains(code, p) {
			res.Warnings = append(res.Warnings, "Potentially unsafe pattern detected: "+p)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
