package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// BuildID is the ID the driver assigned to the build.
	BuildID string `json:"build_id,omitempty"`

	// Assembly is the lowered program. Empty when the build failed.
	Assembly string `json:"assembly,omitempty"`

	// IR holds the built instructions in their text form, one per entry.
	IR []string `json:"ir,omitempty"`

	// ErrorCode is the code of the build error, if the build failed.
	ErrorCode string `json:"error_code,omitempty"`

	// BuildError is the full build error message, if the build failed.
	BuildError string `json:"build_error,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		IR:     []string{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Failed reports whether the build itself was rejected.
func (r *Result) Failed() bool {
	return r.ErrorCode != ""
}
