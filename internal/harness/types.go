package harness

// StepEvent records what one scenario step did.
type StepEvent struct {
	Index     int    `json:"index"`
	Op        string `json:"op"`
	Changed   bool   `json:"changed"`
	Published bool   `json:"published"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step and assertion succeeded.
	Pass bool `json:"pass"`

	// Steps holds one event per executed step, in order.
	Steps []StepEvent `json:"steps"`

	// FormXML is the stored form after the last step.
	FormXML string `json:"form_xml"`

	// Errors contains step and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step event.
func (r *Result) AddStep(ev StepEvent) {
	r.Steps = append(r.Steps, ev)
}
