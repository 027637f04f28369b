package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/formscript/internal/forms"
	"github.com/roach88/formscript/internal/formxml"
	"github.com/roach88/formscript/internal/store"
	"github.com/roach88/formscript/internal/testutil"
	"github.com/roach88/formscript/internal/xmltree"
)

// scenarioFormID is the id of the single form every scenario edits.
const scenarioFormID = "scenario-form"

// Harness executes scenario steps against one store.
type Harness struct {
	store     *store.Store
	processor *forms.Processor
	logger    *slog.Logger
	entity    string
}

// Run executes a scenario and returns the result.
//
// Each run uses a fresh in-memory database. An error is returned only when
// the harness itself cannot run; step and assertion failures are reported
// in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with editor and processor logs sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	entity := scenario.Entity
	if entity == "" {
		entity = DefaultEntity
	}
	if _, err := st.ImportForm(ctx, forms.EntityForm{
		ID:      scenarioFormID,
		Entity:  entity,
		Name:    scenario.Name,
		Type:    forms.Main,
		FormXML: scenario.FormXML,
	}); err != nil {
		return nil, fmt.Errorf("import scenario form: %w", err)
	}

	var ids formxml.IDGenerator = testutil.NewSequentialIDs()
	if len(scenario.IDs) > 0 {
		ids = formxml.NewFixedGenerator(scenario.IDs...)
	}
	editor := formxml.NewEditor(formxml.WithIDGenerator(ids), formxml.WithLogger(logger))

	h := &Harness{
		store: st,
		processor: forms.NewProcessor(st,
			forms.WithEditor(editor),
			forms.WithProcessorLogger(logger)),
		logger: logger,
		entity: entity,
	}

	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)

	f, err := st.GetForm(ctx, scenarioFormID)
	if err != nil {
		return nil, fmt.Errorf("read final form: %w", err)
	}
	result.FormXML = f.FormXML

	actx := &AssertionContext{Store: st, Ctx: ctx, Entity: entity}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSteps runs steps in order and stops at the first unexpected error.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		res, err := h.apply(ctx, step)

		ev := StepEvent{Index: i + 1, Op: step.Op}
		if res != nil {
			ev.Changed = res.Changed()
			ev.Published = res.Published
		}
		if err != nil {
			ev.Error = errorCode(err)
		}
		result.AddStep(ev)

		switch {
		case step.ExpectError != "" && err == nil:
			result.AddError(fmt.Sprintf("step %d (%s): expected %s error, got success", i+1, step.Op, step.ExpectError))
		case step.ExpectError != "" && ev.Error != step.ExpectError:
			result.AddError(fmt.Sprintf("step %d (%s): expected %s error, got %v", i+1, step.Op, step.ExpectError, err))
		case step.ExpectError == "" && err != nil:
			result.AddError(fmt.Sprintf("step %d (%s): %v", i+1, step.Op, err))
			return
		}

		h.logger.Debug("scenario step completed",
			"step", i+1,
			"op", step.Op,
			"changed", ev.Changed,
			"error", ev.Error,
		)
	}
}

// apply runs one step. A FixedGenerator that runs out of ids panics; the
// panic is reported as a step error.
func (h *Harness) apply(ctx context.Context, step Step) (res *forms.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("scenario ids exhausted: %v", r)
		}
	}()
	return h.processor.Apply(ctx, step.manifest(h.entity))
}

// errorCode maps err to its expect_error spelling, or the error text for
// errors without a code.
func errorCode(err error) string {
	switch {
	case xmltree.IsInvalidArgument(err):
		return "invalid_argument"
	case xmltree.IsMissingStructure(err):
		return "missing_structure"
	case xmltree.IsMalformed(err):
		return "malformed_document"
	default:
		return strings.TrimSpace(err.Error())
	}
}
