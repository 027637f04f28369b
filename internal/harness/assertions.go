package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/formscript/internal/formxml"
	"github.com/roach88/formscript/internal/store"
)

// AssertionContext provides what assertions need besides the Result.
type AssertionContext struct {
	Store  *store.Store
	Ctx    context.Context
	Entity string
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Steps    []StepEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, s := range e.Steps {
			fmt.Fprintf(&buf, "  [%d] %s changed=%t", s.Index, s.Op, s.Changed)
			if s.Error != "" {
				fmt.Fprintf(&buf, " error=%s", s.Error)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, empty when all pass.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	if len(assertions) == 0 {
		return errs
	}

	var (
		bindings   *formxml.Bindings
		inspectErr error
	)
	for i, a := range assertions {
		if a.Type != AssertPublishCount && bindings == nil && inspectErr == nil {
			bindings, inspectErr = formxml.Inspect(result.FormXML)
		}
		if inspectErr != nil && a.Type != AssertPublishCount {
			errs = append(errs, fmt.Sprintf("assertions[%d]: inspect final form: %v", i, inspectErr))
			continue
		}

		var err error
		switch a.Type {
		case AssertLibraryCount:
			err = assertCount(a, len(bindings.Libraries), "libraries")
		case AssertHandlerCount:
			err = assertCount(a, len(matchingHandlers(bindings, a)), "handlers"+handlerScope(a))
		case AssertLibraryID:
			err = assertLibraryID(bindings, a)
		case AssertHandlerID:
			err = assertHandlerID(bindings, a)
		case AssertPublishCount:
			err = assertPublishCount(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err == nil {
			continue
		}
		if ae, ok := err.(*AssertionError); ok {
			ae.Steps = result.Steps
		}
		errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
	}
	return errs
}

func assertCount(a Assertion, got int, what string) error {
	if got == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s", *a.Count, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
	}
}

func matchingHandlers(b *formxml.Bindings, a Assertion) []formxml.RegisteredHandler {
	var out []formxml.RegisteredHandler
	for _, h := range b.Handlers {
		if a.Event != "" && !strings.EqualFold(h.EventName, a.Event) {
			continue
		}
		if a.Library != "" && h.Library != a.Library {
			continue
		}
		if a.Function != "" && h.Function != a.Function {
			continue
		}
		out = append(out, h)
	}
	return out
}

func handlerScope(a Assertion) string {
	var parts []string
	if a.Event != "" {
		parts = append(parts, "event="+a.Event)
	}
	if a.Library != "" {
		parts = append(parts, "library="+a.Library)
	}
	if a.Function != "" {
		parts = append(parts, "function="+a.Function)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}

func assertLibraryID(b *formxml.Bindings, a Assertion) error {
	for _, l := range b.Libraries {
		if l.Name != a.Library {
			continue
		}
		if l.ID == a.ID {
			return nil
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("library %s with id %s", a.Library, a.ID),
			Actual:   fmt.Sprintf("id %s", l.ID),
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("library %s with id %s", a.Library, a.ID),
		Actual:   "library not registered",
	}
}

func assertHandlerID(b *formxml.Bindings, a Assertion) error {
	hs := matchingHandlers(b, a)
	expected := fmt.Sprintf("handler %s from %s on %s with id %s", a.Function, a.Library, a.Event, a.ID)
	switch {
	case len(hs) == 0:
		return &AssertionError{Type: a.Type, Expected: expected, Actual: "handler not found"}
	case len(hs) > 1:
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprintf("%d matching handlers", len(hs))}
	case hs[0].ID != a.ID:
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprintf("id %s", hs[0].ID)}
	}
	return nil
}

func assertPublishCount(actx *AssertionContext, a Assertion) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("publish_count needs a store")
	}
	pubs, err := actx.Store.Publications(actx.Ctx, actx.Entity)
	if err != nil {
		return err
	}
	return assertCount(a, len(pubs), "publications")
}
